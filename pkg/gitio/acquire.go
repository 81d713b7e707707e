package gitio

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// SSHOptions configures SSH key authentication for clone and fetch.
type SSHOptions struct {
	// User is the SSH user; empty falls back to the URL's user, then "git".
	User string
	// PrivateKeyPath is the private key file. Empty disables SSH auth.
	PrivateKeyPath string
	// PublicKeyPath is the matching public key file.
	PublicKeyPath string
	// Passphrase unlocks the private key when set.
	Passphrase string
}

// AcquireOptions configures repository acquisition. It is an explicit
// per-call value, not process state, so independent configurations can
// coexist.
type AcquireOptions struct {
	// StorageDir is the directory holding local repository copies.
	StorageDir string
	// SSH is the key authentication used for remote transports.
	SSH SSHOptions
	// Diff configures the handle returned after acquisition.
	Diff DiffOptions
}

// Acquire makes the repository at url available locally and opens a handle
// over it. A missing local copy triggers a bare, no-checkout clone of all
// branches; an existing copy triggers a fetch of all remotes. Clone and
// fetch failures wrap ErrRepositoryUnavailable.
func Acquire(url string, opts AcquireOptions) (*Repository, error) {
	if opts.StorageDir == "" {
		return nil, errors.New("gitio: storage dir not configured")
	}

	path := filepath.Join(opts.StorageDir, LocalName(url))

	_, statErr := os.Stat(path)

	switch {
	case statErr == nil:
		err := fetchAll(path, opts.SSH)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, errors.Join(ErrRepositoryUnavailable, err))
		}
	case errors.Is(statErr, fs.ErrNotExist):
		err := cloneBare(url, path, opts.SSH)
		if err != nil {
			return nil, fmt.Errorf("clone %s: %w", url, errors.Join(ErrRepositoryUnavailable, err))
		}
	default:
		return nil, fmt.Errorf("stat %s: %w", path, statErr)
	}

	return OpenRepository(path, opts.Diff)
}

// LocalName derives the local directory name for a repository URL: the
// last path segment plus a short digest of the full URL, so repositories
// sharing a name under different owners or hosts get distinct directories.
func LocalName(url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")

	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}

	if name == "" {
		name = "repository"
	}

	sum := sha256.Sum256([]byte(url))

	return fmt.Sprintf("%s-%x.git", name, sum[:4])
}

func cloneBare(url, path string, ssh SSHOptions) error {
	cloneOpts := git2go.CloneOptions{
		Bare: true,
		FetchOptions: git2go.FetchOptions{
			RemoteCallbacks: remoteCallbacks(ssh),
		},
	}

	repo, err := git2go.Clone(url, path, &cloneOpts)
	if err != nil {
		return err
	}

	repo.Free()

	return nil
}

func fetchAll(path string, ssh SSHOptions) error {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return err
	}
	defer repo.Free()

	names, err := repo.Remotes.List()
	if err != nil {
		return err
	}

	fetchOpts := git2go.FetchOptions{RemoteCallbacks: remoteCallbacks(ssh)}

	for _, name := range names {
		remote, lookupErr := repo.Remotes.Lookup(name)
		if lookupErr != nil {
			return lookupErr
		}

		fetchErr := remote.Fetch(nil, &fetchOpts, "")
		remote.Free()

		if fetchErr != nil {
			return fetchErr
		}
	}

	return nil
}

func remoteCallbacks(ssh SSHOptions) git2go.RemoteCallbacks {
	if ssh.PrivateKeyPath == "" {
		return git2go.RemoteCallbacks{}
	}

	return git2go.RemoteCallbacks{
		CredentialsCallback: func(_, usernameFromURL string, _ git2go.CredentialType) (*git2go.Credential, error) {
			user := ssh.User
			if user == "" {
				user = usernameFromURL
			}

			if user == "" {
				user = "git"
			}

			return git2go.NewCredentialSSHKey(user, ssh.PublicKeyPath, ssh.PrivateKeyPath, ssh.Passphrase)
		},
		// Host key trust is managed by the deployment's known_hosts.
		CertificateCheckCallback: func(_ *git2go.Certificate, _ bool, _ string) error {
			return nil
		},
	}
}
