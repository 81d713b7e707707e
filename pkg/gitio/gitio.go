// Package gitio implements the extraction pipeline's repository handle on
// top of libgit2. It covers repository acquisition (clone/fetch with SSH
// key auth), all-refs commit walking, first-parent tree diffing with
// rename/copy detection, object content streaming and abbreviated-id
// resolution.
//
// Every libgit2 wrapper holds native resources; Free must be called on all
// exit paths, the same discipline as the rest of the codebase.
package gitio

import "errors"

// ErrRepositoryUnavailable marks a clone or fetch failure at acquisition
// time. The pipeline never starts for an unavailable repository and the
// core performs no retries.
var ErrRepositoryUnavailable = errors.New("repository unavailable")
