// Package commands implements the gitminer CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/achievemint/gitminer/internal/config"
	"github.com/achievemint/gitminer/internal/observability"
	"github.com/achievemint/gitminer/pkg/export"
	"github.com/achievemint/gitminer/pkg/extract"
	"github.com/achievemint/gitminer/pkg/gitio"
	"github.com/achievemint/gitminer/pkg/record"
)

// Timeouts for the optional metrics endpoint.
const metricsReadHeaderTimeout = 5 * time.Second

// Sentinel errors for the extract command.
var (
	ErrRepositoryLoad = errors.New("failed to load repository")
	ErrNoOutput       = errors.New("output path must not be empty")
)

// ExtractCommand holds the configuration for the extract command.
type ExtractCommand struct {
	configPath  string
	output      string
	limit       int
	metricsAddr string
}

// NewExtractCommand creates and configures the extract command.
func NewExtractCommand() *cobra.Command {
	ec := &ExtractCommand{}

	cobraCmd := &cobra.Command{
		Use:   "extract [repository]",
		Short: "Walk a repository's history and export commit records",
		Long: `Extract walks every commit reachable from any branch, oldest first,
and writes one JSON record per commit: classified file changes, line-level
diffs and added/removed line counts.

The repository argument is a local path (default ".") or a remote URL;
remote repositories are cloned bare into the configured storage dir and
fetched on subsequent runs.`,
		RunE: ec.run,
	}

	cobraCmd.Flags().StringVarP(&ec.configPath, "config", "c", "", "Config file path (default: .gitminer.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVarP(&ec.output, "output", "o", "records.jsonl", "Output file (.lz4 suffix enables compression)")
	cobraCmd.Flags().IntVar(&ec.limit, "limit", 0, "Limit number of commits to extract (0 = no limit)")
	cobraCmd.Flags().StringVar(&ec.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. ':9090')")

	return cobraCmd
}

// run executes the extraction pipeline.
func (ec *ExtractCommand) run(cmd *cobra.Command, args []string) error {
	if ec.output == "" {
		return ErrNoOutput
	}

	cfg, err := config.Load(ec.configPath)
	if err != nil {
		return err
	}

	cacheOpts, err := cfg.CacheOptions()
	if err != nil {
		return err
	}

	// Process-wide libgit2 tuning, applied once before any handle opens.
	err = gitio.ApplyCacheOptions(cacheOpts)
	if err != nil {
		return err
	}

	repository, err := ec.openRepository(resolveRepoURI(args), cfg)
	if err != nil {
		return err
	}
	defer repository.Free()

	collector := observability.NewCollector()

	if ec.metricsAddr != "" {
		ec.serveMetrics(collector)
	}

	writer, err := export.Create(ec.output)
	if err != nil {
		return err
	}

	extractor := extract.New(repository,
		extract.WithLogger(newLogger(cmd)),
		extract.WithObserver(collector),
	)

	stats, runErr := ec.extractAll(extractor, writer)

	closeErr := writer.Close()
	if runErr != nil {
		return runErr
	}

	if closeErr != nil {
		return closeErr
	}

	if !isQuiet(cmd) {
		printSummary(ec.output, stats)
	}

	return nil
}

// openRepository opens a local path directly or acquires a remote URL into
// the configured storage dir.
func (ec *ExtractCommand) openRepository(uri string, cfg *config.Config) (*gitio.Repository, error) {
	acquireOpts := cfg.AcquireOptions()

	if isRemoteURI(uri) {
		repository, err := gitio.Acquire(uri, acquireOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRepositoryLoad, err)
		}

		return repository, nil
	}

	repository, err := gitio.OpenRepository(uri, acquireOpts.Diff)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryLoad, err)
	}

	return repository, nil
}

// serveMetrics exposes the collector on /metrics in the background. The
// listener lives for the remainder of the process.
func (ec *ExtractCommand) serveMetrics(collector *observability.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{
		Addr:              ec.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", ec.metricsAddr, "error", serveErr)
		}
	}()
}

// runStats aggregates the totals reported after a run.
type runStats struct {
	commits      int
	files        int
	linesAdded   int
	linesRemoved int
	elapsed      time.Duration
}

// extractAll drains the record stream into the writer, honoring the commit
// limit. The walk is abandoned early once the limit is reached.
func (ec *ExtractCommand) extractAll(extractor *extract.Extractor, writer *export.Writer) (runStats, error) {
	var stats runStats

	iter, err := extractor.Records()
	if err != nil {
		return stats, err
	}
	defer iter.Close()

	start := time.Now()

	for {
		if ec.limit > 0 && stats.commits >= ec.limit {
			break
		}

		rec, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return stats, nextErr
		}

		writeErr := writer.Write(rec)
		if writeErr != nil {
			return stats, writeErr
		}

		accumulate(&stats, rec)
	}

	stats.elapsed = time.Since(start)

	return stats, nil
}

func accumulate(stats *runStats, rec *record.CommitRecord) {
	stats.commits++
	stats.files += len(rec.Files)

	for _, file := range rec.Files {
		stats.linesAdded += file.Lines.Added
		stats.linesRemoved += file.Lines.Removed
	}
}

// printSummary renders the run totals as a small table.
func printSummary(output string, stats runStats) {
	color.New(color.FgGreen).Fprintf(os.Stdout, "Extraction complete: %s\n", output)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateHeader = false
	tbl.Style().Options.SeparateRows = false

	tbl.AppendRow(table.Row{"Commits", humanize.Comma(int64(stats.commits))})
	tbl.AppendRow(table.Row{"Changed files", humanize.Comma(int64(stats.files))})
	tbl.AppendRow(table.Row{"Lines added", humanize.Comma(int64(stats.linesAdded))})
	tbl.AppendRow(table.Row{"Lines removed", humanize.Comma(int64(stats.linesRemoved))})
	tbl.AppendRow(table.Row{"Elapsed", stats.elapsed.Round(time.Millisecond).String()})
	tbl.Render()
}

// resolveRepoURI picks the repository argument, defaulting to CWD.
func resolveRepoURI(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return "."
}

// isRemoteURI reports whether uri is a remote URL rather than a local path.
// Scheme URLs and SCP-style "host:path" forms count as remote.
func isRemoteURI(uri string) bool {
	if strings.Contains(uri, "://") {
		return true
	}

	// SCP-style: a colon before any path separator ("git@host:repo.git").
	colon := strings.Index(uri, ":")
	slash := strings.Index(uri, "/")

	return colon >= 0 && (slash < 0 || colon < slash)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	if isQuiet(cmd) {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, _ := cmd.Flags().GetBool("quiet")

	return quiet
}
