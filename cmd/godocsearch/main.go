package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/godocsearch/internal/config"
	"github.com/dshills/godocsearch/internal/indexer"
	"github.com/dshills/godocsearch/internal/logging"
	"github.com/dshills/godocsearch/internal/mcp"
	"github.com/dshills/godocsearch/internal/searcher"
	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/internal/storage"
	"github.com/dshills/godocsearch/internal/tui"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const usage = `Usage: godocsearch [--config FILE] <command> [flags]

Commands:
  index [flags] [DIR]     build the search index for the module at DIR
  search [flags] QUERY    rank entries of a built index against QUERY
  browse [flags]          search a built index interactively
  watch [flags] [DIR]     rebuild the index whenever sources change
  serve                   run the MCP server on stdio
  version                 print version information
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "godocsearch: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a command line to its subcommand
func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("godocsearch", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "", "path to a TOML config file")
	showVersion := global.Bool("version", false, "print version information")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n\n%s", err, usage)
	}

	if *showVersion {
		printVersion(stdout)
		return nil
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errors.New("missing command\n\n" + usage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "index":
		return runIndex(ctx, cfg, cmdArgs, stdout)
	case "search":
		return runSearch(cfg, cmdArgs, stdout)
	case "browse":
		return runBrowse(cfg, cmdArgs, stdout)
	case "watch":
		return runWatch(ctx, cfg, cmdArgs, stdout)
	case "serve":
		return runServe(ctx, cfg)
	case "version":
		printVersion(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "godocsearch\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Build Mode: %s\n", storage.BuildMode)
	fmt.Fprintf(w, "SQLite Driver: %s\n", storage.DriverName)
}

// indexFlags registers the flags shared by index and watch, seeded from cfg
func indexFlags(fs *flag.FlagSet, cfg *config.Config) func(root string) (*indexer.Config, error) {
	output := fs.String("output", cfg.Index.Output, "artifact path, relative to DIR unless absolute")
	format := fs.String("format", cfg.Index.Format, "artifact format: js or json (default from output extension)")
	workers := fs.Int("workers", cfg.Index.Workers, "parallel package parsers")
	tests := fs.Bool("tests", cfg.Index.IncludeTests, "include _test.go files")
	vendor := fs.Bool("vendor", false, "include vendor directories")
	snippet := fs.Int("snippet-limit", cfg.Index.SnippetLimit, "maximum visible characters per description snippet")

	return func(root string) (*indexer.Config, error) {
		var f searchindex.Format
		if *format != "" {
			parsed, err := searchindex.ParseFormat(*format)
			if err != nil {
				return nil, err
			}
			f = parsed
		}

		out := *output
		if out != "" && !filepath.IsAbs(out) {
			out = filepath.Join(root, out)
		}

		return &indexer.Config{
			Workers:       *workers,
			IncludeTests:  *tests,
			IncludeVendor: *vendor,
			Output:        out,
			Format:        f,
			SnippetLimit:  *snippet,
		}, nil
	}
}

func rootArg(fs *flag.FlagSet) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	return "."
}

func newIndexer(cfg *config.Config) (*indexer.Indexer, func(), error) {
	store, err := storage.NewSQLiteStorage(cfg.Index.CatalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return indexer.New(store), func() { _ = store.Close() }, nil
}

func runIndex(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	buildConfig := indexFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := rootArg(fs)
	idxCfg, err := buildConfig(root)
	if err != nil {
		return err
	}

	idx, closeStore, err := newIndexer(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, err := idx.Build(ctx, root, idxCfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, stats.Summary())
	for _, msg := range stats.ErrorMessages {
		fmt.Fprintf(stdout, "  warning: %s\n", msg)
	}
	return nil
}

func searchConfig(cfg *config.Config) searcher.Config {
	return searcher.Config{
		ChunkSize: cfg.Search.ChunkSize,
		Capacity:  cfg.Search.Capacity,
		CacheSize: cfg.Search.CacheSize,
	}
}

func runSearch(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	indexPath := fs.String("index", cfg.Index.Output, "search index artifact")
	limit := fs.Int("limit", cfg.Search.Capacity, "maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("search: missing query")
	}
	if *limit < 1 {
		return fmt.Errorf("search: --limit must be at least 1, got %d", *limit)
	}

	artifact, err := searchindex.Load(*indexPath)
	if err != nil {
		return err
	}

	sc := searchConfig(cfg)
	sc.Capacity = *limit
	results, err := searcher.Query(artifact, fs.Arg(0),
		searcher.WithConfig(sc),
		searcher.WithLogger(logging.WithComponent("searcher")),
	)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(stdout, "no matches")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(stdout, "%2d. %-40s %8.2f  %s\n", r.Rank, r.Title(), r.Score, r.Path)
		if snippet := searchindex.PlainText(r.DescriptionSnippet); snippet != "" {
			fmt.Fprintf(stdout, "    %s\n", snippet)
		}
	}
	return nil
}

func runBrowse(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	indexPath := fs.String("index", cfg.Index.Output, "search index artifact")
	if err := fs.Parse(args); err != nil {
		return err
	}

	artifact, err := searchindex.Load(*indexPath)
	if err != nil {
		return err
	}

	model, err := tui.New(artifact, searchConfig(cfg))
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	if entry, ok := model.Chosen(); ok {
		fmt.Fprintln(stdout, entry.Path)
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	buildConfig := indexFlags(fs, cfg)
	debounce := fs.Duration("debounce", cfg.Watch.Debounce, "quiet period before a rebuild")
	interval := fs.Duration("min-interval", cfg.Watch.MinInterval, "minimum time between rebuilds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := rootArg(fs)
	idxCfg, err := buildConfig(root)
	if err != nil {
		return err
	}

	idx, closeStore, err := newIndexer(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	w, err := indexer.NewWatcher(idx, root, idxCfg,
		indexer.WatchConfig{Debounce: *debounce, MinInterval: *interval},
		func(stats *indexer.Statistics, err error) {
			if err != nil {
				slog.Error("rebuild failed", "error", err)
				return
			}
			fmt.Fprintln(stdout, stats.Summary())
		})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	mcp.ServerVersion = version

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return nil
	case err := <-errChan:
		return err
	}
}
