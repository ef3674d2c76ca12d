package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/godocsearch/internal/logging"
	"github.com/dshills/godocsearch/internal/parser"
	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/internal/storage"
	"github.com/dshills/godocsearch/pkg/types"
)

var (
	// ErrBuildInProgress is returned when a build is requested while another runs
	ErrBuildInProgress = errors.New("index build already in progress")
	// ErrNoPackages is returned when the root holds no Go source files
	ErrNoPackages = errors.New("no Go packages found")
)

// Indexer coordinates the build pipeline: discover -> parse -> catalog -> compile -> write
type Indexer struct {
	parser  *parser.Parser
	storage storage.Storage
	guard   buildGuard
	logger  *slog.Logger
}

// Config contains configuration for one build
type Config struct {
	Workers       int    // Number of concurrent parsers (default: runtime.NumCPU())
	IncludeTests  bool   // Whether to index _test.go files of the package under test
	IncludeVendor bool   // Whether to index the vendor directory
	Output        string // Artifact path (default: <root>/search_index.js)
	Format        searchindex.Format
	SnippetLimit  int
	ModulePath    string // Overrides the module path read from go.mod
}

// Statistics contains statistics about one build
type Statistics struct {
	BuildID          string
	ModulePath       string
	Packages         int
	FilesParsed      int
	FilesFailed      int
	Entries          int
	EntriesByKind    map[types.EntryKind]int
	Ngrams           int
	FingerprintBytes int
	ArtifactPath     string
	ArtifactBytes    int64
	Duration         time.Duration
	ErrorMessages    []string
}

// Summary renders the statistics as a single human readable line
func (s *Statistics) Summary() string {
	return fmt.Sprintf("%s entries from %d packages (%s files), %s n-grams, wrote %s to %s in %s",
		humanize.Comma(int64(s.Entries)),
		s.Packages,
		humanize.Comma(int64(s.FilesParsed)),
		humanize.Comma(int64(s.Ngrams)),
		humanize.Bytes(uint64(s.ArtifactBytes)),
		s.ArtifactPath,
		s.Duration.Round(time.Millisecond),
	)
}

// New creates a new Indexer backed by the given catalog
func New(store storage.Storage) *Indexer {
	return &Indexer{
		parser:  parser.New(),
		storage: store,
		logger:  logging.WithComponent("indexer"),
	}
}

// Building reports whether a build is running
func (idx *Indexer) Building() bool {
	return idx.guard.busy()
}

// Status returns the most recent build record
func (idx *Indexer) Status(ctx context.Context) (*storage.Build, error) {
	return idx.storage.LatestBuild(ctx)
}

// Build indexes every package under rootPath and writes the search index
// artifact. Only one build runs at a time; overlapping calls fail fast with
// ErrBuildInProgress.
func (idx *Indexer) Build(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if !idx.guard.tryEnter() {
		return nil, ErrBuildInProgress
	}
	defer idx.guard.leave()

	cfg := idx.normalize(rootPath, config)
	startTime := time.Now()

	// Catalog state never outlives a build
	if err := idx.storage.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset catalog: %w", err)
	}

	build := &storage.Build{
		RootPath:   rootPath,
		ModulePath: cfg.ModulePath,
		StartedAt:  startTime,
	}
	if err := idx.storage.CreateBuild(ctx, build); err != nil {
		return nil, fmt.Errorf("failed to create build: %w", err)
	}

	ctx = logging.WithBuildID(ctx, build.ID)
	logger := logging.FromContext(ctx).With("component", "indexer")
	logger.Info("index build started", "root", rootPath, "module", cfg.ModulePath)

	stats, err := idx.run(ctx, rootPath, &cfg, build)
	stats.BuildID = build.ID
	stats.ModulePath = cfg.ModulePath
	stats.Duration = time.Since(startTime)

	build.Packages = stats.Packages
	build.Files = stats.FilesParsed
	build.Entries = stats.Entries
	build.Ngrams = stats.Ngrams
	build.ParseErrors = stats.FilesFailed
	build.ArtifactPath = stats.ArtifactPath
	build.ArtifactBytes = stats.ArtifactBytes
	build.Status = storage.BuildSucceeded
	if err != nil {
		build.Status = storage.BuildFailed
		build.Error = err.Error()
	}

	// The build record is written even when ctx was cancelled
	if finishErr := idx.storage.FinishBuild(context.WithoutCancel(ctx), build); finishErr != nil {
		logger.Error("failed to record build", "error", finishErr)
	}

	if err != nil {
		logger.Error("index build failed", "error", err)
		return nil, err
	}

	logger.Info("index build finished",
		"entries", stats.Entries,
		"packages", stats.Packages,
		"bytes", stats.ArtifactBytes,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (idx *Indexer) normalize(rootPath string, config *Config) Config {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Output == "" {
		cfg.Output = filepath.Join(rootPath, "search_index.js")
	}
	if cfg.Format == "" {
		cfg.Format = searchindex.FormatForPath(cfg.Output)
	}
	if cfg.ModulePath == "" {
		if modInfo, err := parseGoMod(filepath.Join(rootPath, "go.mod")); err == nil && modInfo.Module != "" {
			cfg.ModulePath = modInfo.Module
		} else if abs, err := filepath.Abs(rootPath); err == nil {
			cfg.ModulePath = filepath.Base(abs)
		} else {
			cfg.ModulePath = filepath.Base(rootPath)
		}
	}
	return cfg
}

func (idx *Indexer) run(ctx context.Context, rootPath string, cfg *Config, build *storage.Build) (*Statistics, error) {
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	packages, err := discoverPackages(rootPath, cfg)
	if err != nil {
		return stats, fmt.Errorf("failed to discover packages: %w", err)
	}
	if len(packages) == 0 {
		return stats, fmt.Errorf("%s: %w", rootPath, ErrNoPackages)
	}
	for _, pkg := range packages {
		stats.FilesParsed += len(pkg.Files)
	}

	results, err := idx.parsePackages(ctx, packages, cfg.Workers)
	if err != nil {
		return stats, fmt.Errorf("failed to parse packages: %w", err)
	}

	if err := idx.catalog(ctx, build.ID, results, stats); err != nil {
		return stats, err
	}

	entries, err := idx.storage.ListEntries(ctx, build.ID)
	if err != nil {
		return stats, fmt.Errorf("failed to read catalog: %w", err)
	}
	if stats.EntriesByKind, err = idx.storage.CountEntries(ctx, build.ID); err != nil {
		return stats, fmt.Errorf("failed to count entries: %w", err)
	}

	builder := searchindex.NewBuilder(
		searchindex.WithSnippetLimit(cfg.SnippetLimit),
		searchindex.WithLogger(logging.FromContext(ctx)),
	)
	artifact, err := builder.Build(entries)
	if err != nil {
		return stats, fmt.Errorf("failed to compile search index: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if dir := filepath.Dir(cfg.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	written, err := artifact.WriteFile(cfg.Output, cfg.Format)
	if err != nil {
		return stats, fmt.Errorf("failed to write search index: %w", err)
	}

	artifactStats := artifact.Stats()
	stats.Packages = len(results)
	stats.Entries = artifactStats.Entries
	stats.Ngrams = artifactStats.Ngrams
	stats.FingerprintBytes = artifactStats.FingerprintSize
	stats.ArtifactPath = cfg.Output
	stats.ArtifactBytes = written
	return stats, nil
}

// sourcePackage is one directory of Go files
type sourcePackage struct {
	ImportPath string
	Files      []string
}

// parsePackages parses packages concurrently. Results keep the order of the input.
func (idx *Indexer) parsePackages(ctx context.Context, packages []sourcePackage, workers int) ([]*types.ParseResult, error) {
	results := make([]*types.ParseResult, len(packages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range packages {
		pkg := packages[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := idx.parser.ParsePackage(pkg.ImportPath, pkg.Files)
			if err != nil {
				return fmt.Errorf("%s: %w", pkg.ImportPath, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// catalog stores every parsed entry in one transaction, package by package
func (idx *Indexer) catalog(ctx context.Context, buildID string, results []*types.ParseResult, stats *Statistics) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	failed := make(map[string]bool)

	for _, result := range results {
		if err := tx.StoreEntries(ctx, buildID, result.Entries); err != nil {
			return fmt.Errorf("failed to catalog %s: %w", result.ImportPath, err)
		}

		for _, parseErr := range result.Errors {
			failed[parseErr.File] = true
			stats.ErrorMessages = append(stats.ErrorMessages, parseErr.Error())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats.FilesFailed = len(failed)
	return nil
}

// discoverPackages groups Go files by directory and maps each directory to an
// import path under the module. Packages come back sorted by import path and
// files sorted by name, so builds are deterministic.
func discoverPackages(rootPath string, config *Config) ([]sourcePackage, error) {
	byDir := make(map[string][]string)

	err := filepath.Walk(rootPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if p == rootPath {
				return nil
			}
			if skipDir(info.Name(), config) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(p, ".go") {
			return nil
		}
		if !config.IncludeTests && strings.HasSuffix(p, "_test.go") {
			return nil
		}

		dir := filepath.Dir(p)
		byDir[dir] = append(byDir[dir], p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	packages := make([]sourcePackage, 0, len(byDir))
	for dir, files := range byDir {
		rel, err := filepath.Rel(rootPath, dir)
		if err != nil {
			return nil, err
		}
		importPath := config.ModulePath
		if rel != "." {
			importPath = path.Join(config.ModulePath, filepath.ToSlash(rel))
		}
		sort.Strings(files)
		packages = append(packages, sourcePackage{ImportPath: importPath, Files: files})
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].ImportPath < packages[j].ImportPath
	})
	return packages, nil
}

// goModInfo contains parsed go.mod information
type goModInfo struct {
	Module    string
	GoVersion string
}

// parseGoMod extracts basic info from go.mod file
func parseGoMod(goModPath string) (*goModInfo, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, err
	}

	info := &goModInfo{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			info.Module = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module")), `"`)
		} else if strings.HasPrefix(line, "go ") {
			info.GoVersion = strings.TrimSpace(strings.TrimPrefix(line, "go"))
		}
	}

	return info, nil
}
