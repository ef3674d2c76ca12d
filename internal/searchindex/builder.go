package searchindex

import (
	"fmt"
	"log/slog"

	"github.com/dshills/godocsearch/pkg/types"
)

// Builder compiles documentation entries into a search index artifact
type Builder struct {
	snippetLimit int
	logger       *slog.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithSnippetLimit sets the description snippet budget in characters
func WithSnippetLimit(limit int) Option {
	return func(b *Builder) {
		if limit > 0 {
			b.snippetLimit = limit
		}
	}
}

// WithLogger sets the logger used for build summaries
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder with default settings
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		snippetLimit: DefaultSnippetLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build derives n-grams for every entry, assigns bit positions and weights,
// and emits one index record per entry in input order.
func (b *Builder) Build(entries []types.DocEntry) (*Artifact, error) {
	sets := make([][]string, len(entries))
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entries[i].CanonicalName, err)
		}
		sets[i] = DeriveNgrams(entries[i].CanonicalName)
	}

	table := CompileNgramTable(sets)
	artifact := &Artifact{
		Ngrams:  table,
		Weights: ComputeWeights(table),
		Entries: make([]IndexEntry, len(entries)),
	}

	for i := range entries {
		artifact.Entries[i] = b.indexEntry(&entries[i], sets[i], table)
	}

	stats := artifact.Stats()
	b.logger.Debug("search index compiled",
		"entries", stats.Entries,
		"ngrams", stats.Ngrams,
		"fingerprint_bytes", stats.FingerprintSize,
	)

	return artifact, nil
}

func (b *Builder) indexEntry(entry *types.DocEntry, ngrams []string, table map[string]int) IndexEntry {
	owner := entry.OwnerName
	if owner == "" {
		owner = entry.CanonicalName
	}

	return IndexEntry{
		Fingerprint:        GenerateFingerprint(ngrams, table),
		TiebreakerBonus:    ComputeTiebreakerBonus(owner, entry.MemberName(), entry.DescriptionHTML),
		Path:               entry.Path,
		OwnerName:          owner,
		MemberLabel:        entry.MemberLabel,
		DescriptionSnippet: TruncateDescription(entry.DescriptionHTML, b.snippetLimit),
	}
}
