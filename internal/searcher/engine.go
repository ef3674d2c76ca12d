package searcher

import (
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/pkg/types"
)

var (
	// ErrNoIndex is returned when an engine is created without an artifact
	ErrNoIndex = errors.New("search index is required")

	// ErrNoScheduler is returned when an engine is created without a scheduler
	ErrNoScheduler = errors.New("scheduler is required")
)

// State is the lifecycle stage of a query
type State int

const (
	StateIdle State = iota
	StateCompiling
	StateScanning
	StateDone
	StateSuperseded
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCompiling:
		return "compiling"
	case StateScanning:
		return "scanning"
	case StateDone:
		return "done"
	case StateSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Results is one result-ready notification. Partial snapshots are delivered
// after every chunk except the last; the last delivery has Final set.
type Results struct {
	Query      string
	Generation uint64
	Entries    []types.RankedEntry
	Final      bool
	Scanned    int // Entries scored so far
	Total      int // Entries in the index
}

// ResultFunc receives result notifications on the scheduler's goroutine
type ResultFunc func(Results)

// Config holds engine tuning parameters
type Config struct {
	ChunkSize int // Entries scored per scheduled task
	Capacity  int // Maximum results per query
	CacheSize int // Compiled queries kept in the LRU cache
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		ChunkSize: 500,
		Capacity:  DefaultCapacity,
		CacheSize: 256,
	}
}

// Stats counts query outcomes over the engine's lifetime
type Stats struct {
	Searches   int
	Completed  int
	Superseded int
	CacheHits  int
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig overrides the default configuration. Zero fields keep their
// defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.ChunkSize > 0 {
			e.config.ChunkSize = cfg.ChunkSize
		}
		if cfg.Capacity > 0 {
			e.config.Capacity = cfg.Capacity
		}
		if cfg.CacheSize > 0 {
			e.config.CacheSize = cfg.CacheSize
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// scan is the resumable state of one query's pass over the index
type scan struct {
	generation uint64
	query      string
	positions  []int
	top        *topK
	next       int
	state      State
}

// Engine ranks index entries against free-text queries. It is not safe for
// concurrent use: Search and every scheduled task must run on one goroutine.
// Use one Engine per search box; the artifact itself may be shared.
type Engine struct {
	index     *searchindex.Artifact
	scheduler Scheduler
	onResult  ResultFunc
	config    Config
	cache     *lru.Cache[string, []int]
	logger    *slog.Logger

	generation uint64
	current    *scan
	state      State
	stats      Stats
}

// NewEngine creates an Engine over a loaded artifact
func NewEngine(index *searchindex.Artifact, scheduler Scheduler, onResult ResultFunc, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrNoIndex
	}
	if scheduler == nil {
		return nil, ErrNoScheduler
	}
	if onResult == nil {
		onResult = func(Results) {}
	}

	e := &Engine{
		index:     index,
		scheduler: scheduler,
		onResult:  onResult,
		config:    DefaultConfig(),
		logger:    slog.Default(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}

	cache, err := lru.New[string, []int](e.config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	e.cache = cache

	return e, nil
}

// State returns the lifecycle stage of the most recent query
func (e *Engine) State() State {
	return e.state
}

// Generation returns the number of queries started so far
func (e *Engine) Generation() uint64 {
	return e.generation
}

// Stats returns outcome counters
func (e *Engine) Stats() Stats {
	return e.stats
}

// Search starts ranking the index against query and returns immediately.
// Any scan still running for an earlier query is abandoned without
// delivering further results. Queries with no known n-grams complete
// synchronously with an empty final result.
func (e *Engine) Search(query string) {
	e.generation++
	e.stats.Searches++

	if e.current != nil && e.current.state == StateScanning {
		e.current.state = StateSuperseded
		e.stats.Superseded++
		e.logger.Debug("scan superseded",
			"query", e.current.query,
			"scanned", e.current.next,
		)
	}

	e.state = StateCompiling
	s := &scan{
		generation: e.generation,
		query:      query,
		positions:  e.compile(query),
		state:      StateCompiling,
	}
	e.current = s

	if len(s.positions) == 0 {
		s.top = newTopK(0)
		e.finish(s)
		return
	}

	s.top = newTopK(e.config.Capacity)
	s.state = StateScanning
	e.state = StateScanning
	e.scheduler.Schedule(func() { e.step(s) })
}

func (e *Engine) compile(query string) []int {
	if positions, ok := e.cache.Get(query); ok {
		e.stats.CacheHits++
		return positions
	}
	positions := CompileQuery(query, e.index.Ngrams)
	e.cache.Add(query, positions)
	return positions
}

// step scores one chunk and either reschedules itself or finishes
func (e *Engine) step(s *scan) {
	if s.generation != e.generation {
		return
	}

	total := len(e.index.Entries)
	end := min(s.next+e.config.ChunkSize, total)
	for i := s.next; i < end; i++ {
		s.top.offer(i, Score(&e.index.Entries[i], s.positions, e.index.Weights))
	}
	s.next = end

	if end >= total {
		e.finish(s)
		return
	}

	e.onResult(e.snapshot(s, false))

	// The callback may have started a newer query.
	if s.generation != e.generation {
		return
	}
	e.scheduler.Schedule(func() { e.step(s) })
}

func (e *Engine) finish(s *scan) {
	s.state = StateDone
	e.state = StateDone
	e.stats.Completed++

	e.onResult(e.snapshot(s, true))

	if s.generation == e.generation {
		e.state = StateIdle
	}
}

func (e *Engine) snapshot(s *scan, final bool) Results {
	ranked := s.top.ranked()
	entries := make([]types.RankedEntry, len(ranked))
	for i, r := range ranked {
		ie := &e.index.Entries[r.index]
		entries[i] = types.RankedEntry{
			Index:              r.index,
			Rank:               i + 1,
			Score:              r.score,
			Path:               ie.Path,
			OwnerName:          ie.OwnerName,
			MemberLabel:        ie.MemberLabel,
			DescriptionSnippet: ie.DescriptionSnippet,
		}
	}

	return Results{
		Query:      s.query,
		Generation: s.generation,
		Entries:    entries,
		Final:      final,
		Scanned:    s.next,
		Total:      len(e.index.Entries),
	}
}

// Query runs a complete search on a private queue and returns the final
// ranking. It is the batch form of Engine.Search.
func Query(index *searchindex.Artifact, text string, opts ...Option) ([]types.RankedEntry, error) {
	var final []types.RankedEntry
	queue := &QueueScheduler{}
	engine, err := NewEngine(index, queue, func(r Results) {
		if r.Final {
			final = r.Entries
		}
	}, opts...)
	if err != nil {
		return nil, err
	}

	engine.Search(text)
	queue.Drain()
	return final, nil
}
