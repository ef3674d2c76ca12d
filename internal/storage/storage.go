package storage

import (
	"context"
	"time"

	"github.com/dshills/godocsearch/pkg/types"
)

// Storage is the catalog that stages documentation entries for one index build
type Storage interface {
	// Build operations
	CreateBuild(ctx context.Context, build *Build) error
	FinishBuild(ctx context.Context, build *Build) error
	GetBuild(ctx context.Context, id string) (*Build, error)
	LatestBuild(ctx context.Context) (*Build, error)

	// Entry operations
	StoreEntries(ctx context.Context, buildID string, entries []types.DocEntry) error
	ListEntries(ctx context.Context, buildID string) ([]types.DocEntry, error)
	CountEntries(ctx context.Context, buildID string) (map[types.EntryKind]int, error)

	// Reset drops every build and entry
	Reset(ctx context.Context) error

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	StoreEntries(ctx context.Context, buildID string, entries []types.DocEntry) error
}

// BuildStatus tracks the lifecycle of a build record
type BuildStatus string

const (
	BuildRunning   BuildStatus = "running"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
)

// Build records one run of the indexer
type Build struct {
	ID            string
	RootPath      string
	ModulePath    string
	Status        BuildStatus
	Packages      int
	Files         int
	Entries       int
	Ngrams        int
	ParseErrors   int
	ArtifactPath  string
	ArtifactBytes int64
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration returns how long the build ran. Zero while still running.
func (b *Build) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}
