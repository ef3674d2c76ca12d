package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/godocsearch/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	storage, err := NewSQLiteStorage(InMemory)
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func sampleEntries() []types.DocEntry {
	return []types.DocEntry{
		{
			CanonicalName:   "example.com/shop",
			Kind:            types.KindModule,
			Path:            "packages/example.com/shop.html",
			DescriptionHTML: "<p>Package shop models a storefront.",
			OwnerName:       "example.com/shop",
			File:            "doc.go",
			Start:           types.Position{Line: 3, Column: 1},
		},
		{
			CanonicalName: "example.com/shop::Cart",
			Kind:          types.KindModule,
			Path:          "types/example.com/shop/Cart.html",
			OwnerName:     "example.com/shop::Cart",
			File:          "cart.go",
			Start:         types.Position{Line: 10, Column: 6},
		},
		{
			CanonicalName: "example.com/shop::Cart#Add",
			Kind:          types.KindMethod,
			Path:          "types/example.com/shop/Cart.html#method-i-Add",
			OwnerName:     "example.com/shop::Cart",
			MemberLabel:   "#Add(item Item)",
			File:          "cart.go",
			Start:         types.Position{Line: 20, Column: 1},
		},
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)

	version, err := SchemaVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version.String())
}

func TestNewSQLiteStorage_EmptyPathIsMemory(t *testing.T) {
	storage, err := NewSQLiteStorage("")
	require.NoError(t, err)
	assert.NoError(t, storage.Close())
}

func TestNewSQLiteStorage_FileReopen(t *testing.T) {
	path := t.TempDir() + "/catalog.db"

	first, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Migrations are not re-applied on an existing file
	second, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestCreateBuild(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src/shop", ModulePath: "example.com/shop"}
	require.NoError(t, storage.CreateBuild(ctx, build))

	assert.NotEmpty(t, build.ID)
	assert.Equal(t, BuildRunning, build.Status)
	assert.False(t, build.StartedAt.IsZero())

	got, err := storage.GetBuild(ctx, build.ID)
	require.NoError(t, err)
	assert.Equal(t, "/src/shop", got.RootPath)
	assert.Equal(t, "example.com/shop", got.ModulePath)
	assert.Equal(t, BuildRunning, got.Status)
	assert.True(t, got.FinishedAt.IsZero())
	assert.Zero(t, got.Duration())

	duplicate := &Build{ID: build.ID, RootPath: "/other"}
	err = storage.CreateBuild(ctx, duplicate)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGetBuild_NotFound(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.GetBuild(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = storage.LatestBuild(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinishBuild(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src/shop", StartedAt: time.Now().Add(-time.Second)}
	require.NoError(t, storage.CreateBuild(ctx, build))

	build.Status = BuildSucceeded
	build.Packages = 2
	build.Files = 5
	build.Entries = 40
	build.Ngrams = 120
	build.ParseErrors = 1
	build.ArtifactPath = "/out/search_index.js"
	build.ArtifactBytes = 4096
	require.NoError(t, storage.FinishBuild(ctx, build))

	got, err := storage.GetBuild(ctx, build.ID)
	require.NoError(t, err)
	assert.Equal(t, BuildSucceeded, got.Status)
	assert.Equal(t, 2, got.Packages)
	assert.Equal(t, 5, got.Files)
	assert.Equal(t, 40, got.Entries)
	assert.Equal(t, 120, got.Ngrams)
	assert.Equal(t, 1, got.ParseErrors)
	assert.Equal(t, "/out/search_index.js", got.ArtifactPath)
	assert.Equal(t, int64(4096), got.ArtifactBytes)
	assert.False(t, got.FinishedAt.IsZero())
	assert.Greater(t, got.Duration(), time.Duration(0))

	missing := &Build{ID: "nope", Status: BuildFailed}
	assert.ErrorIs(t, storage.FinishBuild(ctx, missing), ErrNotFound)
}

func TestFinishBuild_Failed(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src"}
	require.NoError(t, storage.CreateBuild(ctx, build))

	build.Status = BuildFailed
	build.Error = "no Go packages found"
	require.NoError(t, storage.FinishBuild(ctx, build))

	got, err := storage.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, BuildFailed, got.Status)
	assert.Equal(t, "no Go packages found", got.Error)
}

func TestLatestBuild(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	base := time.Now()
	var last *Build
	for i := 0; i < 3; i++ {
		last = &Build{RootPath: fmt.Sprintf("/src/%d", i), StartedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, storage.CreateBuild(ctx, last))
	}

	got, err := storage.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.ID)
}

func TestStoreEntries_ListInOrder(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src/shop"}
	require.NoError(t, storage.CreateBuild(ctx, build))

	entries := sampleEntries()
	require.NoError(t, storage.StoreEntries(ctx, build.ID, entries[:1]))
	require.NoError(t, storage.StoreEntries(ctx, build.ID, entries[1:]))

	got, err := storage.ListEntries(ctx, build.ID)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestStoreEntries_UnknownBuild(t *testing.T) {
	storage := setupTestDB(t)

	err := storage.StoreEntries(context.Background(), "missing", sampleEntries())
	assert.Error(t, err)

	got, err := storage.ListEntries(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountEntries(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src/shop"}
	require.NoError(t, storage.CreateBuild(ctx, build))
	require.NoError(t, storage.StoreEntries(ctx, build.ID, sampleEntries()))

	counts, err := storage.CountEntries(ctx, build.ID)
	require.NoError(t, err)
	assert.Equal(t, map[types.EntryKind]int{
		types.KindModule: 2,
		types.KindMethod: 1,
	}, counts)
}

func TestBuildsAreIsolated(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	a := &Build{RootPath: "/a"}
	b := &Build{RootPath: "/b"}
	require.NoError(t, storage.CreateBuild(ctx, a))
	require.NoError(t, storage.CreateBuild(ctx, b))

	entries := sampleEntries()
	require.NoError(t, storage.StoreEntries(ctx, a.ID, entries))
	require.NoError(t, storage.StoreEntries(ctx, b.ID, entries[:1]))

	gotA, err := storage.ListEntries(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := storage.ListEntries(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, gotA, 3)
	assert.Len(t, gotB, 1)
}

func TestReset(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src"}
	require.NoError(t, storage.CreateBuild(ctx, build))
	require.NoError(t, storage.StoreEntries(ctx, build.ID, sampleEntries()))

	require.NoError(t, storage.Reset(ctx))

	_, err := storage.GetBuild(ctx, build.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := storage.ListEntries(ctx, build.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBeginTx_CommitRollback(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	build := &Build{RootPath: "/src"}
	require.NoError(t, storage.CreateBuild(ctx, build))

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.StoreEntries(ctx, build.ID, sampleEntries()))
	require.NoError(t, tx.Rollback())

	got, err := storage.ListEntries(ctx, build.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.StoreEntries(ctx, build.ID, sampleEntries()))
	require.NoError(t, tx.Commit())

	got, err = storage.ListEntries(ctx, build.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
