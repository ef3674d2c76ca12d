package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, storage.db))

	var count int
	require.NoError(t, storage.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, len(AllMigrations), count)
}

func TestRollbackMigration(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, RollbackMigration(ctx, storage.db))
	version, err := SchemaVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version.String())

	// Re-applying brings back the parse_errors column
	require.NoError(t, ApplyMigrations(ctx, storage.db))
	build := &Build{RootPath: "/src", ParseErrors: 2}
	require.NoError(t, storage.CreateBuild(ctx, build))
	require.NoError(t, storage.FinishBuild(ctx, build))

	require.NoError(t, RollbackMigration(ctx, storage.db))
	require.NoError(t, RollbackMigration(ctx, storage.db))
	version, err = SchemaVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", version.String())

	assert.Error(t, RollbackMigration(ctx, storage.db))
}
