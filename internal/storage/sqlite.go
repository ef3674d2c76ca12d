package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/godocsearch/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// InMemory is the catalog path for a database that lives only as long as the process
const InMemory = ":memory:"

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// One connection: an in-memory database is private to the connection that opened it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		dbPath = InMemory
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) StoreEntries(ctx context.Context, buildID string, entries []types.DocEntry) error {
	return storeEntriesWithQuerier(ctx, t.tx, buildID, entries)
}

// Build operations

func (s *SQLiteStorage) CreateBuild(ctx context.Context, build *Build) error {
	if build.ID == "" {
		build.ID = uuid.NewString()
	}
	if build.Status == "" {
		build.Status = BuildRunning
	}
	if build.StartedAt.IsZero() {
		build.StartedAt = time.Now()
	}

	query := `
		INSERT INTO builds (id, root_path, module_path, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		build.ID, build.RootPath, build.ModulePath, string(build.Status), build.StartedAt)
	if err != nil {
		if _, getErr := s.GetBuild(ctx, build.ID); getErr == nil {
			return fmt.Errorf("build %s: %w", build.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create build: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) FinishBuild(ctx context.Context, build *Build) error {
	if build.FinishedAt.IsZero() {
		build.FinishedAt = time.Now()
	}

	query := `
		UPDATE builds
		SET module_path = ?, status = ?, packages = ?, files = ?, entries = ?, ngrams = ?,
		    parse_errors = ?, artifact_path = ?, artifact_bytes = ?, error = ?, finished_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		build.ModulePath, string(build.Status), build.Packages, build.Files, build.Entries, build.Ngrams,
		build.ParseErrors, build.ArtifactPath, build.ArtifactBytes, build.Error, build.FinishedAt,
		build.ID)
	if err != nil {
		return fmt.Errorf("failed to finish build: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("build %s: %w", build.ID, ErrNotFound)
	}
	return nil
}

const buildColumns = `
	id, root_path, module_path, status, packages, files, entries, ngrams,
	parse_errors, artifact_path, artifact_bytes, error, started_at, finished_at
`

func scanBuild(row *sql.Row) (*Build, error) {
	var (
		build        Build
		status       string
		modulePath   sql.NullString
		artifactPath sql.NullString
		errText      sql.NullString
		finishedAt   sql.NullTime
	)
	err := row.Scan(
		&build.ID, &build.RootPath, &modulePath, &status, &build.Packages, &build.Files,
		&build.Entries, &build.Ngrams, &build.ParseErrors, &artifactPath, &build.ArtifactBytes,
		&errText, &build.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	build.Status = BuildStatus(status)
	build.ModulePath = modulePath.String
	build.ArtifactPath = artifactPath.String
	build.Error = errText.String
	if finishedAt.Valid {
		build.FinishedAt = finishedAt.Time
	}
	return &build, nil
}

func (s *SQLiteStorage) GetBuild(ctx context.Context, id string) (*Build, error) {
	query := `SELECT ` + buildColumns + ` FROM builds WHERE id = ?`
	return scanBuild(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStorage) LatestBuild(ctx context.Context) (*Build, error) {
	query := `SELECT ` + buildColumns + ` FROM builds ORDER BY started_at DESC, rowid DESC LIMIT 1`
	return scanBuild(s.db.QueryRowContext(ctx, query))
}

// Entry operations

// StoreEntries appends entries to a build in one transaction. Sequence numbers
// continue from whatever the build already holds.
func (s *SQLiteStorage) StoreEntries(ctx context.Context, buildID string, entries []types.DocEntry) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := tx.StoreEntries(ctx, buildID, entries); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func storeEntriesWithQuerier(ctx context.Context, q querier, buildID string, entries []types.DocEntry) error {
	var next int
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq) + 1, 0) FROM entries WHERE build_id = ?", buildID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read entry sequence: %w", err)
	}

	query := `
		INSERT INTO entries (build_id, seq, canonical_name, kind, path, description_html,
		                     owner_name, member_label, file, start_line, start_col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range entries {
		e := &entries[i]
		_, err := q.ExecContext(ctx, query,
			buildID, next+i, e.CanonicalName, string(e.Kind), e.Path, e.DescriptionHTML,
			e.OwnerName, e.MemberLabel, e.File, e.Start.Line, e.Start.Column)
		if err != nil {
			return fmt.Errorf("failed to store entry %s: %w", e.CanonicalName, err)
		}
	}
	return nil
}

// ListEntries returns a build's entries in the order they were stored
func (s *SQLiteStorage) ListEntries(ctx context.Context, buildID string) ([]types.DocEntry, error) {
	query := `
		SELECT canonical_name, kind, path, description_html, owner_name, member_label,
		       file, start_line, start_col
		FROM entries
		WHERE build_id = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []types.DocEntry
	for rows.Next() {
		var (
			e           types.DocEntry
			kind        string
			description sql.NullString
			label       sql.NullString
			file        sql.NullString
		)
		if err := rows.Scan(&e.CanonicalName, &kind, &e.Path, &description, &e.OwnerName,
			&label, &file, &e.Start.Line, &e.Start.Column); err != nil {
			return nil, err
		}
		e.Kind = types.EntryKind(kind)
		e.DescriptionHTML = description.String
		e.MemberLabel = label.String
		e.File = file.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries tallies a build's entries by kind
func (s *SQLiteStorage) CountEntries(ctx context.Context, buildID string) (map[types.EntryKind]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM entries WHERE build_id = ? GROUP BY kind", buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[types.EntryKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[types.EntryKind(kind)] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStorage) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, stmt := range []string{"DELETE FROM entries", "DELETE FROM builds"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to reset catalog: %w", err)
		}
	}
	return tx.Commit()
}
