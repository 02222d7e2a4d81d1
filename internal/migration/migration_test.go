package migration

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/cadence/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func tableExists(t *testing.T, db *sqlx.DB, name string) bool {
	t.Helper()
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name))
	return count == 1
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}))

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, version)

	require.NoError(t, runner.SetVersion(ctx, 5))

	version, err = runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, version)
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"README.md":       "ignored",
	}))

	got, err := runner.ReadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct {
		version int
		name    string
	}{{1, "init"}, {2, "update"}, {3, "another"}}
	for i, w := range want {
		require.Equal(t, w.version, got[i].Version)
		require.Equal(t, w.name, got[i].Name)
	}
}

func TestReadMigrationFilesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "SELECT 1;"},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "SELECT 1;",
				"001_other.sql": "SELECT 1;",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), migrationFS(tt.files))
			_, err := runner.ReadMigrationFiles()
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql":  "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"002_posts.sql": "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);",
	}))

	var logs []string
	count, err := runner.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NotEmpty(t, logs)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, version)

	require.True(t, tableExists(t, db, "users"))
	require.True(t, tableExists(t, db, "posts"))
}

func TestApplyMigrationsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
	})
	runner := NewRunner(db, files)

	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	files["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);")}

	count, err = runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, version)
}

func TestApplyMigrationsNoOp(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
	}))

	_, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)

	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}))

	_, err := runner.ApplyMigrations(ctx, nil)
	require.Error(t, err)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	require.Zero(t, version)
	require.False(t, tableExists(t, db, "users"))
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
	}))

	require.NoError(t, runner.SetVersion(ctx, 10))

	require.ErrorContains(t, runner.ValidateVersion(ctx), "newer than supported")

	_, err := runner.ApplyMigrations(ctx, nil)
	require.Error(t, err)
}

func TestGetLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql":   "CREATE TABLE users (id INTEGER);",
		"003_posts.sql":  "CREATE TABLE posts (id INTEGER);",
		"002_update.sql": "ALTER TABLE users ADD COLUMN name TEXT;",
	}))

	latest, err := runner.GetLatestVersion()
	require.NoError(t, err)
	require.Equal(t, 3, latest)
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sub, err := fs.Sub(migrations.FS, "sqlite")
	require.NoError(t, err)

	runner := NewRunner(db, sub)
	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	require.Positive(t, count)

	for _, table := range []string{"habits", "habit_completions", "tasks"} {
		require.True(t, tableExists(t, db, table), table)
	}
	require.NoError(t, runner.ValidateVersion(ctx))
}
