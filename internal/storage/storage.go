package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/cadence/internal/storage/memory"
	"github.com/julianstephens/cadence/internal/storage/postgres"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

// MemoryDSN selects the in-process store
const MemoryDSN = ":memory:"

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Provider = (*memory.Store)(nil)

	_ Migrator = (*sqlite.Store)(nil)
	_ Migrator = (*postgres.Store)(nil)
)

// Migrator is implemented by providers backed by a versioned SQL schema
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

// Open picks a provider for a user-supplied dsn: ":memory:", a PostgreSQL
// URI/DSN, or a SQLite file path. PostgreSQL strings carrying a password are
// rejected; use the keyring or CADENCE_DB_CONNECTION for those.
func Open(dsn string) (Provider, error) {
	switch {
	case dsn == MemoryDSN:
		return memory.NewStore(), nil
	case postgres.IsConnString(dsn):
		if err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	default:
		path, err := ExpandPath(dsn)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// OpenSecret opens a PostgreSQL provider from a trusted secret source
// (keyring or environment), where an embedded password is expected.
func OpenSecret(connStr string) (Provider, error) {
	if !postgres.IsConnString(connStr) {
		return nil, fmt.Errorf("%w: stored connection string is not PostgreSQL", postgres.ErrInvalidConnectionString)
	}
	return postgres.New(connStr), nil
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
