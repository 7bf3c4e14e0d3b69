package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - identifiers, stamps, semantics, logic_graph_refs
const currentSchemaVersion = 1

// Store is the SQLite-backed home of identifiers, stamps and semantic
// chronologies. Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db       *sql.DB
	registry *chronology.StampRegistry
	logger   *slog.Logger
	now      func() time.Time

	// Coordinates every write is stamped with.
	author, module, path ids.Nid

	// mu serializes writes that allocate nids or rewrite chronologies.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock sets the clock used to stamp writes. The default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically, then loads every
// persisted stamp into the store's StampRegistry.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		registry: chronology.NewStampRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "connect to database")
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "apply pragmas")
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "apply schema")
	}
	s.db = db

	if err := s.registerMetadata(); err != nil {
		db.Close()
		return nil, err
	}
	n, err := s.loadStamps(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Info("store opened", "path", path, "stamps", n, "schema_version", currentSchemaVersion)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Registry returns the stamp registry holding every persisted stamp.
func (s *Store) Registry() *chronology.StampRegistry {
	return s.registry
}

// registerMetadata makes sure every well-known metadata concept has a nid
// and resolves the default stamp coordinates.
func (s *Store) registerMetadata() error {
	if err := metadata.Register(s); err != nil {
		return errs.Wrap(err, "register metadata concepts")
	}
	for _, c := range []struct {
		dst *ids.Nid
		u   uuid.UUID
	}{
		{&s.author, metadata.DefaultAuthor},
		{&s.module, metadata.DefaultModule},
		{&s.path, metadata.DefaultPath},
	} {
		nid, err := s.NidForUUIDs(c.u)
		if err != nil {
			return err
		}
		*c.dst = nid
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errs.Wrapf(err, "execute %q", pragma)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errs.Wrap(err, "execute schema")
	}
	return runMigrations(db)
}

// runMigrations applies incremental schema migrations based on user_version.
// A database written by a newer schema is refused rather than downgraded.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errs.Wrap(err, "get user_version")
	}
	if version > currentSchemaVersion {
		return errs.Configurationf("database schema version %d is newer than supported version %d",
			version, currentSchemaVersion)
	}

	// Version 1 is the baseline; schema.sql creates it in full.

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return errs.Wrap(err, "set user_version")
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return errs.Wrapf(err, "query %s", name)
	}
	if value != expected {
		return errs.Newf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
