// Package store provides the SQLite storage layer for the loom knowledge
// base.
//
// All durable knowledge lives in a single SQLite database file:
// - Knowledge entities keyed by normalized identity
// - Per-entity provenance (source documents, set semantics)
// - Human-reviewable change proposals
//
// The store assumes a single writer process. Concurrent multi-process
// access is out of scope.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.loom/loom.db"

// Entity classes.
const (
	ClassPerson     = "person"
	ClassDefinition = "definition"
	ClassTasks      = "task-collection"
	ClassStatus     = "status"
)

// Entity is a persistent knowledge record. The Key is a pure function of
// the display title (see merge.NormalizeKey) and is stable across merges.
type Entity struct {
	ID           int64
	Key          string
	Title        string
	Class        string
	Project      string
	MentionCount int
	Body         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Proposal is a derived, disposable suggestion to change an entity. It is
// never applied automatically; review happens outside this system.
type Proposal struct {
	ID         string
	TargetKey  string
	ChangeType string
	SourceDoc  string
	Confidence string
	Rationale  string
	Evidence   string
	Status     string
	CreatedAt  time.Time
}

// ProposalStatusPending is the review status every new proposal gets.
const ProposalStatusPending = "pending_review"

// ListOpts filters and bounds entity listings.
type ListOpts struct {
	Class string
	Limit int
}

// Stats holds observability counts for the store.
type Stats struct {
	EntityCount     int64
	ProvenanceCount int64
	ProposalCount   int64
	ByClass         map[string]int64
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store is the knowledge base persistence interface.
type Store interface {
	// Entities
	GetEntityByKey(ctx context.Context, key string) (*Entity, error)
	UpsertEntity(ctx context.Context, e *Entity) (int64, error)
	ListEntities(ctx context.Context, opts ListOpts) ([]*Entity, error)
	SearchEntities(ctx context.Context, query string, limit int) ([]*Entity, error)
	// DeleteEntity is the curation path; the merge engine never calls it.
	DeleteEntity(ctx context.Context, key string) error

	// Provenance (set semantics: duplicates are ignored, never stored)
	AddProvenance(ctx context.Context, entityID int64, sourceDoc string) (added bool, err error)
	ListProvenance(ctx context.Context, entityID int64) ([]string, error)

	// Proposals
	AddProposal(ctx context.Context, p *Proposal) error
	ListProposals(ctx context.Context, status string, limit int) ([]*Proposal, error)
	CountProposals(ctx context.Context) (int64, error)

	// Observability
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) a SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	dbPath = expandPath(dbPath)

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer; a connection pool only invites SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// GetDB exposes the underlying handle for tests and maintenance commands.
func (s *SQLiteStore) GetDB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// migrate creates all tables if they don't exist.
func (s *SQLiteStore) migrate() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS entities (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		key           TEXT NOT NULL UNIQUE,
		title         TEXT NOT NULL,
		class         TEXT NOT NULL,
		project       TEXT NOT NULL DEFAULT '',
		mention_count INTEGER NOT NULL DEFAULT 0,
		body          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entities_class ON entities(class);

	CREATE TABLE IF NOT EXISTS provenance (
		entity_id  INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		source_doc TEXT NOT NULL,
		added_at   TIMESTAMP NOT NULL,
		UNIQUE(entity_id, source_doc)
	);
	CREATE INDEX IF NOT EXISTS idx_provenance_entity ON provenance(entity_id);

	CREATE TABLE IF NOT EXISTS proposals (
		id          TEXT PRIMARY KEY,
		target_key  TEXT NOT NULL,
		change_type TEXT NOT NULL,
		source_doc  TEXT NOT NULL,
		confidence  TEXT NOT NULL,
		rationale   TEXT NOT NULL DEFAULT '',
		evidence    TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'pending_review',
		created_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("bootstrap DDL: %w", err)
	}
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	return nil
}

// Stats returns entity/provenance/proposal counts.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByClass: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&stats.EntityCount); err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM provenance`).Scan(&stats.ProvenanceCount); err != nil {
		return nil, fmt.Errorf("counting provenance: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&stats.ProposalCount); err != nil {
		return nil, fmt.Errorf("counting proposals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT class, COUNT(*) FROM entities GROUP BY class`)
	if err != nil {
		return nil, fmt.Errorf("counting by class: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var class string
		var count int64
		if err := rows.Scan(&class, &count); err != nil {
			return nil, err
		}
		stats.ByClass[class] = count
	}
	return stats, rows.Err()
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
