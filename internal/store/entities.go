package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const entityColumns = `id, key, title, class, project, mention_count, body, created_at, updated_at`

func scanEntity(row interface{ Scan(...any) error }) (*Entity, error) {
	e := &Entity{}
	err := row.Scan(&e.ID, &e.Key, &e.Title, &e.Class, &e.Project,
		&e.MentionCount, &e.Body, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEntityByKey retrieves one entity by normalized identity key.
// Returns (nil, nil) when no record exists.
func (s *SQLiteStore) GetEntityByKey(ctx context.Context, key string) (*Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE key = ?`, key)
	e, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity %q: %w", key, err)
	}
	return e, nil
}

// UpsertEntity inserts a new entity or updates the mutable columns of an
// existing one (title, project, mention_count, body, updated_at). The key
// and created_at never change after first insert.
func (s *SQLiteStore) UpsertEntity(ctx context.Context, e *Entity) (int64, error) {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (key, title, class, project, mention_count, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title = excluded.title,
			project = excluded.project,
			mention_count = excluded.mention_count,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		e.Key, e.Title, e.Class, e.Project, e.MentionCount, e.Body, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("upserting entity %q: %w", e.Key, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM entities WHERE key = ?`, e.Key).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving entity id for %q: %w", e.Key, err)
	}
	e.ID = id
	return id, nil
}

// ListEntities returns entities, optionally filtered by class, in
// deterministic key order.
func (s *SQLiteStore) ListEntities(ctx context.Context, opts ListOpts) ([]*Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities`
	args := []any{}
	if opts.Class != "" {
		query += ` WHERE class = ?`
		args = append(args, opts.Class)
	}
	query += ` ORDER BY key`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var entities []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// SearchEntities matches titles and bodies with a case-insensitive
// substring search, ordered by mention count then key.
func (s *SQLiteStore) SearchEntities(ctx context.Context, query string, limit int) ([]*Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+` FROM entities
		WHERE title LIKE ? COLLATE NOCASE OR body LIKE ? COLLATE NOCASE
		ORDER BY mention_count DESC, key
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	defer rows.Close()

	var entities []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// DeleteEntity removes an entity and (via cascade) its provenance. This is
// the explicit curation path used by the prune stage; nothing else deletes.
func (s *SQLiteStore) DeleteEntity(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting entity %q: %w", key, err)
	}
	return nil
}

// AddProvenance records that sourceDoc contributed to an entity. The
// (entity, source) pair is unique; re-adding an existing reference is a
// no-op and reports added=false. Provenance never shrinks here.
func (s *SQLiteStore) AddProvenance(ctx context.Context, entityID int64, sourceDoc string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO provenance (entity_id, source_doc, added_at) VALUES (?, ?, ?)`,
		entityID, sourceDoc, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("adding provenance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking provenance insert: %w", err)
	}
	return n > 0, nil
}

// ListProvenance returns an entity's source documents in insertion order.
func (s *SQLiteStore) ListProvenance(ctx context.Context, entityID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_doc FROM provenance WHERE entity_id = ? ORDER BY added_at, source_doc`,
		entityID)
	if err != nil {
		return nil, fmt.Errorf("listing provenance: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		sources = append(sources, doc)
	}
	return sources, rows.Err()
}
