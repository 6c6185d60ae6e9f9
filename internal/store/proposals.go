package store

import (
	"context"
	"fmt"
	"time"
)

// AddProposal inserts a proposal record. Status defaults to pending_review.
func (s *SQLiteStore) AddProposal(ctx context.Context, p *Proposal) error {
	if p.Status == "" {
		p.Status = ProposalStatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, target_key, change_type, source_doc, confidence, rationale, evidence, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TargetKey, p.ChangeType, p.SourceDoc, p.Confidence,
		p.Rationale, p.Evidence, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting proposal %s: %w", p.ID, err)
	}
	return nil
}

// ListProposals returns proposals, newest first, optionally filtered by
// review status.
func (s *SQLiteStore) ListProposals(ctx context.Context, status string, limit int) ([]*Proposal, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, target_key, change_type, source_doc, confidence, rationale, evidence, status, created_at
	          FROM proposals`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		p := &Proposal{}
		if err := rows.Scan(&p.ID, &p.TargetKey, &p.ChangeType, &p.SourceDoc,
			&p.Confidence, &p.Rationale, &p.Evidence, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// CountProposals returns the total number of proposals ever created. Used
// to continue the human-readable numbering across runs.
func (s *SQLiteStore) CountProposals(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting proposals: %w", err)
	}
	return n, nil
}
