// Package interactions keeps an audit trail of every USSD callback.
package interactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Interaction is one processed callback.
type Interaction struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id"`
	PhoneNumber string    `json:"phone_number"`
	StateBefore string    `json:"state_before"`
	StateAfter  string    `json:"state_after"`
	Input       string    `json:"input"`
	Reply       string    `json:"reply"`
	Terminal    bool      `json:"terminal"`
	Fault       bool      `json:"fault"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists interactions to PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore returns nil when db is nil so callers can treat logging as optional.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Record appends one interaction.
func (s *Store) Record(ctx context.Context, in Interaction) error {
	if s == nil || s.db == nil {
		return nil
	}
	if in.SessionID == "" {
		return errors.New("interactions: session id required")
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ussd_interactions (
			id, session_id, phone_number, state_before, state_after,
			input, reply, terminal, fault, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, in.ID, in.SessionID, in.PhoneNumber, in.StateBefore, in.StateAfter,
		in.Input, in.Reply, in.Terminal, in.Fault, in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("interactions: insert: %w", err)
	}
	return nil
}

// ListBySession returns the most recent interactions of a session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string, limit int) ([]Interaction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, phone_number, state_before, state_after,
		       input, reply, terminal, fault, created_at
		FROM (
			SELECT * FROM ussd_interactions
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("interactions: list: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.ID, &in.SessionID, &in.PhoneNumber, &in.StateBefore, &in.StateAfter,
			&in.Input, &in.Reply, &in.Terminal, &in.Fault, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("interactions: scan: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interactions: rows: %w", err)
	}
	return out, nil
}
