// ABOUTME: Interaction log database operations
// ABOUTME: Inserts advance the contact's last-contacted time inside the same transaction
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

const interactionColumns = `id, contact_id, kind, timestamp, notes, provenance, auto_logged, created_at`

// Timestamps are stored in UTC so that the text ordering SQLite applies to
// DATETIME columns matches chronological order.
const interactionOrder = `ORDER BY timestamp DESC, rowid ASC`

func scanInteraction(row rowScanner) (*models.Interaction, error) {
	var in models.Interaction
	err := row.Scan(
		&in.ID,
		&in.ContactID,
		&in.Kind,
		&in.Timestamp,
		&in.Notes,
		&in.Provenance,
		&in.AutoLogged,
		&in.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Store) queryInteractions(ctx context.Context, query string, args ...any) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func insertInteraction(ctx context.Context, tx *sql.Tx, in *models.Interaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (`+interactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ID.String(), in.ContactID.String(), string(in.Kind), in.Timestamp.UTC(), in.Notes,
		string(in.Provenance), in.AutoLogged, in.CreatedAt.UTC())
	if err != nil {
		return err
	}

	var last sql.NullTime
	err = tx.QueryRowContext(ctx, `SELECT last_contacted_at FROM contacts WHERE id = ?`, in.ContactID.String()).Scan(&last)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if last.Valid && !in.Timestamp.After(last.Time) {
		return nil
	}

	_, err = tx.ExecContext(ctx, `UPDATE contacts SET last_contacted_at = ? WHERE id = ?`,
		in.Timestamp.UTC(), in.ContactID.String())
	return err
}

func (s *Store) AddInteraction(ctx context.Context, in *models.Interaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertInteraction(ctx, tx, in); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteInteraction(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM interactions WHERE id = ?`, id.String())
	return err
}

func (s *Store) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	return s.queryInteractions(ctx, `SELECT `+interactionColumns+` FROM interactions `+interactionOrder)
}

func (s *Store) InteractionsForContact(ctx context.Context, contactID uuid.UUID) ([]models.Interaction, error) {
	return s.queryInteractions(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE contact_id = ? `+interactionOrder,
		contactID.String())
}

func (s *Store) RecentInteractions(ctx context.Context, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryInteractions(ctx,
		`SELECT `+interactionColumns+` FROM interactions `+interactionOrder+` LIMIT ?`, limit)
}
