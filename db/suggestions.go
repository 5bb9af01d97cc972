// ABOUTME: Suggestion queue database operations
// ABOUTME: Accepting a suggestion inserts its interaction and deletes it in one transaction
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

const suggestionColumns = `id, contact_id, contact_name, kind, timestamp, notes, detected_at, status`

func scanSuggestion(row rowScanner) (*models.Suggestion, error) {
	var s models.Suggestion
	err := row.Scan(
		&s.ID,
		&s.ContactID,
		&s.ContactName,
		&s.Kind,
		&s.Timestamp,
		&s.Notes,
		&s.DetectedAt,
		&s.Status,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Store) querySuggestions(ctx context.Context, query string, args ...any) ([]models.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sug)
	}
	return out, rows.Err()
}

func (s *Store) AddSuggestion(ctx context.Context, sug *models.Suggestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestions (`+suggestionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sug.ID, sug.ContactID.String(), sug.ContactName, string(sug.Kind), sug.Timestamp.UTC(),
		sug.Notes, sug.DetectedAt.UTC(), string(sug.Status))
	return err
}

func (s *Store) GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = ?`, id)
	sug, err := scanSuggestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sug, nil
}

func (s *Store) UpdateSuggestion(ctx context.Context, sug *models.Suggestion) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE suggestions SET kind = ?, timestamp = ?, notes = ?, status = ?
		WHERE id = ?
	`, string(sug.Kind), sug.Timestamp.UTC(), sug.Notes, string(sug.Status), sug.ID)
	return err
}

func (s *Store) DeleteSuggestion(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = ?`, id)
	return err
}

func (s *Store) PendingSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	return s.querySuggestions(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE status = ? ORDER BY rowid`,
		string(models.SuggestionPending))
}

func (s *Store) SuggestionsForContact(ctx context.Context, contactID uuid.UUID) ([]models.Suggestion, error) {
	return s.querySuggestions(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE contact_id = ? AND status = ? ORDER BY rowid`,
		contactID.String(), string(models.SuggestionPending))
}

func (s *Store) AcceptSuggestion(ctx context.Context, id string, in *models.Interaction) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM suggestions WHERE id = ? AND status = ?`,
		id, string(models.SuggestionPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	// A contact deleted after detection takes its suggestion with it.
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE id = ?`, in.ContactID.String()).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, tx.Commit()
	}

	if err := insertInteraction(ctx, tx, in); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
