// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD, sync status updates and cascading deletes
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

const contactColumns = `id, name, company, role, email, profile_url, notes, relationship, frequency,
	auto_sync, sync_status, last_contacted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var frequency string
	var lastContacted sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Company,
		&c.Role,
		&c.Email,
		&c.ProfileURL,
		&c.Notes,
		&c.Relationship,
		&frequency,
		&c.AutoSync,
		&c.SyncStatus,
		&lastContacted,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Frequency, err = models.ParseFrequency(frequency)
	if err != nil {
		return nil, fmt.Errorf("contact %s: %w", c.ID, err)
	}
	if lastContacted.Valid {
		t := lastContacted.Time
		c.LastContactedAt = &t
	}
	return &c, nil
}

func (s *Store) CreateContact(ctx context.Context, c *models.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.Name, c.Company, c.Role, c.Email, c.ProfileURL, c.Notes,
		string(c.Relationship), c.Frequency.String(), c.AutoSync, string(c.SyncStatus),
		nullTime(c.LastContactedAt), c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id.String())
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY LOWER(name), rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *Store) UpdateContact(ctx context.Context, c *models.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, company = ?, role = ?, email = ?, profile_url = ?, notes = ?,
			relationship = ?, frequency = ?, auto_sync = ?, sync_status = ?,
			last_contacted_at = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Company, c.Role, c.Email, c.ProfileURL, c.Notes,
		string(c.Relationship), c.Frequency.String(), c.AutoSync, string(c.SyncStatus),
		nullTime(c.LastContactedAt), c.UpdatedAt.UTC(), c.ID.String())
	return err
}

// DeleteContact removes the contact, its interactions and its suggestions in
// one transaction.
func (s *Store) DeleteContact(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM interactions WHERE contact_id = ?`,
		`DELETE FROM suggestions WHERE contact_id = ?`,
		`DELETE FROM contacts WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) SetSyncStatus(ctx context.Context, ids []uuid.UUID, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(status))
	for _, id := range ids {
		args = append(args, id.String())
	}
	_, err := s.db.ExecContext(ctx, `UPDATE contacts SET sync_status = ? WHERE id IN (`+placeholders+`)`, args...)
	return err
}
