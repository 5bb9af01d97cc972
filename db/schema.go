// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	profile_url TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	relationship TEXT NOT NULL DEFAULT 'peer',
	frequency TEXT NOT NULL DEFAULT 'none',
	auto_sync INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'idle',
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	provenance TEXT NOT NULL DEFAULT 'manual',
	auto_logged INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);

CREATE TABLE IF NOT EXISTS suggestions (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	detected_at DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX IF NOT EXISTS idx_suggestions_contact ON suggestions(contact_id);
CREATE INDEX IF NOT EXISTS idx_suggestions_status ON suggestions(status);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
