// Package db provides SQLite storage for the bills page visit history.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Page visit history
-- One row per bills page load and the state it ended in
CREATE TABLE IF NOT EXISTS page_visits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL,
    user_type TEXT NOT NULL,           -- 'Employee' or 'Admin'
    path TEXT NOT NULL,
    outcome TEXT NOT NULL,             -- 'loaded', 'fetch_failed' or 'loading'
    row_count INTEGER NOT NULL DEFAULT 0,
    format_errors INTEGER NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    visited_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_page_visits_email
    ON page_visits(email);

CREATE INDEX IF NOT EXISTS idx_page_visits_outcome
    ON page_visits(outcome);

-- Key-value metadata, e.g. when fixtures were last seeded
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
