// Package sqliteadapter persists the session record in a SQLite
// database. A single-row table keyed by a fixed id gives the same
// one-record contract as the file adapter, with the write atomicity
// coming from SQLite's transaction guarantees.
package sqliteadapter

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
)

const recordKey = "session"

const schema = `
CREATE TABLE IF NOT EXISTS session_record (
	key  TEXT PRIMARY KEY,
	data BLOB NOT NULL
);`

type SQLiteAdapter struct {
	db *sql.DB
}

var _ persistence.Adapter = (*SQLiteAdapter)(nil)

func New(path string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "[SQLiteAdapter.New] open")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[SQLiteAdapter.New] create table")
	}
	return &SQLiteAdapter{db: db}, nil
}

func (sa *SQLiteAdapter) Write(record *persistence.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[SQLiteAdapter.Write] marshal")
	}
	_, err = sa.db.Exec(
		`INSERT INTO session_record (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		recordKey, data,
	)
	return errors.Wrap(err, "[SQLiteAdapter.Write] upsert")
}

func (sa *SQLiteAdapter) Read() (*persistence.Record, error) {
	var data []byte
	err := sa.db.QueryRow(
		`SELECT data FROM session_record WHERE key = ?`, recordKey,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, persistence.ErrNoRecord
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SQLiteAdapter.Read] query")
	}

	var record persistence.Record
	if err := json.Unmarshal(data, &record); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable session row")
		return nil, persistence.ErrNoRecord
	}
	if !record.Valid() {
		log.Warn().Msg("discarding inconsistent session row")
		return nil, persistence.ErrNoRecord
	}
	return &record, nil
}

func (sa *SQLiteAdapter) Clear() error {
	_, err := sa.db.Exec(`DELETE FROM session_record WHERE key = ?`, recordKey)
	return errors.Wrap(err, "[SQLiteAdapter.Clear] delete")
}

// Close releases the underlying database handle.
func (sa *SQLiteAdapter) Close() error {
	return sa.db.Close()
}
