// Package fileadapter persists the session record as a JSON file.
// Writes go to a temp file in the same directory followed by a rename,
// so a crash mid-write leaves either the old record or the new one,
// never a torn mix.
package fileadapter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
)

type FileAdapter struct {
	path string
	lock sync.Mutex
}

var _ persistence.Adapter = (*FileAdapter)(nil)

func New(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (fa *FileAdapter) Write(record *persistence.Record) error {
	fa.lock.Lock()
	defer fa.lock.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[FileAdapter.Write] marshal")
	}

	dir := filepath.Dir(fa.path)
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileAdapter.Write] create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileAdapter.Write] write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileAdapter.Write] close temp file")
	}

	if err := os.Rename(tmpName, fa.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileAdapter.Write] rename")
	}
	return nil
}

func (fa *FileAdapter) Read() (*persistence.Record, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()

	data, err := os.ReadFile(fa.path)
	if os.IsNotExist(err) {
		return nil, persistence.ErrNoRecord
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileAdapter.Read] read file")
	}

	var record persistence.Record
	if err := json.Unmarshal(data, &record); err != nil {
		// Corrupt file: fail open to the unauthenticated state.
		log.Warn().Err(err).Str("path", fa.path).Msg("discarding unreadable session file")
		return nil, persistence.ErrNoRecord
	}
	if !record.Valid() {
		log.Warn().Str("path", fa.path).Msg("discarding inconsistent session record")
		return nil, persistence.ErrNoRecord
	}
	return &record, nil
}

func (fa *FileAdapter) Clear() error {
	fa.lock.Lock()
	defer fa.lock.Unlock()

	if err := os.Remove(fa.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileAdapter.Clear] remove")
	}
	return nil
}
