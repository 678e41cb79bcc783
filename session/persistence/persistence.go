package persistence

import (
	"github.com/pkg/errors"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// ErrNoRecord is returned by Read when nothing has been persisted yet.
var ErrNoRecord = errors.New("no persisted session record")

// Record is the durable subset of the session. Transient fields
// (loading, error, hydration) are deliberately absent; they are
// per-process state and must never survive a restart.
type Record struct {
	User            *users.User `json:"user"`
	AccessToken     string      `json:"token,omitempty"`
	RefreshToken    string      `json:"refresh,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

// Valid reports whether the record is internally consistent. A record
// claiming authentication without a user and token is the footprint of a
// torn write; callers treat it as absent.
func (r *Record) Valid() bool {
	if r == nil {
		return false
	}
	if r.IsAuthenticated && (r.User == nil || r.AccessToken == "") {
		return false
	}
	return true
}

// Adapter is the durable key/value contract the session store writes
// through. Implementations hold exactly one record and must make Write
// atomic enough that Read never observes a half-written record; where the
// medium cannot guarantee that, Read validates and fails open by
// returning ErrNoRecord.
type Adapter interface {
	// Write replaces the stored record.
	Write(record *Record) error

	// Read returns the stored record, or ErrNoRecord when absent.
	Read() (*Record, error)

	// Clear removes the stored record. Clearing an empty store is a no-op.
	Clear() error
}
