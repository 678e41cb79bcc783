package adapterfakes

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
)

var _ persistence.Adapter = (*FakeAdapter)(nil)

// FakeAdapter is an in-memory persistence adapter for tests. Records
// round-trip through JSON so serialization bugs surface the same way
// they would against the real backends.
type FakeAdapter struct {
	data []byte
	lock sync.RWMutex

	WriteErr error // When set, Write fails with this error
	ReadErr  error // When set, Read fails with this error

	WriteCalls int
	ReadCalls  int
}

func New() *FakeAdapter {
	return &FakeAdapter{}
}

// Seed stores a record directly, bypassing error injection. Use it to
// arrange pre-existing persisted state before constructing a store.
func (fa *FakeAdapter) Seed(record *persistence.Record) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	fa.data = data
}

// SeedRaw stores arbitrary bytes, for simulating corrupt storage.
func (fa *FakeAdapter) SeedRaw(data []byte) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.data = append([]byte(nil), data...)
}

func (fa *FakeAdapter) Write(record *persistence.Record) error {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.WriteCalls++
	if fa.WriteErr != nil {
		return fa.WriteErr
	}
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[FakeAdapter.Write] marshal")
	}
	fa.data = data
	return nil
}

func (fa *FakeAdapter) Read() (*persistence.Record, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.ReadCalls++
	if fa.ReadErr != nil {
		return nil, fa.ReadErr
	}
	if fa.data == nil {
		return nil, persistence.ErrNoRecord
	}
	var record persistence.Record
	if err := json.Unmarshal(fa.data, &record); err != nil {
		return nil, persistence.ErrNoRecord
	}
	if !record.Valid() {
		return nil, persistence.ErrNoRecord
	}
	return &record, nil
}

func (fa *FakeAdapter) Clear() error {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.data = nil
	return nil
}

// Stored returns the current record as the next Read would see it.
func (fa *FakeAdapter) Stored() *persistence.Record {
	fa.lock.RLock()
	defer fa.lock.RUnlock()
	if fa.data == nil {
		return nil
	}
	var record persistence.Record
	if err := json.Unmarshal(fa.data, &record); err != nil {
		return nil
	}
	return &record
}
