// Package session owns the single source of truth for "who is logged
// in". A Store coordinates rehydration from persisted storage, the
// asynchronous login/logout sequence, and change notification for route
// guards, while keeping one invariant at all times: IsAuthenticated is
// true exactly when a user and an access token are both present.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// ErrLoginInFlight is returned when Login is called while a previous
// login attempt has not finished. It marks a programming-contract
// violation, not a user-facing failure, so it is never written into the
// session's Error field.
var ErrLoginInFlight = errors.New("a login attempt is already in flight")

// State is an immutable snapshot of the session. Guards and handlers
// read snapshots; only the Store mutates.
type State struct {
	User            *users.User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	IsHydrated      bool
}

// Store coordinates the session lifecycle. Construct exactly one per
// process with New and pass it to whatever needs it; there is no ambient
// global instance.
type Store struct {
	lock        sync.Mutex
	state       State
	adapter     persistence.Adapter
	client      apiclient.Client
	nowTime     func() time.Time
	attemptID   string // non-empty while a login is in flight
	subscribers map[int]chan struct{}
	nextSubID   int
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New builds the Store and performs the one-shot rehydration read before
// returning, so IsHydrated is already true for every caller that can
// observe the store. Rehydration failures of any kind degrade to the
// unauthenticated state; they never surface as errors.
func New(adapter persistence.Adapter, client apiclient.Client, options ...StoreOption) (*Store, error) {
	if adapter == nil {
		return nil, errors.New("[session.New] persistence adapter is required")
	}
	if client == nil {
		return nil, errors.New("[session.New] api client is required")
	}

	store := &Store{
		adapter:     adapter,
		client:      client,
		nowTime:     time.Now,
		subscribers: make(map[int]chan struct{}),
	}

	for _, opt := range options {
		opt(store)
	}

	store.rehydrate()
	return store, nil
}

// rehydrate restores the durable subset from storage. Absent, corrupt or
// expired records all leave the session empty; IsHydrated flips to true
// in every case, exactly once, and never reverts.
func (s *Store) rehydrate() {
	s.lock.Lock()
	defer s.lock.Unlock()

	record, err := s.adapter.Read()
	switch {
	case errors.Is(err, persistence.ErrNoRecord):
		// Fresh process, nothing to restore.
	case err != nil:
		log.Warn().Err(err).Msg("session rehydration failed, starting unauthenticated")
	case !record.Valid():
		log.Warn().Msg("persisted session inconsistent, starting unauthenticated")
	case tokenExpired(record.AccessToken, s.nowTime()):
		log.Debug().Msg("persisted access token expired, starting unauthenticated")
	case record.IsAuthenticated && record.User != nil && record.AccessToken != "":
		s.state.User = record.User
		s.state.AccessToken = record.AccessToken
		s.state.RefreshToken = record.RefreshToken
		s.state.IsAuthenticated = true
	default:
		// A record that never finished a login restores to logged out.
	}

	s.state.IsHydrated = true
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Subscribe registers for change notifications. The returned channel
// receives a value after every state mutation; notifications coalesce
// rather than queue, so a slow subscriber sees at least one notification
// per burst and never blocks the store. The second return value
// unsubscribes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subscribers[id] = ch

	cancel := func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.subscribers, id)
	}
	return ch, cancel
}

// notifyLocked signals every subscriber. Callers must hold s.lock.
func (s *Store) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Login runs one authentication attempt against the backend. It returns
// whether the attempt succeeded; every expected failure (credentials,
// transport, malformed response) lands in the session's Error field
// rather than escaping to the caller. The only error return is
// ErrLoginInFlight, raised when an attempt is already running.
func (s *Store) Login(ctx context.Context, username, password string) (bool, error) {
	s.lock.Lock()
	if s.attemptID != "" {
		s.lock.Unlock()
		log.Debug().Msg("rejecting re-entrant login attempt")
		return false, ErrLoginInFlight
	}
	attemptID := uuid.New().String()
	s.attemptID = attemptID
	s.state.IsLoading = true
	s.state.Error = ""
	s.notifyLocked()
	s.lock.Unlock()

	// Network I/O happens outside the lock; the attempt ID decides
	// afterwards whether the result still applies.
	result, err := s.client.Login(ctx, username, password)

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.attemptID != attemptID {
		// Logout (or invalidation) won the race; this result is stale
		// and must not resurrect a session that was reset meanwhile.
		log.Debug().Str("username", username).Msg("discarding stale login result")
		return false, nil
	}
	s.attemptID = ""
	s.state.IsLoading = false
	defer s.notifyLocked()

	if err != nil || result == nil {
		log.Warn().Err(err).Msg("login failed")
		s.state.Error = "login failed, please try again"
		return false, nil
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "login failed"
		}
		s.state.Error = message
		return false, nil
	}
	if result.User == nil || result.AccessToken == "" {
		log.Warn().Msg("login response missing user or token")
		s.state.Error = "unexpected response from the server"
		return false, nil
	}

	s.state.User = result.User
	s.state.AccessToken = result.AccessToken
	s.state.RefreshToken = result.RefreshToken
	s.state.IsAuthenticated = true
	s.state.Error = ""
	s.persistLocked()

	log.Info().
		Str("username", result.User.Username).
		Str("role", string(result.User.Role)).
		Msg("logged in")
	return true, nil
}

// Logout resets the session unconditionally. The backend call is best
// effort: its outcome is ignored for local state, which is already reset
// and persisted before the network is touched.
func (s *Store) Logout(ctx context.Context) {
	s.lock.Lock()
	accessToken := s.state.AccessToken
	s.attemptID = "" // invalidates any login still in flight
	s.state.User = nil
	s.state.AccessToken = ""
	s.state.RefreshToken = ""
	s.state.IsAuthenticated = false
	s.state.IsLoading = false
	s.state.Error = ""
	if err := s.adapter.Clear(); err != nil {
		log.Warn().Err(err).Msg("clearing persisted session failed")
	}
	s.notifyLocked()
	s.lock.Unlock()

	if accessToken == "" {
		return
	}
	if err := s.client.Logout(ctx, accessToken); err != nil {
		log.Debug().Err(err).Msg("backend logout failed, session reset locally anyway")
	}
}

// SetUser replaces the identity snapshot without touching tokens, for
// flows that refresh the profile outside a full login. Clearing the user
// while tokens remain drops IsAuthenticated to keep the session
// consistent.
func (s *Store) SetUser(user *users.User) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.state.User = user
	s.state.IsAuthenticated = user != nil && s.state.AccessToken != ""
	s.persistLocked()
	s.notifyLocked()
}

// SetError sets the user-visible error message.
func (s *Store) SetError(message string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.state.Error = message
	s.notifyLocked()
}

// persistLocked writes the durable subset through the adapter. A storage
// failure is logged and otherwise ignored: the in-memory session stays
// authoritative for this process, it just will not survive a restart.
// Callers must hold s.lock.
func (s *Store) persistLocked() {
	record := &persistence.Record{
		User:            s.state.User,
		AccessToken:     s.state.AccessToken,
		RefreshToken:    s.state.RefreshToken,
		IsAuthenticated: s.state.IsAuthenticated,
	}
	if err := s.adapter.Write(record); err != nil {
		log.Warn().Err(err).Msg("persisting session failed")
	}
}
