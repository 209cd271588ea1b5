package kiosk

import (
	"errors"
	"sync"
	"time"

	"kiosk-signage/internal/rotation"
)

// Repository defines the concurrency-safe contract for display session
// state.
type Repository interface {
	// Create stores a new session. It fails with ErrSessionExists if the id
	// is taken.
	Create(id SessionID, rot *rotation.Session, now time.Time) error

	// Touch marks the session as seen at now and returns its rotation state.
	// ok is false if the session does not exist.
	Touch(id SessionID, now time.Time) (rot *rotation.Session, ok bool)

	// End removes a session. Ending an unknown session is a no-op; removed
	// reports whether anything was deleted.
	End(id SessionID) (removed bool)

	// PruneIdle removes sessions last seen before cutoff and returns how many
	// were removed.
	PruneIdle(cutoff time.Time) int

	// ActiveSessionCount returns the number of sessions held. Used for
	// metrics.
	ActiveSessionCount() int
}

var (
	// ErrSessionNotFound is returned for an unknown or evicted session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session with a taken id.
	ErrSessionExists = errors.New("session already exists")
)

// InMemoryRepository is a concurrency-safe in-memory implementation of
// Repository backed by a Store.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// Create implements Repository.Create.
func (r *InMemoryRepository) Create(id SessionID, rot *rotation.Session, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store.GetSession(id); exists {
		return ErrSessionExists
	}
	r.store.SetSession(&SessionState{
		ID:       id,
		Rotation: rot,
		Created:  now,
		LastSeen: now,
	})
	return nil
}

// Touch implements Repository.Touch.
func (r *InMemoryRepository) Touch(id SessionID, now time.Time) (*rotation.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.store.GetSession(id)
	if !ok {
		return nil, false
	}
	if now.After(st.LastSeen) {
		st.LastSeen = now
	}
	return st.Rotation, true
}

// End implements Repository.End.
func (r *InMemoryRepository) End(id SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store.GetSession(id); !ok {
		return false
	}
	r.store.DeleteSession(id)
	return true
}

// PruneIdle implements Repository.PruneIdle.
func (r *InMemoryRepository) PruneIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.store.ListSessionIDs() {
		if st, ok := r.store.GetSession(id); ok && st.LastSeen.Before(cutoff) {
			r.store.DeleteSession(id)
			n++
		}
	}
	return n
}

// ActiveSessionCount implements Repository.ActiveSessionCount.
func (r *InMemoryRepository) ActiveSessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store.ListSessionIDs())
}
