package memory

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	record    []byte
	expiresAt time.Time
}

// SessionRepository keeps session records in a map with per-entry expiry.
type SessionRepository struct {
	mu      sync.RWMutex
	entries map[string]sessionEntry
	now     func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		entries: make(map[string]sessionEntry),
		now:     time.Now,
	}
}

func (r *SessionRepository) Save(_ context.Context, sid string, record []byte, ttl time.Duration) error {
	entry := sessionEntry{record: append([]byte(nil), record...)}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}

	r.mu.Lock()
	r.entries[sid] = entry
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Load(_ context.Context, sid string) ([]byte, error) {
	r.mu.RLock()
	entry, ok := r.entries[sid]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if r.expired(entry) {
		r.evict(sid)
		return nil, nil
	}
	return append([]byte(nil), entry.record...), nil
}

// evict drops sid only if it is still expired under the write lock, so a
// Save that landed after the read is kept.
func (r *SessionRepository) evict(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[sid]; ok && r.expired(entry) {
		delete(r.entries, sid)
	}
}

func (r *SessionRepository) expired(entry sessionEntry) bool {
	return !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt)
}

func (r *SessionRepository) Delete(_ context.Context, sid string) error {
	r.mu.Lock()
	delete(r.entries, sid)
	r.mu.Unlock()
	return nil
}
