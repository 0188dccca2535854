package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/scry-tutor/internal/domain"
)

// DefaultSessionTTL is how long an idle session stays in the registry.
const DefaultSessionTTL = 2 * time.Hour

// liveSession pairs a session with the lock that makes its owner the only
// writer. The machine itself does no locking.
type liveSession struct {
	mu      sync.Mutex
	session *domain.LearningSession
}

// SessionRegistry holds live sessions in memory. It is safe for concurrent
// use across sessions; each entry carries its own lock for turns within a
// session.
type SessionRegistry struct {
	items *cache.Cache
}

// NewSessionRegistry creates a registry whose entries expire after ttl
// without access. onEvict, if non-nil, is called whenever an entry leaves
// the registry by expiry or removal.
func NewSessionRegistry(ttl time.Duration, onEvict func(sessionID uuid.UUID)) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 2
	if cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}

	items := cache.New(ttl, cleanup)
	if onEvict != nil {
		items.OnEvicted(func(key string, _ interface{}) {
			if id, err := uuid.Parse(key); err == nil {
				onEvict(id)
			}
		})
	}
	return &SessionRegistry{items: items}
}

// Put registers s under its ID.
func (r *SessionRegistry) Put(s *domain.LearningSession) {
	r.items.Set(s.ID.String(), &liveSession{session: s}, cache.DefaultExpiration)
}

// get returns the entry for id and refreshes its idle timer.
func (r *SessionRegistry) get(id uuid.UUID) (*liveSession, bool) {
	key := id.String()
	v, ok := r.items.Get(key)
	if !ok {
		return nil, false
	}
	live := v.(*liveSession)
	// Replace only succeeds while the entry exists, so a concurrent Remove
	// is never undone.
	_ = r.items.Replace(key, live, cache.DefaultExpiration)
	return live, true
}

// Remove drops the entry for id, if any.
func (r *SessionRegistry) Remove(id uuid.UUID) {
	r.items.Delete(id.String())
}

// Len returns the number of entries, including expired ones not yet
// cleaned up.
func (r *SessionRegistry) Len() int {
	return r.items.ItemCount()
}
