package cachesync

import (
	"sync"
	"time"
)

// DefaultIntentTTL bounds how long a pending intent can wait for the
// mutation it suppresses. A settled mutation consumes its intent immediately;
// the TTL only reaps intents whose mutation never fired.
const DefaultIntentTTL = 30 * time.Second

// IntentStore records pending mutation intents: flags keyed by
// (recommendation slug, wishlist id) meaning "when this mutation's success
// callback fires, treat it as a no-op." An intent is consumed at most once.
type IntentStore struct {
	mu      sync.Mutex
	intents map[string]time.Time
	ttl     time.Duration
}

func NewIntentStore(ttl time.Duration) *IntentStore {
	if ttl <= 0 {
		ttl = DefaultIntentTTL
	}
	return &IntentStore{
		intents: make(map[string]time.Time),
		ttl:     ttl,
	}
}

// Register marks the (slug, wishlistID) mutation as redirected.
func (s *IntentStore) Register(slug, wishlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intentKey(slug, wishlistID)] = time.Now().Add(s.ttl)
}

// Consume reports whether an unexpired intent exists for (slug, wishlistID)
// and deletes it. A second call for the same pair returns false.
func (s *IntentStore) Consume(slug, wishlistID string) bool {
	key := intentKey(slug, wishlistID)

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.intents[key]
	if !ok {
		return false
	}
	delete(s.intents, key)
	return time.Now().Before(expiry)
}

func intentKey(slug, wishlistID string) string {
	return slug + ":" + wishlistID
}
