package progress

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/cache"
)

// Cache keeps each user's projected days so streak and calendar reads skip the plan tables.
// Anything that changes a user's plans must call Invalidate.
//
// Every Invalidate bumps the user's generation. A writer takes the generation before
// reading plans and Set drops the entry if it moved in the meantime, so days read
// before a concurrent change never outlive that change.
type Cache struct {
	store cache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewCache(store cache.Cache, ttl time.Duration) *Cache {
	return &Cache{
		store:       store,
		ttl:         ttl,
		generations: make(map[uuid.UUID]uint64),
	}
}

func (c *Cache) Get(userID uuid.UUID) ([]Day, bool) {
	raw, found := c.store.Get(userID.Bytes())
	if !found {
		return nil, false
	}
	var days []Day
	if err := json.Unmarshal(raw, &days); err != nil {
		log.Warnf("progress cache: corrupt entry for user %s: %s", userID, err)
		c.store.Del(userID.Bytes())
		return nil, false
	}
	return days, true
}

// Generation must be read before loading the plans the cached days are computed from.
func (c *Cache) Generation(userID uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

// Set stores days computed at generation. It reports false and stores nothing when
// the user was invalidated since. Storing is best effort, a failure only costs a
// later recomputation.
func (c *Cache) Set(userID uuid.UUID, generation uint64, days []Day) bool {
	raw, err := json.Marshal(days)
	if err != nil {
		log.Errorf("progress cache: marshal days for user %s: %s", userID, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != generation {
		log.Tracef("progress cache: user %s invalidated while computing, not caching", userID)
		return false
	}
	if err := c.store.Set(userID.Bytes(), raw, c.ttl); err != nil {
		log.Debugf("progress cache: set for user %s: %s", userID, err)
		return false
	}
	return true
}

func (c *Cache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[userID]++
	c.store.Del(userID.Bytes())
}
