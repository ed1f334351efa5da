package cache

import (
	"sync"
	"time"

	"github.com/arbilens/backend/internal/domain"
)

// MemoryCache is a thread-safe in-memory offer cache keyed by catalog identifier.
// Entries never expire; they live until Delete, Clear or process exit.
type MemoryCache struct {
	data     map[string]domain.CacheEntry
	sequence uint64
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]domain.CacheEntry),
		now:  time.Now,
	}
}

// Get retrieves the cached lookup for an identifier
func (c *MemoryCache) Get(identifier string) (domain.CacheEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[identifier]
	if !exists {
		return domain.CacheEntry{}, false
	}
	entry.Offers = copyOffers(entry.Offers)
	return entry, true
}

// Put stores a lookup result, stamping it with the next sequence number
func (c *MemoryCache) Put(identifier string, offers domain.OfferSet, status domain.FetchStatus) domain.CacheEntry {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sequence++
	entry := domain.CacheEntry{
		Offers:   copyOffers(offers),
		Status:   status,
		Sequence: c.sequence,
		StoredAt: c.now(),
	}
	c.data[identifier] = entry

	entry.Offers = copyOffers(entry.Offers)
	return entry
}

// Delete removes one identifier from the cache
func (c *MemoryCache) Delete(identifier string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, identifier)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]domain.CacheEntry)
}

// Len returns the current number of cached identifiers
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// copyOffers keeps callers from mutating cached slices
func copyOffers(offers domain.OfferSet) domain.OfferSet {
	if offers == nil {
		return domain.OfferSet{}
	}
	out := make(domain.OfferSet, len(offers))
	copy(out, offers)
	return out
}
