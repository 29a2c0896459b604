package resolver

import (
	"sync/atomic"

	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
)

// addressCache maps username.domain to a contract address.
type addressCache struct {
	cache    atomic.Pointer[cacheimpl.Cache[string, string]]
	capacity int
}

func newAddressCache(capacity int) *addressCache {
	c := &addressCache{capacity: capacity}
	c.Clear()
	return c
}

func (c *addressCache) Get(key string) (string, bool) {
	return c.cache.Load().Get(key)
}

func (c *addressCache) Set(key, addr string) {
	c.cache.Load().Set(key, addr)
}

func (c *addressCache) Delete(key string) {
	c.cache.Load().Delete(key)
}

// Clear drops every entry; go-generics-cache has no clear of its own.
func (c *addressCache) Clear() {
	c.cache.Store(cacheimpl.New[string, string](cacheimpl.AsLRU[string, string](
		lru.WithCapacity(c.capacity),
	)))
}
