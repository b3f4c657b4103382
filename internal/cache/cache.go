// Package cache is the in-process byte cache shared by services.
package cache

import (
	"time"

	"github.com/coocood/freecache"
)

type Cache interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte, ttl time.Duration) error
	Del(key []byte)
}

var _ Cache = (*FreeCache)(nil)

type FreeCache struct {
	mainCache *freecache.Cache
}

// NewFreeCache preallocates sizeMB megabytes. freecache bumps anything below 512KB up to that.
func NewFreeCache(sizeMB int) *FreeCache {
	return &FreeCache{
		mainCache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (fc *FreeCache) Get(key []byte) ([]byte, bool) {
	value, err := fc.mainCache.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores value for ttl, rounded down to whole seconds. A zero ttl never expires.
func (fc *FreeCache) Set(key, value []byte, ttl time.Duration) error {
	return fc.mainCache.Set(key, value, int(ttl.Seconds()))
}

func (fc *FreeCache) Del(key []byte) {
	fc.mainCache.Del(key)
}

func (fc *FreeCache) EntryCount() int64 {
	return fc.mainCache.EntryCount()
}
