// Package cache provides the bounded, time-evicting caption cache used for
// album photos whose caption rides a sibling message of the same media
// group.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CaptionCache maps (group id, media group id) to the album's caption.
// Message ids are per-chat sequential and collide across groups, so the
// group id is part of the key. Bounded in size and TTL-evicting.
type CaptionCache struct {
	lru *expirable.LRU[string, string]
}

// NewCaptionCache returns a cache holding at most size entries, each for at
// most ttl.
func NewCaptionCache(size int, ttl time.Duration) *CaptionCache {
	return &CaptionCache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func key(groupID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", groupID, mediaGroupID)
}

func (c *CaptionCache) Put(groupID int64, mediaGroupID, caption string) {
	c.lru.Add(key(groupID, mediaGroupID), caption)
}

func (c *CaptionCache) Get(groupID int64, mediaGroupID string) (string, bool) {
	return c.lru.Get(key(groupID, mediaGroupID))
}

func (c *CaptionCache) Len() int {
	return c.lru.Len()
}
