// Package cache holds the process-wide derived state: the nearly-sold-out
// announcement and the featured speaker. Both slots are recomputed
// explicitly by write paths and read without locking by any request.
// Values do not survive a restart.
package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

const (
	announcementKey    = "announcement"
	featuredSpeakerKey = "featured_speaker"
)

// Cache exposes the two named derived-state slots.
type Cache struct {
	c *gocache.Cache
}

// New constructs an empty cache. Entries never expire; recompute calls
// are the only invalidation points.
func New() *Cache {
	return &Cache{c: gocache.New(gocache.NoExpiration, 0)}
}

// Announcement returns the cached announcement, or "" when absent.
func (c *Cache) Announcement() string {
	return c.getString(announcementKey)
}

// SetAnnouncement stores the announcement.
func (c *Cache) SetAnnouncement(msg string) {
	c.c.Set(announcementKey, msg, gocache.NoExpiration)
}

// ClearAnnouncement removes the announcement so reads return "".
func (c *Cache) ClearAnnouncement() {
	c.c.Delete(announcementKey)
}

// FeaturedSpeaker returns the cached featured speaker, or "" when absent.
func (c *Cache) FeaturedSpeaker() string {
	return c.getString(featuredSpeakerKey)
}

// SetFeaturedSpeaker stores the featured speaker name.
func (c *Cache) SetFeaturedSpeaker(speaker string) {
	c.c.Set(featuredSpeakerKey, speaker, gocache.NoExpiration)
}

func (c *Cache) getString(key string) string {
	v, ok := c.c.Get(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
