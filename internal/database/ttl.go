// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"time"
)

// DefaultTTL defines cache lifetime of listings that change with every block.
const DefaultTTL = 2 * time.Minute

// TTL describes caching policy of a query result.
type TTL struct {
	forever  bool
	duration time.Duration
}

var (
	// CacheForever caches result without expiration, used for data of confirmed blocks.
	CacheForever = TTL{forever: true}
	// NoCache bypasses cache.
	NoCache = TTL{}
)

// CacheFor caches result for d, non positive d means no caching.
func CacheFor(d time.Duration) TTL {
	if d <= 0 {
		return NoCache
	}

	return TTL{duration: d}
}

// TTLFromMillis converts milliseconds into TTL.
func TTLFromMillis(ms int64) TTL {
	return CacheFor(time.Duration(ms) * time.Millisecond)
}

// Cached reports whether result should be cached.
func (t TTL) Cached() bool {
	return t.forever || t.duration > 0
}

// Duration returns entry lifetime, zero for entries that never expire.
func (t TTL) Duration() time.Duration {
	return t.duration
}

// String implements fmt.Stringer.
func (t TTL) String() string {
	switch {
	case t.forever:
		return "never"
	case t.duration > 0:
		return t.duration.String()
	default:
		return "0"
	}
}
