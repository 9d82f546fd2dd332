// Package cache holds short-lived git query results in memory.
//
// A [Store] maps a [Key] (one per query category plus the aggregate) to an
// [Entry] with its own expiry. Typed access goes through the generic [Get]
// and [Set] helpers:
//
//	cache.Set(s, cache.KeyBranch, info, 5*time.Second)
//	info, ok := cache.Get[gitinfo.BranchInfo](s, cache.KeyBranch)
//
// Expired entries read as misses. A disabled store misses on every read and
// ignores writes, as does a write with a non-positive TTL. Nothing is
// persisted: a Store lives as long as the service that owns it.
//
// Entries are held in a github.com/patrickmn/go-cache instance; expiry is
// decided against the store's own clock so tests can advance time.
package cache
