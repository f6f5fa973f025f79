// Package cache memoizes analysis results keyed by a digest of the submitted
// code and its declared language.
package cache

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
)

// DefaultSize is the default maximum number of cached results.
const DefaultSize = 512

// key identifies a submission. Language is kept verbatim because the generic
// analyzer quotes it in its explanation. The digest is not collision-free, so
// entries also carry the code and a hit requires an exact match.
type key struct {
	digest   uint64
	length   int
	language string
}

func keyFor(code, language string) key {
	return key{digest: xxhash.Sum64String(code), length: len(code), language: language}
}

type entry struct {
	code   string
	result *analysis.Result
}

// Stats holds statistics about cache usage.
type Stats struct {
	Hits       int64
	Misses     int64
	Entries    int
	MaxEntries int
}

// HitRate returns the cache hit rate as a fraction.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Results is a bounded LRU of analysis results. Results go in and come out
// as deep copies, so callers may mutate what they receive. A nil *Results is
// a valid, always-missing cache.
type Results struct {
	lru        *lru.Cache[key, entry]
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// New creates a cache holding up to size results. A size of zero or less
// returns nil, which disables caching.
func New(size int) (*Results, error) {
	if size <= 0 {
		return nil, nil //nolint:nilnil // nil cache is the disabled cache.
	}

	store, err := lru.New[key, entry](size)
	if err != nil {
		return nil, err
	}

	return &Results{lru: store, maxEntries: size}, nil
}

// Lookup returns the analysis of code in language, computing and storing it
// on a miss. The flag reports a cache hit.
func (c *Results) Lookup(code, language string) (*analysis.Result, bool) {
	if c == nil {
		return analysis.Analyze(code, language), false
	}

	k := keyFor(code, language)

	if cached, ok := c.lru.Get(k); ok && cached.code == code {
		c.hits.Add(1)

		return cached.result.Clone(), true
	}

	c.misses.Add(1)

	res := analysis.Analyze(code, language)
	c.lru.Add(k, entry{code: code, result: res.Clone()})

	return res, false
}

// Purge removes every entry. Hit and miss counters are kept.
func (c *Results) Purge() {
	if c == nil {
		return
	}

	c.lru.Purge()
}

// Stats returns current cache statistics.
func (c *Results) Stats() Stats {
	if c == nil {
		return Stats{}
	}

	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Entries:    c.lru.Len(),
		MaxEntries: c.maxEntries,
	}
}
