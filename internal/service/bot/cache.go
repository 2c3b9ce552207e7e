package bot

import (
	"fmt"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// CacheMode selects the de-duplication structure of one bitboard search.
type CacheMode string

const (
	CacheNone CacheMode = "none"
	// CacheDiscard skips any child whose fingerprint was already expanded.
	// Skipped children contribute nothing, so results can depend on traversal
	// order; hits are counted so the effect stays visible.
	CacheDiscard CacheMode = "discard"
	// CacheTransposition stores each node's value with its bound type and
	// reuses it when the position comes back.
	CacheTransposition CacheMode = "transposition"
)

func ParseCacheMode(s string) (CacheMode, error) {
	switch m := CacheMode(s); m {
	case CacheNone, CacheDiscard, CacheTransposition:
		return m, nil
	}
	return "", fmt.Errorf("unknown cache mode %q", s)
}

// seenCache maps a fingerprint to the parent's alpha when it was first expanded.
type seenCache struct {
	seen map[domain.Fingerprint]int
	hits uint64
}

func newSeenCache() *seenCache {
	return &seenCache{seen: make(map[domain.Fingerprint]int)}
}

func (c *seenCache) skip(fp domain.Fingerprint) bool {
	if _, ok := c.seen[fp]; ok {
		c.hits++
		return true
	}
	return false
}

func (c *seenCache) record(fp domain.Fingerprint, alpha int) {
	c.seen[fp] = alpha
}

type bound uint8

const (
	exact bound = iota
	lower
	upper
)

type ttEntry struct {
	value int
	flag  bound
}

// transpositionTable lives for one search. Equal fingerprints have equal
// occupancy and therefore equal distance from the root, so entries need no
// depth field.
type transpositionTable struct {
	entries map[domain.Fingerprint]ttEntry
	hits    uint64
}

func newTranspositionTable() *transpositionTable {
	return &transpositionTable{entries: make(map[domain.Fingerprint]ttEntry, 1<<12)}
}

func (t *transpositionTable) probe(fp domain.Fingerprint, alpha, beta int) (int, bool) {
	e, ok := t.entries[fp]
	if !ok {
		return 0, false
	}
	switch {
	case e.flag == exact,
		e.flag == lower && e.value >= beta,
		e.flag == upper && e.value <= alpha:
		t.hits++
		return e.value, true
	}
	return 0, false
}

func (t *transpositionTable) store(fp domain.Fingerprint, value, alpha, beta int) {
	flag := exact
	if value <= alpha {
		flag = upper
	} else if value >= beta {
		flag = lower
	}
	t.entries[fp] = ttEntry{value: value, flag: flag}
}
