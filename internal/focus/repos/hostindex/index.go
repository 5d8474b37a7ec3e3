// Package hostindex answers "is this one of our hosts?" while scanning host
// files. The indexed set is small; the names looked up are not, since a host
// file may carry a large third-party blocklist. The Bloom filter only pays
// off for those foreign names, which it rejects without touching the exact
// set. Catalog names always fall through to the exact set.
package hostindex

import (
	"sync/atomic"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

// DefaultFPRate is the target false-positive rate of the prefilter.
const DefaultFPRate = 0.001

// Index is a read-only membership index built once from a host list.
type Index struct {
	bf    *bitsbloom.BloomFilter
	exact map[string]struct{}

	bloomRejects uint64
	exactChecks  uint64
}

// New builds an Index over hosts. Invalid fpRate values fall back to DefaultFPRate.
func New(hosts []string, fpRate float64) *Index {
	if !(fpRate > 0 && fpRate < 1) {
		fpRate = DefaultFPRate
	}
	n := uint(len(hosts))
	if n == 0 {
		n = 1
	}

	idx := &Index{
		bf:    bitsbloom.NewWithEstimates(n, fpRate),
		exact: make(map[string]struct{}, len(hosts)),
	}
	for _, h := range hosts {
		if h == "" {
			continue
		}
		idx.bf.AddString(h)
		idx.exact[h] = struct{}{}
	}
	return idx
}

// Contains reports whether host was in the list the index was built from.
// Expects a canonical host name.
func (i *Index) Contains(host string) bool {
	if !i.bf.TestString(host) {
		atomic.AddUint64(&i.bloomRejects, 1)
		return false
	}
	atomic.AddUint64(&i.exactChecks, 1)
	_, ok := i.exact[host]
	return ok
}

// Len returns the number of distinct hosts indexed.
func (i *Index) Len() int { return len(i.exact) }

// Stats returns how many lookups the Bloom filter rejected outright and how
// many fell through to the exact set.
func (i *Index) Stats() (bloomRejects, exactChecks uint64) {
	return atomic.LoadUint64(&i.bloomRejects), atomic.LoadUint64(&i.exactChecks)
}
