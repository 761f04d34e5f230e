package dataset

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

// TableSize is the fixed bucket count of the registry table
const TableSize = 512

var errKeyExists = errors.New("key already present")

// FoldName returns the canonical form of a dataset name. Both hashing
// and comparison operate on the folded form, so names that differ only in
// letter case land in the same bucket and compare equal. Only ASCII A-Z
// is folded; other bytes compare as-is.
func FoldName(name string) string {
	i := 0
	for i < len(name) && (name[i] < 'A' || name[i] > 'Z') {
		i++
	}
	if i == len(name) {
		return name
	}
	b := []byte(name)
	for ; i < len(b); i++ {
		if c := b[i]; c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// hashName is byte-wise over the folded name, so the result does not
// depend on host byte order.
func hashName(folded string) uint64 {
	return xxhash.Sum64String(folded)
}

type entry struct {
	key   string // folded
	value string // name as first registered
}

// table is a chained hash table with a fixed number of buckets
type table struct {
	buckets [][]entry
	count   int
}

func newTable(size int) (*table, error) {
	if size <= 0 {
		return nil, errors.New("table size must be positive")
	}
	return &table{buckets: make([][]entry, size)}, nil
}

func (t *table) bucket(folded string) int {
	return int(hashName(folded) % uint64(len(t.buckets)))
}

func (t *table) find(name string) (string, bool) {
	key := FoldName(name)
	for _, e := range t.buckets[t.bucket(key)] {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

func (t *table) add(name string) error {
	key := FoldName(name)
	b := t.bucket(key)
	for _, e := range t.buckets[b] {
		if e.key == key {
			return errKeyExists
		}
	}
	t.buckets[b] = append(t.buckets[b], entry{key: key, value: name})
	t.count++
	return nil
}

func (t *table) len() int {
	return t.count
}
