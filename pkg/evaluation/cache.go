// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package evaluation

import (
	"sync"

	"laptudirm.com/x/flippy/pkg/othello"
)

// Cache maps canonical keys to their evaluations for the lifetime of a
// game. Best moves are stored in the orientation of the canonical
// position. Writes always replace the previous record. There is no
// eviction: a game reaches a few hundred keys at most and the cache is
// cleared when a new one starts.
type Cache struct {
	mu      sync.RWMutex
	records map[othello.Key]Record

	hits, misses uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[othello.Key]Record)}
}

// Get returns the record stored under the given key.
func (cache *Cache) Get(key othello.Key) (Record, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	record, found := cache.records[key]
	if found {
		cache.hits++
	} else {
		cache.misses++
	}

	return record, found
}

// Put stores a record, replacing any previous one for the key.
func (cache *Cache) Put(key othello.Key, record Record) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.records[key] = record
}

// PutBatch stores every record of the batch.
func (cache *Cache) PutBatch(records map[othello.Key]Record) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	for key, record := range records {
		cache.records[key] = record
	}
}

// Clear removes every record and resets the statistics.
func (cache *Cache) Clear() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.records = make(map[othello.Key]Record)
	cache.hits, cache.misses = 0, 0
}

// Len returns the number of records in the cache.
func (cache *Cache) Len() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	return len(cache.records)
}

// Missing returns the keys which have no record, without duplicates and
// in the order they were given.
func (cache *Cache) Missing(keys []othello.Key) []othello.Key {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	seen := make(map[othello.Key]bool, len(keys))
	missing := make([]othello.Key, 0, len(keys))
	for _, key := range keys {
		if _, found := cache.records[key]; found || seen[key] {
			continue
		}

		seen[key] = true
		missing = append(missing, key)
	}

	return missing
}

// Stats returns the number of hits and misses of Get.
func (cache *Cache) Stats() (hits, misses uint64) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	return cache.hits, cache.misses
}

// Lookup returns the evaluation of a position in any orientation, with
// its best moves mapped back onto the position. A position whose side to
// move has to pass is answered from the passed position, and a finished
// game is always answered.
func (cache *Cache) Lookup(pos othello.Position) (Record, bool) {
	if pos.HasMoves() {
		normalized, symmetry := pos.Normalize()

		record, found := cache.Get(normalized.Key())
		if !found {
			return Record{}, false
		}

		return record.Transform(symmetry.Inverse()), true
	}

	if passed := pos.Pass(); passed.HasMoves() {
		record, found := cache.Lookup(passed)
		if !found {
			return Record{}, false
		}

		return record.Passed(), true
	}

	return GameEnd(pos), true
}
