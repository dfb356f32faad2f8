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

// Package book implements a persistent opening book of evaluated
// positions, stored in a badger database under their canonical keys.
package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

var (
	ErrNotFound     = errors.New("book: position not found")
	ErrNotCanonical = errors.New("book: key is not canonical")
)

const (
	// MinDiscs and MaxDiscs bound the positions which are kept in the
	// book. Later positions are cheap enough to search on demand.
	MinDiscs = 4
	MaxDiscs = 30

	// MinLevel is the lowest search level worth keeping.
	MinLevel = 16
)

// Book is an opening book backed by badger.
type Book struct {
	db *badger.DB
}

// Open opens the book stored in the given directory, creating it if
// necessary. An empty directory opens a book which lives in memory.
func Open(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(logger{logrus.WithField("book", dir)})

	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}

	return &Book{db: db}, nil
}

// Close closes the book.
func (book *Book) Close() error {
	return book.db.Close()
}

// Get returns the record stored for the given canonical key.
func (book *Book) Get(key othello.Key) (evaluation.Record, error) {
	var record evaluation.Record

	err := book.db.View(func(txn *badger.Txn) error {
		return get(txn, key, &record)
	})

	return record, err
}

// Lookup returns the records of the given keys which are in the book.
func (book *Book) Lookup(ctx context.Context, keys []othello.Key) (map[othello.Key]evaluation.Record, error) {
	records := make(map[othello.Key]evaluation.Record, len(keys))

	err := book.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record evaluation.Record
			switch err := get(txn, key, &record); {
			case errors.Is(err, ErrNotFound):
				continue
			case err != nil:
				return err
			}

			records[key] = record
		}

		return nil
	})

	return records, err
}

// Save stores a record unless the book already holds one of the same or
// a higher level. Records of positions outside the book's range are
// ignored. Save reports whether the record was stored.
func (book *Book) Save(ctx context.Context, key othello.Key, record evaluation.Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !key.IsCanonical() {
		return false, fmt.Errorf("save %s: %w", key, ErrNotCanonical)
	}

	pos := key.Position()
	if err := record.ValidateFor(pos); err != nil {
		return false, fmt.Errorf("save %s: %w", key, err)
	}

	if !Savable(pos, record) {
		return false, nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}

	saved := false
	err = book.db.Update(func(txn *badger.Txn) error {
		var old evaluation.Record
		switch err := get(txn, key, &old); {
		case err == nil:
			if old.Level >= record.Level {
				return nil
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		saved = true
		return txn.Set(key.Bytes(), data)
	})

	if err != nil {
		return false, fmt.Errorf("save %s: %w", key, err)
	}

	if saved {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"level": record.Level,
		}).Debug("book: saved evaluation")
	}

	return saved, nil
}

// Savable reports whether a record of the position belongs in a book.
func Savable(pos othello.Position, record evaluation.Record) bool {
	discs := pos.Occupied().Count()
	return discs >= MinDiscs && discs <= MaxDiscs &&
		pos.HasMoves() && record.Level >= MinLevel
}

// Count returns the number of positions in the book.
func (book *Book) Count() (int, error) {
	count := 0

	err := book.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}

		return nil
	})

	return count, err
}

func get(txn *badger.Txn, key othello.Key, record *evaluation.Record) error {
	item, err := txn.Get(key.Bytes())
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, record)
	})
}

// logger routes badger's logs through logrus. Badger reports routine
// maintenance at info level, which is demoted to debug.
type logger struct {
	*logrus.Entry
}

func (l logger) Infof(format string, args ...any) {
	l.Entry.Debugf(format, args...)
}
