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

package match

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/rand"

	"laptudirm.com/x/flippy/pkg/othello"
)

// OpeningBook is a list of opening lines which games are started from.
// Lines are move sequences like "f5d6c3". Empty lines and lines starting
// with a # are ignored.
type OpeningBook struct {
	entries  [][]othello.Square
	strategy string
	current  int

	rng *rand.Rand
}

// NewOpeningBook reads an opening book from the named file. The strategy
// is either "random" or "sequential".
func NewOpeningBook(name, strategy string, seed uint64) (*OpeningBook, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	defer file.Close()
	return ReadOpeningBook(file, strategy, seed)
}

// ReadOpeningBook reads an opening book from r.
func ReadOpeningBook(r io.Reader, strategy string, seed uint64) (*OpeningBook, error) {
	book := OpeningBook{
		strategy: strategy,
		rng:      rand.New(rand.NewSource(seed)),
	}

	switch strategy {
	case "", "sequential", "random":
	default:
		return nil, fmt.Errorf("opening book: invalid order %q", strategy)
	}

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		moves, err := othello.ParseMoves(line)
		if err != nil {
			return nil, fmt.Errorf("opening book: line %d: %w", n, err)
		}

		if _, err := othello.NewGameFrom(moves); err != nil {
			return nil, fmt.Errorf("opening book: line %d: %w", n, err)
		}

		book.entries = append(book.entries, moves)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(book.entries) == 0 {
		return nil, errors.New("opening book: no openings")
	}

	if strategy == "random" {
		book.Next()
	}

	return &book, nil
}

// SingleOpening returns a book which only holds the given line.
func SingleOpening(moves []othello.Square) *OpeningBook {
	return &OpeningBook{entries: [][]othello.Square{moves}}
}

// Len returns the number of openings in the book.
func (book *OpeningBook) Len() int {
	return len(book.entries)
}

// Next moves on to the next opening.
func (book *OpeningBook) Next() {
	switch book.strategy {
	case "random":
		book.current = book.rng.Intn(len(book.entries))
	default:
		book.current = (book.current + 1) % len(book.entries)
	}
}

// Current returns the current opening.
func (book *OpeningBook) Current() []othello.Square {
	return book.entries[book.current]
}
