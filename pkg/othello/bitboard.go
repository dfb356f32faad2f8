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

package othello

import (
	"fmt"
	"math/bits"
)

// Bitboard is a set of squares, one bit per square.
type Bitboard uint64

const (
	EmptyBoard Bitboard = 0
	FullBoard  Bitboard = 0xFFFFFFFFFFFFFFFF

	// Files
	fileA Bitboard = 0x0101010101010101
	fileH Bitboard = 0x8080808080808080

	// Not Files
	notFileA Bitboard = ^fileA
	notFileH Bitboard = ^fileH
)

// Has ...
func (bb Bitboard) Has(sq Square) bool {
	return sq.IsValid() && bb&sq.Bitboard() != 0
}

// With returns a copy of the bitboard with the given square set.
func (bb Bitboard) With(sq Square) Bitboard {
	return bb | sq.Bitboard()
}

// Without returns a copy of the bitboard with the given square unset.
func (bb Bitboard) Without(sq Square) Bitboard {
	return bb &^ sq.Bitboard()
}

// Count ...
func (bb Bitboard) Count() int {
	return bits.OnesCount64(uint64(bb))
}

// LSB ...
func (bb Bitboard) LSB() Square {
	return Square(bits.TrailingZeros64(uint64(bb)))
}

// Squares returns the squares in the set in ascending order.
func (bb Bitboard) Squares() []Square {
	squares := make([]Square, 0, bb.Count())
	for ; bb != EmptyBoard; bb &= bb - 1 {
		squares = append(squares, bb.LSB())
	}

	return squares
}

func (bb Bitboard) String() string {
	return fmt.Sprintf("%016X", uint64(bb))
}

// The shifts move every square of a bitboard one step in the given
// direction, dropping anything which would wrap around a file edge.
func north(bb Bitboard) Bitboard     { return bb << 8 }
func south(bb Bitboard) Bitboard     { return bb >> 8 }
func east(bb Bitboard) Bitboard      { return (bb << 1) & notFileA }
func west(bb Bitboard) Bitboard      { return (bb >> 1) & notFileH }
func northEast(bb Bitboard) Bitboard { return (bb << 9) & notFileA }
func northWest(bb Bitboard) Bitboard { return (bb << 7) & notFileH }
func southEast(bb Bitboard) Bitboard { return (bb >> 7) & notFileA }
func southWest(bb Bitboard) Bitboard { return (bb >> 9) & notFileH }

var shifts = [8]func(Bitboard) Bitboard{
	north, south, east, west,
	northEast, northWest, southEast, southWest,
}
