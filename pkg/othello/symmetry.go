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

// FlipHorizontal mirrors the board across the vertical axis, so that
// file a and file h change places.
func FlipHorizontal(bb Bitboard) Bitboard {
	const (
		k1 = 0x5555555555555555
		k2 = 0x3333333333333333
		k4 = 0x0F0F0F0F0F0F0F0F
	)

	x := uint64(bb)
	x = ((x >> 1) & k1) | ((x & k1) << 1)
	x = ((x >> 2) & k2) | ((x & k2) << 2)
	x = ((x >> 4) & k4) | ((x & k4) << 4)
	return Bitboard(x)
}

// FlipVertical mirrors the board across the horizontal axis, so that
// rank 1 and rank 8 change places.
func FlipVertical(bb Bitboard) Bitboard {
	const (
		k1 = 0x00FF00FF00FF00FF
		k2 = 0x0000FFFF0000FFFF
	)

	x := uint64(bb)
	x = ((x >> 8) & k1) | ((x & k1) << 8)
	x = ((x >> 16) & k2) | ((x & k2) << 16)
	x = (x >> 32) | (x << 32)
	return Bitboard(x)
}

// FlipDiagonal mirrors the board across the a1-h8 diagonal, so that the
// square on file f and rank r moves to file r and rank f.
func FlipDiagonal(bb Bitboard) Bitboard {
	const (
		k1 = 0x5500550055005500
		k2 = 0x3333000033330000
		k4 = 0x0F0F0F0F00000000
	)

	x := uint64(bb)
	t := k4 & (x ^ (x << 28))
	x ^= t ^ (t >> 28)
	t = k2 & (x ^ (x << 14))
	x ^= t ^ (t >> 14)
	t = k1 & (x ^ (x << 7))
	x ^= t ^ (t >> 7)
	return Bitboard(x)
}

// Symmetry is one of the eight symmetries of the square. Bit 0 selects
// FlipHorizontal, bit 1 FlipVertical and bit 2 FlipDiagonal, which are
// applied in that order. Rotations are named as seen in Position.String,
// which draws rank 1 at the top.
type Symmetry uint8

const (
	Identity      Symmetry = 0
	MirrorFiles   Symmetry = 1
	MirrorRanks   Symmetry = 2
	Rotate180     Symmetry = 3
	Transpose     Symmetry = 4
	RotateCCW     Symmetry = 5 // a1 to a8, a8 to h8
	RotateCW      Symmetry = 6 // a1 to h1, h1 to h8
	AntiTranspose Symmetry = 7

	SymmetryN = 8
)

var inverses = [SymmetryN]Symmetry{0, 1, 2, 3, 4, 6, 5, 7}

var symmetryNames = [SymmetryN]string{
	"identity", "mirror-files", "mirror-ranks", "rotate-180",
	"transpose", "rotate-ccw", "rotate-cw", "anti-transpose",
}

func (s Symmetry) String() string {
	if s >= SymmetryN {
		return "?"
	}

	return symmetryNames[s]
}

// Inverse returns the symmetry which undoes s.
func (s Symmetry) Inverse() Symmetry {
	return inverses[s&7]
}

// Apply transforms the given bitboard.
func (s Symmetry) Apply(bb Bitboard) Bitboard {
	if s&1 != 0 {
		bb = FlipHorizontal(bb)
	}

	if s&2 != 0 {
		bb = FlipVertical(bb)
	}

	if s&4 != 0 {
		bb = FlipDiagonal(bb)
	}

	return bb
}

// ApplySquare transforms a single square. Pass is left unchanged.
func (s Symmetry) ApplySquare(sq Square) Square {
	if !sq.IsValid() {
		return sq
	}

	return s.Apply(sq.Bitboard()).LSB()
}

// Transform applies the symmetry to both sides of the position. The
// side to move is unchanged.
func (pos Position) Transform(s Symmetry) Position {
	return Position{
		mover:    s.Apply(pos.mover),
		opponent: s.Apply(pos.opponent),
		turn:     pos.turn,
	}
}

// Normalize returns the canonical representative of the position among
// its eight symmetric variants, along with the symmetry which maps the
// position onto it. The representative is the variant with the smallest
// mover bitboard, ties broken by the smallest opponent bitboard.
func (pos Position) Normalize() (Position, Symmetry) {
	best, symmetry := pos, Identity

	for s := Symmetry(1); s < SymmetryN; s++ {
		variant := pos.Transform(s)
		if variant.less(best) {
			best, symmetry = variant, s
		}
	}

	return best, symmetry
}

// IsNormalized reports whether the position is its own canonical form.
func (pos Position) IsNormalized() bool {
	normalized, _ := pos.Normalize()
	return normalized.mover == pos.mover && normalized.opponent == pos.opponent
}

// Key returns the canonical key of the position.
func (pos Position) Key() Key {
	normalized, _ := pos.Normalize()
	return Key{Mover: normalized.mover, Opponent: normalized.opponent}
}

func (pos Position) less(other Position) bool {
	if pos.mover != other.mover {
		return pos.mover < other.mover
	}

	return pos.opponent < other.opponent
}
