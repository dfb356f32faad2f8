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
	"strings"
)

// Board dimensions.
const (
	Files   = 8
	Ranks   = 8
	Squares = Files * Ranks
)

// Square is an index into the board. Square i lies on rank i/8 and file
// i%8, so a1 is 0, h1 is 7 and h8 is 63.
type Square int8

// Pass is the pseudo-move played by a side which has no legal moves.
const Pass Square = -1

// NewSquare returns the square on the given file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*Files + file)
}

// File ...
func (sq Square) File() int {
	return int(sq) % Files
}

// Rank ...
func (sq Square) Rank() int {
	return int(sq) / Files
}

// IsValid reports whether the square lies on the board.
func (sq Square) IsValid() bool {
	return sq >= 0 && sq < Squares
}

// Bitboard returns a bitboard with only the given square set.
func (sq Square) Bitboard() Bitboard {
	return Bitboard(1) << uint(sq)
}

func (sq Square) String() string {
	switch {
	case sq == Pass:
		return "--"
	case !sq.IsValid():
		return "??"
	default:
		return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
	}
}

// ParseSquare parses a square in algebraic notation, like "d3". The
// strings "--", "ps" and "pa" parse to Pass.
func ParseSquare(str string) (Square, error) {
	if len(str) != 2 {
		return 0, fmt.Errorf("parse square: invalid length %q", str)
	}

	str = strings.ToLower(str)

	switch str {
	case "--", "ps", "pa":
		return Pass, nil
	}

	file, rank := str[0], str[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, fmt.Errorf("parse square: invalid square %q", str)
	}

	return NewSquare(int(file-'a'), int(rank-'1')), nil
}

// ParseMoves parses a sequence of concatenated squares, like "f5d6c3".
// Whitespace between moves is ignored.
func ParseMoves(str string) ([]Square, error) {
	str = strings.Join(strings.Fields(str), "")
	if len(str)%2 != 0 {
		return nil, fmt.Errorf("parse moves: odd length sequence %q", str)
	}

	moves := make([]Square, 0, len(str)/2)
	for i := 0; i < len(str); i += 2 {
		move, err := ParseSquare(str[i : i+2])
		if err != nil {
			return nil, err
		}

		moves = append(moves, move)
	}

	return moves, nil
}

// FormatMoves is the inverse of ParseMoves.
func FormatMoves(moves []Square) string {
	var builder strings.Builder
	for _, move := range moves {
		builder.WriteString(move.String())
	}

	return builder.String()
}
