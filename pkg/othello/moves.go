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

	"golang.org/x/exp/rand"
)

// directions are the eight compass directions as (file, rank) steps.
var directions = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Flips returns the opponent discs which would be flipped if the side to
// move played on the given square. An empty set means the move is not
// legal. Each direction is walked square by square in file and rank
// space so that a line can never wrap around the edge of the board.
func (pos Position) Flips(sq Square) Bitboard {
	if !sq.IsValid() || pos.Occupied().Has(sq) {
		return EmptyBoard
	}

	flips := EmptyBoard
	for _, dir := range directions {
		line := EmptyBoard

		file, rank := sq.File()+dir[0], sq.Rank()+dir[1]
		for file >= 0 && file < Files && rank >= 0 && rank < Ranks {
			cur := NewSquare(file, rank)

			if pos.opponent.Has(cur) {
				line = line.With(cur)
			} else {
				// Reaching our own disc brackets the line, reaching an
				// empty square leaves it unbracketed.
				if pos.mover.Has(cur) {
					flips |= line
				}

				break
			}

			file, rank = file+dir[0], rank+dir[1]
		}
	}

	return flips
}

// IsLegalMove reports whether the side to move may play on the square.
func (pos Position) IsLegalMove(sq Square) bool {
	return pos.Flips(sq) != EmptyBoard
}

// LegalMoves returns the set of squares the side to move may play on.
func (pos Position) LegalMoves() Bitboard {
	empty := ^pos.Occupied()

	moves := EmptyBoard
	for _, shift := range shifts {
		// A run of opponent discs is at most 6 long.
		run := shift(pos.mover) & pos.opponent
		for i := 0; i < 5; i++ {
			run |= shift(run) & pos.opponent
		}

		moves |= shift(run) & empty
	}

	return moves
}

// HasMoves reports whether the side to move has any legal move.
func (pos Position) HasMoves() bool {
	return pos.LegalMoves() != EmptyBoard
}

// RandomPosition returns a position with the given number of discs by
// playing random legal moves from the start position. Games which end
// early are restarted.
func RandomPosition(rng *rand.Rand, discs int) (Position, error) {
	if discs < 4 || discs > Squares {
		return Position{}, fmt.Errorf("random position: invalid number of discs %d", discs)
	}

	pos := Start()
	for pos.Occupied().Count() < discs {
		moves := pos.LegalMoves().Squares()
		if len(moves) == 0 {
			pos = Start()
			continue
		}

		next, err := pos.ApplyMove(moves[rng.Intn(len(moves))])
		if err != nil {
			return Position{}, err
		}

		if next.IsTerminal() && next.Occupied().Count() < discs {
			pos = Start()
			continue
		}

		pos = next
	}

	return pos, nil
}
