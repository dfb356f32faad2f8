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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIllegalMove = errors.New("othello: illegal move")
	ErrOutOfRange  = errors.New("othello: square out of range")
	ErrOverlap     = errors.New("othello: discs overlap")
)

// Color identifies one of the two sides.
type Color uint8

const (
	Black Color = iota
	White
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "?"
	}
}

// State is the contents of a single square, relative to the side to move.
type State uint8

const (
	EmptySquare State = iota
	MoverDisc
	OpponentDisc
)

const (
	startMover    Bitboard = 0x0000000810000000 // e4, d5
	startOpponent Bitboard = 0x0000001008000000 // d4, e5
)

// Position is an immutable board state. The discs of the side to move
// and of the other side are kept in two disjoint bitboards. The color of
// the side to move is only a label and does not take part in any move
// generation or canonicalization.
type Position struct {
	mover    Bitboard
	opponent Bitboard
	turn     Color
}

// Start returns the opening position, with black to move.
func Start() Position {
	return Position{
		mover:    startMover,
		opponent: startOpponent,
		turn:     Black,
	}
}

// New returns a position from the given bitboards.
func New(mover, opponent Bitboard, turn Color) (Position, error) {
	if mover&opponent != 0 {
		return Position{}, ErrOverlap
	}

	return Position{
		mover:    mover,
		opponent: opponent,
		turn:     turn,
	}, nil
}

// Mover returns the discs of the side to move.
func (pos Position) Mover() Bitboard {
	return pos.mover
}

// Opponent returns the discs of the side not to move.
func (pos Position) Opponent() Bitboard {
	return pos.opponent
}

// Turn returns the color of the side to move.
func (pos Position) Turn() Color {
	return pos.turn
}

// Occupied ...
func (pos Position) Occupied() Bitboard {
	return pos.mover | pos.opponent
}

// SquareState returns whose disc, if any, is on the given square.
func (pos Position) SquareState(sq Square) (State, error) {
	switch {
	case !sq.IsValid():
		return EmptySquare, ErrOutOfRange
	case pos.mover.Has(sq):
		return MoverDisc, nil
	case pos.opponent.Has(sq):
		return OpponentDisc, nil
	default:
		return EmptySquare, nil
	}
}

// Discs returns the discs of the given color.
func (pos Position) Discs(c Color) Bitboard {
	if c == pos.turn {
		return pos.mover
	}

	return pos.opponent
}

// CountDiscs returns the number of discs of the given color.
func (pos Position) CountDiscs(c Color) int {
	return pos.Discs(c).Count()
}

// MoverCount ...
func (pos Position) MoverCount() int {
	return pos.mover.Count()
}

// OpponentCount ...
func (pos Position) OpponentCount() int {
	return pos.opponent.Count()
}

// Empties returns the number of empty squares.
func (pos Position) Empties() int {
	return Squares - pos.Occupied().Count()
}

// Pass returns the position with the sides swapped and no disc changed.
func (pos Position) Pass() Position {
	return Position{
		mover:    pos.opponent,
		opponent: pos.mover,
		turn:     pos.turn.Other(),
	}
}

// DoMove plays the given move and hands the turn to the opponent, even
// if the opponent has no legal reply. Playing Pass just swaps sides.
func (pos Position) DoMove(sq Square) (Position, error) {
	if sq == Pass {
		return pos.Pass(), nil
	}

	if !sq.IsValid() {
		return pos, ErrOutOfRange
	}

	flips := pos.Flips(sq)
	if flips == EmptyBoard {
		return pos, ErrIllegalMove
	}

	return Position{
		mover:    pos.opponent &^ flips,
		opponent: pos.mover | flips | sq.Bitboard(),
		turn:     pos.turn.Other(),
	}, nil
}

// ApplyMove plays the given move and returns the next position in the
// game. If the opponent has no legal reply the turn comes back to the
// side which just moved. If neither side can move the game is over, and
// the turn stays with the opponent of the side which moved.
func (pos Position) ApplyMove(sq Square) (Position, error) {
	if sq == Pass {
		return pos, ErrIllegalMove
	}

	child, err := pos.DoMove(sq)
	if err != nil {
		return pos, err
	}

	if child.HasMoves() {
		return child, nil
	}

	passed := child.Pass()
	if passed.HasMoves() {
		return passed, nil
	}

	// Game over.
	return child, nil
}

// IsTerminal reports whether neither side has a legal move.
func (pos Position) IsTerminal() bool {
	return !pos.HasMoves() && !pos.Pass().HasMoves()
}

// Outcome is the result of a game.
type Outcome uint8

const (
	Ongoing Outcome = iota
	BlackWins
	WhiteWins
	Draw
)

func (outcome Outcome) String() string {
	switch outcome {
	case Ongoing:
		return "ongoing"
	case BlackWins:
		return "black wins"
	case WhiteWins:
		return "white wins"
	case Draw:
		return "draw"
	default:
		return "?"
	}
}

// Winner returns the outcome of a finished game by disc count. It
// returns Ongoing for positions which are not terminal.
func (pos Position) Winner() Outcome {
	if !pos.IsTerminal() {
		return Ongoing
	}

	black := pos.CountDiscs(Black)
	white := pos.CountDiscs(White)

	switch {
	case black > white:
		return BlackWins
	case white > black:
		return WhiteWins
	default:
		return Draw
	}
}

// FinalScore returns the disc difference at the end of the game from the
// mover's point of view, with the empty squares awarded to the winner.
func (pos Position) FinalScore() int {
	mover := pos.MoverCount()
	opponent := pos.OpponentCount()

	switch {
	case mover > opponent:
		return Squares - 2*opponent
	case opponent > mover:
		return -(Squares - 2*mover)
	default:
		return 0
	}
}

// Child is a legal move together with the position it leads to.
type Child struct {
	Move     Square
	Position Position
}

// Children returns every legal move of the position with its result,
// ordered by square.
func (pos Position) Children() []Child {
	moves := pos.LegalMoves()
	children := make([]Child, 0, moves.Count())

	for _, move := range moves.Squares() {
		child, err := pos.ApplyMove(move)
		if err != nil {
			// LegalMoves and ApplyMove disagree.
			panic(fmt.Sprintf("othello: generated move %s is illegal", move))
		}

		children = append(children, Child{Move: move, Position: child})
	}

	return children
}

// String returns an ASCII art diagram of the position. Black discs are
// drawn as ●, white discs as ○ and legal moves as a dot.
func (pos Position) String() string {
	moves := pos.LegalMoves()
	black, white := pos.Discs(Black), pos.Discs(White)

	var builder strings.Builder
	builder.WriteString("  a b c d e f g h\n")
	for rank := 0; rank < Ranks; rank++ {
		fmt.Fprintf(&builder, "%d", rank+1)
		for file := 0; file < Files; file++ {
			sq := NewSquare(file, rank)
			switch {
			case black.Has(sq):
				builder.WriteString(" ●")
			case white.Has(sq):
				builder.WriteString(" ○")
			case moves.Has(sq):
				builder.WriteString(" ·")
			default:
				builder.WriteString("  ")
			}
		}

		builder.WriteString("\n")
	}

	fmt.Fprintf(&builder, "%s to move, ● %d ○ %d",
		pos.turn, black.Count(), white.Count())
	return builder.String()
}
