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

import "fmt"

// Game is the record of a single game: every position reached so far and
// the moves which led to them. Automatic passes do not appear as moves.
type Game struct {
	positions []Position
	moves     []Square
}

// NewGame returns a game at the start position.
func NewGame() *Game {
	return &Game{positions: []Position{Start()}}
}

// NewGameFrom returns a game after playing the given moves from the
// start position.
func NewGameFrom(moves []Square) (*Game, error) {
	game := NewGame()
	for i, move := range moves {
		if err := game.Play(move); err != nil {
			return nil, fmt.Errorf("new game: move %d (%s): %w", i+1, move, err)
		}
	}

	return game, nil
}

// Position returns the current position.
func (game *Game) Position() Position {
	return game.positions[len(game.positions)-1]
}

// Moves returns the moves played so far.
func (game *Game) Moves() []Square {
	return append([]Square(nil), game.moves...)
}

// Ply returns the number of moves played so far.
func (game *Game) Ply() int {
	return len(game.moves)
}

// Play plays a move in the current position.
func (game *Game) Play(move Square) error {
	next, err := game.Position().ApplyMove(move)
	if err != nil {
		return err
	}

	game.positions = append(game.positions, next)
	game.moves = append(game.moves, move)
	return nil
}

// Undo takes back the last move. It reports false if no move was played.
func (game *Game) Undo() bool {
	if len(game.moves) == 0 {
		return false
	}

	game.positions = game.positions[:len(game.positions)-1]
	game.moves = game.moves[:len(game.moves)-1]
	return true
}

// Reset takes back every move.
func (game *Game) Reset() {
	game.positions = game.positions[:1]
	game.moves = game.moves[:0]
}

// Outcome returns the outcome of the game, Ongoing until it is over.
func (game *Game) Outcome() Outcome {
	return game.Position().Winner()
}

// Status describes the state of the game, like "white to move",
// "black wins 40-24" or "draw 32-32".
func (game *Game) Status() string {
	pos := game.Position()
	black, white := pos.CountDiscs(Black), pos.CountDiscs(White)

	switch pos.Winner() {
	case BlackWins:
		return fmt.Sprintf("black wins %d-%d", black, white)
	case WhiteWins:
		return fmt.Sprintf("white wins %d-%d", white, black)
	case Draw:
		return fmt.Sprintf("draw %d-%d", black, white)
	default:
		return fmt.Sprintf("%s to move", pos.Turn())
	}
}
