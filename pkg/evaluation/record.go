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
	"errors"
	"fmt"

	"laptudirm.com/x/flippy/pkg/othello"
)

// Source tells how much a Record can be trusted.
type Source uint8

const (
	Approximate Source = iota // result of a selective search
	Exact                     // proven game theoretic value
)

func (source Source) String() string {
	switch source {
	case Approximate:
		return "approximate"
	case Exact:
		return "exact"
	default:
		return "?"
	}
}

// ExactConfidence is the confidence of a search which proved its result.
const ExactConfidence = 100

// Confidences are the selectivity levels a search may report.
var Confidences = []int{73, 87, 95, 98, 99, ExactConfidence}

// SourceOf returns the source implied by a search confidence.
func SourceOf(confidence int) Source {
	if confidence == ExactConfidence {
		return Exact
	}

	return Approximate
}

// Record is the evaluation of a single position. The score is the final
// disc difference expected by the side to move, and the best moves are
// the principal variation which leads to it.
type Record struct {
	Score      int              `json:"score"`
	Depth      int              `json:"depth"`
	Level      int              `json:"level"`
	Confidence int              `json:"confidence"`
	BestMoves  []othello.Square `json:"best_moves"`
	Source     Source           `json:"source"`
}

// GameEnd returns the record of a finished game, which needs no search.
func GameEnd(pos othello.Position) Record {
	empties := pos.Empties()

	return Record{
		Score:      pos.FinalScore(),
		Depth:      empties,
		Level:      empties + empties%2,
		Confidence: ExactConfidence,
		BestMoves:  []othello.Square{},
		Source:     Exact,
	}
}

// Validate checks that the record's fields are within range.
func (record Record) Validate() error {
	if record.Depth < 0 || record.Depth > 60 {
		return fmt.Errorf("depth %d is out of range", record.Depth)
	}

	if record.Score < -64 || record.Score > 64 {
		return fmt.Errorf("score %d is out of range", record.Score)
	}

	valid := false
	for _, confidence := range Confidences {
		if record.Confidence == confidence {
			valid = true
			break
		}
	}

	if !valid {
		return fmt.Errorf("confidence must be one of %v, got %d", Confidences, record.Confidence)
	}

	return nil
}

// ValidateFor additionally checks that the best moves can be played out
// from the given position.
func (record Record) ValidateFor(pos othello.Position) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if record.BestMoves == nil {
		return errors.New("best moves are missing")
	}

	for _, move := range record.BestMoves {
		next, err := pos.DoMove(move)
		if err != nil {
			return fmt.Errorf("best move %s: %w", move, err)
		}

		if move == othello.Pass && pos.HasMoves() {
			return fmt.Errorf("best move %s: %w", move, othello.ErrIllegalMove)
		}

		pos = next
	}

	return nil
}

// Transform returns the record with its best moves mapped through the
// given symmetry.
func (record Record) Transform(symmetry othello.Symmetry) Record {
	if symmetry == othello.Identity || len(record.BestMoves) == 0 {
		return record
	}

	moves := make([]othello.Square, len(record.BestMoves))
	for i, move := range record.BestMoves {
		moves[i] = symmetry.ApplySquare(move)
	}

	record.BestMoves = moves
	return record
}

// Passed turns the record of a position into the record of the same
// position with the other side to move, where that side has to pass.
func (record Record) Passed() Record {
	moves := make([]othello.Square, 0, len(record.BestMoves)+1)
	moves = append(moves, othello.Pass)
	moves = append(moves, record.BestMoves...)

	record.BestMoves = moves
	record.Score = -record.Score
	return record
}
