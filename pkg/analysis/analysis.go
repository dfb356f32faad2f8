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

// Package analysis scores the legal moves of a position using cached
// oracle evaluations, asking the oracle for the ones which are missing.
package analysis

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/oracle"
	"laptudirm.com/x/flippy/pkg/othello"
)

// Requester evaluates canonical keys. It is satisfied by *oracle.Client.
type Requester interface {
	Evaluate(ctx context.Context, keys []othello.Key) (oracle.Batch, error)
}

// MoveEvaluation is the evaluation of a single legal move.
type MoveEvaluation struct {
	Move  othello.Square
	Child othello.Position

	// Score is the expected final disc difference for the side which
	// plays the move. It is only meaningful if Found is set.
	Score  int
	Record evaluation.Record
	Found  bool
}

// Analyzer combines an evaluation cache with an oracle.
type Analyzer struct {
	cache  *evaluation.Cache
	oracle Requester
}

// New returns an analyzer. The requester may be nil, in which case only
// cached evaluations are used.
func New(cache *evaluation.Cache, requester Requester) *Analyzer {
	return &Analyzer{cache: cache, oracle: requester}
}

// Cache returns the analyzer's evaluation cache.
func (analyzer *Analyzer) Cache() *evaluation.Cache {
	return analyzer.cache
}

// Analyze evaluates every legal move of the position, best first. Moves
// without an evaluation are placed last. Oracle failures are not errors:
// the analysis just contains fewer evaluations.
func (analyzer *Analyzer) Analyze(ctx context.Context, pos othello.Position) []MoveEvaluation {
	children := pos.Children()

	keys := make([]othello.Key, 0, len(children))
	for _, child := range children {
		if key, ok := SearchKey(child.Position); ok {
			keys = append(keys, key)
		}
	}

	_ = analyzer.fetch(ctx, keys)

	moves := make([]MoveEvaluation, len(children))
	for i, child := range children {
		moves[i] = MoveEvaluation{Move: child.Move, Child: child.Position}

		record, found := analyzer.cache.Lookup(child.Position)
		if !found {
			continue
		}

		moves[i].Record, moves[i].Found = record, true
		moves[i].Score = -record.Score
		if child.Position.Turn() == pos.Turn() {
			// the opponent had to pass
			moves[i].Score = record.Score
		}
	}

	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].Found != moves[j].Found {
			return moves[i].Found
		}

		return moves[i].Score > moves[j].Score
	})

	return moves
}

// BestMove returns the best evaluated move of the position. It reports
// false if none of the moves could be evaluated.
func (analyzer *Analyzer) BestMove(ctx context.Context, pos othello.Position) (othello.Square, bool) {
	moves := analyzer.Analyze(ctx, pos)
	if len(moves) == 0 || !moves[0].Found {
		return othello.Pass, false
	}

	return moves[0].Move, true
}

// Prefetch asks the oracle for the children and grandchildren of the
// position which are not cached yet, so that they are ready by the time
// a move has been played.
func (analyzer *Analyzer) Prefetch(ctx context.Context, pos othello.Position) error {
	var keys []othello.Key
	for _, child := range pos.Children() {
		if key, ok := SearchKey(child.Position); ok {
			keys = append(keys, key)
		}

		for _, grandchild := range child.Position.Children() {
			if key, ok := SearchKey(grandchild.Position); ok {
				keys = append(keys, key)
			}
		}
	}

	return analyzer.fetch(ctx, keys)
}

func (analyzer *Analyzer) fetch(ctx context.Context, keys []othello.Key) error {
	if analyzer.oracle == nil {
		return nil
	}

	missing := analyzer.cache.Missing(keys)
	if len(missing) == 0 {
		return nil
	}

	batch, err := analyzer.oracle.Evaluate(ctx, missing)
	if err != nil {
		logrus.WithError(err).Debug("analysis: evaluation failed")
		return err
	}

	analyzer.cache.PutBatch(batch)
	return nil
}

// SearchKey returns the key under which the oracle knows the position.
// A position whose side to move has to pass is known by the passed
// position, and finished games need no evaluation.
func SearchKey(pos othello.Position) (othello.Key, bool) {
	if pos.HasMoves() {
		return pos.Key(), true
	}

	if passed := pos.Pass(); passed.HasMoves() {
		return passed.Key(), true
	}

	return othello.Key{}, false
}
