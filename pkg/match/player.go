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
	"context"
	"fmt"

	"golang.org/x/exp/rand"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/othello"
)

// Player chooses moves in a game. Move is only called in positions with
// at least one legal move, and may be interrupted through the context
// when the player runs out of time.
type Player interface {
	Name() string
	Move(ctx context.Context, pos othello.Position) (othello.Square, error)
}

// PlayerConfig describes a player of a tournament.
type PlayerConfig struct {
	Name string `yaml:"name"`

	// Kind is one of random, greedy or oracle.
	Kind string `yaml:"kind"`

	Seed uint64 `yaml:"seed"`
}

// NewPlayer creates the player described by the config. Oracle players
// need an analyzer.
func NewPlayer(config PlayerConfig, analyzer *analysis.Analyzer) (Player, error) {
	name := config.Name
	if name == "" {
		name = config.Kind
	}

	switch config.Kind {
	case "random":
		return NewRandom(name, config.Seed), nil
	case "greedy":
		return Greedy{name: name}, nil
	case "oracle":
		if analyzer == nil {
			return nil, fmt.Errorf("new player %s: oracle player needs an oracle", name)
		}

		return &Oracle{name: name, analyzer: analyzer}, nil
	default:
		return nil, fmt.Errorf("new player %s: invalid kind %q", name, config.Kind)
	}
}

// Random plays uniformly random legal moves.
type Random struct {
	name string
	rng  *rand.Rand
}

// NewRandom returns a random player seeded with the given seed.
func NewRandom(name string, seed uint64) *Random {
	return &Random{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (player *Random) Name() string {
	return player.name
}

func (player *Random) Move(_ context.Context, pos othello.Position) (othello.Square, error) {
	moves := pos.LegalMoves().Squares()
	if len(moves) == 0 {
		return othello.Pass, othello.ErrIllegalMove
	}

	return moves[player.rng.Intn(len(moves))], nil
}

// Greedy plays the move which flips the most discs, preferring the
// lowest square on ties.
type Greedy struct {
	name string
}

func (player Greedy) Name() string {
	return player.name
}

func (player Greedy) Move(_ context.Context, pos othello.Position) (othello.Square, error) {
	best, flips := othello.Pass, 0
	for _, move := range pos.LegalMoves().Squares() {
		if n := pos.Flips(move).Count(); n > flips {
			best, flips = move, n
		}
	}

	if best == othello.Pass {
		return othello.Pass, othello.ErrIllegalMove
	}

	return best, nil
}

// Oracle plays the best move according to the oracle's evaluations, and
// falls back to greedy play when none are available.
type Oracle struct {
	name     string
	analyzer *analysis.Analyzer
}

func (player *Oracle) Name() string {
	return player.name
}

func (player *Oracle) Move(ctx context.Context, pos othello.Position) (othello.Square, error) {
	if move, ok := player.analyzer.BestMove(ctx, pos); ok {
		return move, nil
	}

	return Greedy{name: player.name}.Move(ctx, pos)
}
