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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

// scripted plays a fixed move, or fails with a fixed error.
type scripted struct {
	move othello.Square
	err  error
}

func (player scripted) Name() string { return "scripted" }

func (player scripted) Move(context.Context, othello.Position) (othello.Square, error) {
	return player.move, player.err
}

// stalling waits for its deadline.
type stalling struct{}

func (stalling) Name() string { return "stalling" }

func (stalling) Move(ctx context.Context, _ othello.Position) (othello.Square, error) {
	<-ctx.Done()
	return othello.Pass, ctx.Err()
}

func TestRun(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		config := Config{Players: [2]Player{NewRandom("a", seed), NewRandom("b", seed+100)}}

		result, reason := Run(context.Background(), &config)
		switch result {
		case Win:
			require.True(t, strings.HasPrefix(reason, "black wins"), reason)
		case Loss:
			require.True(t, strings.HasPrefix(reason, "white wins"), reason)
		case Draw:
			require.True(t, strings.HasPrefix(reason, "draw"), reason)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	config := Config{Players: [2]Player{Greedy{name: "a"}, Greedy{name: "b"}}}

	result1, reason1 := Run(context.Background(), &config)
	result2, reason2 := Run(context.Background(), &config)
	require.Equal(t, result1, result2)
	require.Equal(t, reason1, reason2)
}

func TestRunForfeits(t *testing.T) {
	greedy := Greedy{name: "greedy"}

	t.Run("illegal move", func(t *testing.T) {
		config := Config{Players: [2]Player{greedy, scripted{move: othello.NewSquare(0, 0)}}}

		result, reason := Run(context.Background(), &config)
		require.Equal(t, Win, result)
		require.Contains(t, reason, "illegal move a1")
	})

	t.Run("error", func(t *testing.T) {
		config := Config{Players: [2]Player{scripted{err: errors.New("crashed")}, greedy}}

		result, reason := Run(context.Background(), &config)
		require.Equal(t, Loss, result)
		require.Contains(t, reason, "crashed")
	})

	t.Run("time", func(t *testing.T) {
		config := Config{
			Players: [2]Player{greedy, stalling{}},
			Time:    TimeControl{Base: 20 * time.Millisecond},
		}

		result, reason := Run(context.Background(), &config)
		require.Equal(t, Win, result)
		require.Contains(t, reason, "ran out of time")
	})
}

func TestRunOpening(t *testing.T) {
	// after f5 it is white's turn, and white moves d6
	moves, err := othello.ParseMoves("f5")
	require.NoError(t, err)

	config := Config{
		Opening: moves,
		Players: [2]Player{scripted{err: errors.New("black should not move")}, scripted{err: errors.New("white moved")}},
	}

	result, reason := Run(context.Background(), &config)
	require.Equal(t, Win, result)
	require.Contains(t, reason, "white moved")

	config.Opening = []othello.Square{othello.NewSquare(0, 0)}
	result, _ = Run(context.Background(), &config)
	require.Equal(t, Draw, result)
}

func TestOraclePlayer(t *testing.T) {
	pos, err := othello.Start().ApplyMove(othello.NewSquare(5, 4))
	require.NoError(t, err)

	cache := evaluation.NewCache()
	player, err := NewPlayer(PlayerConfig{Kind: "oracle"}, analysis.New(cache, nil))
	require.NoError(t, err)
	require.Equal(t, "oracle", player.Name())

	// without evaluations the oracle player plays like the greedy one
	move, err := player.Move(context.Background(), pos)
	require.NoError(t, err)
	greedy, err := Greedy{}.Move(context.Background(), pos)
	require.NoError(t, err)
	require.Equal(t, greedy, move)

	// with evaluations it plays the move which is best for it
	children := pos.Children()
	for i, child := range children {
		score := 10
		if i == len(children)-1 {
			score = -20
		}

		cache.Put(child.Position.Key(), evaluation.Record{Score: score, Confidence: 99, BestMoves: []othello.Square{}})
	}

	move, err = player.Move(context.Background(), pos)
	require.NoError(t, err)
	require.Equal(t, children[len(children)-1].Move, move)
}

func TestNewPlayer(t *testing.T) {
	_, err := NewPlayer(PlayerConfig{Kind: "oracle"}, nil)
	require.Error(t, err)

	_, err = NewPlayer(PlayerConfig{Kind: "alphazero"}, nil)
	require.Error(t, err)

	player, err := NewPlayer(PlayerConfig{Name: "rnd", Kind: "random", Seed: 4}, nil)
	require.NoError(t, err)
	require.Equal(t, "rnd", player.Name())
}

func TestOpeningBook(t *testing.T) {
	input := `
# perpendicular and parallel
f5d6
f5 f6

f5f4
`

	book, err := ReadOpeningBook(strings.NewReader(input), "sequential", 0)
	require.NoError(t, err)
	require.Equal(t, 3, book.Len())
	require.Equal(t, "f5d6", othello.FormatMoves(book.Current()))

	book.Next()
	require.Equal(t, "f5f6", othello.FormatMoves(book.Current()))
	book.Next()
	book.Next()
	require.Equal(t, "f5d6", othello.FormatMoves(book.Current()))

	random, err := ReadOpeningBook(strings.NewReader(input), "random", 7)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		random.Next()
		require.NotEmpty(t, random.Current())
	}

	_, err = ReadOpeningBook(strings.NewReader("f5a1\n"), "", 0)
	require.ErrorIs(t, err, othello.ErrIllegalMove)

	_, err = ReadOpeningBook(strings.NewReader("# nothing\n"), "", 0)
	require.Error(t, err)

	_, err = ReadOpeningBook(strings.NewReader("f5\n"), "shuffled", 0)
	require.Error(t, err)
}

func TestParseTime(t *testing.T) {
	tc, err := ParseTime("10+0.1")
	require.NoError(t, err)
	require.Equal(t, TimeControl{Base: 10 * time.Second, Inc: 100 * time.Millisecond}, tc)
	require.Equal(t, "10+0.1", tc.String())

	tc, err = ParseTime("")
	require.NoError(t, err)
	require.False(t, tc.Limited())

	for _, str := range []string{"10", "a+1", "1+b", "-1+0"} {
		_, err := ParseTime(str)
		require.Error(t, err, str)
	}
}

func TestPairResult(t *testing.T) {
	require.Equal(t, WinWin, GetPairResult(Win, Win))
	require.Equal(t, DrawDraw, GetPairResult(Win, Loss))
	require.Equal(t, LossLoss, GetPairResult(Loss, Loss))
	require.Equal(t, Loss, Win.Flip())
	require.Equal(t, "1/2-1/2", Draw.String())
}
