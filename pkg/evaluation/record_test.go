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
	"testing"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/flippy/pkg/othello"
)

func TestValidate(t *testing.T) {
	valid := Record{Score: 12, Depth: 24, Level: 24, Confidence: 95, BestMoves: []othello.Square{}}
	require.NoError(t, valid.Validate())

	tests := map[string]func(*Record){
		"negative depth":     func(r *Record) { r.Depth = -1 },
		"depth too large":    func(r *Record) { r.Depth = 61 },
		"score too small":    func(r *Record) { r.Score = -65 },
		"score too large":    func(r *Record) { r.Score = 65 },
		"unknown confidence": func(r *Record) { r.Confidence = 90 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			record := valid
			mutate(&record)
			require.Error(t, record.Validate())
		})
	}
}

func TestValidateFor(t *testing.T) {
	pos := othello.Start()
	moves, err := othello.ParseMoves("f5d6c3")
	require.NoError(t, err)

	record := Record{Confidence: 87, BestMoves: moves}
	require.NoError(t, record.ValidateFor(pos))

	record.BestMoves = []othello.Square{square(t, "a1")}
	require.ErrorIs(t, record.ValidateFor(pos), othello.ErrIllegalMove)

	record.BestMoves = []othello.Square{othello.Pass}
	require.ErrorIs(t, record.ValidateFor(pos), othello.ErrIllegalMove)

	record.BestMoves = nil
	require.Error(t, record.ValidateFor(pos))
}

func TestPassed(t *testing.T) {
	record := Record{Score: 8, BestMoves: []othello.Square{3, 4}}
	passed := record.Passed()

	require.Equal(t, -8, passed.Score)
	require.Equal(t, []othello.Square{othello.Pass, 3, 4}, passed.BestMoves)
	require.Equal(t, []othello.Square{3, 4}, record.BestMoves)
}

func TestTransform(t *testing.T) {
	record := Record{BestMoves: []othello.Square{square(t, "a1"), othello.Pass, square(t, "c2")}}

	mirrored := record.Transform(othello.MirrorFiles)
	require.Equal(t, []othello.Square{square(t, "h1"), othello.Pass, square(t, "f2")}, mirrored.BestMoves)
	require.Equal(t, square(t, "a1"), record.BestMoves[0])

	require.Equal(t, record, record.Transform(othello.Identity))
}

func TestSourceOf(t *testing.T) {
	require.Equal(t, Exact, SourceOf(100))
	for _, confidence := range []int{73, 87, 95, 98, 99} {
		require.Equal(t, Approximate, SourceOf(confidence))
	}
}
