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

package oracle

import (
	"encoding/json"
	"fmt"
	"math"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

// EvaluationRequestEvent is the event name of an evaluation request.
const EvaluationRequestEvent = "evaluation_request"

// Request is a message sent to the oracle.
type Request struct {
	ID    uint64          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EvaluationRequest is the data of an evaluation request.
type EvaluationRequest struct {
	Positions []othello.Key `json:"positions"`
}

// Response is a message received from the oracle. It carries the id of
// the request it answers.
type Response struct {
	ID   uint64             `json:"id"`
	Data EvaluationResponse `json:"data"`
}

// EvaluationResponse is the data of a response to an evaluation request.
type EvaluationResponse struct {
	Evaluations []Evaluation `json:"evaluations"`
}

// Evaluation is the wire form of a single evaluated position. The
// position is kept as a string so that one bad entry does not spoil the
// rest of its batch.
type Evaluation struct {
	Position   string  `json:"position"`
	Level      int     `json:"level"`
	Depth      int     `json:"depth"`
	Confidence float64 `json:"confidence"`
	Score      int     `json:"score"`
	BestMoves  []int   `json:"best_moves"`
}

// NewEvaluation returns the wire form of a record.
func NewEvaluation(key othello.Key, record evaluation.Record) Evaluation {
	moves := make([]int, len(record.BestMoves))
	for i, move := range record.BestMoves {
		moves[i] = int(move)
	}

	return Evaluation{
		Position:   key.String(),
		Level:      record.Level,
		Depth:      record.Depth,
		Confidence: float64(record.Confidence),
		Score:      record.Score,
		BestMoves:  moves,
	}
}

// Record decodes the key and record of an evaluation.
func (e Evaluation) Record() (othello.Key, evaluation.Record, error) {
	key, err := othello.ParseKey(e.Position)
	if err != nil {
		return othello.Key{}, evaluation.Record{}, err
	}

	moves := make([]othello.Square, len(e.BestMoves))
	for i, move := range e.BestMoves {
		sq := othello.Square(move)
		if move != int(othello.Pass) && (move < 0 || move >= othello.Squares) {
			return othello.Key{}, evaluation.Record{}, fmt.Errorf("best move %d: %w", move, othello.ErrOutOfRange)
		}

		moves[i] = sq
	}

	confidence := int(math.Round(e.Confidence))
	record := evaluation.Record{
		Score:      e.Score,
		Depth:      e.Depth,
		Level:      e.Level,
		Confidence: confidence,
		BestMoves:  moves,
		Source:     evaluation.SourceOf(confidence),
	}

	if err := record.Validate(); err != nil {
		return othello.Key{}, evaluation.Record{}, fmt.Errorf("evaluation %s: %w", key, err)
	}

	return key, record, nil
}

// Batch maps canonical keys to their evaluations.
type Batch map[othello.Key]evaluation.Record

// NewEvaluationRequest encodes an evaluation request for the given keys.
func NewEvaluationRequest(id uint64, keys []othello.Key) ([]byte, error) {
	if keys == nil {
		keys = []othello.Key{}
	}

	data, err := json.Marshal(EvaluationRequest{Positions: keys})
	if err != nil {
		return nil, err
	}

	return json.Marshal(Request{ID: id, Event: EvaluationRequestEvent, Data: data})
}
