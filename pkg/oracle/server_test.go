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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

type memoryBook struct {
	mu      sync.Mutex
	records map[othello.Key]evaluation.Record
}

func newMemoryBook() *memoryBook {
	return &memoryBook{records: make(map[othello.Key]evaluation.Record)}
}

func (book *memoryBook) Lookup(_ context.Context, keys []othello.Key) (map[othello.Key]evaluation.Record, error) {
	book.mu.Lock()
	defer book.mu.Unlock()

	found := make(map[othello.Key]evaluation.Record)
	for _, key := range keys {
		if record, ok := book.records[key]; ok {
			found[key] = record
		}
	}

	return found, nil
}

func (book *memoryBook) Save(_ context.Context, key othello.Key, record evaluation.Record) (bool, error) {
	book.mu.Lock()
	defer book.mu.Unlock()

	book.records[key] = record
	return true, nil
}

func newTestServer(t *testing.T, book Book) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(NewServer(book, ServerConfig{}).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerPing(t *testing.T) {
	srv := newTestServer(t, newMemoryBook())

	resp, err := http.Get(srv.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body["ok"])
}

func TestServerPositions(t *testing.T) {
	book := newMemoryBook()
	srv := newTestServer(t, book)

	start := othello.Start()
	moves, err := othello.ParseMoves("f5d6")
	require.NoError(t, err)

	record := evaluation.Record{Score: 0, Depth: 22, Level: 22, Confidence: 99, BestMoves: moves}
	body, err := json.Marshal(EvaluationResponse{Evaluations: []Evaluation{
		NewEvaluation(start.Key(), record),
	}})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/evaluations", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("lookup is case insensitive", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/positions/" + strings.ToLower(start.Key().String()))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var evaluation Evaluation
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&evaluation))
		require.Equal(t, start.Key().String(), evaluation.Position)
		require.Equal(t, 22, evaluation.Depth)
	})

	t.Run("missing position", func(t *testing.T) {
		child, err := start.ApplyMove(moves[0])
		require.NoError(t, err)

		resp, err := http.Get(srv.URL + "/api/positions/" + child.Key().String())
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid key", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/positions/nope")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid evaluations are not saved", func(t *testing.T) {
		illegal := record
		illegal.BestMoves = []othello.Square{othello.NewSquare(0, 0)}

		other := othello.Key{Mover: 1, Opponent: 2}
		body, err := json.Marshal(EvaluationResponse{Evaluations: []Evaluation{
			NewEvaluation(other, evaluation.Record{Confidence: 100, BestMoves: []othello.Square{}}),
			NewEvaluation(start.Key(), illegal),
		}})
		require.NoError(t, err)

		resp, err := http.Post(srv.URL+"/api/evaluations", "application/json", strings.NewReader(string(body)))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		records, err := book.Lookup(context.Background(), []othello.Key{other.Position().Key()})
		require.NoError(t, err)
		require.Empty(t, records)
	})
}

func TestServerWebsocket(t *testing.T) {
	book := newMemoryBook()
	srv := newTestServer(t, book)

	start := othello.Start()
	record := testRecord(0)
	record.BestMoves = []othello.Square{othello.NewSquare(5, 4)}
	_, err := book.Save(context.Background(), start.Key(), record)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	t.Run("raw protocol", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		// garbage and unknown events are ignored
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":1,"event":"hello"}`)))

		_, unknown := testKeys(t)
		message, err := NewEvaluationRequest(2, []othello.Key{start.Key(), unknown})
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, message))

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))
		_, reply, err := conn.ReadMessage()
		require.NoError(t, err)

		var response Response
		require.NoError(t, json.Unmarshal(reply, &response))
		require.Equal(t, uint64(2), response.ID)
		require.Len(t, response.Data.Evaluations, 1)
		require.Equal(t, start.Key().String(), response.Data.Evaluations[0].Position)
	})

	t.Run("client", func(t *testing.T) {
		client := NewClient(Config{URL: url, RetryDelay: 10 * time.Millisecond}, WebsocketDialer{})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go client.Run(ctx)

		waitCtx, waitCancel := context.WithTimeout(ctx, testTimeout)
		defer waitCancel()
		require.NoError(t, client.WaitFor(waitCtx, Connected))

		_, unknown := testKeys(t)
		batch, err := client.Evaluate(waitCtx, []othello.Key{start.Key(), unknown})
		require.NoError(t, err)
		require.Equal(t, Batch{start.Key(): record}, batch)
	})
}
