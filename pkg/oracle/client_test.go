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
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

const testTimeout = 5 * time.Second

// pipeConn is an in-memory Conn. Messages pushed to reads are returned by
// ReadMessage and written messages appear on writes.
type pipeConn struct {
	reads  chan []byte
	writes chan []byte

	once   sync.Once
	closed chan struct{}
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		reads:  make(chan []byte, 16),
		writes: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (conn *pipeConn) ReadMessage() (int, []byte, error) {
	select {
	case message := <-conn.reads:
		return websocket.TextMessage, message, nil
	case <-conn.closed:
		return 0, nil, io.EOF
	}
}

func (conn *pipeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-conn.closed:
		return io.ErrClosedPipe
	case conn.writes <- data:
		return nil
	}
}

func (conn *pipeConn) Close() error {
	conn.once.Do(func() { close(conn.closed) })
	return nil
}

// request returns the next evaluation request written to the connection.
func (conn *pipeConn) request(t *testing.T) (uint64, []othello.Key) {
	t.Helper()

	select {
	case message := <-conn.writes:
		var request Request
		require.NoError(t, json.Unmarshal(message, &request))
		require.Equal(t, EvaluationRequestEvent, request.Event)

		var data EvaluationRequest
		require.NoError(t, json.Unmarshal(request.Data, &data))
		return request.ID, data.Positions
	case <-time.After(testTimeout):
		t.Fatal("no request was sent")
		return 0, nil
	}
}

// respond delivers a response to the client.
func (conn *pipeConn) respond(t *testing.T, id uint64, batch Batch) {
	t.Helper()

	response := Response{ID: id}
	response.Data.Evaluations = []Evaluation{}
	for key, record := range batch {
		response.Data.Evaluations = append(response.Data.Evaluations, NewEvaluation(key, record))
	}

	message, err := json.Marshal(response)
	require.NoError(t, err)
	conn.reads <- message
}

// fakeDialer hands out the connections and errors pushed to it, in order.
type fakeDialer struct {
	results chan any
	dials   atomic.Int32
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{results: make(chan any, 8)}
}

func (dialer *fakeDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	dialer.dials.Add(1)

	select {
	case result := <-dialer.results:
		if err, ok := result.(error); ok {
			return nil, err
		}
		return result.(*pipeConn), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func startClient(t *testing.T, config Config) (*Client, *fakeDialer) {
	t.Helper()

	if config.RetryDelay == 0 {
		config.RetryDelay = 10 * time.Millisecond
	}

	dialer := newFakeDialer()
	client := NewClient(config, dialer)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- client.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-stopped:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(testTimeout):
			t.Error("client did not stop")
		}
	})

	return client, dialer
}

func connect(t *testing.T, client *Client, dialer *fakeDialer) *pipeConn {
	t.Helper()

	conn := newPipeConn()
	dialer.results <- conn

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, client.WaitFor(ctx, Connected))

	return conn
}

func waitFuture(t *testing.T, future *Future) (Batch, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	batch, err := future.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return batch, err
}

func requireDone(t *testing.T, future *Future) {
	t.Helper()

	select {
	case <-future.Done():
	default:
		t.Fatal("future is not resolved")
	}
}

func requirePending(t *testing.T, future *Future) {
	t.Helper()

	select {
	case <-future.Done():
		t.Fatal("future is resolved")
	default:
	}
}

func testKeys(t *testing.T) (othello.Key, othello.Key) {
	t.Helper()

	start := othello.Start()
	child, err := start.ApplyMove(othello.NewSquare(5, 4)) // f5
	require.NoError(t, err)

	return start.Key(), child.Key()
}

func testRecord(score int) evaluation.Record {
	return evaluation.Record{
		Score:      score,
		Depth:      20,
		Level:      21,
		Confidence: 98,
		BestMoves:  []othello.Square{othello.NewSquare(3, 2)},
		Source:     evaluation.Approximate,
	}
}

func TestRequestWhileDisconnected(t *testing.T) {
	client := NewClient(Config{URL: "ws://localhost"}, newFakeDialer())
	require.Equal(t, Disconnected, client.State())
	require.False(t, client.IsConnected())

	key, _ := testKeys(t)
	future := client.Request([]othello.Key{key})
	requireDone(t, future)

	batch, err := future.Result()
	require.NoError(t, err)
	require.Empty(t, batch)
	require.Zero(t, future.ID)
	require.Zero(t, client.Pending())
}

func TestRequestResponse(t *testing.T) {
	client, dialer := startClient(t, Config{})
	conn := connect(t, client, dialer)

	key, _ := testKeys(t)
	future := client.Request([]othello.Key{key})
	require.Equal(t, 1, client.Pending())

	id, keys := conn.request(t)
	require.Equal(t, future.ID, id)
	require.Equal(t, []othello.Key{key}, keys)

	conn.respond(t, id, Batch{key: testRecord(4)})

	batch, err := waitFuture(t, future)
	require.NoError(t, err)
	require.Equal(t, Batch{key: testRecord(4)}, batch)
	require.Zero(t, client.Pending())
}

func TestRequestEncoding(t *testing.T) {
	message, err := NewEvaluationRequest(7, []othello.Key{othello.Start().Key()})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": 7,
		"event": "evaluation_request",
		"data": {"positions": ["00000008100000000000001008000000"]}
	}`, string(message))
}

func TestReverseOrderResponses(t *testing.T) {
	client, dialer := startClient(t, Config{})
	conn := connect(t, client, dialer)

	first, second := testKeys(t)
	f1 := client.Request([]othello.Key{first})
	f2 := client.Request([]othello.Key{second})
	require.NotEqual(t, f1.ID, f2.ID)

	id1, _ := conn.request(t)
	id2, _ := conn.request(t)

	conn.respond(t, id2, Batch{second: testRecord(-6)})
	batch, err := waitFuture(t, f2)
	require.NoError(t, err)
	require.Equal(t, Batch{second: testRecord(-6)}, batch)
	requirePending(t, f1)

	conn.respond(t, id1, Batch{first: testRecord(0)})
	batch, err = waitFuture(t, f1)
	require.NoError(t, err)
	require.Equal(t, Batch{first: testRecord(0)}, batch)
}

func TestUnknownResponsesAreDropped(t *testing.T) {
	client, dialer := startClient(t, Config{})
	conn := connect(t, client, dialer)

	first, second := testKeys(t)
	f1 := client.Request([]othello.Key{first})
	f2 := client.Request([]othello.Key{second})
	id1, _ := conn.request(t)
	conn.request(t)

	conn.respond(t, 99, Batch{first: testRecord(10)})
	conn.respond(t, id1, Batch{first: testRecord(2)})

	// messages are handled in order, so the unknown id was seen first
	batch, err := waitFuture(t, f1)
	require.NoError(t, err)
	require.Equal(t, Batch{first: testRecord(2)}, batch)

	requirePending(t, f2)
	require.Equal(t, 1, client.Pending())

	// a duplicate response does not touch the resolved future
	conn.respond(t, id1, Batch{first: testRecord(30)})
	conn.respond(t, f2.ID, Batch{})
	waitFuture(t, f2)

	batch, err = f1.Result()
	require.NoError(t, err)
	require.Equal(t, Batch{first: testRecord(2)}, batch)
	require.Zero(t, client.Pending())
}

func TestMalformedMessages(t *testing.T) {
	client, dialer := startClient(t, Config{})
	conn := connect(t, client, dialer)

	first, second := testKeys(t)
	future := client.Request([]othello.Key{first, second})
	id, _ := conn.request(t)

	conn.reads <- []byte("not json")

	// one bad evaluation does not spoil the rest of the batch
	bad := NewEvaluation(second, testRecord(0))
	bad.Confidence = 50
	message, err := json.Marshal(Response{
		ID: id,
		Data: EvaluationResponse{Evaluations: []Evaluation{
			NewEvaluation(first, testRecord(8)),
			bad,
			{Position: "XYZ"},
		}},
	})
	require.NoError(t, err)
	conn.reads <- message

	batch, err := waitFuture(t, future)
	require.NoError(t, err)
	require.Equal(t, Batch{first: testRecord(8)}, batch)
	require.Equal(t, Connected, client.State())
}

func TestRequestTimeout(t *testing.T) {
	client, dialer := startClient(t, Config{Timeout: 20 * time.Millisecond})
	conn := connect(t, client, dialer)

	key, _ := testKeys(t)
	future := client.Request([]othello.Key{key})
	id, _ := conn.request(t)

	_, err := waitFuture(t, future)
	require.ErrorIs(t, err, ErrRequestTimeout)
	require.Zero(t, client.Pending())

	// a late response is dropped
	conn.respond(t, id, Batch{key: testRecord(1)})
	_, err = future.Result()
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestRequestCancel(t *testing.T) {
	client, dialer := startClient(t, Config{})
	connect(t, client, dialer)

	key, _ := testKeys(t)

	t.Run("cancel", func(t *testing.T) {
		future := client.Request([]othello.Key{key})
		future.Cancel()

		requireDone(t, future)
		_, err := future.Result()
		require.ErrorIs(t, err, ErrRequestCanceled)
		require.Zero(t, client.Pending())
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Evaluate(ctx, []othello.Key{key})
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, client.Pending())
	})
}

func TestReconnect(t *testing.T) {
	client, dialer := startClient(t, Config{})
	conn := connect(t, client, dialer)

	key, _ := testKeys(t)
	before := client.Request([]othello.Key{key})
	conn.request(t)

	require.NoError(t, conn.Close())

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, client.WaitFor(ctx, Connecting))

	// requests are not queued while the client is away
	dropped := client.Request([]othello.Key{key})
	requireDone(t, dropped)
	batch, err := dropped.Result()
	require.NoError(t, err)
	require.Empty(t, batch)

	conn = connect(t, client, dialer)

	after := client.Request([]othello.Key{key})
	id, _ := conn.request(t)
	require.Equal(t, after.ID, id)
	require.Greater(t, after.ID, before.ID)

	// a stale response for the old id cannot resolve the new request
	conn.respond(t, before.ID, Batch{key: testRecord(12)})
	conn.respond(t, after.ID, Batch{key: testRecord(-12)})

	batch, err = waitFuture(t, after)
	require.NoError(t, err)
	require.Equal(t, Batch{key: testRecord(-12)}, batch)
}

func TestDialFailure(t *testing.T) {
	client, dialer := startClient(t, Config{})

	dialer.results <- errors.New("connection refused")
	connect(t, client, dialer)

	require.GreaterOrEqual(t, dialer.dials.Load(), int32(2))
}

func TestEmptyRequest(t *testing.T) {
	client, dialer := startClient(t, Config{})
	connect(t, client, dialer)

	future := client.Request(nil)
	requireDone(t, future)
	require.Zero(t, client.Pending())
}
