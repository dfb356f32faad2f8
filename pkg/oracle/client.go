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

// Package oracle implements a client for a remote scoring oracle, which
// evaluates othello positions identified by their canonical keys, and a
// reference server which answers from an opening book.
package oracle

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/othello"
)

// State is the state of a client's connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (state State) String() string {
	switch state {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "?"
	}
}

// Config configures a Client.
type Config struct {
	URL        string        `yaml:"url"`
	RetryDelay time.Duration `yaml:"retry-delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

const (
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 10 * time.Second

	sendQueueSize = 64
)

// Client is a connection to the oracle which reconnects whenever it is
// lost. Requests made while it is not connected resolve to an empty
// batch immediately.
type Client struct {
	config Config
	dialer Dialer

	mu      sync.Mutex
	state   State
	changed chan struct{}
	session *session

	// lastID is never reset, so a response which arrives after a
	// reconnect can never be matched to a newer request.
	lastID  uint64
	pending map[uint64]*Future
}

type session struct {
	conn Conn
	send chan []byte
	done chan struct{}
}

// NewClient returns a disconnected client. Run must be called for it to
// connect.
func NewClient(config Config, dialer Dialer) *Client {
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if dialer == nil {
		dialer = WebsocketDialer{}
	}

	return &Client{
		config:  config,
		dialer:  dialer,
		changed: make(chan struct{}),
		pending: make(map[uint64]*Future),
	}
}

// Run connects to the oracle and keeps reconnecting after RetryDelay
// every time the connection is lost or cannot be established. It returns
// when the context ends.
func (client *Client) Run(ctx context.Context) error {
	for {
		client.connect(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(client.config.RetryDelay):
		}
	}
}

func (client *Client) connect(ctx context.Context) {
	log := logrus.WithField("url", client.config.URL)

	client.setState(Connecting, nil)

	conn, err := client.dialer.Dial(ctx, client.config.URL)
	if err != nil {
		log.WithError(err).Warn("oracle: connection failed")
		client.setState(Disconnected, nil)
		return
	}

	sess := &session{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	client.setState(Connected, sess)
	log.Info("oracle: connected")

	// unblock the reader when the client is shut down
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	go client.write(sess)
	client.read(sess)

	client.setState(Disconnected, nil)
	close(sess.done)
	_ = conn.Close()

	log.Info("oracle: disconnected")
}

func (client *Client) read(sess *session) {
	for {
		_, message, err := sess.conn.ReadMessage()
		if err != nil {
			logrus.WithError(err).Debug("oracle: read failed")
			return
		}

		client.handle(message)
	}
}

func (client *Client) write(sess *session) {
	for {
		select {
		case <-sess.done:
			return
		case message := <-sess.send:
			logrus.Debugf("oracle: -> %s", message)
			if err := sess.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).Warn("oracle: write failed")
				_ = sess.conn.Close()
				return
			}
		}
	}
}

// handle delivers a message received from the oracle to the request it
// answers. Malformed messages and responses to unknown requests are
// dropped.
func (client *Client) handle(message []byte) {
	logrus.Debugf("oracle: <- %s", message)

	var response Response
	if err := json.Unmarshal(message, &response); err != nil {
		logrus.WithError(err).Warn("oracle: dropping malformed message")
		return
	}

	batch := make(Batch, len(response.Data.Evaluations))
	for _, evaluation := range response.Data.Evaluations {
		key, record, err := evaluation.Record()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"id":  response.ID,
				"key": evaluation.Position,
			}).WithError(err).Warn("oracle: skipping invalid evaluation")
			continue
		}

		batch[key] = record
	}

	if !client.settle(response.ID, batch, nil) {
		logrus.WithField("id", response.ID).Debug("oracle: dropping response to unknown request")
	}
}

// settle removes a pending request and resolves its future. It reports
// whether the request was still pending.
func (client *Client) settle(id uint64, batch Batch, err error) bool {
	client.mu.Lock()
	future, found := client.pending[id]
	delete(client.pending, id)
	client.mu.Unlock()

	if !found {
		return false
	}

	future.complete(batch, err)
	return true
}

func (client *Client) setState(state State, sess *session) {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.state = state
	client.session = sess

	close(client.changed)
	client.changed = make(chan struct{})
}

// State returns the current state of the connection.
func (client *Client) State() State {
	client.mu.Lock()
	defer client.mu.Unlock()

	return client.state
}

// IsConnected reports whether requests are currently being sent.
func (client *Client) IsConnected() bool {
	return client.State() == Connected
}

// WaitFor blocks until the connection reaches the given state or the
// context ends.
func (client *Client) WaitFor(ctx context.Context, state State) error {
	for {
		client.mu.Lock()
		current, changed := client.state, client.changed
		client.mu.Unlock()

		if current == state {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending returns the number of requests awaiting a response.
func (client *Client) Pending() int {
	client.mu.Lock()
	defer client.mu.Unlock()

	return len(client.pending)
}

// Request asks the oracle to evaluate the given canonical keys. It never
// blocks. If the client is not connected, or the request cannot be
// queued, the returned future already holds an empty batch.
func (client *Client) Request(keys []othello.Key) *Future {
	if len(keys) == 0 {
		return resolved(Batch{})
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	if client.state != Connected {
		return resolved(Batch{})
	}

	client.lastID++
	id := client.lastID

	message, err := NewEvaluationRequest(id, keys)
	if err != nil {
		logrus.WithError(err).Error("oracle: encoding request")
		return resolved(Batch{})
	}

	select {
	case client.session.send <- message:
	default:
		logrus.WithField("id", id).Warn("oracle: send queue full, dropping request")
		return resolved(Batch{})
	}

	future := newFuture(client, id)
	if client.config.Timeout > 0 {
		future.timer = time.AfterFunc(client.config.Timeout, func() {
			if client.settle(id, nil, ErrRequestTimeout) {
				logrus.WithField("id", id).Debug("oracle: request timed out")
			}
		})
	}

	client.pending[id] = future
	return future
}

// Evaluate sends a request and waits for its response.
func (client *Client) Evaluate(ctx context.Context, keys []othello.Key) (Batch, error) {
	return client.Request(keys).Wait(ctx)
}
