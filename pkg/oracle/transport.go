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
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a message oriented connection to the oracle. It is satisfied
// by *websocket.Conn.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens connections to the oracle.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials the oracle over a websocket.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

// Dial opens a websocket connection to the given url.
func (dialer WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	ws := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: dialer.HandshakeTimeout,
	}

	if ws.HandshakeTimeout == 0 {
		ws.HandshakeTimeout = websocket.DefaultDialer.HandshakeTimeout
	}

	conn, _, err := ws.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return conn, nil
}
