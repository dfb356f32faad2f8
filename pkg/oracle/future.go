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
	"errors"
	"sync"
	"time"
)

var (
	ErrRequestTimeout  = errors.New("oracle: request timed out")
	ErrRequestCanceled = errors.New("oracle: request canceled")
)

// Future is the pending result of an evaluation request. It is resolved
// exactly once: by the matching response, by its timeout, or by Cancel.
type Future struct {
	// ID is the correlation id of the request. It is zero for requests
	// which were never sent.
	ID uint64

	client *Client
	timer  *time.Timer

	once  sync.Once
	done  chan struct{}
	batch Batch
	err   error
}

func newFuture(client *Client, id uint64) *Future {
	return &Future{
		ID:     id,
		client: client,
		done:   make(chan struct{}),
	}
}

// resolved returns a future which already holds the given batch.
func resolved(batch Batch) *Future {
	future := newFuture(nil, 0)
	future.complete(batch, nil)
	return future
}

func (future *Future) complete(batch Batch, err error) {
	future.once.Do(func() {
		if future.timer != nil {
			future.timer.Stop()
		}

		if batch == nil && err == nil {
			batch = Batch{}
		}

		future.batch, future.err = batch, err
		close(future.done)
	})
}

// Done returns a channel which is closed once the future is resolved.
func (future *Future) Done() <-chan struct{} {
	return future.done
}

// Result blocks until the future is resolved and returns its result.
func (future *Future) Result() (Batch, error) {
	<-future.done
	return future.batch, future.err
}

// Wait is like Result, but gives up and cancels the request when the
// context ends.
func (future *Future) Wait(ctx context.Context) (Batch, error) {
	select {
	case <-future.done:
		return future.batch, future.err
	case <-ctx.Done():
		future.Cancel()
		return nil, ctx.Err()
	}
}

// Cancel resolves the future with ErrRequestCanceled and forgets the
// request. A response which arrives later is dropped.
func (future *Future) Cancel() {
	if future.client == nil {
		return
	}

	future.client.settle(future.ID, nil, ErrRequestCanceled)
}
