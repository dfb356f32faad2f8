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
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/othello"
)

// Book is the store of evaluations a Server answers from.
type Book interface {
	Lookup(ctx context.Context, keys []othello.Key) (map[othello.Key]evaluation.Record, error)
	Save(ctx context.Context, key othello.Key, record evaluation.Record) (bool, error)
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Address string `yaml:"address"`
	Book    string `yaml:"book"`
}

const (
	idlePingInterval = 30 * time.Second
	lookupTimeout    = 2 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// Server is an oracle which answers evaluation requests from its book.
// It does not search positions which are missing from the book.
type Server struct {
	book   Book
	config ServerConfig

	upgrader websocket.Upgrader
}

// NewServer returns a server answering from the given book.
func NewServer(book Book, config ServerConfig) *Server {
	return &Server{
		book:   book,
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router returns the http handler of the server.
func (server *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logrus.StandardLogger(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/positions/{key}", server.getPosition)
	r.Post("/api/evaluations", server.postEvaluations)
	r.Get("/ws", server.serveWS)

	return r
}

// ListenAndServe serves on the configured address until the context
// ends, and then shuts down gracefully.
func (server *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    server.config.Address,
		Handler: server.Router(),
	}

	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	logrus.Infof("oracle: listening on %s", server.config.Address)

	select {
	case err, ok := <-errs:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	return nil
}

func (server *Server) getPosition(w http.ResponseWriter, r *http.Request) {
	key, err := othello.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	key = key.Position().Key()

	records, err := server.book.Lookup(r.Context(), []othello.Key{key})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	record, found := records[key]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "position not found"})
		return
	}

	writeJSON(w, http.StatusOK, NewEvaluation(key, record))
}

func (server *Server) postEvaluations(w http.ResponseWriter, r *http.Request) {
	var body EvaluationResponse
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	keys := make([]othello.Key, len(body.Evaluations))
	records := make([]evaluation.Record, len(body.Evaluations))
	for i, e := range body.Evaluations {
		key, record, err := e.Record()
		if err == nil {
			err = record.ValidateFor(key.Position())
		}

		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("evaluation %d: %v", i, err),
			})
			return
		}

		normalized, symmetry := key.Position().Normalize()
		keys[i], records[i] = normalized.Key(), record.Transform(symmetry)
	}

	saved := 0
	for i, key := range keys {
		ok, err := server.book.Save(r.Context(), key, records[i])
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		if ok {
			saved++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"saved": saved, "skipped": len(keys) - saved})
}

func (server *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := server.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	log := logrus.WithField("conn", uuid.NewString())
	log.Debug("oracle: client connected")

	send := make(chan []byte, 16)
	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, send); err != nil {
			log.WithError(err).Debug("oracle: write failed")
		}
	}()

	defer close(send)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Debug("oracle: client disconnected")
			return
		}

		var request Request
		if err := json.Unmarshal(message, &request); err != nil {
			log.WithError(err).Warn("oracle: dropping malformed message")
			continue
		}

		switch request.Event {
		case EvaluationRequestEvent:
			response, err := server.answer(r.Context(), request)
			if err != nil {
				log.WithField("id", request.ID).WithError(err).Warn("oracle: dropping request")
				continue
			}

			select {
			case send <- response:
			default:
				log.WithField("id", request.ID).Warn("oracle: send queue full, dropping response")
			}
		default:
			log.WithField("event", request.Event).Warn("oracle: unknown event")
		}
	}
}

// answer looks up the positions of an evaluation request in the book.
// Positions missing from the book are left out of the response.
func (server *Server) answer(ctx context.Context, request Request) ([]byte, error) {
	var data EvaluationRequest
	if err := json.Unmarshal(request.Data, &data); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	records, err := server.book.Lookup(ctx, data.Positions)
	if err != nil {
		logrus.WithField("id", request.ID).WithError(err).Warn("oracle: book lookup failed")
	}

	evaluations := make([]Evaluation, 0, len(records))
	for _, key := range data.Positions {
		if record, found := records[key]; found {
			evaluations = append(evaluations, NewEvaluation(key, record))
		}
	}

	return json.Marshal(Response{
		ID:   request.ID,
		Data: EvaluationResponse{Evaluations: evaluations},
	})
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()

	for {
		select {
		case message, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
