// Reina Core
// Copyright (c) 2026 The Reina Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Core.
//
// Reina Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Core.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the JSON-RPC 2.0 interface over websocket and HTTP
// and pushes playtime notifications to connected clients.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/middleware"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	maxRequestBody    = 1 << 20
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var defaultAllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*", "tauri://localhost"}

type Server struct {
	cfg     *config.Instance
	tracker *playtime.Tracker
	query   *playtime.Query
	melody  *melody.Melody
	limiter *middleware.IPRateLimiter
	filter  *middleware.IPFilter
	router  *chi.Mux
}

func NewServer(
	cfg *config.Instance,
	tracker *playtime.Tracker,
	query *playtime.Query,
	clock clockwork.Clock,
) *Server {
	s := &Server{
		cfg:     cfg,
		tracker: tracker,
		query:   query,
		melody:  melody.New(),
		limiter: middleware.NewIPRateLimiter(clock),
		filter:  middleware.NewIPFilter(cfg.AllowedIPs()),
	}
	s.melody.Config.MaxMessageSize = maxRequestBody
	s.melody.HandleMessage(middleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))
	s.melody.HandleConnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api: client connected")
	})
	s.melody.HandleDisconnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api: client disconnected")
	})
	s.router = s.routes()
	return s
}

func (s *Server) allowedOrigins() []string {
	origins := append([]string{}, defaultAllowedOrigins...)
	return append(origins, s.cfg.AllowedOrigins()...)
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.HTTPIPFilterMiddleware(s.filter))
	r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("api: handling websocket request")
		}
	})
	r.Post("/api", s.handlePost)

	return r
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) rpcContext(remoteAddr string) rpcContext {
	return rpcContext{
		cfg:        s.cfg,
		tracker:    s.tracker,
		query:      s.query,
		remoteAddr: remoteAddr,
		isLocal:    middleware.IsLoopbackAddr(remoteAddr),
	}
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// keepalive from clients that can't send websocket pings
	if bytes.Equal(msg, []byte("ping")) {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("api: sending pong")
		}
		return
	}

	reply := processMessage(session.Request.Context(), s.rpcContext(session.Request.RemoteAddr), msg)
	if reply == nil {
		return
	}
	if err := session.Write(reply); err != nil {
		log.Error().Err(err).Msg("api: error sending response")
	}
}

// handlePost answers a single JSON-RPC request over plain HTTP.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	reply := processMessage(r.Context(), s.rpcContext(r.RemoteAddr), body)
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(reply); err != nil {
		log.Error().Err(err).Msg("api: error writing response")
	}
}

// Broadcast sends a notification to every connected websocket.
func (s *Server) Broadcast(notif models.Notification) error {
	data, err := json.Marshal(models.RequestObject{
		JSONRPC: "2.0",
		Method:  notif.Method,
		Params:  notif.Params,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.melody.Broadcast(data); err != nil {
		return fmt.Errorf("broadcast notification: %w", err)
	}
	return nil
}

func (s *Server) broadcastLoop(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			if err := s.Broadcast(notif); err != nil {
				log.Error().Err(err).Str("method", notif.Method).Msg("api: broadcasting notification")
			}
		}
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context, notifications <-chan models.Notification) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.APIListen())
	if err != nil {
		return fmt.Errorf("api: listen on %s: %w", s.cfg.APIListen(), err)
	}
	return s.Serve(ctx, ln, notifications)
}

// Serve serves on ln until ctx is done, then closes every websocket and
// shuts the HTTP server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener, notifications <-chan models.Notification) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info().Str("addr", ln.Addr().String()).Msg("api: server listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		s.broadcastLoop(gctx, notifications)
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := s.melody.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
			log.Warn().Err(err).Msg("api: closing websocket sessions")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api: shutdown: %w", err)
		}
		log.Info().Msg("api: server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
