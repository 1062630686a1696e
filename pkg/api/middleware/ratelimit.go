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

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	RequestsPerMinute = 120
	BurstSize         = 30

	limiterMaxAge   = 10 * time.Minute
	cleanupInterval = 5 * time.Minute

	// CodeRateLimited is the JSON-RPC server error sent to throttled sockets.
	CodeRateLimited = -32000
)

// IPRateLimiter keeps one token bucket per client IP, shared by HTTP
// requests and websocket messages.
type IPRateLimiter struct {
	clock    clockwork.Clock
	limiters map[string]*rateLimiterEntry
	mu       syncutil.Mutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(clock clockwork.Clock) *IPRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IPRateLimiter{
		clock:    clock,
		limiters: make(map[string]*rateLimiterEntry),
	}
}

// Allow takes a token from the bucket of ip.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(RequestsPerMinute)/60.0), BurstSize),
		}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Tracked returns how many IPs currently have a bucket.
func (rl *IPRateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Cleanup drops buckets of IPs not seen for ten minutes.
func (rl *IPRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterMaxAge {
			delete(rl.limiters, ip)
			log.Debug().Str("ip", ip).Msg("api: removed stale rate limiter")
		}
	}
}

// Run cleans up stale buckets every five minutes until ctx is done.
func (rl *IPRateLimiter) Run(ctx context.Context) {
	ticker := rl.clock.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			rl.Cleanup()
		}
	}
}

func HTTPRateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := ParseRemoteIP(r.RemoteAddr).String()
			if !limiter.Allow(host) {
				log.Warn().
					Str("ip", host).
					Str("path", r.URL.Path).
					Msg("api: HTTP rate limit exceeded")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type rateLimitError struct {
	ID      any    `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Error   struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// WebSocketRateLimitHandler answers throttled messages with a JSON-RPC
// error instead of passing them to handler.
func WebSocketRateLimitHandler(
	limiter *IPRateLimiter,
	handler func(*melody.Session, []byte),
) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		host := ParseRemoteIP(session.Request.RemoteAddr).String()
		if limiter.Allow(host) {
			handler(session, msg)
			return
		}

		log.Warn().
			Str("ip", host).
			Int("msg_size", len(msg)).
			Msg("api: websocket rate limit exceeded")

		resp := rateLimitError{JSONRPC: "2.0"}
		resp.Error.Code = CodeRateLimited
		resp.Error.Message = "rate limit exceeded"
		data, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Msg("api: failed to marshal rate limit error")
			return
		}
		if err := session.Write(data); err != nil {
			log.Error().Err(err).Msg("api: failed to send rate limit error")
		}
	}
}
