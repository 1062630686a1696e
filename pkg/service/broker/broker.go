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

// Package broker fans playtime notifications out to API clients and
// publishers. A slow subscriber loses notifications instead of stalling
// the tracker.
package broker

import (
	"context"
	"slices"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	ch      chan models.Notification
	methods []string
	dropped int
}

func (s *subscriber) wants(method string) bool {
	return len(s.methods) == 0 || slices.Contains(s.methods, method)
}

type Broker struct {
	source      <-chan models.Notification
	subscribers map[int]*subscriber
	mu          syncutil.RWMutex
	nextID      int
	closed      bool
}

func NewBroker(source <-chan models.Notification) *Broker {
	return &Broker{
		source:      source,
		subscribers: make(map[int]*subscriber),
	}
}

// Run broadcasts notifications from the source until ctx is done or the
// source is closed, then closes every subscriber channel.
func (b *Broker) Run(ctx context.Context) error {
	defer b.closeAll()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("broker: context done, shutting down")
			return nil
		case notif, ok := <-b.source:
			if !ok {
				log.Debug().Msg("broker: source closed")
				return nil
			}
			b.broadcast(notif)
		}
	}
}

func (b *Broker) broadcast(notif models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		if !sub.wants(notif.Method) {
			continue
		}
		select {
		case sub.ch <- notif:
		default:
			sub.dropped++
			log.Warn().
				Int("subscriber_id", id).
				Int("dropped", sub.dropped).
				Str("method", notif.Method).
				Msg("broker: subscriber full, dropping notification")
		}
	}
}

// Subscribe registers a new subscriber with the given buffer. When methods
// are given only those notifications are delivered. After shutdown the
// returned channel is already closed.
func (b *Broker) Subscribe(bufferSize int, methods ...string) (<-chan models.Notification, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Notification, max(bufferSize, 0))
	id := b.nextID
	b.nextID++
	if b.closed {
		close(ch)
		return ch, id
	}

	b.subscribers[id] = &subscriber{ch: ch, methods: methods}
	log.Debug().Int("subscriber_id", id).Strs("methods", methods).Msg("broker: subscribed")
	return ch, id
}

// Unsubscribe closes the subscriber's channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		close(sub.ch)
	}
	b.subscribers = make(map[int]*subscriber)
	b.closed = true
}
