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

package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startBroker(t *testing.T, source chan models.Notification) (*Broker, context.CancelFunc) {
	t.Helper()
	b := NewBroker(source)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return b, cancel
}

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return models.Notification{}
	}
}

func TestBroker_SubscribeIDs(t *testing.T) {
	t.Parallel()

	b := NewBroker(make(chan models.Notification))
	_, first := b.Subscribe(1)
	_, second := b.Subscribe(1)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, b.Subscribers())
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	b := NewBroker(make(chan models.Notification))
	ch, id := b.Subscribe(1)

	b.Unsubscribe(id)
	b.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, b.Subscribers())
}

func TestBroker_FanOut(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 4)
	b, _ := startBroker(t, source)
	subs := make([]<-chan models.Notification, 3)
	for i := range subs {
		subs[i], _ = b.Subscribe(4)
	}

	source <- models.Notification{Method: models.NotificationSessionStarted, Params: []byte(`{"gameId":1}`)}

	for _, sub := range subs {
		n := receive(t, sub)
		assert.Equal(t, models.NotificationSessionStarted, n.Method)
		assert.JSONEq(t, `{"gameId":1}`, string(n.Params))
	}
}

func TestBroker_MethodFilter(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 4)
	b, _ := startBroker(t, source)
	stats, _ := b.Subscribe(4, models.NotificationStatisticsUpdated)
	all, _ := b.Subscribe(4)

	source <- models.Notification{Method: models.NotificationSessionUpdated}
	source <- models.Notification{Method: models.NotificationStatisticsUpdated}

	assert.Equal(t, models.NotificationSessionUpdated, receive(t, all).Method)
	assert.Equal(t, models.NotificationStatisticsUpdated, receive(t, all).Method)
	assert.Equal(t, models.NotificationStatisticsUpdated, receive(t, stats).Method)
}

func TestBroker_OrderPreserved(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 8)
	b, _ := startBroker(t, source)
	sub, _ := b.Subscribe(8)

	methods := []string{
		models.NotificationSessionStarted,
		models.NotificationSessionUpdated,
		models.NotificationSessionEnded,
		models.NotificationStatisticsUpdated,
	}
	for _, m := range methods {
		source <- models.Notification{Method: m}
	}
	for _, m := range methods {
		assert.Equal(t, m, receive(t, sub).Method)
	}
}

func TestBroker_FullSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification)
	b, _ := startBroker(t, source)
	slow, _ := b.Subscribe(1)
	fast, _ := b.Subscribe(20)

	// unbuffered source: each send completes only once the broker is free
	for range 10 {
		select {
		case source <- models.Notification{Method: models.NotificationSessionUpdated}:
		case <-time.After(time.Second):
			t.Fatal("broker blocked on a full subscriber")
		}
	}

	for range 10 {
		receive(t, fast)
	}
	assert.Len(t, slow, 1)
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	t.Parallel()

	t.Run("context", func(t *testing.T) {
		t.Parallel()
		source := make(chan models.Notification)
		b := NewBroker(source)
		sub, _ := b.Subscribe(1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, b.Run(ctx))

		_, ok := <-sub
		assert.False(t, ok)
	})

	t.Run("source closed", func(t *testing.T) {
		t.Parallel()
		source := make(chan models.Notification)
		b := NewBroker(source)
		sub, _ := b.Subscribe(1)

		close(source)
		require.NoError(t, b.Run(context.Background()))

		_, ok := <-sub
		assert.False(t, ok)

		late, _ := b.Subscribe(1)
		_, ok = <-late
		assert.False(t, ok, "subscribing after shutdown yields a closed channel")
	})
}

func TestBroker_ConcurrentSubscribe(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 50)
	b, _ := startBroker(t, source)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, id := b.Subscribe(2)
			time.Sleep(5 * time.Millisecond)
			b.Unsubscribe(id)
		}()
	}
	for range 20 {
		source <- models.Notification{Method: models.NotificationSessionUpdated}
	}
	wg.Wait()

	assert.Zero(t, b.Subscribers())
}
