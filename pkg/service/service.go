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

// Package service wires the play time tracker, its store, the API server
// and the optional publishers into one running process.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/ReinaManager/reina-core/pkg/database/boltdb"
	"github.com/ReinaManager/reina-core/pkg/database/userdb"
	"github.com/ReinaManager/reina-core/pkg/service/broker"
	"github.com/ReinaManager/reina-core/pkg/service/discovery"
	"github.com/ReinaManager/reina-core/pkg/service/monitor"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/ReinaManager/reina-core/pkg/service/publishers"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	notificationBuffer = 100
	subscriberBuffer   = 100
	finalFlushTimeout  = 10 * time.Second
)

type Options struct {
	Config   *config.Instance
	Clock    clockwork.Clock
	// Launcher replaces the built-in process monitor when set. Events then
	// arrive only through the events.* API methods.
	Launcher playtime.Launcher
	// Listener is used instead of listening on the configured address.
	Listener net.Listener
	DataDir  string
}

func openStore(ctx context.Context, cfg *config.Instance, dataDir string) (database.PlaytimeDBI, error) {
	switch cfg.DatabaseBackend() {
	case config.BackendBolt:
		log.Info().Str("dir", dataDir).Msg("opening bolt play time database")
		db, err := boltdb.OpenBoltDB(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open bolt database: %w", err)
		}
		return db, nil
	default:
		log.Info().Str("dir", dataDir).Msg("opening sqlite play time database")
		db, err := userdb.OpenUserDB(ctx, dataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return db, nil
	}
}

// startPublishers connects every enabled MQTT publisher. Publishers that
// fail to connect are skipped.
func startPublishers(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Instance,
	b *broker.Broker,
) int {
	started := 0
	for _, pc := range cfg.GetMQTTPublishers() {
		if pc.Enabled != nil && !*pc.Enabled {
			continue
		}
		if pc.Broker == "" || pc.Topic == "" {
			log.Warn().Str("broker", pc.Broker).Msg("mqtt publisher missing broker or topic, skipping")
			continue
		}

		publisher := publishers.NewMQTTPublisher(pc.Broker, pc.Topic, pc.Filter)
		if err := publisher.Connect(); err != nil {
			log.Error().Err(err).Str("broker", pc.Broker).Msg("failed to start mqtt publisher")
			continue
		}

		sub, _ := b.Subscribe(subscriberBuffer, pc.Filter...)
		g.Go(func() error {
			publisher.Run(ctx, sub)
			return nil
		})
		started++
	}
	return started
}

// Start opens the store and runs every component until stop is called.
// done is closed once everything has shut down.
//
//nolint:gocritic // options copied once at startup
func Start(opts Options) (stop func() error, done <-chan struct{}, err error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, nil, errors.New("service: config is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())

	store, err := openStore(ctx, cfg, opts.DataDir)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	ns := make(chan models.Notification, notificationBuffer)

	var mon *monitor.ProcessMonitor
	launcher := opts.Launcher
	if launcher == nil {
		mon = monitor.NewProcessMonitor(monitor.Options{
			Clock:          clock,
			UpdateInterval: cfg.UpdateInterval(),
		})
		launcher = mon
	}

	tracker := playtime.NewTracker(store, playtime.Options{
		Clock:         clock,
		Launcher:      launcher,
		Location:      cfg.Location,
		Notifications: ns,
		Heartbeat:     cfg.HeartbeatInterval(),
	})

	query, err := playtime.NewQuery(store, playtime.QueryOptions{
		Clock:     clock,
		Location:  cfg.Location,
		CacheSize: cfg.StatsCacheSize(),
	})
	if err != nil {
		cancel()
		_ = store.Close()
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	tracker.OnStatisticsChanged(query.Invalidate)

	// a time zone change moves today's boundary, so cached stats are stale
	cfg.OnReload(query.Purge)

	notifBroker := broker.NewBroker(ns)
	apiNotifications, _ := notifBroker.Subscribe(subscriberBuffer)
	server := api.NewServer(cfg, tracker, query, clock)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return notifBroker.Run(gctx)
	})

	if mon != nil {
		g.Go(func() error {
			tracker.Run(gctx, mon.Events())
			return nil
		})
	}

	g.Go(func() error {
		tracker.RunHeartbeat(gctx)
		return nil
	})

	g.Go(func() error {
		if opts.Listener != nil {
			return server.Serve(gctx, opts.Listener, apiNotifications)
		}
		return server.Run(gctx, apiNotifications)
	})

	if n := startPublishers(gctx, g, cfg, notifBroker); n > 0 {
		log.Info().Int("count", n).Msg("mqtt publishers started")
	}

	g.Go(func() error {
		if err := discovery.New(cfg).Run(gctx); err != nil {
			log.Warn().Err(err).Msg("mDNS discovery stopped")
		}
		return nil
	})

	if err := cfg.Watch(gctx); err != nil {
		log.Warn().Err(err).Msg("config file will not be reloaded on change")
	}

	log.Info().Msg("service started")

	doneCh := make(chan struct{})
	var runErr error
	go func() {
		defer close(doneCh)

		runErr = g.Wait()
		log.Info().Msg("service context cancelled, running cleanup")

		if mon != nil {
			mon.Close()
		}

		flushCtx, flushCancel := context.WithTimeout(context.Background(), finalFlushTimeout)
		defer flushCancel()
		if err := tracker.Flush(flushCtx); err != nil {
			log.Error().Err(err).Int("pending", tracker.PendingRetries()).
				Msg("sessions could not be saved before shutdown")
		}

		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
		log.Info().Msg("service stopped")
	}()

	return func() error {
		cancel()
		<-doneCh
		if runErr != nil {
			return fmt.Errorf("service: %w", runErr)
		}
		return nil
	}, doneCh, nil
}
