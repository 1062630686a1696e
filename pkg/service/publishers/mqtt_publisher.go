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

// Package publishers forwards playtime notifications to external brokers.
package publishers

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout  = 10 * time.Second
	publishTimeout  = 5 * time.Second
	disconnectQuiet = 250
)

// MQTTPublisher publishes each notification's params to
// <topic>/<method with dots as slashes>. Statistics updates are retained
// so a new subscriber sees the latest totals immediately.
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	broker    string
	topic     string
	filter    []string
}

// NewMQTTPublisher builds a publisher for broker (host:port). An empty
// filter publishes every notification.
func NewMQTTPublisher(broker, topic string, filter []string) *MQTTPublisher {
	return &MQTTPublisher{
		broker:    broker,
		topic:     strings.TrimSuffix(topic, "/"),
		filter:    filter,
		newClient: mqtt.NewClient,
	}
}

// Connect dials the broker. The client keeps reconnecting in the
// background after the first successful connection.
func (p *MQTTPublisher) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + p.broker)
	opts.SetClientID("reina-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", p.broker).Msg("mqtt: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", p.broker).Msg("mqtt: connection lost")
	}

	p.client = p.newClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to mqtt broker %s: timed out", p.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to mqtt broker %s: %w", p.broker, err)
	}
	return nil
}

// Run publishes notifications until ctx is done or the channel closes,
// then disconnects.
func (p *MQTTPublisher) Run(ctx context.Context, notifications <-chan models.Notification) {
	defer p.disconnect()
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			if !p.matchesFilter(notif.Method) {
				continue
			}
			if err := p.publish(notif); err != nil {
				log.Error().Err(err).Str("method", notif.Method).Msg("mqtt: publish failed")
			}
		}
	}
}

func (p *MQTTPublisher) publish(notif models.Notification) error {
	payload := []byte(notif.Params)
	if len(payload) == 0 {
		payload = []byte("null")
	}
	retained := notif.Method == models.NotificationStatisticsUpdated

	token := p.client.Publish(TopicFor(p.topic, notif.Method), 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", notif.Method)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", notif.Method, err)
	}
	return nil
}

func (p *MQTTPublisher) disconnect() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiet)
		log.Debug().Str("broker", p.broker).Msg("mqtt: disconnected")
	}
}

func (p *MQTTPublisher) matchesFilter(method string) bool {
	return len(p.filter) == 0 || slices.Contains(p.filter, method)
}

// TopicFor maps a notification method onto an MQTT topic below base.
func TopicFor(base, method string) string {
	return base + "/" + strings.ReplaceAll(method, ".", "/")
}
