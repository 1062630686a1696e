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

package publishers

import (
	"time"

	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeMessage struct {
	topic    string
	payload  string
	retained bool
}

// fakeClient records publishes in memory.
type fakeClient struct {
	connectErr  error
	publishErr  error
	messages    []fakeMessage
	disconnects int
	connected   bool
	mu          syncutil.Mutex
}

func (c *fakeClient) snapshot() []fakeMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]fakeMessage(nil), c.messages...)
}

func (c *fakeClient) disconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return doneToken{err: c.connectErr}
	}
	c.connected = true
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnects++
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload any) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return doneToken{err: c.publishErr}
	}
	data, _ := payload.([]byte)
	c.messages = append(c.messages, fakeMessage{topic: topic, payload: string(data), retained: retained})
	return doneToken{}
}

func (*fakeClient) Subscribe(string, byte, mqtt.MessageHandler) mqtt.Token { return doneToken{} }

func (*fakeClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return doneToken{}
}

func (*fakeClient) Unsubscribe(...string) mqtt.Token { return doneToken{} }

func (*fakeClient) AddRoute(string, mqtt.MessageHandler) {}

func (*fakeClient) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

type doneToken struct {
	err error
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                 { return t.err }

func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
