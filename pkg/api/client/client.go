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

// Package client talks to a running Reina service over its websocket API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api"

// RPCError is an error object returned by the service.
type RPCError struct {
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

type response struct {
	Error   *models.ErrorObject `json:"error"`
	Result  json.RawMessage     `json:"result"`
	JSONRPC string              `json:"jsonrpc"`
	ID      uuid.UUID           `json:"id"`
}

// APIClient abstracts API communication for testability.
type APIClient interface {
	Call(ctx context.Context, method, params string) (string, error)
	WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error)
}

type Client struct {
	url     string
	timeout time.Duration
}

var _ APIClient = (*Client)(nil)

// New returns a client for the service listening on addr (host:port).
func New(addr string) *Client {
	u := url.URL{Scheme: "ws", Host: addr, Path: APIPath}
	return &Client{url: u.String(), timeout: config.APIRequestTimeout}
}

// NewLocal returns a client for the service on this machine.
func NewLocal(cfg *config.Instance) *Client {
	return New("localhost:" + strconv.Itoa(cfg.APIPort()))
}

// LocalClient sends a single method with params to the local service and
// returns the encoded result.
func LocalClient(ctx context.Context, cfg *config.Instance, method, params string) (string, error) {
	return NewLocal(cfg).Call(ctx, method, params)
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	return conn, nil
}

func closeConn(conn *websocket.Conn) {
	if err := conn.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing websocket")
	}
}

// readUntil reads messages until match accepts one, the timeout fires or
// ctx is done. A zero timeout uses the request timeout and a negative one
// waits forever.
func readUntil(
	ctx context.Context,
	conn *websocket.Conn,
	timeout time.Duration,
	match func([]byte) bool,
) ([]byte, error) {
	found := make(chan []byte, 1)
	go func() {
		defer close(found)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("websocket read ended")
				return
			}
			if match(message) {
				found <- message
				return
			}
		}
	}()

	var timerChan <-chan time.Time
	if timeout >= 0 {
		if timeout == 0 {
			timeout = config.APIRequestTimeout
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerChan = timer.C
	}

	select {
	case msg, ok := <-found:
		if !ok {
			return nil, ErrRequestTimeout
		}
		return msg, nil
	case <-timerChan:
		closeConn(conn)
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		closeConn(conn)
		return nil, ErrRequestCancelled
	}
}

// Call sends method with params (a JSON document or "") and waits for the
// matching response.
func (c *Client) Call(ctx context.Context, method, params string) (string, error) {
	id := uuid.New()
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != "" {
		if !json.Valid([]byte(params)) {
			return "", ErrInvalidParams
		}
		req.Params = json.RawMessage(params)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer closeConn(conn)

	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	var resp response
	_, err = readUntil(ctx, conn, c.timeout, func(msg []byte) bool {
		resp = response{}
		if json.Unmarshal(msg, &resp) != nil {
			return false
		}
		return resp.JSONRPC == "2.0" && resp.ID == id
	})
	if err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Result) == 0 {
		return "null", nil
	}
	return string(resp.Result), nil
}

// WaitNotification blocks until a notification with the given method
// arrives and returns its params.
func (c *Client) WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer closeConn(conn)

	var notif models.RequestObject
	_, err = readUntil(ctx, conn, timeout, func(msg []byte) bool {
		notif = models.RequestObject{}
		if json.Unmarshal(msg, &notif) != nil {
			return false
		}
		return notif.JSONRPC == "2.0" && notif.ID == nil && notif.Method == method
	})
	if err != nil {
		return "", err
	}

	if len(notif.Params) == 0 {
		return "null", nil
	}
	return string(notif.Params), nil
}
