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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/ReinaManager/reina-core/pkg/testing/helpers"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	db, cleanup := helpers.NewInMemoryUserDB(t)
	t.Cleanup(cleanup)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	loc := func() *time.Location { return time.UTC }
	tracker := playtime.NewTracker(db, playtime.Options{
		Clock:         clock,
		Location:      loc,
		Notifications: make(chan models.Notification, 100),
	})
	query, err := playtime.NewQuery(db, playtime.QueryOptions{Clock: clock, Location: loc})
	require.NoError(t, err)

	cfg := helpers.NewTestConfig(t, config.Values{})
	s := NewServer(cfg, tracker, query, clock)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		_ = s.melody.Close()
		ts.Close()
	})
	return s, ts
}

type rpcReply struct {
	Result json.RawMessage     `json:"result"`
	Error  *models.ErrorObject `json:"error"`
	ID     uuid.UUID           `json:"id"`
}

func post(t *testing.T, ts *httptest.Server, body string) (int, rpcReply) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, ts.URL+"/api", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var reply rpcReply
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &reply))
	}
	return resp.StatusCode, reply
}

func rpcRequest(method, params string) string {
	if params == "" {
		return `{"jsonrpc":"2.0","id":"` + uuid.NewString() + `","method":"` + method + `"}`
	}
	return `{"jsonrpc":"2.0","id":"` + uuid.NewString() + `","method":"` + method + `","params":` + params + `}`
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServer_PostVersion(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	code, reply := post(t, ts, rpcRequest("version", ""))
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, `{"version":"`+config.AppVersion+`"}`, string(reply.Result))
}

func TestServer_PostErrors(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "parse error", body: `{"jsonrpc":`, code: -32700},
		{name: "wrong version", body: `{"jsonrpc":"1.0","id":"` + uuid.NewString() + `","method":"version"}`, code: -32600},
		{name: "unknown method", body: rpcRequest("playtime.nope", ""), code: -32601},
		{name: "missing params", body: rpcRequest("playtime.stats", ""), code: -32602},
		{name: "invalid params", body: rpcRequest("playtime.stats", `{"gameId":-4}`), code: -32602},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, reply := post(t, ts, tt.body)
			require.Equal(t, http.StatusOK, code)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.code, reply.Error.Code)
		})
	}
}

func TestServer_ValidationErrorData(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	_, reply := post(t, ts, rpcRequest("launch", `{"gameId":0}`))
	require.NotNil(t, reply.Error)
	data, err := json.Marshal(reply.Error.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"field":"path"`)
	assert.Contains(t, string(data), `"field":"gameId"`)
}

func TestServer_PostNotificationHasNoReply(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	code, _ := post(t, ts, `{"jsonrpc":"2.0","method":"version"}`)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestServer_MethodNamesAreCaseInsensitive(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	_, reply := post(t, ts, rpcRequest("events.sessionStarted", `{"gameId":3,"startTime":1773151200}`))
	require.Nil(t, reply.Error)
	assert.Equal(t, "null", string(reply.Result))

	_, reply = post(t, ts, rpcRequest("playtime.running", `{"gameId":3}`))
	require.Nil(t, reply.Error)
	assert.JSONEq(t,
		`{"running":true,"games":[{"gameId":3,"startTime":1773151200,"currentSessionSeconds":0}]}`,
		string(reply.Result))
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestServer_WebSocketRoundTrip(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))

	id := uuid.New()
	req := `{"jsonrpc":"2.0","id":"` + id.String() + `","method":"playtime.summary"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(req)))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)

	var reply rpcReply
	require.NoError(t, json.Unmarshal(msg, &reply))
	assert.Equal(t, id, reply.ID)
	assert.JSONEq(t,
		`{"totalMinutes":0,"weekMinutes":0,"todayMinutes":0,"total":"0m","week":"0m","today":"0m"}`,
		string(reply.Result))

	require.NoError(t, s.Broadcast(models.Notification{
		Method: models.NotificationCleared,
	}))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"playtime.cleared"}`, string(msg))
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	notifications := make(chan models.Notification)
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln, notifications)
	}()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestErrorObject(t *testing.T) {
	t.Parallel()

	obj := errorObject(playtime.ErrAlreadyRunning)
	assert.Equal(t, -32000, obj.Code)
	assert.Equal(t, "game is already running", obj.Message)

	obj = errorObject(context.DeadlineExceeded)
	assert.Equal(t, "request timed out", obj.Message)

	// copies, not the shared templates
	assert.Nil(t, JSONRPCErrorInvalidParams.Data)
	assert.True(t, bytes.Contains(marshalError(uuid.Nil, obj), []byte(`"code":-32000`)))
}
