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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPFilter_IsAllowed(t *testing.T) {
	t.Parallel()

	filter := NewIPFilter([]string{
		"192.168.1.10",
		"10.0.0.0/8",
		"192.168.2.20:7510",
		"2001:db8::/32",
		"not-an-address",
	})

	tests := []struct {
		addr    string
		allowed bool
	}{
		{addr: "192.168.1.10:5000", allowed: true},
		{addr: "192.168.1.11:5000", allowed: false},
		{addr: "10.20.30.40:1", allowed: true},
		{addr: "192.168.2.20:9999", allowed: true},
		{addr: "[2001:db8::1]:80", allowed: true},
		{addr: "[2001:db9::1]:80", allowed: false},
		{addr: "[::ffff:10.1.1.1]:80", allowed: true},
		{addr: "127.0.0.1:5000", allowed: true},
		{addr: "[::1]:5000", allowed: true},
		{addr: "garbage", allowed: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, filter.IsAllowed(tt.addr), tt.addr)
	}
}

func TestIPFilter_EmptyAllowsAll(t *testing.T) {
	t.Parallel()

	filter := NewIPFilter(nil)
	assert.False(t, filter.Enabled())
	assert.True(t, filter.IsAllowed("8.8.8.8:53"))

	filter = NewIPFilter([]string{"bogus"})
	assert.False(t, filter.Enabled())
}

func TestHTTPIPFilterMiddleware(t *testing.T) {
	t.Parallel()

	handler := HTTPIPFilterMiddleware(NewIPFilter([]string{"192.168.1.0/24"}))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	for addr, want := range map[string]int{
		"192.168.1.50:4000": http.StatusOK,
		"192.168.9.50:4000": http.StatusForbidden,
		"127.0.0.1:4000":    http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api", http.NoBody)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, addr)
	}
}

func TestParseRemoteIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "192.168.1.1", ParseRemoteIP("192.168.1.1:12345").String())
	assert.Equal(t, "::1", ParseRemoteIP("[::1]:12345").String())
	assert.Equal(t, "10.0.0.1", ParseRemoteIP("10.0.0.1").String())
	assert.Nil(t, ParseRemoteIP("not-an-ip"))
}

func TestIsLoopbackAddr(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLoopbackAddr("127.0.0.100:8080"))
	assert.True(t, IsLoopbackAddr("[::1]:1"))
	assert.False(t, IsLoopbackAddr("192.168.1.1:1"))
	assert.False(t, IsLoopbackAddr("not-an-ip"))
}
