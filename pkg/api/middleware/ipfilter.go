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
	"net"
	"net/http"
	"net/netip"

	"github.com/rs/zerolog/log"
)

// ParseRemoteIP returns the IP of a host:port address, or nil.
func ParseRemoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}

func IsLoopbackAddr(remoteAddr string) bool {
	ip := ParseRemoteIP(remoteAddr)
	return ip != nil && ip.IsLoopback()
}

// IPFilter is an allowlist of addresses and CIDR ranges. Loopback clients
// are always allowed so the local UI keeps working.
type IPFilter struct {
	prefixes []netip.Prefix
}

// NewIPFilter parses entries as addresses or CIDRs. Unparsable entries are
// logged and skipped. An empty list allows everyone.
func NewIPFilter(allowed []string) *IPFilter {
	f := &IPFilter{prefixes: make([]netip.Prefix, 0, len(allowed))}
	for _, entry := range allowed {
		if host, _, err := net.SplitHostPort(entry); err == nil {
			entry = host
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			f.prefixes = append(f.prefixes, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			f.prefixes = append(f.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		log.Warn().Str("ip", entry).Msg("api: invalid address in allowed_ips, skipping")
	}
	return f
}

func (f *IPFilter) Enabled() bool {
	return len(f.prefixes) > 0
}

func (f *IPFilter) IsAllowed(remoteAddr string) bool {
	if !f.Enabled() || IsLoopbackAddr(remoteAddr) {
		return true
	}

	ip := ParseRemoteIP(remoteAddr)
	if ip == nil {
		log.Warn().Str("addr", remoteAddr).Msg("api: failed to parse remote address")
		return false
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range f.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func HTTPIPFilterMiddleware(filter *IPFilter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !filter.IsAllowed(r.RemoteAddr) {
				log.Debug().
					Str("addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("api: request from blocked IP")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
