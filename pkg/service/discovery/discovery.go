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

// Package discovery advertises the API over mDNS so companion apps on the
// local network can find it.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/grandcat/zeroconf"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const ServiceType = "_reina._tcp"

const (
	retryInterval    = 30 * time.Second
	maxRetryDuration = 5 * time.Minute
)

var virtualInterfacePrefixes = []string{
	"docker", "br-", "veth", "virbr", "lxc", "lxd",
	"cni", "flannel", "cali", "tunl", "wg", "vmnet", "vboxnet",
}

// shutdowner is the part of *zeroconf.Server the service keeps.
type shutdowner interface {
	Shutdown()
}

type registerFunc func(instance string, port int, txt []string, ifaces []net.Interface) (shutdowner, error)

func zeroconfRegister(instance string, port int, txt []string, ifaces []net.Interface) (shutdowner, error) {
	server, err := zeroconf.Register(instance, ServiceType, "local.", port, txt, ifaces)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", ServiceType, err)
	}
	return server, nil
}

type Service struct {
	cfg        *config.Instance
	clock      clockwork.Clock
	register   registerFunc
	interfaces func() ([]net.Interface, error)
}

func New(cfg *config.Instance) *Service {
	return &Service{
		cfg:        cfg,
		clock:      clockwork.NewRealClock(),
		register:   zeroconfRegister,
		interfaces: net.Interfaces,
	}
}

// Run advertises the service until ctx is done. Registration is retried
// while the network comes up, for at most five minutes.
func (s *Service) Run(ctx context.Context) error {
	if !s.cfg.DiscoveryEnabled() {
		log.Info().Msg("discovery: disabled by config")
		return nil
	}

	instance := s.instanceName()
	deadline := s.clock.Now().Add(maxRetryDuration)
	server := s.tryRegister(instance)
	if server == nil {
		ticker := s.clock.NewTicker(retryInterval)
		defer ticker.Stop()
		for server == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.Chan():
			}
			if s.clock.Now().After(deadline) {
				log.Warn().Msg("discovery: giving up on mDNS registration")
				return nil
			}
			server = s.tryRegister(instance)
		}
	}

	<-ctx.Done()
	server.Shutdown()
	log.Debug().Msg("discovery: advertising stopped")
	return nil
}

func (s *Service) tryRegister(instance string) shutdowner {
	all, err := s.interfaces()
	if err != nil {
		log.Debug().Err(err).Msg("discovery: listing interfaces failed")
		return nil
	}
	ifaces := filterInterfaces(all)
	if len(ifaces) == 0 {
		log.Debug().Msg("discovery: no usable network interface yet")
		return nil
	}

	txt := []string{
		"id=" + s.cfg.DeviceID(),
		"version=" + config.AppVersion,
		"port=" + strconv.Itoa(s.cfg.APIPort()),
	}
	server, err := s.register(instance, s.cfg.APIPort(), txt, ifaces)
	if err != nil {
		log.Debug().Err(err).Msg("discovery: registration attempt failed")
		return nil
	}

	log.Info().
		Str("instance", instance).
		Int("port", s.cfg.APIPort()).
		Int("interfaces", len(ifaces)).
		Msg("discovery: advertising started")
	return server
}

// instanceName prefers the configured name, then the hostname.
func (s *Service) instanceName() string {
	if name := s.cfg.DiscoveryInstanceName(); name != "" {
		return name
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	if id := s.cfg.DeviceID(); len(id) >= 8 {
		return config.AppName + "-" + id[:8]
	}
	return config.AppName
}

// filterInterfaces keeps interfaces that are up, multicast capable, not
// loopback and not virtual.
func filterInterfaces(ifaces []net.Interface) []net.Interface {
	var usable []net.Interface
	for _, iface := range ifaces {
		switch {
		case iface.Flags&net.FlagUp == 0,
			iface.Flags&net.FlagLoopback != 0,
			iface.Flags&net.FlagMulticast == 0,
			isVirtualInterface(iface.Name):
			continue
		}
		usable = append(usable, iface)
	}
	return usable
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
