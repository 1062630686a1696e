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

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ReinaManager/reina-core/internal/telemetry"
	"github.com/ReinaManager/reina-core/pkg/api/client"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/helpers"
	"github.com/ReinaManager/reina-core/pkg/service"
	"github.com/rs/zerolog/log"
)

const runningCheckTimeout = 2 * time.Second

// serviceRunning reports whether something already answers the version
// method on the configured port.
func serviceRunning(ctx context.Context, c client.APIClient) bool {
	ctx, cancel := context.WithTimeout(ctx, runningCheckTimeout)
	defer cancel()
	_, err := c.Call(ctx, models.MethodVersion, "")
	return err == nil
}

// RunApp runs the service until SIGINT/SIGTERM or until it stops on its
// own, then shuts it down.
func RunApp(cfg *config.Instance) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()
	defer telemetry.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if serviceRunning(context.Background(), client.NewLocal(cfg)) {
		log.Info().
			Int("port", cfg.APIPort()).
			Msg("service already running, exiting")
		return nil
	}

	log.Info().Msg("starting service")
	stopSvc, done, err := service.Start(service.Options{
		Config:  cfg,
		DataDir: helpers.DataDir(),
	})
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}
	defer func() {
		if err := stopSvc(); err != nil {
			log.Error().Msgf("error stopping service: %s", err)
		}
	}()

	select {
	case <-sigs:
	case <-done:
		log.Info().Msg("service shut down internally")
	}

	return nil
}
