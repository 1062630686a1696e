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
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ReinaManager/reina-core/internal/telemetry"
	"github.com/ReinaManager/reina-core/pkg/api/client"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrMissingValue = errors.New("flag requires a value")

type Flags struct {
	API     *string
	Wait    *string
	Export  *int64
	Summary *bool
	Version *bool
	Daemon  *bool
}

// SetupFlags defines all CLI flags.
func SetupFlags() *Flags {
	return &Flags{
		API: flag.String(
			"api",
			"",
			"send method and params to API and print response (method:params)",
		),
		Wait: flag.String(
			"wait",
			"",
			"print the next notification with this method and exit",
		),
		Export: flag.Int64(
			"export",
			0,
			"print the sessions of a game as CSV",
		),
		Summary: flag.Bool(
			"summary",
			false,
			"print total, week and today play time across all games",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run the service in the foreground",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Reina Core v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// splitAPIArg splits "method:params" at the first colon.
func splitAPIArg(value string) (method, params string) {
	ps := strings.SplitN(value, ":", 2)
	method = ps[0]
	if len(ps) > 1 {
		params = ps[1]
	}
	return method, params
}

func callAPI(ctx context.Context, c client.APIClient, value string, out io.Writer) error {
	if value == "" {
		return fmt.Errorf("api: %w", ErrMissingValue)
	}
	method, params := splitAPIArg(value)
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return fmt.Errorf("error calling API: %w", err)
	}
	_, _ = fmt.Fprintln(out, resp)
	return nil
}

func gameParams(gameID int64) string {
	return `{"gameId":` + strconv.FormatInt(gameID, 10) + `}`
}

func exportSessions(ctx context.Context, c client.APIClient, gameID int64, out io.Writer) error {
	resp, err := c.Call(ctx, models.MethodPlaytimeExport, gameParams(gameID))
	if err != nil {
		return fmt.Errorf("error exporting sessions: %w", err)
	}
	var export models.ExportResponse
	if err := json.Unmarshal([]byte(resp), &export); err != nil {
		return fmt.Errorf("error decoding export: %w", err)
	}
	_, _ = io.WriteString(out, export.CSV)
	return nil
}

func printSummary(ctx context.Context, c client.APIClient, out io.Writer) error {
	resp, err := c.Call(ctx, models.MethodPlaytimeSummary, "")
	if err != nil {
		return fmt.Errorf("error fetching summary: %w", err)
	}
	var summary models.SummaryResponse
	if err := json.Unmarshal([]byte(resp), &summary); err != nil {
		return fmt.Errorf("error decoding summary: %w", err)
	}
	_, _ = fmt.Fprintf(out, "total: %s\nweek:  %s\ntoday: %s\n", summary.Total, summary.Week, summary.Today)
	return nil
}

func waitNotification(ctx context.Context, c client.APIClient, method string, out io.Writer) error {
	if method == "" {
		return fmt.Errorf("wait: %w", ErrMissingValue)
	}
	resp, err := c.WaitNotification(ctx, -1, method)
	if err != nil {
		return fmt.Errorf("error waiting for notification: %w", err)
	}
	_, _ = fmt.Fprintln(out, resp)
	return nil
}

// Post actions all remaining flags that talk to a running service.
// Logging is allowed.
func (f *Flags) Post(cfg *config.Instance) {
	c := client.NewLocal(cfg)
	ctx := context.Background()

	var err error
	switch {
	case isFlagPassed("api"):
		err = callAPI(ctx, c, *f.API, os.Stdout)
	case isFlagPassed("export"):
		err = exportSessions(ctx, c, *f.Export, os.Stdout)
	case *f.Summary:
		err = printSummary(ctx, c, os.Stdout)
	case isFlagPassed("wait"):
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		err = waitNotification(ctx, c, *f.Wait, os.Stdout)
		cancel()
		if errors.Is(err, client.ErrRequestCancelled) {
			os.Exit(0)
		}
	default:
		return
	}

	if err != nil {
		log.Error().Err(err).Msg("cli command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// Setup initializes logging, the user config and error reporting. Returns
// a user config object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	err := helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(afero.NewOsFs(), helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// error reporting is opt-in
	err = telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.SentryDSN(),
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
