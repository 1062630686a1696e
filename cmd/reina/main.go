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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ReinaManager/reina-core/pkg/cli"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg)

	//nolint:wrapcheck // RunApp errors are already wrapped
	return cli.RunApp(cfg)
}
