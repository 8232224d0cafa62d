// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/k8s/client"
	"github.com/spack/containerize/pkg/logging"
)

const (
	name           = "containerize"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", explain(err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Create recipes to build container images for Spack environments",
		Description: `Reads the spack.yaml of an environment and prints a multi-stage recipe
that builds a container image with the environment installed:

  bootstrap - base OS image with the tools needed to run Spack
  build     - installs the environment's specs
  final     - minimal runtime image with the installed software

The recipe is a Dockerfile or a Singularity definition file, depending on
container.format in the environment.

# Examples

List the operating systems that can be used to bootstrap Spack:
  containerize --list-os

Print the Dockerfile of the environment in the current directory:
  containerize > Dockerfile

Use another bootstrap OS and stop after the build stage:
  containerize --os ubuntu:22.04 --last-stage build

Render several environments at once:
  containerize -e envs/app -e envs/tools --format yaml`,
		Before: initLogger,
		Flags:  rootFlags(),
		Commands: []*cli.Command{
			validateCmd(),
		},
		Action: containerizeAction,
	}
}

// initLogger configures slog after flags are parsed so --log-level and
// --debug take effect before any command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	if cmd.Bool("debug") {
		level = "debug"
	}
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)

	if kc := cmd.String("kubeconfig"); kc != "" {
		client.SetKubeconfig(kc)
	}
	return ctx, nil
}

// explain adds a hint to errors a user can act on.
func explain(err error) error {
	var ue *catalog.UnknownOSError
	if errors.As(err, &ue) {
		if s := ue.Suggestion(); s != "" {
			return fmt.Errorf("%w (did you mean %q?)", err, s)
		}
	}
	return err
}
