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
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/recipe"
	"github.com/spack/containerize/pkg/serializer"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage: `Output destination (default: stdout).
	Supports: file paths or ConfigMap URIs (cm://namespace/name).`,
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatText),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Sources: cli.EnvVars("KUBECONFIG"),
		Usage:   "Path to kubeconfig file, used by cm:// outputs",
	}
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "list-os",
			Usage: "List all the OS that can be used in the bootstrap phase and exit",
		},
		&cli.StringFlag{
			Name:    "os",
			Sources: cli.EnvVars("CONTAINERIZE_OS"),
			Usage:   "OS to use in the bootstrap phase, overrides container.images.os",
		},
		&cli.StringFlag{
			Name:    "last-stage",
			Value:   recipe.DefaultStage.String(),
			Sources: cli.EnvVars("CONTAINERIZE_LAST_STAGE"),
			Usage:   fmt.Sprintf("Last stage in the container recipe (supported values: %s)", strings.Join(recipe.SupportedStages(), ", ")),
		},
		&cli.StringSliceFlag{
			Name:    "env-dir",
			Aliases: []string{"e"},
			Usage: `Directory of the environment holding spack.yaml (default: current directory).
	Can be repeated; each environment is rendered independently.`,
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Path or HTTP/HTTPS URL of a spack.yaml, instead of --env-dir",
		},
		&cli.StringFlag{
			Name:    "bundle",
			Aliases: []string{"b"},
			Usage:   "Write the recipe, spack.yaml and checksums.txt into this directory as a build context",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Sources: cli.EnvVars("CONTAINERIZE_LOG_LEVEL", "LOG_LEVEL"),
			Usage:   "Log level (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Sources: cli.EnvVars("CONTAINERIZE_DEBUG"),
			Usage:   "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:     "monitor",
			Category: "monitor",
			Usage:    "Add spack monitor flags and labels to the recipe",
		},
		&cli.StringFlag{
			Name:     "monitor-host",
			Category: "monitor",
			Value:    config.DefaultMonitorHost,
			Sources:  cli.EnvVars("CONTAINERIZE_MONITOR_HOST"),
			Usage:    "Spack monitor server",
		},
		&cli.BoolFlag{
			Name:     "monitor-keep-going",
			Category: "monitor",
			Usage:    "Continue the build when the monitor server is unreachable",
		},
		&cli.StringFlag{
			Name:     "monitor-prefix",
			Category: "monitor",
			Value:    config.DefaultMonitorPrefix,
			Sources:  cli.EnvVars("CONTAINERIZE_MONITOR_PREFIX"),
			Usage:    "API prefix of the monitor server",
		},
		&cli.StringFlag{
			Name:     "monitor-tags",
			Category: "monitor",
			Usage:    "Comma separated tags for the build",
		},
		outputFlag,
		formatFlag,
		kubeconfigFlag,
	}
}

// parseOutputFormat extracts and validates the output format from CLI flags.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// overridesFromCmd collects the explicit overrides given on the command line.
func overridesFromCmd(cmd *cli.Command) config.Overrides {
	return config.Overrides{
		OS: strings.TrimSpace(cmd.String("os")),
		Monitor: config.MonitorFromFlags(
			cmd.Bool("monitor"),
			cmd.String("monitor-host"),
			cmd.Bool("monitor-keep-going"),
			cmd.String("monitor-prefix"),
			cmd.String("monitor-tags"),
		),
	}
}

// environmentSources returns the spack.yaml locations to read, one per
// --env-dir, the --file value, or the current directory's spack.yaml.
func environmentSources(cmd *cli.Command) ([]string, error) {
	file := strings.TrimSpace(cmd.String("file"))
	dirs := cmd.StringSlice("env-dir")
	if file != "" && len(dirs) > 0 {
		return nil, fmt.Errorf("--file and --env-dir cannot be used together")
	}
	if file != "" {
		return []string{file}, nil
	}
	if len(dirs) == 0 {
		dirs = []string{""}
	}

	sources := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		path, err := config.ResolvePath(dir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, path)
	}
	return sources, nil
}
