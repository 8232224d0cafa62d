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
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/header"
)

// validationResult reports whether one environment is valid and, if so,
// its normalized form.
type validationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Source string         `json:"source" yaml:"source"`
	Valid  bool           `json:"valid" yaml:"valid"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
	Path   string         `json:"path,omitempty" yaml:"path,omitempty"`
	Line   int            `json:"line,omitempty" yaml:"line,omitempty"`
	Config *config.Config `json:"config,omitempty" yaml:"config,omitempty"`
}

// Text prints the normalized environment, or the violation.
func (v *validationResult) Text() string {
	if !v.Valid {
		return fmt.Sprintf("%s: %s\n", v.Source, v.Error)
	}
	b, err := yaml.Marshal(v.Config)
	if err != nil {
		return fmt.Sprintf("%s: valid (failed to render: %v)\n", v.Source, err)
	}
	return fmt.Sprintf("# %s: valid\n%s", v.Source, b)
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate environments without generating a recipe",
		Description: `Check the spack.yaml of one or more environments and print their
normalized form, with every default filled in.

The bootstrap OS is not checked here; an unknown OS is reported when the
recipe is generated.

# Examples

Validate the environment in the current directory:
  containerize validate

Validate several environments and get a machine-readable report:
  containerize validate -e envs/app -e envs/tools --format json`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			sources, err := environmentSources(cmd)
			if err != nil {
				return err
			}

			var invalid []string
			for _, src := range sources {
				res, err := validateSource(ctx, src)
				if err != nil {
					return err
				}
				if !res.Valid {
					invalid = append(invalid, src)
				}
				if err := writeOutput(ctx, cmd, outFormat, res); err != nil {
					return err
				}
			}

			if len(invalid) > 0 {
				return fmt.Errorf("%d of %d environments are invalid: %s",
					len(invalid), len(sources), strings.Join(invalid, ", "))
			}
			return nil
		},
	}
}

// validateSource reads and validates one environment. Only read failures
// are returned as errors; violations are reported in the result.
func validateSource(ctx context.Context, source string) (*validationResult, error) {
	raw, err := config.Read(ctx, source)
	if err != nil {
		return nil, err
	}

	res := &validationResult{
		Header: header.New(
			header.WithKind(header.KindValidationResult),
			header.WithToolVersion(version),
		),
		Source: source,
	}

	cfg, err := config.Validate(raw)
	if err != nil {
		var ve *config.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		res.Error = ve.Error()
		res.Path = ve.Path
		res.Line = ve.Line
		return res, nil
	}

	res.Valid = true
	res.Config = cfg
	return res, nil
}
