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

package config

import (
	"maps"
	"slices"
)

// Format is the container runtime a recipe is written for.
type Format string

const (
	// FormatDocker renders a multi-stage Dockerfile.
	FormatDocker Format = "docker"
	// FormatSingularity renders a Singularity/Apptainer definition file.
	FormatSingularity Format = "singularity"
)

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	return f == FormatDocker || f == FormatSingularity
}

// SupportedFormats returns the names of all supported formats.
func SupportedFormats() []string {
	return []string{string(FormatDocker), string(FormatSingularity)}
}

// DefaultSpackRef is the git ref cloned when images.spack is not set.
const DefaultSpackRef = "develop"

// PackageManagers lists the values accepted by os_packages.command.
var PackageManagers = []string{"apk", "apt", "dnf", "yum", "yum_amazon", "zypper"}

// Config is a validated environment document. Every field the recipe
// generator reads is present and well-formed.
type Config struct {
	Environment Environment `json:"spack" yaml:"spack"`
}

// Environment is the content of the spack: root key.
type Environment struct {
	Specs     []string  `json:"specs,omitempty" yaml:"specs,omitempty"`
	Container Container `json:"container" yaml:"container"`
	Monitor   *Monitor  `json:"monitor,omitempty" yaml:"monitor,omitempty"`

	// Extra holds every other key of the environment (view, concretizer,
	// packages, ...) untouched. It is copied into the manifest of the build stage.
	Extra map[string]any `json:"extra,omitempty" yaml:",inline"`
}

// Container holds the container: section of an environment.
type Container struct {
	Format      Format            `json:"format" yaml:"format"`
	Images      Images            `json:"images" yaml:"images"`
	OSPackages  OSPackages        `json:"osPackages" yaml:"os_packages"`
	Strip       bool              `json:"strip" yaml:"strip"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Singularity Singularity       `json:"singularity" yaml:"singularity,omitempty"`
}

// Images selects the bootstrap OS, the Spack version and optionally the
// runtime image.
type Images struct {
	OS    string `json:"os,omitempty" yaml:"os,omitempty"`
	Spack string `json:"spack" yaml:"spack"`
	Final string `json:"final,omitempty" yaml:"final,omitempty"`
}

// OSPackages lists system packages installed in the build and final stages.
type OSPackages struct {
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Update  bool     `json:"update" yaml:"update"`
	Build   []string `json:"build,omitempty" yaml:"build,omitempty"`
	Final   []string `json:"final,omitempty" yaml:"final,omitempty"`
}

// Singularity holds the optional run sections of a definition file.
type Singularity struct {
	Runscript   string `json:"runscript,omitempty" yaml:"runscript,omitempty"`
	Startscript string `json:"startscript,omitempty" yaml:"startscript,omitempty"`
	Test        string `json:"test,omitempty" yaml:"test,omitempty"`
	Help        string `json:"help,omitempty" yaml:"help,omitempty"`
}

// Monitor configures reporting of the build to a spack monitor server.
// It is carried through to the recipe as data only.
type Monitor struct {
	Host      string   `json:"host" yaml:"host"`
	KeepGoing bool     `json:"keepGoing" yaml:"keep_going"`
	Prefix    string   `json:"prefix" yaml:"prefix"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Clone returns a deep copy of m.
func (m *Monitor) Clone() *Monitor {
	if m == nil {
		return nil
	}
	c := *m
	c.Tags = slices.Clone(m.Tags)
	return &c
}

// Defaults returns the configuration of a document that declares nothing
// but the spack: key.
func Defaults() *Config {
	return &Config{Environment: Environment{
		Container: Container{
			Format:     FormatDocker,
			Images:     Images{Spack: DefaultSpackRef},
			OSPackages: OSPackages{Update: true},
			Strip:      true,
		},
	}}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	env := &out.Environment
	env.Specs = slices.Clone(c.Environment.Specs)
	env.Monitor = c.Environment.Monitor.Clone()
	env.Extra = cloneMap(c.Environment.Extra)
	env.Container.Labels = maps.Clone(c.Environment.Container.Labels)
	env.Container.OSPackages.Build = slices.Clone(c.Environment.Container.OSPackages.Build)
	env.Container.OSPackages.Final = slices.Clone(c.Environment.Container.OSPackages.Final)
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
