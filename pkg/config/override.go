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

const (
	// DefaultMonitorHost is the monitor server used when none is given.
	DefaultMonitorHost = "http://127.0.0.1"
	// DefaultMonitorPrefix is the API prefix of the monitor server.
	DefaultMonitorPrefix = "ms1"
)

// Overrides are explicit command-line or request values that take
// precedence over what the environment document declares.
type Overrides struct {
	// OS replaces images.os when non-empty.
	OS string
	// Monitor replaces the whole monitor block when non-nil.
	Monitor *Monitor
}

// IsZero reports whether o changes nothing.
func (o Overrides) IsZero() bool {
	return o.OS == "" && o.Monitor == nil
}

// ApplyOverrides returns a copy of cfg with o applied. cfg is not modified.
// A nil cfg stands for an empty document and starts from Defaults.
//
// The OS is not looked up in the catalog here. A monitor override is taken
// as a whole; no field of the document's own monitor block survives.
func ApplyOverrides(cfg *Config, o Overrides) *Config {
	out := cfg.Clone()
	if out == nil {
		out = Defaults()
	}
	if o.OS != "" {
		out.Environment.Container.Images.OS = o.OS
	}
	if o.Monitor != nil {
		out.Environment.Monitor = o.Monitor.Clone()
	}
	return out
}

// MonitorFromFlags builds a monitor override from flag values. It returns
// nil unless enabled is set, leaving the document's block in place.
func MonitorFromFlags(enabled bool, host string, keepGoing bool, prefix, tags string) *Monitor {
	if !enabled {
		return nil
	}
	return &Monitor{
		Host:      host,
		KeepGoing: keepGoing,
		Prefix:    prefix,
		Tags:      SplitTags(tags),
	}
}
