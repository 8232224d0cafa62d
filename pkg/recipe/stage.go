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

package recipe

import (
	"fmt"
	"strings"
)

// Stage marks how far a recipe goes. Stages are totally ordered:
// bootstrap < build < final.
type Stage int

const (
	StageBootstrap Stage = iota + 1
	StageBuild
	StageFinal
)

// DefaultStage is the stage a recipe ends at unless told otherwise.
const DefaultStage = StageFinal

var stageNames = map[Stage]string{
	StageBootstrap: "bootstrap",
	StageBuild:     "build",
	StageFinal:     "final",
}

// String returns the name of the stage.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// IsValid reports whether s is one of the three known stages.
func (s Stage) IsValid() bool {
	_, ok := stageNames[s]
	return ok
}

// Includes reports whether a recipe ending at s contains other.
func (s Stage) Includes(other Stage) bool {
	return other.IsValid() && other <= s
}

// MarshalText implements encoding.TextMarshaler so stages serialize by name.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStage converts a stage name to a Stage. An empty name yields
// DefaultStage. Matching is exact.
func ParseStage(name string) (Stage, error) {
	if name == "" {
		return DefaultStage, nil
	}
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("invalid stage %q, valid values are: %s", name, strings.Join(SupportedStages(), ", "))
}

// SupportedStages returns the stage names in order.
func SupportedStages() []string {
	return []string{StageBootstrap.String(), StageBuild.String(), StageFinal.String()}
}
