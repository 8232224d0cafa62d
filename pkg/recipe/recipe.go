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

	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/header"
)

// Block is the instruction text emitted for one stage.
type Block struct {
	Stage Stage  `json:"stage" yaml:"stage"`
	Text  string `json:"text" yaml:"text"`
}

// Recipe is a generated container build recipe. Blocks are in stage order
// and the last block belongs to LastStage.
type Recipe struct {
	header.Header `json:",inline" yaml:",inline"`

	Format    config.Format `json:"format" yaml:"format"`
	OS        string        `json:"os" yaml:"os"`
	LastStage Stage         `json:"lastStage" yaml:"lastStage"`
	Blocks    []Block       `json:"blocks" yaml:"blocks"`
}

// String concatenates the blocks into the recipe text.
func (r *Recipe) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for i, b := range r.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// Text returns the recipe text. It lets text serializers print the recipe
// rather than its structure.
func (r *Recipe) Text() string {
	return r.String()
}

// FileName is the conventional file name of the recipe for its format.
func (r *Recipe) FileName() string {
	if r != nil && r.Format == config.FormatSingularity {
		return "Singularity.def"
	}
	return "Dockerfile"
}

// Block returns the block emitted for s.
func (r *Recipe) Block(s Stage) (Block, bool) {
	for _, b := range r.Blocks {
		if b.Stage == s {
			return b, true
		}
	}
	return Block{}, false
}

// Validate checks that the recipe holds exactly the stages up to LastStage,
// in order, each with text.
func (r *Recipe) Validate() error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}
	if !r.LastStage.IsValid() {
		return fmt.Errorf("recipe has invalid last stage %d", int(r.LastStage))
	}
	if len(r.Blocks) != int(r.LastStage) {
		return fmt.Errorf("recipe ending at %s has %d blocks", r.LastStage, len(r.Blocks))
	}
	for i, b := range r.Blocks {
		if want := Stage(i + 1); b.Stage != want {
			return fmt.Errorf("block %d is %s, expected %s", i, b.Stage, want)
		}
		if strings.TrimSpace(b.Text) == "" {
			return fmt.Errorf("block %s is empty", b.Stage)
		}
	}
	return nil
}
