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

package catalog

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// UnknownOSError is returned when an OS identifier is not registered in
// the catalog. An empty ID means no identifier was given at all.
type UnknownOSError struct {
	ID    string
	Known []string
}

func (e *UnknownOSError) Error() string {
	known := strings.Join(e.Known, ", ")
	if e.ID == "" {
		return fmt.Sprintf("no bootstrap OS specified, valid values are: %s", known)
	}
	return fmt.Sprintf("unknown bootstrap OS %q, valid values are: %s", e.ID, known)
}

// Suggestion returns the known identifier closest to ID, or "" when none
// is close enough to be a plausible typo. It is a hint for messages only.
func (e *UnknownOSError) Suggestion() string {
	if e.ID == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, k := range e.Known {
		d := levenshtein.ComputeDistance(e.ID, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist < 0 || bestDist > maxSuggestionDistance(e.ID) {
		return ""
	}
	return best
}

func maxSuggestionDistance(id string) int {
	return max(2, len(id)/3)
}
