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

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
)

// Version is a dotted release number such as a Spack tag (v0.21.2).
// Precision records how many components were given (1, 2, or 3) and
// bounds how many are compared.
type Version struct {
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch     int    `json:"patch,omitempty" yaml:"patch,omitempty"`
	Precision int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Extras    string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion creates a fully specified Version.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Precision: 3}
}

// String returns the version respecting its precision, without the v prefix or extras.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Tag returns the version as a git tag (v-prefixed, with extras).
func (v Version) Tag() string {
	return "v" + v.String() + v.Extras
}

// ParseVersion parses "1", "1.2", "1.2.3" with an optional "v" prefix.
// A suffix starting with '-' or '+' after a digit is kept in Extras
// (e.g. "v0.22.0-dev").
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	main := s
	if i := strings.IndexAny(s, "-+"); i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		main, v.Extras = s[:i], s[i:]
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
			}
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}
	v.Precision = len(parts)
	return v, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v to other over the lower of the
// two precisions.
func (v Version) Compare(other Version) int {
	precision := min(v.Precision, other.Precision)
	pairs := [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}}
	for i := 0; i < precision && i < len(pairs); i++ {
		switch {
		case pairs[i][0] < pairs[i][1]:
			return -1
		case pairs[i][0] > pairs[i][1]:
			return 1
		}
	}
	return 0
}

// EqualsOrNewer reports whether v is at least other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsValid returns true if the components are non-negative and precision is 1 to 3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// FromRef extracts a version from a git ref such as "v0.21.0" or
// "releases/v0.21". The second result is false for refs that do not name
// a release (branches like "develop", commit SHAs).
func FromRef(ref string) (Version, bool) {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	if len(name) < 2 || name[0] != 'v' || name[1] < '0' || name[1] > '9' {
		return Version{}, false
	}
	v, err := ParseVersion(name)
	if err != nil {
		return Version{}, false
	}
	return v, true
}
