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
	"testing"
)

// FuzzParseVersion performs fuzz testing on ParseVersion to find edge cases
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"1", "v1", "1.2", "v0.16", "v0.21.2", "0.0.0", "999.999.999",
		"", ".", "..", "1.", ".1", "1..2", "v", "vv1", "-1", "1.-2",
		"a.b.c", "1.2.3.4", "   1.2.3", "1.2.3   ", "v0.22.0-dev", "v1.0.0+meta",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}
		if !v.IsValid() {
			t.Errorf("ParseVersion(%q) returned invalid version: %+v", input, v)
		}

		v2, err := ParseVersion(v.String())
		if err != nil {
			t.Errorf("Re-parsing %q (from %q) failed: %v", v.String(), input, err)
		} else if v.Compare(v2) != 0 || v.Precision != v2.Precision {
			t.Errorf("Round-trip mismatch for %q: %+v != %+v", input, v, v2)
		}

		_ = v.EqualsOrNewer(NewVersion(0, 16, 0))
		_, _ = FromRef(input)
	})
}
