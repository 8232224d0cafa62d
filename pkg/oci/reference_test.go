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

package oci

import (
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestParseImage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReg    string
		wantRepo   string
		wantTag    string
		wantString string
		wantErr    bool
	}{
		{
			name:       "docker hub official",
			input:      "ubuntu:22.04",
			wantReg:    "docker.io",
			wantRepo:   "library/ubuntu",
			wantTag:    "22.04",
			wantString: "ubuntu:22.04",
		},
		{
			name:       "docker hub org",
			input:      "nvidia/cuda:11.2.1-devel-ubuntu20.04",
			wantReg:    "docker.io",
			wantRepo:   "nvidia/cuda",
			wantTag:    "11.2.1-devel-ubuntu20.04",
			wantString: "nvidia/cuda:11.2.1-devel-ubuntu20.04",
		},
		{
			name:       "nested path",
			input:      "opensuse/leap:15",
			wantReg:    "docker.io",
			wantRepo:   "opensuse/leap",
			wantTag:    "15",
			wantString: "opensuse/leap:15",
		},
		{
			name:       "custom registry",
			input:      "ghcr.io/spack/ubuntu-jammy:latest",
			wantReg:    "ghcr.io",
			wantRepo:   "spack/ubuntu-jammy",
			wantTag:    "latest",
			wantString: "ghcr.io/spack/ubuntu-jammy:latest",
		},
		{
			name:       "no tag",
			input:      "quay.io/centos/centos",
			wantReg:    "quay.io",
			wantRepo:   "centos/centos",
			wantString: "quay.io/centos/centos",
		},
		{name: "empty", input: "", wantErr: true},
		{name: "uppercase", input: "Ubuntu:22.04", wantErr: true},
		{name: "bad tag", input: "ubuntu:22.04:extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseImage(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseImage(%q) expected error, got %+v", tt.input, img)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseImage(%q) unexpected error: %v", tt.input, err)
			}
			if img.Registry != tt.wantReg {
				t.Errorf("Registry = %q, want %q", img.Registry, tt.wantReg)
			}
			if img.Repository != tt.wantRepo {
				t.Errorf("Repository = %q, want %q", img.Repository, tt.wantRepo)
			}
			if img.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", img.Tag, tt.wantTag)
			}
			if img.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", img.String(), tt.wantString)
			}
		})
	}
}

func TestBaseImageAnnotations(t *testing.T) {
	img, err := ParseImage("ubuntu:22.04")
	if err != nil {
		t.Fatal(err)
	}
	a := BaseImageAnnotations(img)
	if got := a[ociv1.AnnotationBaseImageName]; got != "docker.io/library/ubuntu:22.04" {
		t.Errorf("base name = %q", got)
	}
	if _, ok := a[ociv1.AnnotationBaseImageDigest]; ok {
		t.Error("digest annotation set for undigested image")
	}

	if BaseImageAnnotations(nil) != nil {
		t.Error("expected nil annotations for nil image")
	}
}

func TestBaseImageAnnotationsDigest(t *testing.T) {
	const d = "sha256:4b1f3d1b9b7e5e0f3e3c4a0d7b6c4f5e8a1b2c3d4e5f60718293a4b5c6d7e8f9"
	img, err := ParseImage("alpine@" + d)
	if err != nil {
		t.Fatal(err)
	}
	if got := BaseImageAnnotations(img)[ociv1.AnnotationBaseImageDigest]; got != d {
		t.Errorf("digest = %q, want %q", got, d)
	}
}
