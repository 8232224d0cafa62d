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
	"fmt"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	apperrors "github.com/spack/containerize/pkg/errors"
)

// Image is a parsed container image reference.
type Image struct {
	// Registry is the registry host (e.g., "docker.io", "ghcr.io").
	Registry string
	// Repository is the repository path (e.g., "library/ubuntu").
	Repository string
	// Tag is the image tag. Empty when the reference has none.
	Tag string
	// Digest is the content digest. Empty when the reference has none.
	Digest string

	named reference.Named
}

// ParseImage parses a docker-style image reference such as "ubuntu:22.04",
// "nvidia/cuda:11.2.1-devel-ubuntu20.04" or "ghcr.io/org/img@sha256:...".
// Short names are normalized against docker.io.
func ParseImage(s string) (*Image, error) {
	if s == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "image reference is empty")
	}
	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest, "invalid image reference", err,
			map[string]any{"image": s})
	}

	img := &Image{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
		named:      named,
	}
	if tagged, ok := named.(reference.Tagged); ok {
		img.Tag = tagged.Tag()
	}
	if digested, ok := named.(reference.Digested); ok {
		img.Digest = digested.Digest().String()
	}
	return img, nil
}

// String returns the reference in the short form users write
// ("ubuntu:22.04" rather than "docker.io/library/ubuntu:22.04").
func (i *Image) String() string {
	if i.named == nil {
		return i.Normalized()
	}
	return reference.FamiliarString(i.named)
}

// Normalized returns the fully qualified reference.
func (i *Image) Normalized() string {
	if i.named != nil {
		return i.named.String()
	}
	s := fmt.Sprintf("%s/%s", i.Registry, i.Repository)
	if i.Tag != "" {
		s += ":" + i.Tag
	}
	if i.Digest != "" {
		s += "@" + i.Digest
	}
	return s
}

// BaseImageAnnotations returns the OCI annotations describing img as the
// base of a derived image.
func BaseImageAnnotations(img *Image) map[string]string {
	if img == nil {
		return nil
	}
	a := map[string]string{
		ociv1.AnnotationBaseImageName: img.Normalized(),
	}
	if img.Digest != "" {
		a[ociv1.AnnotationBaseImageDigest] = img.Digest
	}
	return a
}
