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

// Package oci parses container image references and derives OCI annotations.
//
// Catalog entries and the images.final override of an environment are
// validated with ParseImage. The final stage of a recipe labels the runtime
// image with BaseImageAnnotations so the bootstrap lineage stays visible in
// `docker inspect`.
//
//	img, err := oci.ParseImage("ubuntu:22.04")
//	if err != nil {
//	    return err
//	}
//	labels := oci.BaseImageAnnotations(img)
//	// org.opencontainers.image.base.name=docker.io/library/ubuntu:22.04
package oci
