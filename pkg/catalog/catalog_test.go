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
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestDefaultLoads(t *testing.T) {
	c := mustDefault(t)
	ids := c.List()
	assert.True(t, slices.IsSorted(ids), "identifiers must be sorted: %v", ids)
	for _, want := range []string{
		"alpine:3", "amazonlinux:2", "centos:7", "centos:stream", "opensuse/leap:15",
		"nvidia/cuda:11.2.1", "ubuntu:18.04", "ubuntu:20.04", "ubuntu:22.04",
		"ubuntu20", "centos7",
	} {
		assert.Contains(t, ids, want)
	}
}

func TestDefaultIsCached(t *testing.T) {
	a := mustDefault(t)
	b := mustDefault(t)
	assert.Same(t, a, b)
}

func TestResolveEveryIdentifier(t *testing.T) {
	c := mustDefault(t)
	for _, id := range c.List() {
		t.Run(id, func(t *testing.T) {
			d, err := c.Resolve(id)
			require.NoError(t, err)
			assert.Equal(t, id, d.ID)
			assert.NotEmpty(t, d.Image)
			assert.NotEmpty(t, d.Commands.Install)
			assert.NotEmpty(t, d.BootstrapPackages)
		})
	}
}

func TestResolveAliasSharesMetadata(t *testing.T) {
	c := mustDefault(t)
	full, err := c.Resolve("ubuntu:20.04")
	require.NoError(t, err)
	alias, err := c.Resolve("ubuntu20")
	require.NoError(t, err)

	assert.Equal(t, "ubuntu20", alias.ID)
	assert.Equal(t, full.Image, alias.Image)
	assert.Equal(t, full.Commands, alias.Commands)
	assert.Equal(t, full.BootstrapPackages, alias.BootstrapPackages)
}

func TestResolveUnknown(t *testing.T) {
	c := mustDefault(t)
	tests := []struct {
		name string
		id   string
	}{
		{"unregistered", "ubuntu:99.04"},
		{"case mismatch", "Ubuntu:22.04"},
		{"prefix only", "ubuntu"},
		{"whitespace", " ubuntu:22.04"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := c.Resolve(tt.id)
			assert.Nil(t, d)
			var unknown *UnknownOSError
			require.True(t, errors.As(err, &unknown), "expected UnknownOSError, got %v", err)
			assert.Equal(t, tt.id, unknown.ID)
			assert.Equal(t, c.List(), unknown.Known)
		})
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	c := mustDefault(t)
	d, err := c.Resolve("ubuntu:22.04")
	require.NoError(t, err)
	d.BootstrapPackages[0] = "mutated"
	d.Image = "mutated"

	again, err := c.Resolve("ubuntu:22.04")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu:22.04", again.Image)
	assert.NotEqual(t, "mutated", again.BootstrapPackages[0])
}

func TestRuntimeImage(t *testing.T) {
	c := mustDefault(t)
	cuda, err := c.Resolve("nvidia/cuda:11.2.1")
	require.NoError(t, err)
	assert.Equal(t, "nvidia/cuda:11.2.1-base-ubuntu20.04", cuda.RuntimeImage())

	ubuntu, err := c.Resolve("ubuntu:22.04")
	require.NoError(t, err)
	assert.Equal(t, ubuntu.Image, ubuntu.RuntimeImage())
}

func TestPackageManagers(t *testing.T) {
	c := mustDefault(t)
	names := c.PackageManagerNames()
	assert.Equal(t, []string{"apk", "apt", "dnf", "yum", "yum_amazon", "zypper"}, names)

	apt, ok := c.Commands("apt")
	require.True(t, ok)
	assert.Contains(t, apt.Install, "apt-get")

	_, ok = c.Commands("pacman")
	assert.False(t, ok)

	m := c.PackageManagers()
	delete(m, "apt")
	_, ok = c.Commands("apt")
	assert.True(t, ok, "PackageManagers must return a copy")
}

func TestUnknownOSErrorMessage(t *testing.T) {
	err := &UnknownOSError{ID: "ubuntu:99.04", Known: []string{"centos:7", "ubuntu:22.04"}}
	assert.Equal(t, `unknown bootstrap OS "ubuntu:99.04", valid values are: centos:7, ubuntu:22.04`, err.Error())

	missing := &UnknownOSError{Known: []string{"centos:7"}}
	assert.True(t, strings.HasPrefix(missing.Error(), "no bootstrap OS specified"))
}

func TestUnknownOSErrorSuggestion(t *testing.T) {
	c := mustDefault(t)
	tests := []struct {
		id   string
		want string
	}{
		{"ubuntu:22.4", "ubuntu:22.04"},
		{"ubuntu:2204", "ubuntu:22.04"},
		{"centos8", "centos7"},
		{"Alpine:3", "alpine:3"},
		{"windows-servercore", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := c.Resolve(tt.id)
			var unknown *UnknownOSError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tt.want, unknown.Suggestion())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "invalid yaml",
			data: "images: [",
			want: "unmarshal",
		},
		{
			name: "no images",
			data: "packageManagers: {}\n",
			want: "no images",
		},
		{
			name: "missing id",
			data: "packageManagers: {apt: {install: x}}\nimages:\n  - image: ubuntu:22.04\n    packageManager: apt\n",
			want: "id is required",
		},
		{
			name: "unknown package manager",
			data: "packageManagers: {}\nimages:\n  - id: a\n    image: ubuntu:22.04\n    packageManager: pacman\n",
			want: "unknown package manager",
		},
		{
			name: "invalid image",
			data: "packageManagers: {apt: {install: x}}\nimages:\n  - id: a\n    image: Not/Valid:Ref:x\n    packageManager: apt\n",
			want: "invalid image reference",
		},
		{
			name: "duplicate alias",
			data: "packageManagers: {apt: {install: x}}\nimages:\n  - id: a\n    image: ubuntu:22.04\n    packageManager: apt\n    aliases: [b]\n  - id: b\n    image: ubuntu:20.04\n    packageManager: apt\n",
			want: "duplicate catalog identifier",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
