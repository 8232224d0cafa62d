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
	_ "embed"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spack/containerize/pkg/oci"
)

var (
	//go:embed data/images.yaml
	imagesData []byte

	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Commands holds the shell fragments a package manager uses to refresh its
// index, install packages and drop its caches.
type Commands struct {
	Update  string `json:"update" yaml:"update"`
	Install string `json:"install" yaml:"install"`
	Clean   string `json:"clean" yaml:"clean"`
}

// EnvVar is a single environment variable set in the bootstrap stage.
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Descriptor is the image-building metadata of one bootstrap OS.
type Descriptor struct {
	ID                string   `json:"id" yaml:"id"`
	Image             string   `json:"image" yaml:"image"`
	FinalImage        string   `json:"finalImage,omitempty" yaml:"finalImage,omitempty"`
	PackageManager    string   `json:"packageManager" yaml:"packageManager"`
	Commands          Commands `json:"commands" yaml:"-"`
	BootstrapPackages []string `json:"bootstrapPackages,omitempty" yaml:"bootstrapPackages,omitempty"`
	Env               []EnvVar `json:"env,omitempty" yaml:"env,omitempty"`
	Setup             []string `json:"setup,omitempty" yaml:"setup,omitempty"`
	Aliases           []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// RuntimeImage returns the image the final stage starts from.
func (d *Descriptor) RuntimeImage() string {
	if d.FinalImage != "" {
		return d.FinalImage
	}
	return d.Image
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.BootstrapPackages = slices.Clone(d.BootstrapPackages)
	c.Env = slices.Clone(d.Env)
	c.Setup = slices.Clone(d.Setup)
	c.Aliases = slices.Clone(d.Aliases)
	return &c
}

type document struct {
	PackageManagers map[string]Commands `yaml:"packageManagers"`
	Images          []*Descriptor       `yaml:"images"`
}

// Catalog is a read-only registry of bootstrap operating systems.
// It is safe for concurrent use.
type Catalog struct {
	byID     map[string]*Descriptor
	ids      []string
	managers map[string]Commands
}

// Default returns the catalog embedded in the binary. It is parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(imagesData)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("failed to load embedded OS catalog: %w", defaultErr)
			return
		}
		slog.Debug("os catalog loaded", "count", len(defaultCatalog.ids))
	})
	return defaultCatalog, defaultErr
}

// Parse builds a catalog from its YAML form. Every image must be a valid
// reference, every package manager must be declared and identifiers
// (aliases included) must be unique.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if len(doc.Images) == 0 {
		return nil, fmt.Errorf("catalog has no images")
	}

	c := &Catalog{
		byID:     make(map[string]*Descriptor),
		managers: doc.PackageManagers,
	}
	for i, d := range doc.Images {
		if d == nil || d.ID == "" {
			return nil, fmt.Errorf("image %d: id is required", i)
		}
		cmds, ok := c.managers[d.PackageManager]
		if !ok {
			return nil, fmt.Errorf("image %q: unknown package manager %q", d.ID, d.PackageManager)
		}
		d.Commands = cmds
		if _, err := oci.ParseImage(d.Image); err != nil {
			return nil, fmt.Errorf("image %q: %w", d.ID, err)
		}
		if d.FinalImage != "" {
			if _, err := oci.ParseImage(d.FinalImage); err != nil {
				return nil, fmt.Errorf("image %q: final image: %w", d.ID, err)
			}
		}

		for _, id := range append([]string{d.ID}, d.Aliases...) {
			if _, dup := c.byID[id]; dup {
				return nil, fmt.Errorf("duplicate catalog identifier %q", id)
			}
			entry := d.clone()
			entry.ID = id
			c.byID[id] = entry
		}
	}
	c.ids = slices.Sorted(maps.Keys(c.byID))
	return c, nil
}

// List returns every known identifier in sorted order.
func (c *Catalog) List() []string {
	return slices.Clone(c.ids)
}

// Descriptors returns a copy of every descriptor ordered by identifier.
func (c *Catalog) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id].clone())
	}
	return out
}

// Resolve returns the descriptor registered under id. The match is exact
// and case-sensitive. The returned descriptor is a copy the caller owns.
func (c *Catalog) Resolve(id string) (*Descriptor, error) {
	d, ok := c.byID[id]
	if !ok {
		return nil, &UnknownOSError{ID: id, Known: c.List()}
	}
	return d.clone(), nil
}

// PackageManagers returns the commands of every declared package manager.
func (c *Catalog) PackageManagers() map[string]Commands {
	return maps.Clone(c.managers)
}

// Commands looks up a package manager by name.
func (c *Catalog) Commands(name string) (Commands, bool) {
	cmds, ok := c.managers[name]
	return cmds, ok
}

// PackageManagerNames returns the declared package manager names in sorted order.
func (c *Catalog) PackageManagerNames() []string {
	return slices.Sorted(maps.Keys(c.managers))
}
