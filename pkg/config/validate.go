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

package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/spack/containerize/pkg/oci"
	"github.com/spack/containerize/pkg/version"
)

// MinSpackVersion is the oldest Spack release the generated recipes support.
var MinSpackVersion = version.MustParseVersion("0.16.0")

var (
	containerKeys   = []string{"format", "images", "os_packages", "strip", "labels", "monitor", "singularity"}
	imagesKeys      = []string{"os", "spack", "final"}
	osPackagesKeys  = []string{"command", "update", "build", "final"}
	monitorKeys     = []string{"host", "keep_going", "prefix", "tags"}
	singularityKeys = []string{"runscript", "startscript", "test", "help"}
)

var (
	gitRefPattern  = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)
	packagePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+:@=~*/-]*$`)
)

// Validate parses an environment document (YAML or JSON) and returns its
// normalized form. It fails with *ValidationError on the first violation.
// The bootstrap OS is not looked up here; an unknown or missing OS is
// reported when the recipe is generated.
func Validate(raw []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("document is not valid YAML or JSON: %v", err)}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &ValidationError{Reason: "document is empty"}
	}
	doc := deref(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, errAt(doc, "", "document root must be a mapping")
	}
	if err := uniqueKeys(doc, ""); err != nil {
		return nil, err
	}

	_, spackNode := lookup(doc, "spack")
	if spackNode == nil {
		return nil, errAt(doc, "spack", "required key is missing")
	}
	if spackNode.Kind != yaml.MappingNode {
		return nil, errAt(spackNode, "spack", "must be a mapping")
	}

	v := &validator{cfg: Defaults()}
	if err := v.environment(spackNode); err != nil {
		return nil, err
	}
	return v.cfg, nil
}

type validator struct {
	cfg *Config
}

func (v *validator) environment(spack *yaml.Node) error {
	env := &v.cfg.Environment
	_, container := lookup(spack, "container")
	if container != nil && !isNull(container) {
		if err := v.container(container); err != nil {
			return err
		}
	}

	if err := v.monitor(spack, container); err != nil {
		return err
	}

	if _, specs := lookup(spack, "specs"); specs != nil && !isNull(specs) {
		list, err := stringList(specs, "spack.specs")
		if err != nil {
			return err
		}
		env.Specs = list
	}

	for i := 0; i+1 < len(spack.Content); i += 2 {
		key, val := spack.Content[i], spack.Content[i+1]
		switch key.Value {
		case "specs", "container", "monitor":
			continue
		}
		var decoded any
		if err := val.Decode(&decoded); err != nil {
			return errAt(val, "spack."+key.Value, err.Error())
		}
		if env.Extra == nil {
			env.Extra = make(map[string]any)
		}
		env.Extra[key.Value] = decoded
	}
	return nil
}

func (v *validator) container(n *yaml.Node) error {
	const path = "spack.container"
	c := &v.cfg.Environment.Container
	if n.Kind != yaml.MappingNode {
		return errAt(n, path, "must be a mapping")
	}
	if err := knownKeys(n, path, containerKeys); err != nil {
		return err
	}

	if _, images := lookup(n, "images"); images != nil && !isNull(images) {
		if err := v.images(images); err != nil {
			return err
		}
	}

	if _, f := lookup(n, "format"); f != nil && !isNull(f) {
		s, err := scalar(f, path+".format")
		if err != nil {
			return err
		}
		if !Format(s).IsValid() {
			return errAt(f, path+".format", fmt.Sprintf("%q is not one of %s", s, strings.Join(SupportedFormats(), ", ")))
		}
		c.Format = Format(s)
	}

	if _, pkgs := lookup(n, "os_packages"); pkgs != nil && !isNull(pkgs) {
		if err := v.osPackages(pkgs); err != nil {
			return err
		}
	}

	if _, labels := lookup(n, "labels"); labels != nil && !isNull(labels) {
		m, err := stringMap(labels, path+".labels")
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(labels.Content); i += 2 {
			k, val := labels.Content[i], deref(labels.Content[i+1])
			if err := CheckLabel(k.Value, val.Value); err != nil {
				return errAt(k, path+".labels."+k.Value, err.Error())
			}
		}
		c.Labels = m
	}
	if _, strip := lookup(n, "strip"); strip != nil && !isNull(strip) {
		b, err := boolean(strip, path+".strip")
		if err != nil {
			return err
		}
		c.Strip = b
	}
	if _, sing := lookup(n, "singularity"); sing != nil && !isNull(sing) {
		if err := v.singularity(sing); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) images(n *yaml.Node) error {
	const path = "spack.container.images"
	img := &v.cfg.Environment.Container.Images
	if n.Kind != yaml.MappingNode {
		return errAt(n, path, "must be a mapping")
	}
	if err := knownKeys(n, path, imagesKeys); err != nil {
		return err
	}

	if _, os := lookup(n, "os"); os != nil && !isNull(os) {
		s, err := scalar(os, path+".os")
		if err != nil {
			return err
		}
		img.OS = s
	}

	if _, ref := lookup(n, "spack"); ref != nil && !isNull(ref) {
		s, err := scalar(ref, path+".spack")
		if err != nil {
			return err
		}
		if err := CheckGitRef(s); err != nil {
			return errAt(ref, path+".spack", err.Error())
		}
		if ver, ok := version.FromRef(s); ok && !ver.EqualsOrNewer(MinSpackVersion) {
			return errAt(ref, path+".spack",
				fmt.Sprintf("spack %s is not supported, the oldest supported release is %s", s, MinSpackVersion.Tag()))
		}
		img.Spack = s
	}

	if _, final := lookup(n, "final"); final != nil && !isNull(final) {
		s, err := scalar(final, path+".final")
		if err != nil {
			return err
		}
		if _, err := oci.ParseImage(s); err != nil {
			return errAt(final, path+".final", fmt.Sprintf("%q is not a valid image reference", s))
		}
		img.Final = s
	}
	return nil
}

func (v *validator) osPackages(n *yaml.Node) error {
	const path = "spack.container.os_packages"
	p := &v.cfg.Environment.Container.OSPackages
	if n.Kind != yaml.MappingNode {
		return errAt(n, path, "must be a mapping")
	}
	if err := knownKeys(n, path, osPackagesKeys); err != nil {
		return err
	}
	if _, cmd := lookup(n, "command"); cmd != nil && !isNull(cmd) {
		s, err := scalar(cmd, path+".command")
		if err != nil {
			return err
		}
		if !slices.Contains(PackageManagers, s) {
			return errAt(cmd, path+".command", fmt.Sprintf("%q is not one of %s", s, strings.Join(PackageManagers, ", ")))
		}
		p.Command = s
	}
	if _, upd := lookup(n, "update"); upd != nil && !isNull(upd) {
		b, err := boolean(upd, path+".update")
		if err != nil {
			return err
		}
		p.Update = b
	}
	for _, stage := range []string{"build", "final"} {
		_, list := lookup(n, stage)
		if list == nil || isNull(list) {
			continue
		}
		pkgs, err := stringList(list, path+"."+stage)
		if err != nil {
			return err
		}
		for i, pkg := range pkgs {
			if err := CheckPackage(pkg); err != nil {
				return errAt(list.Content[i], fmt.Sprintf("%s.%s[%d]", path, stage, i), err.Error())
			}
		}
		if stage == "build" {
			p.Build = pkgs
		} else {
			p.Final = pkgs
		}
	}
	return nil
}

func (v *validator) singularity(n *yaml.Node) error {
	const path = "spack.container.singularity"
	s := &v.cfg.Environment.Container.Singularity
	if n.Kind != yaml.MappingNode {
		return errAt(n, path, "must be a mapping")
	}
	if err := knownKeys(n, path, singularityKeys); err != nil {
		return err
	}
	fields := map[string]*string{
		"runscript":   &s.Runscript,
		"startscript": &s.Startscript,
		"test":        &s.Test,
		"help":        &s.Help,
	}
	for _, key := range singularityKeys {
		_, val := lookup(n, key)
		if val == nil || isNull(val) {
			continue
		}
		str, err := scalar(val, path+"."+key)
		if err != nil {
			return err
		}
		*fields[key] = str
	}
	return nil
}

// monitor accepts the block at spack.monitor or spack.container.monitor,
// never both.
func (v *validator) monitor(spack, container *yaml.Node) error {
	_, top := lookup(spack, "monitor")
	var nested *yaml.Node
	if container != nil && container.Kind == yaml.MappingNode {
		_, nested = lookup(container, "monitor")
	}
	if top != nil && isNull(top) {
		top = nil
	}
	if nested != nil && isNull(nested) {
		nested = nil
	}

	n, path := top, "spack.monitor"
	switch {
	case top != nil && nested != nil:
		return errAt(nested, "spack.container.monitor", "monitor is already declared at spack.monitor")
	case nested != nil:
		n, path = nested, "spack.container.monitor"
	case top == nil:
		return nil
	}

	if n.Kind != yaml.MappingNode {
		return errAt(n, path, "must be a mapping")
	}
	if err := knownKeys(n, path, monitorKeys); err != nil {
		return err
	}
	m := &Monitor{}
	if _, host := lookup(n, "host"); host != nil && !isNull(host) {
		s, err := singleLine(host, path+".host")
		if err != nil {
			return err
		}
		m.Host = s
	}
	if _, kg := lookup(n, "keep_going"); kg != nil && !isNull(kg) {
		b, err := boolean(kg, path+".keep_going")
		if err != nil {
			return err
		}
		m.KeepGoing = b
	}
	if _, prefix := lookup(n, "prefix"); prefix != nil && !isNull(prefix) {
		s, err := singleLine(prefix, path+".prefix")
		if err != nil {
			return err
		}
		m.Prefix = s
	}
	if _, tags := lookup(n, "tags"); tags != nil && !isNull(tags) {
		if tags.Kind == yaml.ScalarNode {
			if _, err := singleLine(tags, path+".tags"); err != nil {
				return err
			}
			m.Tags = SplitTags(tags.Value)
		} else {
			list, err := stringList(tags, path+".tags")
			if err != nil {
				return err
			}
			for i, tag := range list {
				if hasControl(tag) {
					return errAt(tags.Content[i], fmt.Sprintf("%s.tags[%d]", path, i), "must not contain control characters")
				}
			}
			m.Tags = list
		}
	}
	v.cfg.Environment.Monitor = m
	return nil
}

// SplitTags splits a comma-separated tag string, dropping empty entries.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func lookup(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], deref(m.Content[i+1])
		}
	}
	return nil, nil
}

// uniqueKeys rejects mappings that declare a key twice, anywhere below n.
// Aliased nodes are checked where their anchor is defined.
func uniqueKeys(n *yaml.Node, path string) error {
	switch n.Kind {
	case yaml.MappingNode:
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			child := joinPath(path, k.Value)
			if seen[k.Value] {
				return errAt(k, child, "duplicate key")
			}
			seen[k.Value] = true
			if err := uniqueKeys(n.Content[i+1], child); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := uniqueKeys(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func knownKeys(m *yaml.Node, path string, allowed []string) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if !slices.Contains(allowed, k.Value) {
			return errAt(k, path, fmt.Sprintf("unknown key %q, allowed keys are %s", k.Value, strings.Join(allowed, ", ")))
		}
	}
	return nil
}

func scalar(n *yaml.Node, path string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", errAt(n, path, "must be a string")
	}
	return n.Value, nil
}

func singleLine(n *yaml.Node, path string) (string, error) {
	s, err := scalar(n, path)
	if err != nil {
		return "", err
	}
	if hasControl(s) {
		return "", errAt(n, path, "must not contain control characters")
	}
	return s, nil
}

func boolean(n *yaml.Node, path string) (bool, error) {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!bool" {
		return false, errAt(n, path, "must be a boolean")
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, errAt(n, path, "must be a boolean")
	}
	return b, nil
}

func stringList(n *yaml.Node, path string) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errAt(n, path, "must be a list of strings")
	}
	out := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		item = deref(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			return nil, errAt(item, fmt.Sprintf("%s[%d]", path, i), "must be a string")
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func stringMap(n *yaml.Node, path string) (map[string]string, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errAt(n, path, "must be a mapping of strings")
	}
	out := make(map[string]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, val := n.Content[i], deref(n.Content[i+1])
		if val.Kind != yaml.ScalarNode || isNull(val) {
			return nil, errAt(val, path+"."+k.Value, "must be a string")
		}
		out[k.Value] = val.Value
	}
	return out, nil
}

func errAt(n *yaml.Node, path, reason string) *ValidationError {
	e := &ValidationError{Path: path, Reason: reason}
	if n != nil {
		e.Line = n.Line
	}
	return e
}

// CheckGitRef reports whether ref is a branch, tag or commit name that can be
// passed to git fetch.
func CheckGitRef(ref string) error {
	if !gitRefPattern.MatchString(ref) ||
		strings.HasPrefix(ref, "-") ||
		strings.HasPrefix(ref, "/") ||
		strings.HasSuffix(ref, "/") ||
		strings.HasSuffix(ref, ".") ||
		strings.Contains(ref, "..") ||
		strings.Contains(ref, "//") {
		return fmt.Errorf("%q is not a valid git ref", ref)
	}
	return nil
}

// CheckLabel reports whether a label fits on a single line of a recipe.
func CheckLabel(key, value string) error {
	if key == "" {
		return fmt.Errorf("label key is empty")
	}
	if strings.IndexFunc(key, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("label key %q must not contain whitespace", key)
	}
	if hasControl(value) {
		return fmt.Errorf("label %q must not contain control characters", key)
	}
	return nil
}

// CheckPackage reports whether name can be handed to a package manager as a
// single argument.
func CheckPackage(name string) error {
	if !packagePattern.MatchString(name) {
		return fmt.Errorf("%q is not a valid package name", name)
	}
	return nil
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
