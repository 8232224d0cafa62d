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
	"bytes"
	"embed"
	"fmt"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/oci"
)

// DefaultSpackRepository is the git repository Spack is cloned from.
const DefaultSpackRepository = "https://github.com/spack/spack.git"

// Label keys carrying the monitor block into the final image.
const (
	LabelMonitorHost      = "io.spack.monitor.host"
	LabelMonitorKeepGoing = "io.spack.monitor.keep_going"
	LabelMonitorPrefix    = "io.spack.monitor.prefix"
	LabelMonitorTags      = "io.spack.monitor.tags"
)

var (
	//go:embed templates/docker/*.tmpl templates/singularity/*.tmpl
	templateFS embed.FS

	templatesOnce sync.Once
	templateSet   map[config.Format]*template.Template
	templatesErr  error

	safeShellWord = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)
	scpLikeRepo   = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[A-Za-z0-9._~/-]+$`)
)

// Paths are the fixed locations used across stages.
type Paths struct {
	Spack       string
	Environment string
	Store       string
	View        string
	HiddenView  string
	Profile     string
}

var defaultPaths = Paths{
	Spack:       "/opt/spack",
	Environment: "/opt/spack-environment",
	Store:       "/opt/software",
	View:        "/opt/view",
	HiddenView:  "/opt/._view",
	Profile:     "/etc/profile.d/z10_spack_environment.sh",
}

// Label is a single key/value label of the final image.
type Label struct {
	Key   string
	Value string
}

// view is everything the templates read. It is fully computed before the
// first block is rendered.
type view struct {
	OS             *catalog.Descriptor
	Paths          Paths
	SpackRepo      string
	SpackRef       string
	BootstrapSteps []string
	BuildSteps     []string
	FinalSteps     []string
	Manifest       []string
	ManifestEcho   []string
	InstallFlags   string
	Strip          bool
	FinalImage     string
	Labels         []Label
	Singularity    config.Singularity
}

var templateFuncs = template.FuncMap{
	"chain":      chain,
	"quote":      dockerQuote,
	"shellQuote": shellQuote,
	"indent":     indent,
}

func loadTemplates() (map[config.Format]*template.Template, error) {
	templatesOnce.Do(func() {
		set := make(map[config.Format]*template.Template, 2)
		for _, f := range []config.Format{config.FormatDocker, config.FormatSingularity} {
			t, err := template.New(f.String()).
				Option("missingkey=error").
				Funcs(templateFuncs).
				ParseFS(templateFS, "templates/"+f.String()+"/*.tmpl")
			if err != nil {
				templatesErr = fmt.Errorf("failed to parse %s templates: %w", f, err)
				return
			}
			set[f] = t
		}
		templateSet = set
	})
	return templateSet, templatesErr
}

func render(t *template.Template, s Stage, v *view) (string, error) {
	var buf bytes.Buffer
	name := s.String() + ".tmpl"
	if err := t.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// newView resolves the bootstrap OS and derives every value the templates need.
func newView(cat *catalog.Catalog, cfg *config.Config, repo string) (*view, error) {
	env := cfg.Environment
	c := env.Container

	d, err := cat.Resolve(c.Images.OS)
	if err != nil {
		return nil, err
	}

	cmds := d.Commands
	if c.OSPackages.Command != "" {
		var ok bool
		if cmds, ok = cat.Commands(c.OSPackages.Command); !ok {
			return nil, fmt.Errorf("package manager %q is not in the catalog", c.OSPackages.Command)
		}
	}

	spackRef := c.Images.Spack
	if spackRef == "" {
		spackRef = config.DefaultSpackRef
	}
	if err := config.CheckGitRef(spackRef); err != nil {
		return nil, &config.ValidationError{Path: "spack.container.images.spack", Reason: err.Error()}
	}
	for _, list := range []struct {
		stage string
		pkgs  []string
	}{{"build", c.OSPackages.Build}, {"final", c.OSPackages.Final}} {
		for i, pkg := range list.pkgs {
			if err := config.CheckPackage(pkg); err != nil {
				return nil, &config.ValidationError{
					Path:   fmt.Sprintf("spack.container.os_packages.%s[%d]", list.stage, i),
					Reason: err.Error(),
				}
			}
		}
	}

	finalImage := c.Images.Final
	if finalImage == "" {
		finalImage = d.RuntimeImage()
	}
	img, err := oci.ParseImage(finalImage)
	if err != nil {
		return nil, fmt.Errorf("final image: %w", err)
	}

	manifest, err := manifestLines(env, defaultPaths)
	if err != nil {
		return nil, err
	}
	lbls := labels(c.Labels, oci.BaseImageAnnotations(img), env.Monitor)
	for _, l := range lbls {
		if err := config.CheckLabel(l.Key, l.Value); err != nil {
			return nil, &config.ValidationError{Path: labelPath(l.Key), Reason: err.Error()}
		}
	}

	echo := make([]string, len(manifest))
	for i, line := range manifest {
		echo[i] = "echo " + singleQuote(line)
	}

	return &view{
		OS:             d,
		Paths:          defaultPaths,
		SpackRepo:      repo,
		SpackRef:       spackRef,
		BootstrapSteps: packageSteps(d.Commands, true, d.BootstrapPackages, d.Setup),
		BuildSteps:     packageSteps(cmds, c.OSPackages.Update, c.OSPackages.Build, nil),
		FinalSteps:     packageSteps(cmds, c.OSPackages.Update, c.OSPackages.Final, nil),
		Manifest:       manifest,
		ManifestEcho:   echo,
		InstallFlags:   monitorFlags(env.Monitor),
		Strip:          c.Strip,
		FinalImage:     finalImage,
		Labels:         lbls,
		Singularity:    c.Singularity,
	}, nil
}

// packageSteps returns the shell steps installing pkgs, or nil when there is
// nothing to install.
func packageSteps(cmds catalog.Commands, update bool, pkgs, setup []string) []string {
	if len(pkgs) == 0 && len(setup) == 0 {
		return nil
	}
	var steps []string
	if update && cmds.Update != "" {
		steps = append(steps, cmds.Update)
	}
	if len(pkgs) > 0 {
		quoted := make([]string, len(pkgs))
		for i, p := range pkgs {
			quoted[i] = shellQuote(p)
		}
		steps = append(steps, cmds.Install+" "+strings.Join(quoted, " "))
	}
	steps = append(steps, setup...)
	if cmds.Clean != "" {
		steps = append(steps, cmds.Clean)
	}
	return steps
}

// manifestLines renders the environment installed in the build stage. Opaque
// keys are kept; specs, view and the install tree are set for the image layout.
func manifestLines(env config.Environment, p Paths) ([]string, error) {
	spack := make(map[string]any, len(env.Extra)+4)
	maps.Copy(spack, env.Extra)

	specs := env.Specs
	if specs == nil {
		specs = []string{}
	}
	spack["specs"] = specs
	spack["view"] = p.View

	cfgSection := map[string]any{}
	if existing, ok := spack["config"].(map[string]any); ok {
		maps.Copy(cfgSection, existing)
	}
	tree := map[string]any{}
	if existing, ok := cfgSection["install_tree"].(map[string]any); ok {
		maps.Copy(tree, existing)
	}
	tree["root"] = p.Store
	cfgSection["install_tree"] = tree
	spack["config"] = cfgSection

	_, hasConcretizer := spack["concretizer"]
	_, hasConcretization := spack["concretization"]
	if !hasConcretizer && !hasConcretization {
		spack["concretizer"] = map[string]any{"unify": true}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"spack": spack}); err != nil {
		return nil, fmt.Errorf("failed to render environment manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render environment manifest: %w", err)
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), nil
}

func monitorFlags(m *config.Monitor) string {
	if m == nil {
		return ""
	}
	flags := []string{"--monitor"}
	if m.KeepGoing {
		flags = append(flags, "--monitor-keep-going")
	}
	if m.Host != "" {
		flags = append(flags, "--monitor-host", shellQuote(m.Host))
	}
	if m.Prefix != "" {
		flags = append(flags, "--monitor-prefix", shellQuote(m.Prefix))
	}
	if len(m.Tags) > 0 {
		flags = append(flags, "--monitor-tags", shellQuote(strings.Join(m.Tags, ",")))
	}
	return strings.Join(flags, " ") + " "
}

// labels merges user labels with generated ones and sorts them by key.
// Generated labels win on conflict.
func labels(user, annotations map[string]string, m *config.Monitor) []Label {
	all := maps.Clone(user)
	if all == nil {
		all = make(map[string]string)
	}
	maps.Copy(all, annotations)
	if m != nil {
		all[LabelMonitorKeepGoing] = strconv.FormatBool(m.KeepGoing)
		for k, v := range map[string]string{
			LabelMonitorHost:   m.Host,
			LabelMonitorPrefix: m.Prefix,
			LabelMonitorTags:   strings.Join(m.Tags, ","),
		} {
			if v != "" {
				all[k] = v
			}
		}
	}

	out := make([]Label, 0, len(all))
	for _, k := range slices.Sorted(maps.Keys(all)) {
		out = append(out, Label{Key: k, Value: all[k]})
	}
	return out
}

// labelPath names the document key a label was taken from.
func labelPath(key string) string {
	if strings.HasPrefix(key, "io.spack.monitor.") {
		return "spack.monitor"
	}
	return "spack.container.labels." + key
}

// checkRepository accepts URLs git can clone: http(s), ssh, git and file
// URLs and the scp-like user@host:path form.
func checkRepository(repo string) error {
	if scpLikeRepo.MatchString(repo) {
		return nil
	}
	u, err := url.Parse(repo)
	if err != nil || strings.ContainsFunc(repo, unicode.IsSpace) || strings.ContainsFunc(repo, unicode.IsControl) {
		return fmt.Errorf("%q is not a valid spack repository", repo)
	}
	switch u.Scheme {
	case "https", "http", "ssh", "git", "file":
	default:
		return fmt.Errorf("%q is not a valid spack repository: unsupported scheme %q", repo, u.Scheme)
	}
	if u.Scheme != "file" && u.Host == "" {
		return fmt.Errorf("%q is not a valid spack repository: missing host", repo)
	}
	return nil
}

// dockerQuote quotes s as a double-quoted Dockerfile word. Dollar signs are
// escaped so the value is not expanded at build time.
func dockerQuote(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "$", `\$`)
}

func chain(steps []string, indent string) string {
	return strings.Join(steps, " \\\n"+indent+" && ")
}

func indent(s, pad string) string {
	s = strings.TrimRight(s, "\n")
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func shellQuote(s string) string {
	if safeShellWord.MatchString(s) {
		return s
	}
	return singleQuote(s)
}
