package config

import (
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const packagesKey = "build_deb_packages"

// bareReferenceRe matches `{name}` references lacking the leading `$`, as
// found in `str.format`-style vars files.
//
var bareReferenceRe = regexp.MustCompile(`(?:^|[^$])(\{[A-Za-z_][A-Za-z0-9_]*\})`)

// varsFile is the layout of a test-vars file: every top-level scalar is a
// variable, `build_deb_packages` lists package templates and the remaining
// keys mirror the HCL blocks.
//
// ```
// securedrop_version: "0.3.10"
// ossec_version: "2.8.2"
// build_deb_packages:
//   - /tmp/build/securedrop-app-code-${securedrop_version}-amd64.deb
// control:
//   maintainer: SecureDrop Team <securedrop@freedom.press>
// ```
//
type varsFile struct {
	Packages     []string      `yaml:"build_deb_packages"`
	Control      *Control      `yaml:"control"`
	Forbid       []Forbid      `yaml:"forbid"`
	Reproducible *Reproducible `yaml:"reproducible"`
	Install      *Install      `yaml:"install"`
}

// ParseVars parses a YAML test-vars file, rendering the package templates
// with the scalar variables it declares (overridden by `vars`).
//
func ParseVars(content []byte, filename string, vars map[string]string) (cfg *Config, err error) {
	var (
		doc  yaml.Node
		file varsFile
	)

	err = yaml.Unmarshal(content, &doc)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse %s", filename)
		return
	}

	err = yaml.Unmarshal(content, &file)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode %s", filename)
		return
	}

	declared, err := scalarVariables(&doc)
	if err != nil {
		err = errors.Wrapf(err, "failed to retrieve variables from %s", filename)
		return
	}

	cfg = &Config{
		Variables:    merge(declared, vars),
		Control:      file.Control,
		Forbid:       file.Forbid,
		Reproducible: file.Reproducible,
		Install:      file.Install,
	}

	cfg.Packages = make([]string, len(file.Packages))
	for idx, tmpl := range file.Packages {
		if match := bareReferenceRe.FindStringSubmatch(tmpl); match != nil {
			err = errors.Errorf(
				"package %d of %s references a variable as `%s`, use `$%s` instead",
				idx, filename, match[1], match[1])
			return
		}

		cfg.Packages[idx], err = RenderTemplate(tmpl, cfg.Variables)
		if err != nil {
			err = errors.Wrapf(err, "failed rendering package %d of %s", idx, filename)
			return
		}
	}

	cfg.setDefaults()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrapf(err, "invalid config %s", filename)
		return
	}

	return
}

// scalarVariables collects the top-level scalars of a YAML document.
// Versions are taken verbatim (`0.3` stays `0.3`, not a float).
//
func scalarVariables(doc *yaml.Node) (vars map[string]string, err error) {
	vars = map[string]string{}

	if doc.Kind == 0 {
		return
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		err = errors.Errorf("expected a single yaml document")
		return
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		err = errors.Errorf("expected a mapping at the top level, line %d", root.Line)
		return
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		if key.Value == packagesKey || value.Kind != yaml.ScalarNode {
			continue
		}

		vars[key.Value] = value.Value
	}

	return
}
