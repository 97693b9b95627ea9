package config

import (
	"regexp"

	"github.com/pkg/errors"
)

const (
	DefaultIterations = 3
)

// Config represents everything that's needed to verify a set of built debian
// packages: the variables that version them, the templates that locate
// them, and what they're expected to look like.
//
type Config struct {
	// Variables are the version strings interpolated into `packages`.
	//
	Variables map[string]string `hcl:"variables,optional"`

	// Packages are the paths to the built debian packages.
	//
	Packages []string `hcl:"packages"`

	Control      *Control      `hcl:"control,block"`
	Forbid       []Forbid      `hcl:"forbid,block"`
	Reproducible *Reproducible `hcl:"reproducible,block"`
	Install      *Install      `hcl:"install,block"`
}

// Control holds the values that the control fields of every package must
// carry.
//
// Empty values are not checked.
//
type Control struct {
	Maintainer   string `hcl:"maintainer,optional"   yaml:"maintainer"`
	Architecture string `hcl:"architecture,optional" yaml:"architecture"`
	Homepage     string `hcl:"homepage,optional"     yaml:"homepage"`
}

// Forbid is a pattern that no line of `dpkg-deb --contents` may match.
//
// Example:
//
// ```
// forbid "pyc" {
//   pattern = "^.*\\.pyc$"
// }
// ```
//
type Forbid struct {
	Name    string `hcl:"name,label" yaml:"name"`
	Pattern string `hcl:"pattern"    yaml:"pattern"`
}

// Reproducible describes how to rebuild a package so that the checksums of
// consecutive builds can be compared.
//
type Reproducible struct {
	// Match selects the packages (by substring of their path) that must
	// be reproducible.
	//
	Match string `hcl:"match" yaml:"match"`

	// Command triggers a new build of the packages (e.g., `vagrant
	// provision build`).
	//
	Command string `hcl:"command" yaml:"command"`

	Iterations int `hcl:"iterations,optional" yaml:"iterations"`

	// Workdir is where copies of each build are kept so that subsequent
	// builds don't clobber them.
	//
	Workdir string `hcl:"workdir,optional" yaml:"workdir"`
}

type Install struct {
	// Sudo is required to call `dpkg --install`, even as dry-run.
	//
	Sudo *bool `hcl:"sudo,optional" yaml:"sudo"`
}

var defaultForbid = []Forbid{
	{Name: "pyc", Pattern: `^.*\.pyc$`},
	{Name: "config", Pattern: `^.*config\.py$`},
}

func (c *Config) setDefaults() {
	if c.Control == nil {
		c.Control = &Control{}
	}

	if len(c.Forbid) == 0 {
		c.Forbid = append([]Forbid{}, defaultForbid...)
	}

	if c.Reproducible != nil {
		if c.Reproducible.Iterations == 0 {
			c.Reproducible.Iterations = DefaultIterations
		}

		if c.Reproducible.Workdir == "" {
			c.Reproducible.Workdir = "~"
		}
	}

	if c.Install == nil {
		c.Install = &Install{}
	}

	if c.Install.Sudo == nil {
		sudo := true
		c.Install.Sudo = &sudo
	}
}

// Validate performs the semantic checks that the parsers can't.
//
func (c *Config) Validate() (err error) {
	if len(c.Packages) == 0 {
		err = errors.Errorf("at least one package must be specified")
		return
	}

	for _, pkg := range c.Packages {
		if pkg == "" {
			err = errors.Errorf("package paths must not be empty")
			return
		}
	}

	for _, forbid := range c.Forbid {
		_, err = regexp.Compile(forbid.Pattern)
		if err != nil {
			err = errors.Wrapf(err,
				"invalid pattern for forbid %s", forbid.Name)
			return
		}
	}

	if c.Reproducible != nil {
		if c.Reproducible.Match == "" {
			err = errors.Errorf("reproducible: `match` must not be empty")
			return
		}

		if c.Reproducible.Command == "" {
			err = errors.Errorf("reproducible: `command` must not be empty")
			return
		}

		if c.Reproducible.Iterations < 2 {
			err = errors.Errorf(
				"reproducible: at least 2 iterations needed, got %d",
				c.Reproducible.Iterations)
			return
		}
	}

	return
}

// Sudo indicates whether installation simulations must go through `sudo`.
//
func (c *Config) Sudo() bool {
	return c.Install == nil || c.Install.Sudo == nil || *c.Install.Sudo
}
