package command

import (
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type packagesCommand struct {
	Config    string            `long:"config" short:"c" required:"true" description:"file describing the packages (.hcl or .yml)"`
	Variables map[string]string `long:"var"    short:"v" description:"variables to interpolate (can be specified multiple times)"`
	Output    string            `long:"output" default:"-" description:"where to write the list to ('-' for stdout)"`
}

type packageRef struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

func (c *packagesCommand) Execute(args []string) (err error) {
	cfg, err := parseConfig(c.Config, c.Variables)
	if err != nil {
		return
	}

	refs := make([]packageRef, len(cfg.Packages))
	for idx, pkg := range cfg.Packages {
		refs[idx].Path = pkg

		refs[idx].Name, err = dpkg.PackageNameFromFilename(pkg)
		if err != nil {
			return
		}
	}

	b, err := yaml.Marshal(refs)
	if err != nil {
		err = errors.Wrapf(err,
			"failed marshalling packages")
		return
	}

	err = writeTo(c.Output, b)
	return
}
