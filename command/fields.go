package command

import (
	"context"

	"github.com/cirocosta/debcheck/dpkg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type fieldsCommand struct {
	Output string `long:"output" default:"-"    description:"where to write the fields to ('-' for stdout)"`
	Format string `long:"format" default:"yaml" choice:"yaml" choice:"control" description:"format of the fields"`

	Args struct {
		Package string `positional-arg-name:"deb" required:"yes"`
	} `positional-args:"yes"`
}

func (c *fieldsCommand) Execute(args []string) (err error) {
	d := dpkg.New(logger, runner, false)

	control, res, err := d.Fields(context.TODO(), c.Args.Package)
	if err != nil {
		return
	}

	if !res.Succeeded() {
		err = errors.Errorf("dpkg-deb exited with %d - %s", res.ExitCode, res.Stderr)
		return
	}

	if !control.IsFilled() {
		err = errors.Errorf("%s has no Package or Version field", c.Args.Package)
		return
	}

	if c.Format == "control" {
		err = writeTo(c.Output, []byte(control.ControlString()))
		return
	}

	b, err := yaml.Marshal(control)
	if err != nil {
		err = errors.Wrapf(err,
			"failed marshalling control fields")
		return
	}

	err = writeTo(c.Output, b)
	return
}
