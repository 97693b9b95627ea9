package command

import (
	"context"

	"github.com/cirocosta/debcheck/dpkg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type contentsCommand struct {
	Output    string `long:"output"     default:"-" description:"where to write the listing to ('-' for stdout)"`
	FilesOnly bool   `long:"files-only" description:"leave directories out of the listing"`

	Args struct {
		Package string `positional-arg-name:"deb" required:"yes"`
	} `positional-args:"yes"`
}

func (c *contentsCommand) Execute(args []string) (err error) {
	d := dpkg.New(logger, runner, false)

	entries, res, err := d.Contents(context.TODO(), c.Args.Package)
	if err != nil {
		return
	}

	if !res.Succeeded() {
		err = errors.Errorf("dpkg-deb exited with %d - %s", res.ExitCode, res.Stderr)
		return
	}

	if c.FilesOnly {
		files := entries[:0]
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, entry)
			}
		}

		entries = files
	}

	b, err := yaml.Marshal(entries)
	if err != nil {
		err = errors.Wrapf(err,
			"failed marshalling contents")
		return
	}

	err = writeTo(c.Output, b)
	return
}
