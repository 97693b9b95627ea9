package dpkg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"code.cloudfoundry.org/lager"
	"github.com/pkg/errors"
)

// Result captures what an external command produced.
//
// A command that ran but exited with a non-zero status is still a
// `Result` (with `ExitCode` set), as callers usually want to assert on the
// output regardless.
//
type Result struct {
	Stdout   string `yaml:"stdout"`
	Stderr   string `yaml:"stderr"`
	ExitCode int    `yaml:"exit_code"`
}

func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner runs external commands.
//
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (res Result, err error)
}

// ExecRunner is a `Runner` backed by `os/exec`.
//
type ExecRunner struct {
	// Dir is the working directory of the commands ("" for the current
	// one).
	//
	Dir string

	Logger lager.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (res Result, err error) {
	var (
		cmd            = exec.CommandContext(ctx, name, args...)
		stdout, stderr bytes.Buffer
	)

	if r.Logger != nil {
		sess := r.Logger.Session("run", lager.Data{
			"cmd": name + " " + strings.Join(args, " "),
			"dir": r.Dir,
		})

		sess.Debug("start")
		defer func() {
			sess.Debug("finish", lager.Data{"exit-code": res.ExitCode})
		}()
	}

	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			err = errors.Wrapf(err,
				"failed to run `%s %s`", name, strings.Join(args, " "))
			return
		}

		res.ExitCode = exitErr.ExitCode()
		err = nil
	}

	return
}
