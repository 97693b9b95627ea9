package provision

import (
	"context"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/google/shlex"
	"github.com/pkg/errors"
)

// Provisioner triggers a new build of the debian packages by running an
// external provisioning command (e.g., `vagrant provision build`).
//
type Provisioner struct {
	Command string
	Runner  dpkg.Runner
	Logger  lager.Logger
}

func New(logger lager.Logger, runner dpkg.Runner, command string) *Provisioner {
	return &Provisioner{
		Command: command,
		Runner:  runner,
		Logger:  logger,
	}
}

// Rebuild runs the provisioning command to completion.
//
func (p *Provisioner) Rebuild(ctx context.Context) (err error) {
	args, err := shlex.Split(p.Command)
	if err != nil {
		err = errors.Wrapf(err,
			"failed splitting provisioning command `%s`", p.Command)
		return
	}

	if len(args) == 0 {
		err = errors.Errorf("empty provisioning command")
		return
	}

	sess := p.Logger.Session("rebuild", lager.Data{"command": args})

	sess.Info("start")
	defer sess.Info("finish")

	res, err := p.Runner.Run(ctx, args[0], args[1:]...)
	if err != nil {
		err = errors.Wrapf(err,
			"failed running provisioning command `%s`", p.Command)
		return
	}

	if !res.Succeeded() {
		err = errors.Errorf(
			"provisioning command `%s` exited with %d - %s",
			p.Command, res.ExitCode, res.Stderr)
		return
	}

	return
}
