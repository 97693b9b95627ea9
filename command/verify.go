package command

import (
	"context"
	"os"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/debcheck/check"
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/cirocosta/debcheck/osrelease"
	"github.com/cirocosta/debcheck/provision"
	"github.com/cirocosta/debcheck/report"
	"github.com/pkg/errors"
)

type verifyCommand struct {
	Config     string            `long:"config"      short:"c" required:"true" description:"file describing the packages to verify (.hcl or .yml)"`
	Variables  map[string]string `long:"var"         short:"v" description:"variables to interpolate (can be specified multiple times)"`
	Checks     []string          `long:"check"       description:"check to run (defaults to all of them)"`
	Output     string            `long:"output"      default:"-" description:"where to write the report to ('-' for stdout)"`
	Format     string            `long:"format"      default:"yaml" choice:"yaml" choice:"json" description:"format of the report"`
	KeepBuilds string            `long:"keep-builds" description:"directory to bundle the builds of the reproducibility check into"`
	NoSudo     bool              `long:"no-sudo"     description:"don't use sudo to simulate installations"`
	OsRelease  string            `long:"os-release"  description:"file identifying the distribution (defaults to /etc/os-release)"`
}

func (c *verifyCommand) Execute(args []string) (err error) {
	ctx := context.TODO()

	cfg, err := parseConfig(c.Config, c.Variables)
	if err != nil {
		return
	}

	suite := &check.Suite{
		Config:     cfg,
		Dpkg:       dpkg.New(logger, runner, cfg.Sudo() && !c.NoSudo),
		Logger:     logger,
		KeepBuilds: c.KeepBuilds,
	}

	if cfg.Reproducible != nil {
		suite.Rebuilder = provision.New(logger, runner, cfg.Reproducible.Command)
	}

	logger.Info("verify", lager.Data{"packages": suite.Packages(), "checks": c.Checks})

	results, err := suite.Run(ctx, c.Checks)
	if err != nil {
		err = errors.Wrapf(err, "failed running checks")
		return
	}

	host, err := osrelease.GatherOsRelease(c.osReleaseFile())
	if err != nil {
		logger.Error("gather-os-release", err)
		err = nil
	}

	rep := report.New(host, cfg.Variables, results)

	content := rep.ToYAML()
	if c.Format == "json" {
		content = rep.ToJSON()
	}

	err = writeTo(c.Output, content)
	if err != nil {
		err = errors.Wrapf(err, "failed writing report")
		return
	}

	rep.Summary(os.Stderr)

	if !rep.Passed() {
		err = errors.Errorf("%d check(s) failed", len(rep.Failed()))
		return
	}

	return
}

func (c *verifyCommand) osReleaseFile() string {
	if c.OsRelease == "" {
		return osrelease.DefaultFilename
	}

	return c.OsRelease
}
