package check

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/debcheck/config"
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/pkg/errors"
)

const (
	Exists           = "exists"
	Installable      = "installable"
	ControlFields    = "control-fields"
	ControlHomepage  = "control-homepage"
	NoForbiddenFiles = "no-forbidden-files"
	Reproducible     = "reproducible"
)

// All lists every check in the order they run.
//
var All = []string{
	Exists,
	Installable,
	ControlFields,
	ControlHomepage,
	NoForbiddenFiles,
	Reproducible,
}

// Rebuilder triggers a new build of the packages under verification.
//
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Suite runs the checks declared in `All` against the packages of a
// configuration.
//
type Suite struct {
	Config    *config.Config
	Dpkg      *dpkg.Dpkg
	Rebuilder Rebuilder
	Logger    lager.Logger

	// KeepBuilds, when set, is a directory where the copies of every
	// reproducibility build get bundled into one `.tar.gz` per package.
	//
	KeepBuilds string
}

type checkFunc func(ctx context.Context, logger lager.Logger, pkg string, a *assertions)

func (s *Suite) checks() map[string]checkFunc {
	return map[string]checkFunc{
		Exists:           s.exists,
		Installable:      s.installable,
		ControlFields:    s.controlFields,
		ControlHomepage:  s.controlHomepage,
		NoForbiddenFiles: s.noForbiddenFiles,
		Reproducible:     s.reproducible,
	}
}

func (s *Suite) Packages() []string {
	return s.Config.Packages
}

// Run runs the `selected` checks (all of them if none) against every
// package, sequentially: one check at a time across all packages, so that
// every read-only check is done before `reproducible` rebuilds anything.
//
// A failing check never prevents the others from running: each one is an
// independent assertion over the external tools' output.
//
func (s *Suite) Run(ctx context.Context, selected []string) (results []Result, err error) {
	if len(selected) == 0 {
		selected = All
	}

	checks := s.checks()

	for _, name := range selected {
		if _, found := checks[name]; !found {
			err = errors.Errorf("unknown check %s", name)
			return
		}
	}

	for _, name := range All {
		if !contains(selected, name) {
			continue
		}

		for _, pkg := range s.Packages() {
			results = append(results, s.RunCheck(ctx, name, pkg))
		}
	}

	return
}

// RunCheck runs the check named `name` against the package at `pkg`.
//
func (s *Suite) RunCheck(ctx context.Context, name, pkg string) Result {
	var (
		a     = new(assertions)
		start = time.Now()
		sess  = s.Logger.Session("check", lager.Data{"check": name, "package": pkg})
	)

	sess.Info("start")

	fn, found := s.checks()[name]
	if !found {
		a.failf("unknown check %s", name)
	} else {
		fn(ctx, sess, pkg, a)
	}

	res := a.result(name, pkg, time.Since(start))
	sess.Info("finish", lager.Data{"status": res.Status, "failures": res.Failures})

	return res
}

func (s *Suite) exists(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	info, err := os.Stat(pkg)
	if err != nil {
		a.failf("expected %s to exist: %v", pkg, err)
		return
	}

	if !info.Mode().IsRegular() {
		a.failf("expected %s to be a regular file, got mode %s", pkg, info.Mode())
	}
}

// installable confirms that a dry-run of the installation reports no
// errors. When run on a malformed package, `dpkg` reports:
//
//    dpkg-deb: error: `foo.deb' is not a debian format archive
//
func (s *Suite) installable(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	name, err := dpkg.PackageNameFromFilename(pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	res, err := s.Dpkg.DryRunInstall(ctx, pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	preparing := regexp.MustCompile(
		`(?m)Preparing to unpack [./]+` + regexp.QuoteMeta(filepath.Base(pkg)) + ` \.\.\.`)

	a.contains(res.Stdout, "Selecting previously unselected package "+name)
	a.matches(res.Stdout, preparing)
	a.succeeded(res)
}

func (s *Suite) controlFields(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	name, err := dpkg.PackageNameFromFilename(pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	control, res, err := s.Dpkg.Fields(ctx, pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	expected := s.Config.Control

	if expected.Maintainer != "" {
		a.field(res.Stdout, control, "Maintainer", expected.Maintainer)
	}

	if expected.Architecture != "" {
		a.field(res.Stdout, control, "Architecture", expected.Architecture)
	}

	a.field(res.Stdout, control, "Package", name)
	a.succeeded(res)
}

func (s *Suite) controlHomepage(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	homepage := s.Config.Control.Homepage
	if homepage == "" {
		a.skip("no homepage expected")
		return
	}

	control, res, err := s.Dpkg.Fields(ctx, pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	a.field(res.Stdout, control, "Homepage", homepage)
}

// noForbiddenFiles ensures that no file matching the forbidden patterns
// (e.g., `.pyc` files, or a `config.py` that would clobber site-specific
// changes) is shipped in the package.
//
func (s *Suite) noForbiddenFiles(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	res, err := s.Dpkg.ListContents(ctx, pkg)
	if err != nil {
		a.failf("%v", err)
		return
	}

	a.succeeded(res)

	for _, forbid := range s.Config.Forbid {
		re, err := regexp.Compile("(?m)" + forbid.Pattern)
		if err != nil {
			a.failf("invalid pattern for %s: %v", forbid.Name, err)
			continue
		}

		for _, line := range re.FindAllString(res.Stdout, -1) {
			a.failf("forbidden (%s): %s", forbid.Name, line)
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}
