package dpkg

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.cloudfoundry.org/lager"
	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

var packageNameRe = regexp.MustCompile(`^[a-z-]+`)

// Dpkg queries debian package files through `dpkg` and `dpkg-deb`.
//
type Dpkg struct {
	Runner Runner
	Logger lager.Logger

	// Sudo prefixes commands that require root (`dpkg --install`, even
	// when only simulating) with `sudo`.
	//
	Sudo bool
}

func New(logger lager.Logger, runner Runner, sudo bool) *Dpkg {
	return &Dpkg{
		Runner: runner,
		Logger: logger,
		Sudo:   sudo,
	}
}

// DryRunInstall simulates the installation of the package at `filename`,
// without touching the system.
//
func (d *Dpkg) DryRunInstall(ctx context.Context, filename string) (res Result, err error) {
	args := []string{"--install", "--dry-run", filename}

	if d.Sudo {
		res, err = d.run(ctx, "sudo", append([]string{"dpkg"}, args...)...)
	} else {
		res, err = d.run(ctx, "dpkg", args...)
	}

	if err != nil {
		err = errors.Wrapf(err,
			"failed simulating installation of %s", filename)
		return
	}

	return
}

// Fields retrieves all of the control fields of the package at `filename`
// (`--field` displays them all when none are specified).
//
func (d *Dpkg) Fields(ctx context.Context, filename string) (control DebControl, res Result, err error) {
	res, err = d.run(ctx, "dpkg-deb", "--field", filename)
	if err != nil {
		err = errors.Wrapf(err,
			"failed retrieving control fields of %s", filename)
		return
	}

	if !res.Succeeded() {
		return
	}

	scanner := NewScanner(strings.NewReader(res.Stdout))

	stanzas, err := scanner.ScanAll()
	if err != nil {
		err = errors.Wrapf(err,
			"failed scanning control fields from `dpkg-deb --field` on %s", filename)
		return
	}

	if len(stanzas) != 1 {
		err = errors.Errorf(
			"expected a single control stanza for %s, got %d", filename, len(stanzas))
		return
	}

	control = stanzas[0]
	return
}

// ListContents retrieves the raw `dpkg-deb --contents` listing of the
// package at `filename`.
//
func (d *Dpkg) ListContents(ctx context.Context, filename string) (res Result, err error) {
	res, err = d.run(ctx, "dpkg-deb", "--contents", filename)
	if err != nil {
		err = errors.Wrapf(err,
			"failed listing contents of %s", filename)
		return
	}

	return
}

// Contents lists the members of the data archive of the package at
// `filename`.
//
func (d *Dpkg) Contents(ctx context.Context, filename string) (entries []Entry, res Result, err error) {
	res, err = d.ListContents(ctx, filename)
	if err != nil {
		return
	}

	if !res.Succeeded() {
		return
	}

	entries, err = ScanContents(strings.NewReader(res.Stdout))
	if err != nil {
		err = errors.Wrapf(err,
			"failed scanning `dpkg-deb --contents` output of %s", filename)
		return
	}

	return
}

func (d *Dpkg) run(ctx context.Context, name string, args ...string) (res Result, err error) {
	sess := d.Logger.Session(name, lager.Data{"args": args})

	sess.Info("start")
	defer sess.Info("finish")

	res, err = d.Runner.Run(ctx, name, args...)
	if err != nil {
		sess.Error("run", err)
		return
	}

	if !res.Succeeded() {
		sess.Info("non-zero-exit", lager.Data{
			"exit-code": res.ExitCode,
			"stderr":    res.Stderr,
		})
	}

	return
}

// PackageNameFromFilename infers the intended package name from the
// filename of a debian package.
//
// E.g., given `/tmp/securedrop-ossec-agent-2.8.2+0.3.10-amd64.deb`, it
// returns `securedrop-ossec-agent`: the longest run of lowercase letters
// and hyphens at the start of the basename that is not immediately
// followed by a digit.
//
func PackageNameFromFilename(filename string) (name string, err error) {
	base := filepath.Base(filename)

	match := packageNameRe.FindString(base)
	for len(match) > 0 && len(match) < len(base) && isDigit(base[len(match)]) {
		match = match[:len(match)-1]
	}

	if match == "" {
		err = errors.Errorf(
			"couldn't infer package name from filename %s", base)
		return
	}

	if match == base || !strings.HasPrefix(base, match) {
		err = errors.Errorf(
			"package name %s is not a strict prefix of %s", match, base)
		return
	}

	name = match
	return
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ComputeSHA256 computes the hex-encoded sha256 digest of the contents of
// `filename`.
//
func ComputeSHA256(filename string) (res string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		err = errors.Wrapf(err, "failed opening %s", filename)
		return
	}

	defer f.Close()

	dgst, err := digest.Canonical.FromReader(f)
	if err != nil {
		err = errors.Wrapf(err, "failed computing digest of %s", filename)
		return
	}

	res = dgst.Hex()
	return
}
