package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/mholt/archiver"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// reproducible ensures that the build process is deterministic, i.e., that
// multiple runs with the same source code create packages with identical
// checksums.
//
// The first iteration uses the package built before the verification
// started; every following one triggers a rebuild first. Each build is
// copied aside so that subsequent builds don't clobber it.
//
func (s *Suite) reproducible(ctx context.Context, logger lager.Logger, pkg string, a *assertions) {
	cfg := s.Config.Reproducible

	if cfg == nil {
		a.skip("no reproducibility settings")
		return
	}

	if !strings.Contains(pkg, cfg.Match) {
		a.skip(fmt.Sprintf("doesn't match %q", cfg.Match))
		return
	}

	if s.Rebuilder == nil {
		a.failf("no rebuilder configured")
		return
	}

	workdir, err := expandHome(cfg.Workdir)
	if err != nil {
		a.failf("%v", err)
		return
	}

	copies := make([]string, cfg.Iterations)

	for i := 1; i <= cfg.Iterations; i++ {
		if i != 1 {
			logger.Info("rebuild", lager.Data{"iteration": i})

			err = s.Rebuilder.Rebuild(ctx)
			if err != nil {
				a.failf("build %d: %v", i, err)
				return
			}
		}

		copies[i-1] = buildCopyPath(workdir, pkg, i)

		err = copyFile(pkg, copies[i-1])
		if err != nil {
			a.failf("build %d: %v", i, err)
			return
		}
	}

	checksums, err := computeChecksums(ctx, copies)
	if err != nil {
		a.failf("%v", err)
		return
	}

	logger.Info("checksums", lager.Data{"checksums": checksums})

	for i := 1; i < len(checksums); i++ {
		if checksums[i-1] != checksums[i] {
			a.failf("build %d (sha256:%s) differs from build %d (sha256:%s)",
				i, checksums[i-1], i+1, checksums[i])
		}
	}

	if s.KeepBuilds != "" {
		dest := keptBuildsPath(s.KeepBuilds, pkg)

		err = archiveBuilds(copies, dest)
		if err != nil {
			a.failf("%v", err)
			return
		}

		logger.Info("kept-builds", lager.Data{"archive": dest})
	}
}

// keptBuildsPath names the archive bundling the builds of `pkg` under
// `dir`, e.g. `<dir>/securedrop-app-code-0.3.10-amd64.tar.gz`.
//
func keptBuildsPath(dir, pkg string) string {
	stem := strings.TrimSuffix(filepath.Base(pkg), ".deb")
	return filepath.Join(dir, stem+".tar.gz")
}

// archiveBuilds bundles `copies` into a gzipped tarball at `dest`,
// replacing any archive left there by a previous verification.
//
func archiveBuilds(copies []string, dest string) (err error) {
	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	tgz.MkdirAll = true

	err = tgz.Archive(copies, dest)
	if err != nil {
		err = errors.Wrapf(err,
			"failed archiving builds into %s", dest)
		return
	}

	return
}

// buildCopyPath names the copy of the `i`-th build of `pkg`, e.g.
// `~/securedrop-app-code-0.3.10-amd64-2.deb`.
//
func buildCopyPath(workdir, pkg string, i int) string {
	stem := strings.TrimSuffix(filepath.Base(pkg), ".deb")
	return filepath.Join(workdir, fmt.Sprintf("%s-%d.deb", stem, i))
}

func computeChecksums(ctx context.Context, files []string) (checksums []string, err error) {
	var eg *errgroup.Group

	eg, ctx = errgroup.WithContext(ctx)
	checksums = make([]string, len(files))

	for idx, file := range files {
		idx, file := idx, file

		eg.Go(func() (err error) {
			checksums[idx], err = dpkg.ComputeSHA256(file)
			return
		})
	}

	err = eg.Wait()
	if err != nil {
		err = errors.Wrapf(err,
			"failed computing checksums of builds")
		return
	}

	return
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		err = errors.Wrapf(err, "failed opening %s", src)
		return
	}

	defer in.Close()

	err = os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		err = errors.Wrapf(err,
			"failed creating directory for %s", dst)
		return
	}

	out, err := os.Create(dst)
	if err != nil {
		err = errors.Wrapf(err, "failed creating %s", dst)
		return
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		err = errors.Wrapf(err, "failed copying %s to %s", src, dst)
		return
	}

	err = out.Close()
	if err != nil {
		err = errors.Wrapf(err, "failed closing %s", dst)
		return
	}

	return
}

func expandHome(dir string) (res string, err error) {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		res = dir
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		err = errors.Wrapf(err, "failed resolving home directory")
		return
	}

	res = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	return
}
