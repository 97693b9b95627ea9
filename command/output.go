package command

import (
	"io"
	"os"

	"github.com/cirocosta/debcheck/config"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/pkg/errors"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// writer opens `fname` for writing, with `-` meaning stdout.
//
func writer(fname string) (w io.WriteCloser, err error) {
	if fname == "-" {
		w = nopCloser{os.Stdout}
		return
	}

	w, err = os.Create(fname)
	if err != nil {
		err = errors.Wrapf(err,
			"failed creating file %s", fname)
		return
	}

	return
}

func writeTo(fname string, content []byte) (err error) {
	w, err := writer(fname)
	if err != nil {
		return
	}

	defer w.Close()

	_, err = w.Write(content)
	if err != nil {
		err = errors.Wrapf(err,
			"failed writing to %s", fname)
		return
	}

	return
}

// parseConfig parses the config file, printing a pretty diagnostic to
// stderr when the failure comes from HCL itself.
//
func parseConfig(filename string, vars map[string]string) (cfg *config.Config, err error) {
	cfg, err = config.ParseFile(filename, vars)
	if err != nil {
		diagsErr, ok := errors.Cause(err).(hcl.Diagnostics)
		if ok && len(diagsErr) > 0 {
			os.Stderr.WriteString(config.PrettyDiagnosticFile(filename, diagsErr[0]) + "\n")
		}

		err = errors.Wrapf(err, "failed to parse config file %s", filename)
		return
	}

	return
}
