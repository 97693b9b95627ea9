package dpkg

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Scanner reads control stanzas (as found in `/var/lib/dpkg/status` or in
// the output of `dpkg-deb --field`) one at a time.
//
type Scanner struct {
	scanner *bufio.Scanner
}

func NewScanner(reader io.Reader) Scanner {
	return Scanner{
		scanner: bufio.NewScanner(reader),
	}
}

func (p *Scanner) ScanAll() (pkgs []DebControl, err error) {
	var (
		pkg  DebControl
		done bool
	)

	for {
		pkg, done, err = p.Scan()
		if err != nil {
			err = errors.Wrapf(err, "failed scanning control stanzas")
			return
		}

		if len(pkg.Fields) > 0 {
			pkgs = append(pkgs, pkg)
		}

		if done {
			return
		}
	}
}

// Scan reads the next stanza, stopping at the first empty line (or at the
// end of the reader, in which case `done` is true).
//
func (p *Scanner) Scan() (pkg DebControl, done bool, err error) {
	for {
		done = !p.scanner.Scan()
		if done {
			err = p.scanner.Err()
			return
		}

		line := p.scanner.Text()

		if len(strings.TrimSpace(line)) == 0 {
			if len(pkg.Fields) == 0 {
				continue
			}

			return
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			pkg.appendLine(strings.TrimPrefix(line, " "))
			continue
		}

		splitted := strings.SplitN(line, ":", 2)
		if len(splitted) != 2 {
			err = errors.Errorf("failed parsing `k:v` in line `%s`", line)
			return
		}

		pkg.set(splitted[0], strings.TrimSpace(splitted[1]))
	}
}
