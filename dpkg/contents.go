package dpkg

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Entry is a member of the data archive of a debian package, as listed by
// `dpkg-deb --contents` (`tar -tv` style).
//
type Entry struct {
	Mode  string `yaml:"mode"`
	Owner string `yaml:"owner"`
	Size  int64  `yaml:"size"`
	Date  string `yaml:"date"`
	Path  string `yaml:"path"`

	// Device holds the `major,minor` pair that takes the place of the
	// size for character and block devices.
	//
	Device string `yaml:"device,omitempty"`

	// LinkTarget is set for symbolic (`->`) and hard (`link to`) links.
	//
	LinkTarget string `yaml:"link_target,omitempty"`
}

func (e Entry) IsDir() bool {
	return strings.HasPrefix(e.Mode, "d")
}

// ScanContents parses the listing produced by `dpkg-deb --contents`.
//
func ScanContents(reader io.Reader) (entries []Entry, err error) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry Entry

		entry, err = parseContentsLine(line)
		if err != nil {
			return
		}

		entries = append(entries, entry)
	}

	err = scanner.Err()
	if err != nil {
		err = errors.Wrapf(err, "failed reading contents listing")
		return
	}

	return
}

func parseContentsLine(line string) (entry Entry, err error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		err = errors.Errorf("malformed contents line `%s`", line)
		return
	}

	entry.Mode = fields[0]
	entry.Owner = fields[1]
	entry.Date = fields[3] + " " + fields[4]

	if strings.Contains(fields[2], ",") {
		entry.Device = fields[2]
	} else {
		entry.Size, err = strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			err = errors.Wrapf(err,
				"failed parsing size in contents line `%s`", line)
			return
		}
	}

	name := strings.Join(fields[5:], " ")

	switch {
	case strings.Contains(name, " -> "):
		parts := strings.SplitN(name, " -> ", 2)
		name, entry.LinkTarget = parts[0], parts[1]
	case strings.Contains(name, " link to "):
		parts := strings.SplitN(name, " link to ", 2)
		name, entry.LinkTarget = parts[0], parts[1]
	}

	entry.Path = name

	return
}
