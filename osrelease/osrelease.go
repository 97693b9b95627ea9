package osrelease

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const DefaultFilename = "/etc/os-release"

// OsRelease identifies the distribution that the checks ran on, which is
// what `dpkg` simulated the installations against.
//
type OsRelease struct {
	OS       string `yaml:"os"       json:"os"`
	Version  string `yaml:"version"  json:"version"`
	Codename string `yaml:"codename" json:"codename"`
}

func GatherOsRelease(filename string) (info OsRelease, err error) {
	f, err := os.Open(filename)
	if err != nil {
		err = errors.Wrapf(err,
			"failed to open `%s`", filename)
		return
	}
	defer f.Close()

	info = ScanInfo(f)

	return
}

func ScanInfo(reader io.Reader) (info OsRelease) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.SplitN(line, "=", 2)
		if len(fields) != 2 {
			continue
		}

		k, v := fields[0], fields[1]
		v = strings.Trim(v, `"`)

		switch k {
		case "ID":
			info.OS = v
		case "VERSION_ID":
			info.Version = v
		case "VERSION_CODENAME":
			info.Codename = v
		}
	}

	return
}
