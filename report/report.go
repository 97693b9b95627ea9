package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cirocosta/debcheck/check"
	"github.com/cirocosta/debcheck/osrelease"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const Version = "v1"

// Report represents the outcome of verifying a set of debian packages.
//
type Report struct {
	// Version corresponds to the version of the format that the report
	// adheres to.
	//
	Version string `yaml:"version" json:"version"`

	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`

	// Host is the distribution where `dpkg` ran.
	//
	Host osrelease.OsRelease `yaml:"host" json:"host"`

	// Variables are the version strings that the packages were located
	// with.
	//
	Variables map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`

	Results []check.Result `yaml:"results" json:"results"`
}

func New(host osrelease.OsRelease, vars map[string]string, results []check.Result) Report {
	return Report{
		Version:     Version,
		GeneratedAt: time.Now().UTC(),
		Host:        host,
		Variables:   vars,
		Results:     results,
	}
}

func (r Report) Failed() (res []check.Result) {
	for _, result := range r.Results {
		if result.Failed() {
			res = append(res, result)
		}
	}

	return
}

func (r Report) Passed() bool {
	return len(r.Failed()) == 0
}

// Totals counts the results by status.
//
func (r Report) Totals() map[check.Status]int {
	totals := map[check.Status]int{}

	for _, result := range r.Results {
		totals[result.Status]++
	}

	return totals
}

func (r Report) ToJSON() (res []byte) {
	var err error

	res, err = json.MarshalIndent(&r, "", "  ")
	if err != nil {
		panic(err)
	}

	return
}

func (r Report) ToYAML() (res []byte) {
	var err error

	res, err = yaml.Marshal(&r)
	if err != nil {
		panic(err)
	}

	return
}

// Summary writes a human-readable line per result, followed by the
// failures of each failed one and the totals.
//
func (r Report) Summary(w io.Writer) {
	var (
		green  = color.New(color.FgGreen).SprintFunc()
		red    = color.New(color.FgRed, color.Bold).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	)

	for _, result := range r.Results {
		var status string

		switch result.Status {
		case check.StatusPass:
			status = green("PASS")
		case check.StatusFail:
			status = red("FAIL")
		default:
			status = yellow("SKIP")
		}

		fmt.Fprintf(w, "%s %-20s %s\n", status, result.Check, result.Package)

		for _, failure := range result.Failures {
			fmt.Fprintf(w, "     %s\n", failure)
		}
	}

	totals := r.Totals()

	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped\n",
		totals[check.StatusPass], totals[check.StatusFail], totals[check.StatusSkip])
}
