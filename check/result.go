package check

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cirocosta/debcheck/dpkg"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is the outcome of running a single check against a single
// package.
//
type Result struct {
	Check    string        `yaml:"check"              json:"check"`
	Package  string        `yaml:"package"            json:"package"`
	Status   Status        `yaml:"status"             json:"status"`
	Failures []string      `yaml:"failures,omitempty" json:"failures,omitempty"`
	Reason   string        `yaml:"reason,omitempty"   json:"reason,omitempty"`
	Duration time.Duration `yaml:"duration"           json:"duration"`
}

func (r Result) Failed() bool {
	return r.Status == StatusFail
}

// assertions accumulates the failed expectations of a check.
//
type assertions struct {
	failures []string
	skipped  string
}

func (a *assertions) failf(format string, args ...interface{}) {
	a.failures = append(a.failures, fmt.Sprintf(format, args...))
}

func (a *assertions) skip(reason string) {
	a.skipped = reason
}

func (a *assertions) contains(output, expected string) {
	if !strings.Contains(output, expected) {
		a.failf("expected output to contain %q", expected)
	}
}

// field asserts that `output` carries `key: expected`, reporting the value
// actually declared by the package when it doesn't.
//
func (a *assertions) field(output string, control dpkg.DebControl, key, expected string) {
	line := key + ": " + expected
	if strings.Contains(output, line) {
		return
	}

	actual, found := control.Get(key)
	if !found {
		a.failf("expected output to contain %q, but there's no %s field", line, key)
		return
	}

	a.failf("expected output to contain %q, got %q", line, key+": "+actual)
}

func (a *assertions) matches(output string, re *regexp.Regexp) {
	if !re.MatchString(output) {
		a.failf("expected output to match /%s/", re.String())
	}
}

func (a *assertions) succeeded(res dpkg.Result) {
	if !res.Succeeded() {
		a.failf("expected exit status 0, got %d: %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
	}
}

func (a *assertions) result(check, pkg string, duration time.Duration) Result {
	res := Result{
		Check:    check,
		Package:  pkg,
		Status:   StatusPass,
		Duration: duration,
	}

	switch {
	case len(a.failures) > 0:
		res.Status = StatusFail
		res.Failures = a.failures
	case a.skipped != "":
		res.Status = StatusSkip
		res.Reason = a.skipped
	}

	return res
}
