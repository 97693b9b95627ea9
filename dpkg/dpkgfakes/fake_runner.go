package dpkgfakes

import (
	"context"
	"strings"
	"sync"

	"github.com/cirocosta/debcheck/dpkg"
)

// Invocation is a command that a `FakeRunner` was asked to run.
//
type Invocation struct {
	Name string
	Args []string
}

func (i Invocation) String() string {
	return strings.TrimSpace(i.Name + " " + strings.Join(i.Args, " "))
}

// FakeRunner is a `dpkg.Runner` that answers with canned results, keyed by
// the full command line (`name arg1 arg2 ...`).
//
type FakeRunner struct {
	sync.Mutex

	Results map[string]dpkg.Result
	Errors  map[string]error

	// OnRun, when set, is called before the canned result is looked up,
	// allowing side effects such as rewriting files.
	//
	OnRun func(inv Invocation)

	Invocations []Invocation
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Results: map[string]dpkg.Result{},
		Errors:  map[string]error{},
	}
}

func (f *FakeRunner) On(cmdline string, res dpkg.Result) *FakeRunner {
	f.Lock()
	defer f.Unlock()

	f.Results[cmdline] = res
	return f
}

func (f *FakeRunner) Fail(cmdline string, err error) *FakeRunner {
	f.Lock()
	defer f.Unlock()

	f.Errors[cmdline] = err
	return f
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (res dpkg.Result, err error) {
	inv := Invocation{Name: name, Args: args}

	f.Lock()
	f.Invocations = append(f.Invocations, inv)
	onRun := f.OnRun
	f.Unlock()

	if onRun != nil {
		onRun(inv)
	}

	f.Lock()
	defer f.Unlock()

	key := inv.String()

	if e, found := f.Errors[key]; found {
		err = e
		return
	}

	res, found := f.Results[key]
	if !found {
		res = dpkg.Result{
			Stderr:   "unexpected command: " + key,
			ExitCode: 127,
		}
	}

	return
}

// Commands returns the command lines of every invocation so far.
//
func (f *FakeRunner) Commands() (cmds []string) {
	f.Lock()
	defer f.Unlock()

	for _, inv := range f.Invocations {
		cmds = append(cmds, inv.String())
	}

	return
}
