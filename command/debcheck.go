package command

import (
	"os"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/debcheck/dpkg"
)

var (
	logger = lager.NewLogger("debcheck")
	sink   = lager.NewReconfigurableSink(lager.NewWriterSink(os.Stderr, lager.DEBUG), lager.INFO)

	// runner executes every external command issued by the commands.
	//
	runner dpkg.Runner = dpkg.ExecRunner{Logger: logger}
)

func init() {
	logger.RegisterSink(sink)
}

var Debcheck struct {
	Verbose func() `long:"verbose" description:"log the external commands being run"`

	Verify   verifyCommand   `command:"verify"   description:"verifies the built debian packages"`
	Packages packagesCommand `command:"packages" description:"lists the packages that a config refers to"`
	Fields   fieldsCommand   `command:"fields"   description:"shows the control fields of a debian package"`
	Contents contentsCommand `command:"contents" description:"lists the files shipped in a debian package"`
}

func init() {
	Debcheck.Verbose = func() {
		sink.SetMinLevel(lager.DEBUG)
	}
}

// Logger is the logger used by every command.
//
func Logger() lager.Logger {
	return logger
}
