package main

import (
	"fmt"
	"os"

	"github.com/cirocosta/debcheck/command"
	"github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(&command.Debcheck, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return
		}

		command.Logger().Error("debcheck", err)
		os.Exit(1)
	}
}
