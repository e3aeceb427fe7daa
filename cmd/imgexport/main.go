package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/provide-io/imgexport/internal/cli"
)

func main() {
	// Set up panic recovery to return specific exit code
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(cli.ExitPanic)
		}
	}()

	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		cli.PrintVersion(os.Stdout)
		os.Exit(cli.ExitOK)
	}

	os.Exit(cli.Execute(os.Args[1:]))
}
