package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/gitconsole/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
	genericExitCodeConstant   = 1
)

type exitCoder interface {
	ExitCode() int
}

// main executes the gitconsole command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)

	var codedError exitCoder
	if errors.As(executionError, &codedError) && codedError.ExitCode() > 0 {
		os.Exit(codedError.ExitCode())
	}
	os.Exit(genericExitCodeConstant)
}
