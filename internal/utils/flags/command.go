package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// VerboseFlagName exposes the shared verbose flag name.
	VerboseFlagName = "verbose"
	// VerboseFlagShorthand provides the shorthand for the verbose flag.
	VerboseFlagShorthand = "v"
	// VerboseFlagUsage describes the verbose flag purpose.
	VerboseFlagUsage = "Mirror standard output to the console while the command runs"
	// WorkingDirectoryFlagName exposes the shared working directory flag name.
	WorkingDirectoryFlagName = "cwd"
	// WorkingDirectoryFlagUsage describes the working directory flag purpose.
	WorkingDirectoryFlagUsage = "Directory the command runs in"
	// EnvironmentFlagName exposes the shared environment flag name.
	EnvironmentFlagName = "env"
	// EnvironmentFlagShorthand provides the shorthand for the environment flag.
	EnvironmentFlagShorthand = "e"
	// EnvironmentFlagUsage describes the environment flag purpose.
	EnvironmentFlagUsage = "Environment variable in KEY=VALUE form (repeatable)"
	// InputFlagName exposes the shared standard input flag name.
	InputFlagName = "input"
	// InputFlagUsage describes the standard input flag purpose.
	InputFlagUsage = "Text written to the command's standard input"
	// AsyncFlagName exposes the suspending call convention flag name.
	AsyncFlagName = "async"
	// AsyncFlagUsage describes the async flag purpose.
	AsyncFlagUsage = "Suspend until the exit callback delivers the result instead of polling for it"
)

// CommandFlagDefinitions selects which command flags a subcommand exposes.
type CommandFlagDefinitions struct {
	Verbose          bool
	WorkingDirectory bool
	Environment      bool
	Input            bool
	Async            bool
}

// CommandFlagValues stores the values bound by BindCommandFlags.
type CommandFlagValues struct {
	Verbose          bool
	WorkingDirectory string
	Environment      map[string]string
	Input            string
	Async            bool
}

// BindCommandFlags attaches the selected command flags to the command's local flag set.
func BindCommandFlags(command *cobra.Command, definitions CommandFlagDefinitions) *CommandFlagValues {
	values := &CommandFlagValues{}
	if command == nil {
		return values
	}

	flagSet := command.Flags()
	bindIfAbsent(flagSet, definitions.Verbose, VerboseFlagName, func() {
		flagSet.BoolVarP(&values.Verbose, VerboseFlagName, VerboseFlagShorthand, false, VerboseFlagUsage)
	})
	bindIfAbsent(flagSet, definitions.WorkingDirectory, WorkingDirectoryFlagName, func() {
		flagSet.StringVar(&values.WorkingDirectory, WorkingDirectoryFlagName, "", WorkingDirectoryFlagUsage)
	})
	bindIfAbsent(flagSet, definitions.Environment, EnvironmentFlagName, func() {
		flagSet.StringToStringVarP(&values.Environment, EnvironmentFlagName, EnvironmentFlagShorthand, nil, EnvironmentFlagUsage)
	})
	bindIfAbsent(flagSet, definitions.Input, InputFlagName, func() {
		flagSet.StringVar(&values.Input, InputFlagName, "", InputFlagUsage)
	})
	bindIfAbsent(flagSet, definitions.Async, AsyncFlagName, func() {
		flagSet.BoolVar(&values.Async, AsyncFlagName, false, AsyncFlagUsage)
	})

	return values
}

func bindIfAbsent(flagSet *pflag.FlagSet, enabled bool, name string, bind func()) {
	if !enabled || flagSet.Lookup(name) != nil {
		return
	}
	bind()
}
