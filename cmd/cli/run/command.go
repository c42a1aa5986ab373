package run

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitconsole/internal/execshell"
	"github.com/temirov/gitconsole/internal/utils"
	flagutils "github.com/temirov/gitconsole/internal/utils/flags"
	pathutils "github.com/temirov/gitconsole/internal/utils/path"
)

const (
	commandUseConstant                 = "run [flags] [--] <executable> [arguments...]"
	commandShortDescriptionConstant    = "Run one external command"
	commandLongDescriptionConstant     = "run launches an external command behind a pseudo-terminal, prints its standard output and reveals the console when it runs long or fails."
	commandExampleConstant             = "  gitconsole run git status --short\n  gitconsole run --cwd ../project --verbose -- gh pr list"
	executorUnavailableMessageConstant = "shell executor not configured"
	executableMissingMessageConstant   = "executable required"
	executorErrorTemplateConstant      = "unable to construct shell executor: %w"
	outputLineTemplateConstant         = "%s\n"
	exitCodeErrorTemplateConstant      = "%s exited with code %d"
	commandDispatchMessageConstant     = "dispatching command"
	logFieldCommandConstant            = "command"
	logFieldAsyncConstant              = "async"
)

// ErrExecutableMissing indicates run was invoked without a command to launch.
var ErrExecutableMissing = errors.New(executableMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ExecutorProvider yields the shell executor shared by the application.
type ExecutorProvider func() (*execshell.ShellExecutor, error)

// ExitCodeError reports a command that ran to completion with a nonzero exit code.
type ExitCodeError struct {
	Command string
	Code    int
}

// Error describes the failed command.
func (exitError ExitCodeError) Error() string {
	return fmt.Sprintf(exitCodeErrorTemplateConstant, exitError.Command, exitError.Code)
}

// ExitCode returns the code the process exited with.
func (exitError ExitCodeError) ExitCode() int {
	return exitError.Code
}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	ExecutorProvider ExecutorProvider
	// WorkingDirectory anchors relative --cwd values. Empty falls back to the directory stored in the command context.
	WorkingDirectory string
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
	}

	flagValues := flagutils.BindCommandFlags(command, flagutils.CommandFlagDefinitions{
		Verbose:          true,
		WorkingDirectory: true,
		Environment:      true,
		Input:            true,
		Async:            true,
	})
	command.Flags().SetInterspersed(false)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *flagutils.CommandFlagValues) error {
	if len(arguments) == 0 || len(strings.TrimSpace(arguments[0])) == 0 {
		if helpError := command.Help(); helpError != nil {
			return helpError
		}
		return ErrExecutableMissing
	}

	if builder.ExecutorProvider == nil {
		return errors.New(executorUnavailableMessageConstant)
	}
	executor, executorError := builder.ExecutorProvider()
	if executorError != nil {
		return fmt.Errorf(executorErrorTemplateConstant, executorError)
	}

	shellCommand := builder.buildShellCommand(builder.baseDirectory(command), arguments, flagValues)

	logger := resolveLogger(builder.LoggerProvider)
	logger.Debug(
		commandDispatchMessageConstant,
		zap.String(logFieldCommandConstant, shellCommand.Label()),
		zap.Bool(logFieldAsyncConstant, flagValues.Async),
	)

	var result execshell.ExecutionResult
	var runError error
	if flagValues.Async {
		result, runError = executor.NewProcess(shellCommand).SpawnAsync()
	} else {
		result, runError = executor.Execute(command.Context(), shellCommand)
	}
	if runError != nil {
		return runError
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	for _, line := range result.StandardOutput {
		fmt.Fprintf(output, outputLineTemplateConstant, line)
	}

	if !result.Succeeded() {
		return ExitCodeError{Command: shellCommand.Label(), Code: result.ExitCode}
	}
	return nil
}

func (builder *CommandBuilder) buildShellCommand(baseDirectory string, arguments []string, flagValues *flagutils.CommandFlagValues) execshell.ShellCommand {
	workingDirectory := strings.TrimSpace(flagValues.WorkingDirectory)
	if len(workingDirectory) > 0 || len(baseDirectory) > 0 {
		workingDirectory = pathutils.NewWorkingDirectoryResolver(baseDirectory).Resolve(workingDirectory)
	}

	return execshell.ShellCommand{
		Name: execshell.CommandName(strings.TrimSpace(arguments[0])),
		Details: execshell.CommandDetails{
			Arguments:            append([]string{}, arguments[1:]...),
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: flagValues.Environment,
			StandardInput:        flagValues.Input,
			Verbose:              flagValues.Verbose,
		},
	}
}

func (builder *CommandBuilder) baseDirectory(command *cobra.Command) string {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, _ := utils.NewCommandContextAccessor().WorkingDirectory(command.Context())
	return workingDirectory
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
