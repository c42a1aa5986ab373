package execshell

import (
	"strings"
	"time"
)

const (
	commandGitStringConstant                   = "git"
	commandGitHubStringConstant                = "gh"
	commandTokenSeparatorConstant              = " "
	commandLabelWorkingDirectoryPrefixConstant = " (in "
	commandLabelWorkingDirectorySuffixConstant = ")"
)

// CommandName identifies an executable launched by the shell executor.
type CommandName string

// Supported executables with dedicated helpers.
const (
	CommandGit    CommandName = CommandName(commandGitStringConstant)
	CommandGitHub CommandName = CommandName(commandGitHubStringConstant)
)

// CommandDetails describes how a command is invoked.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	// StandardInput is written once to the process input channel, which is then closed.
	StandardInput string
	// Verbose mirrors standard output to the console while the command runs.
	Verbose bool
}

// ShellCommand is the immutable descriptor of a single command execution.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Tokens returns the executable followed by its arguments.
func (command ShellCommand) Tokens() []string {
	tokens := make([]string, 0, len(command.Details.Arguments)+1)
	tokens = append(tokens, string(command.Name))
	tokens = append(tokens, command.Details.Arguments...)
	return tokens
}

// Label renders the command tokens joined by spaces.
func (command ShellCommand) Label() string {
	return strings.Join(command.Tokens(), commandTokenSeparatorConstant)
}

// DescriptiveLabel renders the command label with its working directory when one is set.
func (command ShellCommand) DescriptiveLabel() string {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return command.Label()
	}
	return command.Label() + commandLabelWorkingDirectoryPrefixConstant + workingDirectory + commandLabelWorkingDirectorySuffixConstant
}

func (command ShellCommand) clone() ShellCommand {
	cloned := command
	cloned.Details.Arguments = append([]string{}, command.Details.Arguments...)
	if command.Details.EnvironmentVariables != nil {
		cloned.Details.EnvironmentVariables = make(map[string]string, len(command.Details.EnvironmentVariables))
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			cloned.Details.EnvironmentVariables[environmentKey] = environmentValue
		}
	}
	return cloned
}

// ExecutionResult captures the finalized output of a command.
type ExecutionResult struct {
	StandardOutput []string
	StandardError  []string
	ExitCode       int
	Elapsed        time.Duration
}

// Succeeded reports whether the command exited with a zero code.
func (result ExecutionResult) Succeeded() bool {
	return result.ExitCode == 0
}
