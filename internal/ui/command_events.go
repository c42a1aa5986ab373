package ui

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitconsole/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s in %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	standardErrorSuffixTemplateConstant            = ": %s"
	standardErrorLineSeparatorConstant             = "; "
	unknownFailureMessageConstant                  = "unknown error"
	emptyStringConstant                            = ""
	millisecondRounding                            = time.Millisecond
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
// Recognized git and gh subcommands are described in words; other commands are named by their label.
type CommandEventFormatter struct {
	messages CommandMessageFormatter
}

// BuildStartedMessage formats the message describing a command that just started.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	if description, described := formatter.messages.Describe(command); described {
		return description.Started
	}
	return fmt.Sprintf(commandStartedMessageTemplateConstant, command.DescriptiveLabel())
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	elapsed := result.Elapsed.Round(millisecondRounding)
	if description, described := formatter.messages.Describe(command); described {
		return fmt.Sprintf(describedCompletionTemplateConstant, description.Completed, elapsed)
	}
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, command.DescriptiveLabel(), elapsed)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, command.DescriptiveLabel(), result.ExitCode)
	if description, described := formatter.messages.Describe(command); described {
		baseMessage = fmt.Sprintf(describedFailureTemplateConstant, description.Action, result.ExitCode)
	}
	return baseMessage + formatter.formatStandardErrorSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the message describing a command that could not start.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	if description, described := formatter.messages.Describe(command); described {
		return fmt.Sprintf(describedExecutionFailureTemplate, description.Action, failureMessage)
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, command.DescriptiveLabel(), failureMessage)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError []string) string {
	trimmedLines := make([]string, 0, len(standardError))
	for _, line := range standardError {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	if len(trimmedLines) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, strings.Join(trimmedLines, standardErrorLineSeparatorConstant))
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand, handle execshell.RuntimeHandle) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.Succeeded() {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging start failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
