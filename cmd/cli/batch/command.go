package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitconsole/internal/utils"
	flagutils "github.com/temirov/gitconsole/internal/utils/flags"
	pathutils "github.com/temirov/gitconsole/internal/utils/path"
	"github.com/temirov/gitconsole/internal/workflow"
)

const (
	commandUseConstant                     = "batch <file>"
	commandShortDescriptionConstant        = "Run a batch of commands from a YAML or JSON file"
	commandLongDescriptionConstant         = "batch runs the steps of a batch file one after another with automatic console reveal suppressed, printing one summary line per step."
	batchFileRequiredMessageConstant       = "batch file path required"
	executorUnavailableMessageConstant     = "shell executor not configured"
	loadConfigurationErrorTemplateConstant = "unable to load batch file: %w"
	buildStepsErrorTemplateConstant        = "unable to build batch steps: %w"
	executorErrorTemplateConstant          = "unable to construct shell executor: %w"
	batchTotalsTemplateConstant            = "%d steps run, %d failed\n"
)

// ErrBatchFileRequired indicates batch was invoked without a file argument.
var ErrBatchFileRequired = errors.New(batchFileRequiredMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ExecutorProvider yields the command executor shared by the application.
type ExecutorProvider func() (workflow.CommandExecutor, error)

// CommandBuilder assembles the batch command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	ExecutorProvider ExecutorProvider
	// WorkingDirectory anchors the relative batch file path and --cwd value. Empty falls back to the
	// directory stored in the command context.
	WorkingDirectory string
}

// Build constructs the batch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	flagValues := flagutils.BindCommandFlags(command, flagutils.CommandFlagDefinitions{WorkingDirectory: true})
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *flagutils.CommandFlagValues) error {
	batchFilePath := ""
	if len(arguments) > 0 {
		batchFilePath = strings.TrimSpace(arguments[0])
	}
	if len(batchFilePath) == 0 {
		if helpError := command.Help(); helpError != nil {
			return helpError
		}
		return ErrBatchFileRequired
	}

	invocationResolver := pathutils.NewWorkingDirectoryResolver(builder.baseDirectory(command))
	batchFilePath = invocationResolver.Resolve(batchFilePath)

	configuration, configurationError := workflow.LoadConfiguration(batchFilePath)
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	steps, stepsError := workflow.BuildSteps(configuration)
	if stepsError != nil {
		return fmt.Errorf(buildStepsErrorTemplateConstant, stepsError)
	}

	if builder.ExecutorProvider == nil {
		return errors.New(executorUnavailableMessageConstant)
	}
	commandExecutor, executorError := builder.ExecutorProvider()
	if executorError != nil {
		return fmt.Errorf(executorErrorTemplateConstant, executorError)
	}

	baseDirectory := filepath.Dir(batchFilePath)
	if len(strings.TrimSpace(flagValues.WorkingDirectory)) > 0 {
		baseDirectory = invocationResolver.Resolve(flagValues.WorkingDirectory)
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	executor := workflow.NewExecutor(steps, workflow.Dependencies{
		Logger:                   resolveLogger(builder.LoggerProvider),
		CommandExecutor:          commandExecutor,
		WorkingDirectoryResolver: pathutils.NewWorkingDirectoryResolver(baseDirectory),
		Output:                   output,
	})

	report, executeError := executor.Execute(command.Context())
	fmt.Fprintf(output, batchTotalsTemplateConstant, len(report.Outcomes), report.FailedCount())
	return executeError
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
