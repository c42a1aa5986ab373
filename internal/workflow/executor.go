package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitconsole/internal/execshell"
	pathutils "github.com/temirov/gitconsole/internal/utils/path"
)

const (
	workflowExecutorDependenciesMessage      = "workflow executor requires a command executor"
	workflowStepStartErrorTemplateConstant   = "workflow step %s failed to start: %w"
	workflowStepFailedErrorTemplateConstant  = "workflow step %s exited with code %d"
	workflowCancelledErrorTemplateConstant   = "workflow cancelled before step %s: %w"
	workflowStepSummaryTemplateConstant      = "%s\t%s\texit %d\t%s\n"
	workflowStepStartFailedSummaryConstant   = "%s\t%s\tnot started\t%v\n"
	workflowBatchStartedMessageConstant      = "batch started"
	workflowStepStartedMessageConstant       = "batch step started"
	workflowStepFinishedMessageConstant      = "batch step finished"
	workflowBatchFinishedMessageConstant     = "batch finished"
	workflowStepContinuingMessageConstant    = "batch step failed, continuing"
	workflowLogFieldStepConstant             = "step"
	workflowLogFieldStepCountConstant        = "step_count"
	workflowLogFieldCommandConstant          = "command"
	workflowLogFieldExitCodeConstant         = "exit_code"
	workflowLogFieldFailedCountConstant      = "failed_count"
	workflowLogFieldWorkingDirectoryConstant = "working_directory"
	summaryElapsedRounding                   = time.Millisecond
)

// ErrCommandExecutorNotConfigured indicates the executor was built without a command executor.
var ErrCommandExecutorNotConfigured = errors.New(workflowExecutorDependenciesMessage)

// CommandExecutor runs commands and controls automatic console reveal.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	SuppressConsole()
	ResumeConsole()
}

// Dependencies configures shared collaborators for batch execution.
type Dependencies struct {
	Logger                   *zap.Logger
	CommandExecutor          CommandExecutor
	WorkingDirectoryResolver *pathutils.WorkingDirectoryResolver
	Output                   io.Writer
}

// StepFailedError reports a step that exited with a nonzero code and stopped the batch.
type StepFailedError struct {
	StepName string
	ExitCode int
}

// Error describes the failed step.
func (stepError StepFailedError) Error() string {
	return fmt.Sprintf(workflowStepFailedErrorTemplateConstant, stepError.StepName, stepError.ExitCode)
}

// StepOutcome records what happened to one executed step.
type StepOutcome struct {
	Step   Step
	Result execshell.ExecutionResult
	Error  error
}

// Succeeded reports whether the step started and exited with a zero code.
func (outcome StepOutcome) Succeeded() bool {
	return outcome.Error == nil && outcome.Result.Succeeded()
}

// Report lists the outcomes of the steps that ran, in order.
type Report struct {
	Outcomes []StepOutcome
}

// FailedCount returns the number of steps that did not succeed.
func (report Report) FailedCount() int {
	failedCount := 0
	for _, outcome := range report.Outcomes {
		if !outcome.Succeeded() {
			failedCount++
		}
	}
	return failedCount
}

// Executor runs batch steps one after another while automatic console reveal is suppressed.
type Executor struct {
	steps        []Step
	dependencies Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(steps []Step, dependencies Dependencies) *Executor {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Executor{steps: append([]Step{}, steps...), dependencies: dependencies}
}

// Execute runs every step in order. Console reveal is suppressed for the duration of the batch and
// resumed afterwards, whatever the outcome. A start failure stops the batch, and so does a nonzero
// exit unless the step allows continuing.
func (executor *Executor) Execute(executionContext context.Context) (Report, error) {
	commandExecutor := executor.dependencies.CommandExecutor
	if commandExecutor == nil {
		return Report{}, ErrCommandExecutorNotConfigured
	}
	logger := executor.dependencies.Logger

	commandExecutor.SuppressConsole()
	defer commandExecutor.ResumeConsole()

	logger.Info(workflowBatchStartedMessageConstant, zap.Int(workflowLogFieldStepCountConstant, len(executor.steps)))

	report := Report{Outcomes: make([]StepOutcome, 0, len(executor.steps))}
	for _, step := range executor.steps {
		if contextError := executionContext.Err(); contextError != nil {
			return report, fmt.Errorf(workflowCancelledErrorTemplateConstant, step.Name, contextError)
		}

		command := step.Command
		command.Details.WorkingDirectory = executor.dependencies.WorkingDirectoryResolver.Resolve(command.Details.WorkingDirectory)

		logger.Debug(
			workflowStepStartedMessageConstant,
			zap.String(workflowLogFieldStepConstant, step.Name),
			zap.String(workflowLogFieldCommandConstant, command.Label()),
			zap.String(workflowLogFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		)

		result, executeError := commandExecutor.Execute(executionContext, command)
		outcome := StepOutcome{Step: step, Result: result, Error: executeError}
		report.Outcomes = append(report.Outcomes, outcome)
		executor.writeSummary(outcome)

		if executeError != nil {
			return report, fmt.Errorf(workflowStepStartErrorTemplateConstant, step.Name, executeError)
		}

		logger.Info(
			workflowStepFinishedMessageConstant,
			zap.String(workflowLogFieldStepConstant, step.Name),
			zap.Int(workflowLogFieldExitCodeConstant, result.ExitCode),
		)

		if !result.Succeeded() {
			if !step.ContinueOnFailure {
				return report, StepFailedError{StepName: step.Name, ExitCode: result.ExitCode}
			}
			logger.Warn(workflowStepContinuingMessageConstant, zap.String(workflowLogFieldStepConstant, step.Name), zap.Int(workflowLogFieldExitCodeConstant, result.ExitCode))
		}
	}

	logger.Info(workflowBatchFinishedMessageConstant, zap.Int(workflowLogFieldFailedCountConstant, report.FailedCount()))
	return report, nil
}

func (executor *Executor) writeSummary(outcome StepOutcome) {
	output := executor.dependencies.Output
	if output == nil {
		return
	}
	if outcome.Error != nil {
		fmt.Fprintf(output, workflowStepStartFailedSummaryConstant, outcome.Step.Name, outcome.Step.Command.Label(), outcome.Error)
		return
	}
	fmt.Fprintf(output, workflowStepSummaryTemplateConstant, outcome.Step.Name, outcome.Step.Command.Label(), outcome.Result.ExitCode, outcome.Result.Elapsed.Round(summaryElapsedRounding))
}
