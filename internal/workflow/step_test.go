package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitconsole/internal/execshell"
	"github.com/temirov/gitconsole/internal/workflow"
)

func TestBuildStepsDecodesOptions(testInstance *testing.T) {
	configuration := workflow.Configuration{Steps: []workflow.StepConfiguration{
		{
			Name:    "status",
			Command: "git",
			Options: map[string]any{
				"arguments":           []any{"status", "--short"},
				"working_directory":   "~/project",
				"environment":         map[string]any{"GIT_PAGER": "cat", "COLUMNS": 120},
				"input":               "y\n",
				"verbose":             true,
				"continue_on_failure": "true",
			},
		},
		{
			Command: "gh",
			Options: map[string]any{"arguments": "auth"},
		},
		{
			Command: "true",
		},
	}}

	steps, buildError := workflow.BuildSteps(configuration)
	require.NoError(testInstance, buildError)
	require.Len(testInstance, steps, 3)

	require.Equal(testInstance, workflow.Step{
		Name: "status",
		Command: execshell.ShellCommand{
			Name: execshell.CommandGit,
			Details: execshell.CommandDetails{
				Arguments:            []string{"status", "--short"},
				WorkingDirectory:     "~/project",
				EnvironmentVariables: map[string]string{"GIT_PAGER": "cat", "COLUMNS": "120"},
				StandardInput:        "y\n",
				Verbose:              true,
			},
		},
		ContinueOnFailure: true,
	}, steps[0])

	require.Equal(testInstance, "step 2", steps[1].Name)
	require.Equal(testInstance, execshell.CommandGitHub, steps[1].Command.Name)
	require.Equal(testInstance, []string{"auth"}, steps[1].Command.Details.Arguments)

	require.Equal(testInstance, "step 3", steps[2].Name)
	require.Empty(testInstance, steps[2].Command.Details.Arguments)
	require.False(testInstance, steps[2].ContinueOnFailure)
}

func TestBuildStepsRejectsUnknownOptions(testInstance *testing.T) {
	configuration := workflow.Configuration{Steps: []workflow.StepConfiguration{
		{Name: "typo", Command: "git", Options: map[string]any{"argumentz": []any{"status"}}},
	}}

	_, buildError := workflow.BuildSteps(configuration)
	require.ErrorContains(testInstance, buildError, `workflow step "typo" has invalid options`)
	require.ErrorContains(testInstance, buildError, "argumentz")
}
