package ui_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitconsole/internal/execshell"
	"github.com/temirov/gitconsole/internal/ui"
)

const (
	testRepositoryDirectoryConstant = "/workspace/repo"
	testRepositorySlugConstant      = "owner/example"
	testCommitFailureReasonConstant = "permission denied"
	testPushRejectionConstant       = "! [rejected] feature -> feature (non-fast-forward)"
)

func gitCommand(workingDirectory string, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: workingDirectory}}
}

func githubCommand(arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{Name: execshell.CommandGitHub, Details: execshell.CommandDetails{Arguments: arguments}}
}

func TestCommandMessageFormatterDescribesKnownCommands(testInstance *testing.T) {
	testCases := []struct {
		name              string
		command           execshell.ShellCommand
		expectedStarted   string
		expectedCompleted string
		expectedAction    string
	}{
		{
			name:              "git_fetch_with_references",
			command:           gitCommand(testRepositoryDirectoryConstant, "fetch", "--prune", "origin", "feature"),
			expectedStarted:   "Fetching feature from origin in /workspace/repo",
			expectedCompleted: "Fetched feature from origin in /workspace/repo",
			expectedAction:    "fetch feature from origin in /workspace/repo",
		},
		{
			name:              "git_fetch_all_remotes",
			command:           gitCommand(testRepositoryDirectoryConstant, "fetch", "--prune"),
			expectedStarted:   "Fetching from all remotes in /workspace/repo",
			expectedCompleted: "Fetched from all remotes in /workspace/repo",
			expectedAction:    "fetch from all remotes in /workspace/repo",
		},
		{
			name:              "git_pull_without_remote",
			command:           gitCommand(testRepositoryDirectoryConstant, "pull", "--ff-only"),
			expectedStarted:   "Pulling from upstream into /workspace/repo",
			expectedCompleted: "Pulled from upstream into /workspace/repo",
			expectedAction:    "pull from upstream into /workspace/repo",
		},
		{
			name:              "git_push_branch",
			command:           gitCommand(testRepositoryDirectoryConstant, "push", "origin", "feature"),
			expectedStarted:   "Pushing feature to origin from /workspace/repo",
			expectedCompleted: "Pushed feature to origin from /workspace/repo",
			expectedAction:    "push feature to origin from /workspace/repo",
		},
		{
			name:              "git_push_deletion",
			command:           gitCommand(testRepositoryDirectoryConstant, "push", "origin", "--delete", "stale"),
			expectedStarted:   "Deleting remote branch stale from origin in /workspace/repo",
			expectedCompleted: "Deleted remote branch stale from origin in /workspace/repo",
			expectedAction:    "delete remote branch stale from origin in /workspace/repo",
		},
		{
			name:              "git_status_without_directory",
			command:           gitCommand("", "status", "--porcelain"),
			expectedStarted:   "Reviewing working tree status in current directory",
			expectedCompleted: "Collected working tree status for current directory",
			expectedAction:    "review working tree status in current directory",
		},
		{
			name:              "git_commit_with_message",
			command:           gitCommand(testRepositoryDirectoryConstant, "commit", "-m", "Add feature"),
			expectedStarted:   `Creating commit in /workspace/repo with message "Add feature"`,
			expectedCompleted: `Created commit in /workspace/repo with message "Add feature"`,
			expectedAction:    `create commit in /workspace/repo with message "Add feature"`,
		},
		{
			name:              "git_checkout_new_branch",
			command:           gitCommand(testRepositoryDirectoryConstant, "checkout", "-b", "feature"),
			expectedStarted:   "Switching /workspace/repo to feature",
			expectedCompleted: "/workspace/repo now on feature",
			expectedAction:    "switch /workspace/repo to feature",
		},
		{
			name:              "github_pull_request_list",
			command:           githubCommand("pr", "list", "--state", "merged", "--base", "main", "--repo", testRepositorySlugConstant),
			expectedStarted:   "Listing merged pull requests for owner/example targeting main",
			expectedCompleted: "Listed merged pull requests for owner/example targeting main",
			expectedAction:    "list merged pull requests for owner/example targeting main",
		},
		{
			name:              "github_pull_request_list_defaults",
			command:           githubCommand("pr", "list"),
			expectedStarted:   "Listing open pull requests for current repository",
			expectedCompleted: "Listed open pull requests for current repository",
			expectedAction:    "list open pull requests for current repository",
		},
		{
			name:              "github_pull_request_edit",
			command:           githubCommand("pr", "edit", "42", "--base", "main", "--repo", testRepositorySlugConstant),
			expectedStarted:   "Updating pull request #42 in owner/example to base main",
			expectedCompleted: "Updated pull request #42 in owner/example to base main",
			expectedAction:    "update pull request #42 in owner/example to base main",
		},
		{
			name:              "github_repository_view",
			command:           githubCommand("repo", "view", testRepositorySlugConstant, "--json", "name"),
			expectedStarted:   "Retrieving repository details for owner/example",
			expectedCompleted: "Retrieved repository details for owner/example",
			expectedAction:    "retrieve repository details for owner/example",
		},
		{
			name:              "github_api_pages_update",
			command:           githubCommand("api", "repos/owner/example/pages", "-X", "PUT"),
			expectedStarted:   "Updating GitHub Pages configuration for owner/example",
			expectedCompleted: "Updated GitHub Pages configuration for owner/example",
			expectedAction:    "update GitHub Pages configuration for owner/example",
		},
		{
			name:              "github_api_branch_protection",
			command:           githubCommand("api", "repos/owner/example/branches/main/protection"),
			expectedStarted:   "Checking branch protection for main on owner/example",
			expectedCompleted: "Confirmed branch protection for main on owner/example",
			expectedAction:    "check branch protection for main on owner/example",
		},
		{
			name:              "github_api_default_branch_update",
			command:           githubCommand("api", "repos/owner/example", "-X", "PATCH", "-f", "default_branch=main"),
			expectedStarted:   "Setting default branch for owner/example to main",
			expectedCompleted: "Set default branch for owner/example to main",
			expectedAction:    "set default branch for owner/example to main",
		},
		{
			name:              "github_api_generic_endpoint",
			command:           githubCommand("api", "user"),
			expectedStarted:   "Calling GitHub API GET user",
			expectedCompleted: "Called GitHub API GET user",
			expectedAction:    "call GitHub API GET user",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			description, described := ui.CommandMessageFormatter{}.Describe(testCase.command)
			require.True(testInstance, described)
			require.Equal(testInstance, testCase.expectedStarted, description.Started)
			require.Equal(testInstance, testCase.expectedCompleted, description.Completed)
			require.Equal(testInstance, testCase.expectedAction, description.Action)
		})
	}
}

func TestCommandMessageFormatterLeavesUnknownCommandsUndescribed(testInstance *testing.T) {
	testCases := []struct {
		name    string
		command execshell.ShellCommand
	}{
		{name: "git_without_arguments", command: gitCommand(testRepositoryDirectoryConstant)},
		{name: "git_unknown_subcommand", command: gitCommand(testRepositoryDirectoryConstant, "gc", "--aggressive")},
		{name: "git_rev_parse_without_work_tree_flag", command: gitCommand(testRepositoryDirectoryConstant, "rev-parse", "HEAD")},
		{name: "github_unknown_subcommand", command: githubCommand("auth", "status")},
		{name: "github_pull_request_unknown_action", command: githubCommand("pr", "merge", "7")},
		{name: "other_executable", command: execshell.ShellCommand{Name: execshell.CommandName("curl"), Details: execshell.CommandDetails{Arguments: []string{"status"}}}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, described := ui.CommandMessageFormatter{}.Describe(testCase.command)
			require.False(testInstance, described)
		})
	}
}

func TestConsoleCommandEventLoggerDescribesKnownCommands(testInstance *testing.T) {
	fetchCommand := gitCommand(testRepositoryDirectoryConstant, "fetch", "origin")
	pushCommand := gitCommand(testRepositoryDirectoryConstant, "push", "origin", "feature")
	commitCommand := gitCommand(testRepositoryDirectoryConstant, "commit", "-m", "Add feature")

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "fetch_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(fetchCommand, testRuntimeHandleConstant)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Fetching from origin in /workspace/repo",
		},
		{
			name: "fetch_completed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(fetchCommand, execshell.ExecutionResult{Elapsed: 250 * time.Millisecond})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Fetched from origin in /workspace/repo in 250ms",
		},
		{
			name: "push_rejected",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: []string{testPushRejectionConstant}})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Failed to push feature to origin from /workspace/repo (exit code 1): " + testPushRejectionConstant,
		},
		{
			name: "commit_could_not_start",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(commitCommand, errors.New(testCommitFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: `Unable to create commit in /workspace/repo with message "Add feature": ` + testCommitFailureReasonConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
