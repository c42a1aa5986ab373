package ui

import (
	"fmt"
	"strings"

	"github.com/temirov/gitconsole/internal/execshell"
)

const (
	flagPrefixConstant                    = "-"
	referenceJoinSeparatorConstant        = ", "
	defaultWorkingDirectoryLabelConstant  = "current directory"
	fallbackUnknownValueLabelConstant     = "unknown"
	allRemotesLabelConstant               = "all remotes"
	upstreamRemoteLabelConstant           = "upstream"
	currentRepositoryLabelConstant        = "current repository"
	defaultPullRequestStateLabelConstant  = "open"
	repositoryEndpointPrefixConstant      = "repos/"
	endpointPathSeparatorConstant         = "/"
	defaultBranchFieldPrefixConstant      = "default_branch="
	protectionEndpointMinimumPartCount    = 4
	pullRequestEditMinimumArgumentCount   = 3
	repositoryViewMinimumArgumentCount    = 3
	githubSubcommandMinimumArgumentCount  = 2
	githubReadMethodConstant              = "GET"
	githubUpdateMethodConstant            = "PUT"
	githubPatchMethodConstant             = "PATCH"
	pagesEndpointSuffixConstant           = "/pages"
	branchesEndpointSegmentConstant       = "/branches/"
	protectionEndpointSuffixConstant      = "/protection"
	describedFailureTemplateConstant      = "Failed to %s (exit code %d)"
	describedExecutionFailureTemplate     = "Unable to %s: %s"
	describedCompletionTemplateConstant   = "%s in %s"
	pullRequestBaseSuffixTemplateConstant = " targeting %s"
)

const (
	gitStatusSubcommandConstant       = "status"
	gitFetchSubcommandConstant        = "fetch"
	gitPullSubcommandConstant         = "pull"
	gitPushSubcommandConstant         = "push"
	gitCommitSubcommandConstant       = "commit"
	gitCheckoutSubcommandConstant     = "checkout"
	gitAddSubcommandConstant          = "add"
	gitCloneSubcommandConstant        = "clone"
	gitRevParseSubcommandConstant     = "rev-parse"
	gitWorkTreeFlagConstant           = "--is-inside-work-tree"
	gitDeleteFlagConstant             = "--delete"
	gitMessageFlagConstant            = "-m"
	githubRepoSubcommandConstant      = "repo"
	githubRepoViewSubcommandConstant  = "view"
	githubPullRequestSubcommand       = "pr"
	githubPullRequestListSubcommand   = "list"
	githubPullRequestEditSubcommand   = "edit"
	githubPullRequestCreateSubcommand = "create"
	githubAPISubcommandConstant       = "api"
	githubRepoFlagConstant            = "--repo"
	githubStateFlagConstant           = "--state"
	githubBaseFlagConstant            = "--base"
	githubHeadFlagConstant            = "--head"
	githubMethodFlagConstant          = "-X"
	githubFieldFlagConstant           = "-f"
)

const (
	gitWorkTreeStartedTemplate           = "Analyzing repository at %s"
	gitWorkTreeCompletedTemplate         = "Confirmed %s is a Git repository"
	gitWorkTreeActionTemplate            = "confirm %s is a Git repository"
	gitStatusStartedTemplate             = "Reviewing working tree status in %s"
	gitStatusCompletedTemplate           = "Collected working tree status for %s"
	gitStatusActionTemplate              = "review working tree status in %s"
	gitFetchStartedTemplate              = "Fetching %sfrom %s in %s"
	gitFetchCompletedTemplate            = "Fetched %sfrom %s in %s"
	gitFetchActionTemplate               = "fetch %sfrom %s in %s"
	gitPullStartedTemplate               = "Pulling %sfrom %s into %s"
	gitPullCompletedTemplate             = "Pulled %sfrom %s into %s"
	gitPullActionTemplate                = "pull %sfrom %s into %s"
	gitPushStartedTemplate               = "Pushing %s to %s from %s"
	gitPushCompletedTemplate             = "Pushed %s to %s from %s"
	gitPushActionTemplate                = "push %s to %s from %s"
	gitPushDeletionStartedTemplate       = "Deleting remote branch %s from %s in %s"
	gitPushDeletionCompletedTemplate     = "Deleted remote branch %s from %s in %s"
	gitPushDeletionActionTemplate        = "delete remote branch %s from %s in %s"
	gitCommitStartedTemplate             = "Creating commit in %s with message %q"
	gitCommitCompletedTemplate           = "Created commit in %s with message %q"
	gitCommitActionTemplate              = "create commit in %s with message %q"
	gitCheckoutStartedTemplate           = "Switching %s to %s"
	gitCheckoutCompletedTemplate         = "%s now on %s"
	gitCheckoutActionTemplate            = "switch %s to %s"
	gitAddStartedTemplate                = "Staging %s in %s"
	gitAddCompletedTemplate              = "Staged %s in %s"
	gitAddActionTemplate                 = "stage %s in %s"
	gitCloneStartedTemplate              = "Cloning %s into %s"
	gitCloneCompletedTemplate            = "Cloned %s into %s"
	gitCloneActionTemplate               = "clone %s into %s"
	githubRepoViewStartedTemplate        = "Retrieving repository details for %s"
	githubRepoViewCompletedTemplate      = "Retrieved repository details for %s"
	githubRepoViewActionTemplate         = "retrieve repository details for %s"
	githubPRListStartedTemplate          = "Listing %s pull requests for %s%s"
	githubPRListCompletedTemplate        = "Listed %s pull requests for %s%s"
	githubPRListActionTemplate           = "list %s pull requests for %s%s"
	githubPREditStartedTemplate          = "Updating pull request #%s in %s to base %s"
	githubPREditCompletedTemplate        = "Updated pull request #%s in %s to base %s"
	githubPREditActionTemplate           = "update pull request #%s in %s to base %s"
	githubPRCreateStartedTemplate        = "Opening pull request from %s in %s"
	githubPRCreateCompletedTemplate      = "Opened pull request from %s in %s"
	githubPRCreateActionTemplate         = "open pull request from %s in %s"
	githubPagesReadStartedTemplate       = "Checking GitHub Pages configuration for %s"
	githubPagesReadCompletedTemplate     = "Read GitHub Pages configuration for %s"
	githubPagesReadActionTemplate        = "check GitHub Pages configuration for %s"
	githubPagesWriteStartedTemplate      = "Updating GitHub Pages configuration for %s"
	githubPagesWriteCompletedTemplate    = "Updated GitHub Pages configuration for %s"
	githubPagesWriteActionTemplate       = "update GitHub Pages configuration for %s"
	githubProtectionStartedTemplate      = "Checking branch protection for %s on %s"
	githubProtectionCompletedTemplate    = "Confirmed branch protection for %s on %s"
	githubProtectionActionTemplate       = "check branch protection for %s on %s"
	githubDefaultBranchStartedTemplate   = "Setting default branch for %s to %s"
	githubDefaultBranchCompletedTemplate = "Set default branch for %s to %s"
	githubDefaultBranchActionTemplate    = "set default branch for %s to %s"
	githubAPIStartedTemplate             = "Calling GitHub API %s %s"
	githubAPICompletedTemplate           = "Called GitHub API %s %s"
	githubAPIActionTemplate              = "call GitHub API %s %s"
)

// CommandDescription phrases one recognized git or gh operation for each lifecycle stage.
type CommandDescription struct {
	// Started reads as an ongoing activity, e.g. "Fetching from origin in /repo".
	Started string
	// Completed reads as a finished activity, e.g. "Fetched from origin in /repo".
	Completed string
	// Action reads as a bare verb phrase used in failure messages, e.g. "fetch from origin in /repo".
	Action string
}

// CommandMessageFormatter recognizes common git and gh subcommands and describes what they do.
type CommandMessageFormatter struct{}

// Describe returns a description for recognized commands; false means the caller should fall back to the raw command label.
func (formatter CommandMessageFormatter) Describe(command execshell.ShellCommand) (CommandDescription, bool) {
	if len(command.Details.Arguments) == 0 {
		return CommandDescription{}, false
	}
	switch command.Name {
	case execshell.CommandGit:
		return formatter.describeGit(command)
	case execshell.CommandGitHub:
		return formatter.describeGitHub(command)
	default:
		return CommandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeGit(command execshell.ShellCommand) (CommandDescription, bool) {
	arguments := command.Details.Arguments
	workingDirectory := describeWorkingDirectory(command)
	positional := positionalArguments(arguments[1:])

	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandConstant:
		if !containsArgument(arguments, gitWorkTreeFlagConstant) {
			return CommandDescription{}, false
		}
		return newDescription(gitWorkTreeStartedTemplate, gitWorkTreeCompletedTemplate, gitWorkTreeActionTemplate, workingDirectory), true
	case gitStatusSubcommandConstant:
		return newDescription(gitStatusStartedTemplate, gitStatusCompletedTemplate, gitStatusActionTemplate, workingDirectory), true
	case gitFetchSubcommandConstant:
		remote, references := splitRemoteAndReferences(positional, allRemotesLabelConstant)
		return newDescription(gitFetchStartedTemplate, gitFetchCompletedTemplate, gitFetchActionTemplate, references, remote, workingDirectory), true
	case gitPullSubcommandConstant:
		remote, references := splitRemoteAndReferences(positional, upstreamRemoteLabelConstant)
		return newDescription(gitPullStartedTemplate, gitPullCompletedTemplate, gitPullActionTemplate, references, remote, workingDirectory), true
	case gitPushSubcommandConstant:
		remote := ensureValue(argumentAtIndex(positional, 0))
		if deletionTarget := findFlagValue(arguments, gitDeleteFlagConstant); len(deletionTarget) > 0 {
			return newDescription(gitPushDeletionStartedTemplate, gitPushDeletionCompletedTemplate, gitPushDeletionActionTemplate, deletionTarget, remote, workingDirectory), true
		}
		references := ensureValue(strings.Join(positionalAfter(positional, 1), referenceJoinSeparatorConstant))
		return newDescription(gitPushStartedTemplate, gitPushCompletedTemplate, gitPushActionTemplate, references, remote, workingDirectory), true
	case gitCommitSubcommandConstant:
		commitMessage := ensureValue(findFlagValue(arguments, gitMessageFlagConstant))
		return newDescription(gitCommitStartedTemplate, gitCommitCompletedTemplate, gitCommitActionTemplate, workingDirectory, commitMessage), true
	case gitCheckoutSubcommandConstant:
		target := ensureValue(argumentAtIndex(positional, len(positional)-1))
		return newDescription(gitCheckoutStartedTemplate, gitCheckoutCompletedTemplate, gitCheckoutActionTemplate, workingDirectory, target), true
	case gitAddSubcommandConstant:
		paths := ensureValue(strings.Join(positional, referenceJoinSeparatorConstant))
		return newDescription(gitAddStartedTemplate, gitAddCompletedTemplate, gitAddActionTemplate, paths, workingDirectory), true
	case gitCloneSubcommandConstant:
		source := ensureValue(argumentAtIndex(positional, 0))
		destination := argumentAtIndex(positional, 1)
		if len(destination) == 0 {
			destination = workingDirectory
		}
		return newDescription(gitCloneStartedTemplate, gitCloneCompletedTemplate, gitCloneActionTemplate, source, destination), true
	default:
		return CommandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeGitHub(command execshell.ShellCommand) (CommandDescription, bool) {
	arguments := command.Details.Arguments
	if len(arguments) < githubSubcommandMinimumArgumentCount {
		return CommandDescription{}, false
	}
	subcommand := strings.TrimSpace(arguments[1])

	switch strings.TrimSpace(arguments[0]) {
	case githubRepoSubcommandConstant:
		if subcommand != githubRepoViewSubcommandConstant || len(arguments) < repositoryViewMinimumArgumentCount {
			return CommandDescription{}, false
		}
		repository := ensureValue(arguments[2])
		return newDescription(githubRepoViewStartedTemplate, githubRepoViewCompletedTemplate, githubRepoViewActionTemplate, repository), true
	case githubPullRequestSubcommand:
		return formatter.describeGitHubPullRequest(command, subcommand)
	case githubAPISubcommandConstant:
		return formatter.describeGitHubAPI(command, subcommand), true
	default:
		return CommandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeGitHubPullRequest(command execshell.ShellCommand, subcommand string) (CommandDescription, bool) {
	arguments := command.Details.Arguments
	repository := findFlagValue(arguments, githubRepoFlagConstant)
	if len(repository) == 0 {
		repository = currentRepositoryLabelConstant
	}

	switch subcommand {
	case githubPullRequestListSubcommand:
		state := findFlagValue(arguments, githubStateFlagConstant)
		if len(state) == 0 {
			state = defaultPullRequestStateLabelConstant
		}
		baseSuffix := emptyStringConstant
		if baseBranch := findFlagValue(arguments, githubBaseFlagConstant); len(baseBranch) > 0 {
			baseSuffix = fmt.Sprintf(pullRequestBaseSuffixTemplateConstant, baseBranch)
		}
		return newDescription(githubPRListStartedTemplate, githubPRListCompletedTemplate, githubPRListActionTemplate, state, repository, baseSuffix), true
	case githubPullRequestEditSubcommand:
		if len(arguments) < pullRequestEditMinimumArgumentCount {
			return CommandDescription{}, false
		}
		pullRequestNumber := strings.TrimPrefix(strings.TrimSpace(arguments[2]), "#")
		baseBranch := ensureValue(findFlagValue(arguments, githubBaseFlagConstant))
		return newDescription(githubPREditStartedTemplate, githubPREditCompletedTemplate, githubPREditActionTemplate, pullRequestNumber, repository, baseBranch), true
	case githubPullRequestCreateSubcommand:
		headBranch := findFlagValue(arguments, githubHeadFlagConstant)
		if len(headBranch) == 0 {
			headBranch = describeWorkingDirectory(command)
		}
		return newDescription(githubPRCreateStartedTemplate, githubPRCreateCompletedTemplate, githubPRCreateActionTemplate, headBranch, repository), true
	default:
		return CommandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeGitHubAPI(command execshell.ShellCommand, endpoint string) CommandDescription {
	arguments := command.Details.Arguments
	method := strings.ToUpper(findFlagValue(arguments, githubMethodFlagConstant))
	if len(method) == 0 {
		method = githubReadMethodConstant
	}

	switch {
	case strings.HasSuffix(endpoint, pagesEndpointSuffixConstant):
		repository := repositoryFromEndpoint(strings.TrimSuffix(endpoint, pagesEndpointSuffixConstant))
		if method == githubUpdateMethodConstant {
			return newDescription(githubPagesWriteStartedTemplate, githubPagesWriteCompletedTemplate, githubPagesWriteActionTemplate, repository)
		}
		return newDescription(githubPagesReadStartedTemplate, githubPagesReadCompletedTemplate, githubPagesReadActionTemplate, repository)
	case strings.HasSuffix(endpoint, protectionEndpointSuffixConstant) && strings.Contains(endpoint, branchesEndpointSegmentConstant):
		parts := strings.Split(strings.TrimPrefix(endpoint, repositoryEndpointPrefixConstant), endpointPathSeparatorConstant)
		if len(parts) >= protectionEndpointMinimumPartCount {
			repository := strings.Join(parts[:2], endpointPathSeparatorConstant)
			return newDescription(githubProtectionStartedTemplate, githubProtectionCompletedTemplate, githubProtectionActionTemplate, parts[3], repository)
		}
	case method == githubPatchMethodConstant:
		fieldValue := findFlagValue(arguments, githubFieldFlagConstant)
		if strings.HasPrefix(fieldValue, defaultBranchFieldPrefixConstant) {
			branch := ensureValue(strings.TrimPrefix(fieldValue, defaultBranchFieldPrefixConstant))
			return newDescription(githubDefaultBranchStartedTemplate, githubDefaultBranchCompletedTemplate, githubDefaultBranchActionTemplate, repositoryFromEndpoint(endpoint), branch)
		}
	}
	return newDescription(githubAPIStartedTemplate, githubAPICompletedTemplate, githubAPIActionTemplate, method, endpoint)
}

func newDescription(startedTemplate string, completedTemplate string, actionTemplate string, values ...any) CommandDescription {
	return CommandDescription{
		Started:   fmt.Sprintf(startedTemplate, values...),
		Completed: fmt.Sprintf(completedTemplate, values...),
		Action:    fmt.Sprintf(actionTemplate, values...),
	}
}

// splitRemoteAndReferences treats the first positional argument as the remote and the rest as references.
// The returned references string is empty or ends with a space so it can prefix "from".
func splitRemoteAndReferences(positional []string, fallbackRemote string) (string, string) {
	if len(positional) == 0 {
		return fallbackRemote, emptyStringConstant
	}
	references := positionalAfter(positional, 1)
	if len(references) == 0 {
		return positional[0], emptyStringConstant
	}
	return positional[0], strings.Join(references, referenceJoinSeparatorConstant) + " "
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if skipNext {
			skipNext = false
			continue
		}
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			skipNext = flagTakesValue(trimmed)
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func flagTakesValue(flag string) bool {
	switch flag {
	case gitMessageFlagConstant, gitDeleteFlagConstant, githubRepoFlagConstant, githubStateFlagConstant, githubBaseFlagConstant, githubHeadFlagConstant, githubMethodFlagConstant, githubFieldFlagConstant:
		return true
	default:
		return false
	}
}

func positionalAfter(positional []string, index int) []string {
	if index >= len(positional) {
		return nil
	}
	return positional[index:]
}

func argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func describeWorkingDirectory(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func repositoryFromEndpoint(endpoint string) string {
	repository := strings.Trim(strings.TrimPrefix(strings.TrimSpace(endpoint), repositoryEndpointPrefixConstant), endpointPathSeparatorConstant)
	if len(repository) == 0 {
		return currentRepositoryLabelConstant
	}
	return repository
}
