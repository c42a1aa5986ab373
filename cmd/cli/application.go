package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	batchcmd "github.com/temirov/gitconsole/cmd/cli/batch"
	runcmd "github.com/temirov/gitconsole/cmd/cli/run"
	"github.com/temirov/gitconsole/internal/console"
	"github.com/temirov/gitconsole/internal/execshell"
	"github.com/temirov/gitconsole/internal/ui"
	"github.com/temirov/gitconsole/internal/utils"
	flagutils "github.com/temirov/gitconsole/internal/utils/flags"
	"github.com/temirov/gitconsole/internal/workflow"
)

const (
	applicationNameConstant                 = "gitconsole"
	applicationShortDescriptionConstant     = "Run git and GitHub CLI commands behind a revealable console"
	applicationLongDescriptionConstant      = "gitconsole runs external commands behind a pseudo-terminal, collects their output, and reveals a console when a command runs long or fails."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	consoleConfigurationKeyConstant         = "console"
	consoleRevealTimeoutConfigKeyConstant   = consoleConfigurationKeyConstant + ".reveal_timeout"
	consoleColumnsConfigKeyConstant         = consoleConfigurationKeyConstant + ".terminal_columns"
	consoleRowsConfigKeyConstant            = consoleConfigurationKeyConstant + ".terminal_rows"
	defaultRevealTimeoutConstant            = 2 * time.Second
	defaultTerminalColumnsConstant          = 80
	defaultTerminalRowsConstant             = 24
	environmentPrefixConstant               = "GITCONSOLE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationRevealTimeoutFieldConstant = "reveal_timeout"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	executorCreationErrorTemplateConstant   = "unable to create shell executor: %w"
	unknownCommandErrorTemplateConstant     = "unknown command %q"
	rootCommandInfoMessageConstant          = "gitconsole CLI executed"
	rootCommandDebugMessageConstant         = "gitconsole CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryNameConstant  = ".gitconsole"
	versionTemplateConstant                 = "gitconsole version: {{.Version}}\n"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration  `mapstructure:"common"`
	Console ApplicationConsoleConfiguration `mapstructure:"console"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationConsoleConfiguration controls when the console is revealed and the terminal commands see.
type ApplicationConsoleConfiguration struct {
	RevealTimeout   time.Duration `mapstructure:"reveal_timeout"`
	TerminalColumns uint16        `mapstructure:"terminal_columns"`
	TerminalRows    uint16        `mapstructure:"terminal_rows"`
}

// Application wires the Cobra root command, configuration loader, structured logger and shell executor.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	commandRunner          execshell.CommandRunner
	executorMutex          sync.Mutex
	shellExecutor          *execshell.ShellExecutor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant))
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	embeddedConfiguration, embeddedType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), logLevelChoices, logLevelFlagUsageConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), logFormatChoices, logFormatFlagUsageConstant),
	)

	runBuilder := runcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ExecutorProvider: application.ensureShellExecutor,
	}
	runCommand, runBuildError := runBuilder.Build()
	if runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	batchBuilder := batchcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ExecutorProvider: func() (workflow.CommandExecutor, error) {
			shellExecutor, executorError := application.ensureShellExecutor()
			if executorError != nil {
				return nil, executorError
			}
			return shellExecutor, nil
		},
	}
	batchCommand, batchBuildError := batchBuilder.Build()
	if batchBuildError == nil {
		cobraCommand.AddCommand(batchCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy, stops the shell executor and flushes the loggers.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	application.closeShellExecutor()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// InitializeForCommand loads configuration as if the named subcommand were about to run.
func (application *Application) InitializeForCommand(commandUse string) error {
	targetCommand, _, findError := application.rootCommand.Find([]string{commandUse})
	if findError != nil || targetCommand == nil || targetCommand.Name() != commandUse {
		return fmt.Errorf(unknownCommandErrorTemplateConstant, commandUse)
	}
	if targetCommand.Context() == nil {
		targetCommand.SetContext(application.rootCommand.Context())
	}
	return application.initializeConfiguration(targetCommand)
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatStructured),
		consoleRevealTimeoutConfigKeyConstant: defaultRevealTimeoutConstant.String(),
		consoleColumnsConfigKeyConstant:       defaultTerminalColumnsConstant,
		consoleRowsConfigKeyConstant:          defaultTerminalRowsConstant,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := flagutils.ParseChoice(application.configuration.Common.LogLevel, string(utils.LogLevelInfo), logLevelChoices)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := flagutils.ParseChoice(application.configuration.Common.LogFormat, string(utils.LogFormatStructured), logFormatChoices)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}
	application.configuration.Common.LogLevel = logLevel
	application.configuration.Common.LogFormat = logFormat

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(utils.LogLevel(logLevel), utils.LogFormat(logFormat))
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Duration(configurationRevealTimeoutFieldConstant, application.configuration.Console.RevealTimeout),
	)

	if command != nil {
		parentContext := command.Context()
		if parentContext == nil {
			parentContext = context.Background()
		}
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			parentContext,
			application.configurationMetadata.ConfigFileUsed,
		)
		if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
			updatedContext = application.commandContextAccessor.WithWorkingDirectory(updatedContext, workingDirectory)
		}
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) ensureShellExecutor() (*execshell.ShellExecutor, error) {
	application.executorMutex.Lock()
	defer application.executorMutex.Unlock()

	if application.shellExecutor != nil {
		return application.shellExecutor, nil
	}

	commandRunner := application.commandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner(application.logger)
	}

	consoleConfiguration := application.configuration.Console
	consoleSink := console.NewSink(console.NewTerminalSurfaceFactory(application.rootCommand.ErrOrStderr()), application.logger)

	executorOptions := []execshell.ExecutorOption{
		execshell.WithConsoleSink(consoleSink),
		execshell.WithConsoleRevealTimeout(consoleConfiguration.RevealTimeout),
		execshell.WithTerminalSize(execshell.TerminalSize{Columns: consoleConfiguration.TerminalColumns, Rows: consoleConfiguration.TerminalRows}),
	}
	if application.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(application.consoleLogger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(application.logger, commandRunner, executorOptions...)
	if creationError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, creationError)
	}

	application.shellExecutor = shellExecutor
	return shellExecutor, nil
}

func (application *Application) closeShellExecutor() {
	application.executorMutex.Lock()
	defer application.executorMutex.Unlock()

	if application.shellExecutor == nil {
		return
	}
	application.shellExecutor.Close()
	application.shellExecutor = nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
