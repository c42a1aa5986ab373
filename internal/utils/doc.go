// Package utils exposes reusable helpers consumed by the CLI and the console.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper,
// environment variables and zap logging, plus the FlushingWriter used for
// terminal output and the CommandContextAccessor used to pass values between
// Cobra commands.
package utils
