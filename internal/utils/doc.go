// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, and zap logging for the CLI, together with the
// CommandContextAccessor used to hand merged execution settings to subcommands.
package utils
