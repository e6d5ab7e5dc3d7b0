package setup

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/logsink"
	"github.com/temirov/dotupdater/internal/repos/shared"
	"github.com/temirov/dotupdater/internal/utils/flags"
)

const (
	commandUseConstant              = "init"
	commandShortDescriptionConstant = "Create the configuration directory, a blueprint configuration file and the log directory"
	commandLongDescriptionConstant  = `init prepares a fresh installation. It creates the configuration directory
(default $XDG_CONFIG_HOME/dotupdater), writes a blueprint configuration file
listing every supported setting and creates the directory holding the log file.
An existing configuration file is never overwritten.`
	formatFlagNameConstant              = "format"
	formatFlagUsageConstant             = "Serialization of the blueprint configuration file"
	directoryFlagNameConstant           = "directory"
	directoryFlagUsageConstant          = "Configuration directory to initialize"
	createdSummaryTemplateConstant      = "CREATED: %s\n"
	existingSummaryTemplateConstant     = "EXISTS: %s\n"
	logDirectorySummaryTemplateConstant = "LOG DIRECTORY: %s\n"
)

// LoggerProvider yields the event logger that records setup steps.
type LoggerProvider func() *zap.Logger

// CommandConfiguration carries the settings init needs from the application configuration.
type CommandConfiguration struct {
	ConfigurationDirectory string
	LogFilePath            string
}

// CommandBuilder assembles the init command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
}

// Build constructs the init command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	var formatValue string
	var directoryValue string
	supportedFormats := SupportedFormats()
	flags.AddChoiceFlag(command.Flags(), &formatValue, formatFlagNameConstant, supportedFormats[0], supportedFormats, formatFlagUsageConstant)
	command.Flags().StringVar(&directoryValue, directoryFlagNameConstant, "", directoryFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		format, formatError := ParseBlueprintFormat(formatValue)
		if formatError != nil {
			return formatError
		}

		configuration := builder.resolveConfiguration()
		if flags.FlagChanged(command, directoryFlagNameConstant) {
			configuration.ConfigurationDirectory = directoryValue
		}

		service, serviceError := NewService(Dependencies{
			FileSystem: builder.FileSystem,
			Clock:      builder.Clock,
			Sink:       logsink.NewZapSink(builder.resolveLogger()),
		})
		if serviceError != nil {
			return serviceError
		}

		result, initializeError := service.Initialize(Options{
			ConfigurationDirectory: configuration.ConfigurationDirectory,
			Format:                 format,
			LogFilePath:            configuration.LogFilePath,
		})
		if initializeError != nil {
			return initializeError
		}

		reporter := shared.NewWriterReporter(command.OutOrStdout())
		if result.ConfigurationFileCreated {
			reporter.Printf(createdSummaryTemplateConstant, result.ConfigurationFile)
		} else {
			reporter.Printf(existingSummaryTemplateConstant, result.ConfigurationFile)
		}
		if len(result.LogDirectory) > 0 {
			reporter.Printf(logDirectorySummaryTemplateConstant, result.LogDirectory)
		}
		return nil
	}

	return command, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if len(strings.TrimSpace(configuration.ConfigurationDirectory)) == 0 {
		configuration.ConfigurationDirectory = DefaultConfigurationDirectory()
	}
	return configuration
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
