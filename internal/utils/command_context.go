package utils

import "context"

type configurationFilePathKey struct{}

// CommandContextAccessor stores CLI-wide facts in the cobra command context so
// subcommands can read them without depending on the root application.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded.
// An empty path means only embedded defaults and the environment were used.
func (CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathKey{}, configurationFilePath)
}

// ConfigurationFilePath returns the path recorded by WithConfigurationFilePath.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, recorded := executionContext.Value(configurationFilePathKey{}).(string)
	return configurationFilePath, recorded
}
