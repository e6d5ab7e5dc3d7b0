package cli

import _ "embed"

// defaultConfigurationDocument holds every supported key with its default value.
// It is merged before the user configuration file, so a user file only needs the keys it changes.
//
//go:embed default_config.yaml
var defaultConfigurationDocument string

// EmbeddedDefaultConfiguration returns a fresh copy of the embedded defaults and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return []byte(defaultConfigurationDocument), configurationTypeConstant
}
