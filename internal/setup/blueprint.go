package setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/temirov/dotupdater/internal/dotsync"
)

// BlueprintFormat selects the serialization of the blueprint configuration file.
type BlueprintFormat string

// Supported blueprint formats.
const (
	BlueprintFormatYAML BlueprintFormat = BlueprintFormat("yaml")
	BlueprintFormatTOML BlueprintFormat = BlueprintFormat("toml")
)

const (
	configurationFileBaseNameConstant = "config"
	configurationFileNameTemplate     = "%s.%s"
	unsupportedFormatMessageConstant  = "unsupported blueprint format"
	unsupportedFormatTemplateConstant = "%w: %s"
	renderErrorTemplateConstant       = "rendering %s blueprint: %w"
	defaultLogLevelConstant           = "info"
	defaultLogFormatConstant          = "console"
	exampleRepositoryPathConstant     = "nvim"
	exampleRepositoryBranchConstant   = "main"
	yamlIndentationConstant           = 2
	blueprintHeaderCommentConstant    = "# dotupdater configuration. Relative repository paths are resolved against sync.base_directory.\n"
)

// ErrUnsupportedFormat indicates a blueprint format other than yaml or toml.
var ErrUnsupportedFormat = errors.New(unsupportedFormatMessageConstant)

// SupportedFormats lists the accepted --format values, default first.
func SupportedFormats() []string {
	return []string{string(BlueprintFormatYAML), string(BlueprintFormatTOML)}
}

// ParseBlueprintFormat normalizes a user supplied format name.
func ParseBlueprintFormat(raw string) (BlueprintFormat, error) {
	switch BlueprintFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case BlueprintFormatYAML, BlueprintFormat("yml"):
		return BlueprintFormatYAML, nil
	case BlueprintFormatTOML:
		return BlueprintFormatTOML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, raw)
	}
}

// FileName returns the configuration file name searched by the loader for this format.
func (format BlueprintFormat) FileName() string {
	return fmt.Sprintf(configurationFileNameTemplate, configurationFileBaseNameConstant, string(format))
}

type blueprintDocument struct {
	Common       blueprintCommon       `yaml:"common" toml:"common"`
	Sync         blueprintSync         `yaml:"sync" toml:"sync"`
	Repositories []blueprintRepository `yaml:"repositories" toml:"repositories"`
}

type blueprintCommon struct {
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
	LogFile   string `yaml:"log_file" toml:"log_file"`
}

type blueprintSync struct {
	BaseDirectory string                `yaml:"base_directory" toml:"base_directory"`
	DryRun        bool                  `yaml:"dry_run" toml:"dry_run"`
	SkipHooks     bool                  `yaml:"skip_hooks" toml:"skip_hooks"`
	Connectivity  blueprintConnectivity `yaml:"connectivity" toml:"connectivity"`
	Auth          blueprintAuth         `yaml:"auth" toml:"auth"`
}

type blueprintConnectivity struct {
	ProbeAddress  string `yaml:"probe_address" toml:"probe_address"`
	ProbeTimeout  string `yaml:"probe_timeout" toml:"probe_timeout"`
	RetryInterval string `yaml:"retry_interval" toml:"retry_interval"`
	MaxWait       string `yaml:"max_wait" toml:"max_wait"`
}

type blueprintAuth struct {
	Method                string `yaml:"method" toml:"method"`
	SSHUser               string `yaml:"ssh_user" toml:"ssh_user"`
	SSHKeyPath            string `yaml:"ssh_key_path" toml:"ssh_key_path"`
	SSHKeyPassphraseEnv   string `yaml:"ssh_key_passphrase_env" toml:"ssh_key_passphrase_env"`
	TokenEnv              string `yaml:"token_env" toml:"token_env"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key" toml:"insecure_ignore_host_key"`
}

type blueprintRepository struct {
	Path       string   `yaml:"path" toml:"path"`
	Branch     string   `yaml:"branch" toml:"branch"`
	PostUpdate []string `yaml:"post_update" toml:"post_update"`
}

func newBlueprintDocument(logFilePath string) blueprintDocument {
	defaults := dotsync.DefaultCommandConfiguration()
	return blueprintDocument{
		Common: blueprintCommon{
			LogLevel:  defaultLogLevelConstant,
			LogFormat: defaultLogFormatConstant,
			LogFile:   logFilePath,
		},
		Sync: blueprintSync{
			BaseDirectory: defaults.BaseDirectory,
			DryRun:        defaults.DryRun,
			SkipHooks:     defaults.SkipHooks,
			Connectivity: blueprintConnectivity{
				ProbeAddress:  defaults.Connectivity.ProbeAddress,
				ProbeTimeout:  defaults.Connectivity.ProbeTimeout.String(),
				RetryInterval: defaults.Connectivity.RetryInterval.String(),
				MaxWait:       defaults.Connectivity.MaxWait.String(),
			},
			Auth: blueprintAuth{
				Method:                defaults.Auth.Method,
				SSHUser:               defaults.Auth.SSHUser,
				SSHKeyPath:            defaults.Auth.SSHKeyPath,
				SSHKeyPassphraseEnv:   defaults.Auth.SSHKeyPassphraseEnv,
				TokenEnv:              defaults.Auth.TokenEnv,
				InsecureIgnoreHostKey: defaults.Auth.InsecureIgnoreHostKey,
			},
		},
		Repositories: []blueprintRepository{
			{Path: exampleRepositoryPathConstant, Branch: exampleRepositoryBranchConstant, PostUpdate: []string{}},
		},
	}
}

// RenderBlueprint serializes the default configuration in format, with logFilePath as common.log_file.
func RenderBlueprint(format BlueprintFormat, logFilePath string) ([]byte, error) {
	document := newBlueprintDocument(logFilePath)

	switch format {
	case BlueprintFormatYAML:
		var builder strings.Builder
		builder.WriteString(blueprintHeaderCommentConstant)
		encoder := yaml.NewEncoder(&builder)
		encoder.SetIndent(yamlIndentationConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return nil, fmt.Errorf(renderErrorTemplateConstant, format, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return nil, fmt.Errorf(renderErrorTemplateConstant, format, closeError)
		}
		return []byte(builder.String()), nil
	case BlueprintFormatTOML:
		encoded, encodeError := toml.Marshal(document)
		if encodeError != nil {
			return nil, fmt.Errorf(renderErrorTemplateConstant, format, encodeError)
		}
		return append([]byte(blueprintHeaderCommentConstant), encoded...), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, format)
	}
}
