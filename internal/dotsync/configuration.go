package dotsync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/dotupdater/internal/connectivity"
	"github.com/temirov/dotupdater/internal/credentials"
	"github.com/temirov/dotupdater/internal/repos/shared"
	pathutils "github.com/temirov/dotupdater/internal/utils/path"
)

const (
	invalidRepositoryEntryMessageConstant  = "invalid repository configuration"
	invalidRepositoryEntryTemplateConstant = "%w: repositories[%d]: %w"
	configurationKeyTemplateConstant       = "%s.%s"
	baseDirectoryKeyConstant               = "base_directory"
	dryRunKeyConstant                      = "dry_run"
	skipHooksKeyConstant                   = "skip_hooks"
	probeAddressKeyConstant                = "connectivity.probe_address"
	probeTimeoutKeyConstant                = "connectivity.probe_timeout"
	retryIntervalKeyConstant               = "connectivity.retry_interval"
	maxWaitKeyConstant                     = "connectivity.max_wait"
	authMethodKeyConstant                  = "auth.method"
	authSSHUserKeyConstant                 = "auth.ssh_user"
	authSSHKeyPathKeyConstant              = "auth.ssh_key_path"
	authSSHKeyPassphraseEnvKeyConstant     = "auth.ssh_key_passphrase_env"
	authTokenEnvKeyConstant                = "auth.token_env"
	authInsecureIgnoreHostKeyKeyConstant   = "auth.insecure_ignore_host_key"
)

// ErrInvalidRepositoryConfiguration indicates a repositories entry lacks a usable path or branch.
var ErrInvalidRepositoryConfiguration = errors.New(invalidRepositoryEntryMessageConstant)

// CommandConfiguration captures the sync section of the configuration file.
type CommandConfiguration struct {
	BaseDirectory string                    `mapstructure:"base_directory"`
	DryRun        bool                      `mapstructure:"dry_run"`
	SkipHooks     bool                      `mapstructure:"skip_hooks"`
	Connectivity  ConnectivityConfiguration `mapstructure:"connectivity"`
	Auth          AuthConfiguration         `mapstructure:"auth"`
}

// ConnectivityConfiguration tunes the wait for network reachability before fetches.
// An empty ProbeAddress disables the wait.
type ConnectivityConfiguration struct {
	ProbeAddress  string        `mapstructure:"probe_address"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxWait       time.Duration `mapstructure:"max_wait"`
}

// AuthConfiguration selects how fetches authenticate.
type AuthConfiguration struct {
	Method                string `mapstructure:"method"`
	SSHUser               string `mapstructure:"ssh_user"`
	SSHKeyPath            string `mapstructure:"ssh_key_path"`
	SSHKeyPassphraseEnv   string `mapstructure:"ssh_key_passphrase_env"`
	TokenEnv              string `mapstructure:"token_env"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`
}

// RepositoryConfiguration is one entry of the top-level repositories list.
type RepositoryConfiguration struct {
	Path       string   `mapstructure:"path"`
	Branch     string   `mapstructure:"branch"`
	PostUpdate []string `mapstructure:"post_update"`
}

// DefaultCommandConfiguration returns baseline values for the sync section.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BaseDirectory: "",
		DryRun:        false,
		SkipHooks:     false,
		Connectivity: ConnectivityConfiguration{
			ProbeAddress:  connectivity.DefaultProbeAddress,
			ProbeTimeout:  connectivity.DefaultProbeTimeout,
			RetryInterval: connectivity.DefaultRetryInterval,
			MaxWait:       0,
		},
		Auth: AuthConfiguration{
			Method:   string(credentials.MethodSSHAgent),
			SSHUser:  credentials.DefaultSSHUser,
			TokenEnv: credentials.DefaultTokenEnvironmentVariable,
		},
	}
}

// DefaultConfigurationValues returns the viper defaults for the sync section rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		baseDirectoryKeyConstant:             defaults.BaseDirectory,
		dryRunKeyConstant:                    defaults.DryRun,
		skipHooksKeyConstant:                 defaults.SkipHooks,
		probeAddressKeyConstant:              defaults.Connectivity.ProbeAddress,
		probeTimeoutKeyConstant:              defaults.Connectivity.ProbeTimeout,
		retryIntervalKeyConstant:             defaults.Connectivity.RetryInterval,
		maxWaitKeyConstant:                   defaults.Connectivity.MaxWait,
		authMethodKeyConstant:                defaults.Auth.Method,
		authSSHUserKeyConstant:               defaults.Auth.SSHUser,
		authSSHKeyPathKeyConstant:            defaults.Auth.SSHKeyPath,
		authSSHKeyPassphraseEnvKeyConstant:   defaults.Auth.SSHKeyPassphraseEnv,
		authTokenEnvKeyConstant:              defaults.Auth.TokenEnv,
		authInsecureIgnoreHostKeyKeyConstant: defaults.Auth.InsecureIgnoreHostKey,
	}

	trimmedRootKey := strings.TrimSpace(rootKey)
	if len(trimmedRootKey) == 0 {
		return values
	}
	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[fmt.Sprintf(configurationKeyTemplateConstant, trimmedRootKey, key)] = value
	}
	return prefixedValues
}

// sanitize trims string values and restores defaults for non-positive intervals.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.BaseDirectory = strings.TrimSpace(configuration.BaseDirectory)
	sanitized.Connectivity.ProbeAddress = strings.TrimSpace(configuration.Connectivity.ProbeAddress)
	if sanitized.Connectivity.ProbeTimeout <= 0 {
		sanitized.Connectivity.ProbeTimeout = defaults.Connectivity.ProbeTimeout
	}
	if sanitized.Connectivity.RetryInterval <= 0 {
		sanitized.Connectivity.RetryInterval = defaults.Connectivity.RetryInterval
	}
	if sanitized.Connectivity.MaxWait < 0 {
		sanitized.Connectivity.MaxWait = 0
	}

	sanitized.Auth.Method = strings.ToLower(strings.TrimSpace(configuration.Auth.Method))
	sanitized.Auth.SSHUser = strings.TrimSpace(configuration.Auth.SSHUser)
	sanitized.Auth.SSHKeyPath = strings.TrimSpace(configuration.Auth.SSHKeyPath)
	sanitized.Auth.SSHKeyPassphraseEnv = strings.TrimSpace(configuration.Auth.SSHKeyPassphraseEnv)
	sanitized.Auth.TokenEnv = strings.TrimSpace(configuration.Auth.TokenEnv)

	return sanitized
}

// credentialOptions converts the auth section into provider options.
func (configuration AuthConfiguration) credentialOptions(homeExpander *pathutils.HomeExpander) credentials.Options {
	return credentials.Options{
		Method:                credentials.Method(configuration.Method),
		SSHUser:               configuration.SSHUser,
		SSHKeyPath:            homeExpander.Expand(configuration.SSHKeyPath),
		SSHKeyPassphraseEnv:   configuration.SSHKeyPassphraseEnv,
		TokenEnv:              configuration.TokenEnv,
		InsecureIgnoreHostKey: configuration.InsecureIgnoreHostKey,
	}
}

// BuildTargets validates repository entries and resolves their paths, preserving order.
func BuildTargets(repositories []RepositoryConfiguration, resolver *pathutils.RepositoryPathResolver) ([]RepositoryTarget, error) {
	if resolver == nil {
		resolver = pathutils.NewRepositoryPathResolver(nil, "")
	}

	targets := make([]RepositoryTarget, 0, len(repositories))
	for entryIndex, entry := range repositories {
		repositoryPath, pathError := shared.NewRepositoryPath(entry.Path)
		if pathError != nil {
			return nil, fmt.Errorf(invalidRepositoryEntryTemplateConstant, ErrInvalidRepositoryConfiguration, entryIndex, pathError)
		}
		branchName, branchError := shared.NewBranchName(entry.Branch)
		if branchError != nil {
			return nil, fmt.Errorf(invalidRepositoryEntryTemplateConstant, ErrInvalidRepositoryConfiguration, entryIndex, branchError)
		}

		targets = append(targets, RepositoryTarget{
			Path:              resolver.Resolve(repositoryPath.String()),
			ConfiguredPath:    repositoryPath.String(),
			Branch:            branchName.String(),
			PostUpdateCommand: append([]string{}, entry.PostUpdate...),
		})
	}
	return targets, nil
}
