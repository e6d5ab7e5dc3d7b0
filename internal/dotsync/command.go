package dotsync

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/connectivity"
	"github.com/temirov/dotupdater/internal/credentials"
	"github.com/temirov/dotupdater/internal/execshell"
	"github.com/temirov/dotupdater/internal/logsink"
	"github.com/temirov/dotupdater/internal/repos/dependencies"
	"github.com/temirov/dotupdater/internal/repos/shared"
	"github.com/temirov/dotupdater/internal/utils"
	"github.com/temirov/dotupdater/internal/utils/flags"
	pathutils "github.com/temirov/dotupdater/internal/utils/path"
)

const (
	commandUseConstant              = "sync"
	commandShortDescriptionConstant = "Fast-forward configured repositories to their origin branch"
	commandLongDescriptionConstant  = `sync fetches the configured branch of every repository listed under
"repositories" from its origin remote and fast-forwards the local branch when
the remote strictly descends from it.

When the updated branch is checked out, tracked files in the working tree are
overwritten to match the new commit. Local modifications to tracked files are
lost; untracked files are kept. Branches that have diverged from origin are
reported and never modified.`
	noRepositoriesConfiguredMessageConstant = "no repositories configured"
	updatedSummaryTemplateConstant          = "%s: %s (%s) %s..%s%s\n"
	noUpdateSummaryTemplateConstant         = "%s: %s (%s)\n"
	skippedSummaryTemplateConstant          = "%s: %s (%s) %s: %s\n"
	failedSummaryTemplateConstant           = "%s: %s (%s): %v\n"
	updatedLabelConstant                    = "UPDATED"
	noUpdateLabelConstant                   = "UP-TO-DATE"
	skippedLabelConstant                    = "SKIPPED"
	failedLabelConstant                     = "FAILED"
	referenceOnlySuffixConstant             = " [branch not checked out]"
	hookFailedSuffixConstant                = " [post-update hook failed]"
	synchronizationStartingMessageConstant  = "starting synchronization pass"
	logFieldConfigurationFileConstant       = "config_file"
	logFieldRepositoryCountConstant         = "repository_count"
	logFieldDryRunConstant                  = "dry_run"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	EventLoggerProvider   LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	RepositoriesProvider  func() []RepositoryConfiguration
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
	Opener                RepositoryOpener
	CredentialProvider    credentials.Provider
	ConnectionWaiter      ConnectionWaiter
	ShellExecutor         *execshell.ShellExecutor
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	executionFlags := flags.BindExecutionFlags(command, flags.ExecutionFlagValues{})
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, executionFlags)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, executionFlags *flags.ExecutionFlagValues) error {
	configuration := builder.resolveConfiguration()
	if flags.FlagChanged(command, flags.DryRunFlagName) {
		configuration.DryRun = executionFlags.DryRun
	}
	if flags.FlagChanged(command, flags.SkipHooksFlagName) {
		configuration.SkipHooks = executionFlags.SkipHooks
	}

	logger := builder.resolveLogger(builder.LoggerProvider)
	sink := logsink.NewZapSink(builder.resolveLogger(builder.EventLoggerProvider))
	clock := dependencies.ResolveClock(builder.Clock)

	homeExpander := pathutils.NewHomeExpander(nil)
	pathResolver := pathutils.NewRepositoryPathResolver(homeExpander, configuration.BaseDirectory)
	targets, targetsError := BuildTargets(builder.resolveRepositories(), pathResolver)
	if targetsError != nil {
		return targetsError
	}
	if len(targets) == 0 {
		sink.Record(clock.Now(), logsink.SeverityWarning, noRepositoriesConfiguredMessageConstant)
		return nil
	}

	configurationFile, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	logger.Debug(
		synchronizationStartingMessageConstant,
		zap.String(logFieldConfigurationFileConstant, configurationFile),
		zap.Int(logFieldRepositoryCountConstant, len(targets)),
		zap.Bool(logFieldDryRunConstant, configuration.DryRun),
	)

	orchestrator, orchestratorError := builder.buildOrchestrator(configuration, homeExpander, logger, sink, clock)
	if orchestratorError != nil {
		return orchestratorError
	}

	batch := orchestrator.Run(command.Context(), targets, Options{
		UpdatePolicy: shared.UpdatePolicyFromBool(configuration.DryRun),
		HookPolicy:   shared.HookPolicyFromBool(configuration.SkipHooks),
	})

	writeSummary(command.OutOrStdout(), batch)
	if batch.HasFailures() {
		return ErrBatchFailed
	}
	return nil
}

func (builder *CommandBuilder) buildOrchestrator(configuration CommandConfiguration, homeExpander *pathutils.HomeExpander, logger *zap.Logger, sink logsink.Sink, clock shared.Clock) (*Orchestrator, error) {
	credentialProvider := builder.CredentialProvider
	if credentialProvider == nil {
		provider, providerError := credentials.NewProvider(configuration.Auth.credentialOptions(homeExpander))
		if providerError != nil {
			return nil, providerError
		}
		credentialProvider = provider
	}

	var connectionWaiter ConnectionWaiter = builder.ConnectionWaiter
	if connectionWaiter == nil {
		waiter, waiterError := connectivity.NewTCPWaiter(
			configuration.Connectivity.ProbeAddress,
			configuration.Connectivity.ProbeTimeout,
			connectivity.Options{
				RetryInterval: configuration.Connectivity.RetryInterval,
				MaxWait:       configuration.Connectivity.MaxWait,
				Logger:        logger,
			},
		)
		if waiterError != nil {
			return nil, waiterError
		}
		connectionWaiter = waiter
	}

	synchronizer, synchronizerError := NewGitSynchronizer(SynchronizerDependencies{
		Credentials: credentialProvider,
		Waiter:      connectionWaiter,
		Logger:      logger,
	})
	if synchronizerError != nil {
		return nil, synchronizerError
	}

	shellExecutor, executorError := dependencies.ResolveShellExecutor(builder.ShellExecutor, logger)
	if executorError != nil {
		return nil, executorError
	}
	hookRunner, hookRunnerError := NewShellHookRunner(shellExecutor, sink, clock)
	if hookRunnerError != nil {
		return nil, hookRunnerError
	}

	opener := builder.Opener
	if opener == nil {
		opener = GitRepositoryOpener()
	}

	return NewOrchestrator(Dependencies{
		FileSystem:   builder.FileSystem,
		Opener:       opener,
		Synchronizer: synchronizer,
		Applier:      NewGitApplier(),
		Sink:         sink,
		Clock:        clock,
		HookRunner:   hookRunner,
	})
}

func writeSummary(writer io.Writer, batch BatchReport) {
	reporter := shared.NewWriterReporter(writer)
	updatedLabel := color.New(color.FgGreen, color.Bold).Sprint(updatedLabelConstant)
	noUpdateLabel := color.New(color.FgCyan).Sprint(noUpdateLabelConstant)
	skippedLabel := color.New(color.FgYellow).Sprint(skippedLabelConstant)
	failedLabel := color.New(color.FgRed, color.Bold).Sprint(failedLabelConstant)

	for _, report := range batch.Reports {
		target := report.Target
		switch outcome := report.Outcome.(type) {
		case Updated:
			suffix := ""
			if !outcome.WorktreeRefreshed {
				suffix += referenceOnlySuffixConstant
			}
			if outcome.HookError != nil {
				suffix += hookFailedSuffixConstant
			}
			reporter.Printf(updatedSummaryTemplateConstant, updatedLabel, target.Path, target.Branch, shortHash(outcome.From.String()), shortHash(outcome.To.String()), suffix)
		case NoUpdate:
			reporter.Printf(noUpdateSummaryTemplateConstant, noUpdateLabel, target.Path, target.Branch)
		case Skipped:
			reporter.Printf(skippedSummaryTemplateConstant, skippedLabel, target.Path, target.Branch, outcome.Reason, outcome.Detail)
		case Failed:
			reporter.Printf(failedSummaryTemplateConstant, failedLabel, target.Path, target.Branch, outcome.Err)
		}
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveRepositories() []RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}

func (builder *CommandBuilder) resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
