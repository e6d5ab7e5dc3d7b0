package dotsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/dotupdater/internal/execshell"
	"github.com/temirov/dotupdater/internal/logsink"
	"github.com/temirov/dotupdater/internal/repos/shared"
	"github.com/temirov/dotupdater/internal/ui"
)

const (
	hookEnvironmentRepositoryConstant = "DOTUPDATER_REPOSITORY"
	hookEnvironmentBranchConstant     = "DOTUPDATER_BRANCH"
	hookEnvironmentFromConstant       = "DOTUPDATER_FROM"
	hookEnvironmentToConstant         = "DOTUPDATER_TO"
	hookErrorTemplateConstant         = "%w: %s: %w"
)

// HookRunner runs the post-update command of a repository that was just updated.
type HookRunner interface {
	RunHook(executionContext context.Context, target RepositoryTarget, update Updated) error
}

// ShellHookRunner executes post-update commands inside the repository directory.
// A single-element command is interpreted by the POSIX shell; longer commands run as argv.
type ShellHookRunner struct {
	executor *execshell.ShellExecutor
	sink     logsink.Sink
	clock    shared.Clock
}

// NewShellHookRunner constructs a ShellHookRunner. Lifecycle notices go to sink.
func NewShellHookRunner(executor *execshell.ShellExecutor, sink logsink.Sink, clock shared.Clock) (*ShellHookRunner, error) {
	if executor == nil {
		return nil, ErrShellExecutorNotConfigured
	}
	if sink == nil {
		return nil, ErrLogSinkNotConfigured
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ShellHookRunner{executor: executor, sink: sink, clock: clock}, nil
}

// RunHook implements HookRunner. An empty command is a no-op.
func (runner *ShellHookRunner) RunHook(executionContext context.Context, target RepositoryTarget, update Updated) error {
	commandParts := nonEmptyCommandParts(target.PostUpdateCommand)
	if len(commandParts) == 0 {
		return nil
	}

	details := execshell.CommandDetails{
		WorkingDirectory: target.Path,
		EnvironmentVariables: map[string]string{
			hookEnvironmentRepositoryConstant: target.Path,
			hookEnvironmentBranchConstant:     target.Branch,
			hookEnvironmentFromConstant:       update.From.String(),
			hookEnvironmentToConstant:         update.To.String(),
		},
	}

	observedExecutor := runner.executor.WithObserver(ui.NewHookEventReporter(runner.sink, runner.clock.Now, target.Path))
	var executionError error
	if len(commandParts) == 1 {
		_, executionError = observedExecutor.ExecuteShell(executionContext, commandParts[0], details)
	} else {
		details.Arguments = append([]string{}, commandParts[1:]...)
		_, executionError = observedExecutor.Execute(executionContext, execshell.ShellCommand{Name: execshell.CommandName(commandParts[0]), Details: details})
	}
	if executionError != nil {
		return fmt.Errorf(hookErrorTemplateConstant, ErrHookFailed, strings.Join(commandParts, " "), executionError)
	}
	return nil
}

func nonEmptyCommandParts(command []string) []string {
	commandParts := make([]string, 0, len(command))
	for _, part := range command {
		if len(strings.TrimSpace(part)) > 0 {
			commandParts = append(commandParts, part)
		}
	}
	return commandParts
}
