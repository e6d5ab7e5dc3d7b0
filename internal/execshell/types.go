package execshell

import "context"

// CommandName identifies an executable.
type CommandName string

// CommandShell is the interpreter used for post-update hook command lines.
const CommandShell CommandName = CommandName("sh")

// CommandDetails carries the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable output of a finished command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandEventObserver is notified around every command the executor runs.
// Hook runners attach one per repository to record hook progress.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command produced no result at all,
	// e.g. the executable was missing or the context was cancelled.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type silentObserver struct{}

func (silentObserver) CommandStarted(ShellCommand) {}
func (silentObserver) CommandCompleted(ShellCommand, ExecutionResult) {}
func (silentObserver) CommandExecutionFailed(ShellCommand, error) {}
