package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	environmentAssignmentSeparator        = "="
	commandStartErrorTemplateConstant     = "unable to run %s: %w"
)

// Hooks that leave children holding stdout open would otherwise block Wait forever.
const processWaitDelay = 10 * time.Second

// OSCommandRunner executes commands as child processes.
// On cancellation the child receives an interrupt and is killed when it does not exit within processWaitDelay.
type OSCommandRunner struct {
	waitDelay time.Duration
}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{waitDelay: processWaitDelay}
}

// Run implements CommandRunner. A non-zero exit status is reported in the result, not as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.Cancel = func() error {
		return process.Process.Signal(os.Interrupt)
	}
	process.WaitDelay = runner.waitDelay
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput, standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	result := ExecutionResult{StandardOutput: standardOutput.String(), StandardError: standardError.String()}

	var exitError *exec.ExitError
	switch {
	case runError == nil:
		return result, nil
	case executionContext.Err() != nil:
		return ExecutionResult{}, fmt.Errorf(commandStartErrorTemplateConstant, command.Name, executionContext.Err())
	case errors.As(runError, &exitError):
		result.ExitCode = exitError.ExitCode()
		return result, nil
	default:
		return ExecutionResult{}, fmt.Errorf(commandStartErrorTemplateConstant, command.Name, runError)
	}
}

// mergeEnvironment overlays overrides on base. Overridden keys keep a single entry and new keys are appended in sorted order.
func mergeEnvironment(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	for _, assignment := range base {
		key, _, _ := strings.Cut(assignment, environmentAssignmentSeparator)
		if _, overridden := overrides[key]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}

	overrideKeys := make([]string, 0, len(overrides))
	for key := range overrides {
		overrideKeys = append(overrideKeys, key)
	}
	sort.Strings(overrideKeys)
	for _, key := range overrideKeys {
		merged = append(merged, fmt.Sprintf(environmentAssignmentTemplateConstant, key, overrides[key]))
	}
	return merged
}
