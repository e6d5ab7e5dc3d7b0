package ui

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/execshell"
	"github.com/temirov/dotupdater/internal/logsink"
)

const (
	hookStartedMessageTemplateConstant          = "Running post-update hook %s"
	hookCompletedMessageTemplateConstant        = "Post-update hook completed %s"
	hookFailedExitCodeMessageTemplateConstant   = "Post-update hook %s failed with exit code %d"
	hookExecutionFailureMessageTemplateConstant = "Post-update hook %s failed: %s"
	commandLabelTemplateConstant                = "%s%s"
	workingDirectorySuffixTemplateConstant      = " (in %s)"
	commandArgumentsJoinSeparatorConstant       = " "
	outputSuffixTemplateConstant                = ": %s"
	unknownFailureMessageConstant               = "unknown error"
	emptyStringConstant                         = ""
	logFieldRepositoryConstant                  = "repository"
	logFieldExitCodeConstant                    = "exit_code"
)

// CommandEventFormatter builds human-readable messages for hook lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a hook about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(hookStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a hook that exited zero, including its trimmed output.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	return fmt.Sprintf(hookCompletedMessageTemplateConstant, formatter.formatCommandLabel(command)) + formatter.formatOutputSuffix(result.StandardOutput)
}

// BuildFailureMessage formats the message describing a hook that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(hookFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	return baseMessage + formatter.formatOutputSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the message describing a hook that could not be started.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(hookExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatOutputSuffix(output string) string {
	trimmedOutput := strings.TrimSpace(output)
	if len(trimmedOutput) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(outputSuffixTemplateConstant, trimmedOutput)
}

// HookEventReporter records post-update hook lifecycle events in the log sink.
// Start notices are Info; results are Notice on success and Warning on failure.
type HookEventReporter struct {
	sink           logsink.Sink
	clock          func() time.Time
	repositoryPath string
	formatter      CommandEventFormatter
}

// NewHookEventReporter constructs a reporter tagging every record with repositoryPath.
func NewHookEventReporter(sink logsink.Sink, clock func() time.Time, repositoryPath string) *HookEventReporter {
	if clock == nil {
		clock = time.Now
	}
	return &HookEventReporter{sink: sink, clock: clock, repositoryPath: repositoryPath, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (reporter *HookEventReporter) CommandStarted(command execshell.ShellCommand) {
	reporter.record(logsink.SeverityInfo, reporter.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (reporter *HookEventReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		reporter.record(logsink.SeverityNotice, reporter.formatter.BuildSuccessMessage(command, result))
		return
	}
	reporter.record(logsink.SeverityWarning, reporter.formatter.BuildFailureMessage(command, result), zap.Int(logFieldExitCodeConstant, result.ExitCode))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (reporter *HookEventReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	reporter.record(logsink.SeverityWarning, reporter.formatter.BuildExecutionFailureMessage(command, failure), zap.Error(failure))
}

func (reporter *HookEventReporter) record(severity logsink.Severity, message string, fields ...zap.Field) {
	if reporter == nil || reporter.sink == nil {
		return
	}
	recordFields := append([]zap.Field{zap.String(logFieldRepositoryConstant, reporter.repositoryPath)}, fields...)
	reporter.sink.Record(reporter.clock(), severity, message, recordFields...)
}
