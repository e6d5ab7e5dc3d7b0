// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Fetch and classify every repository without moving branches or touching working trees"
	// SkipHooksFlagName exposes the shared skip-hooks flag name.
	SkipHooksFlagName = "skip-hooks"
	// SkipHooksFlagUsage describes the shared skip-hooks flag purpose.
	SkipHooksFlagUsage = "Do not run post-update hooks after a repository is updated"
)

// ExecutionFlagValues stores the values of the execution flags bound to a command.
type ExecutionFlagValues struct {
	DryRun    bool
	SkipHooks bool
}

// BindExecutionFlags attaches the dry-run and skip-hooks toggles to command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionFlagValues) *ExecutionFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	AddToggleFlag(command.Flags(), &values.DryRun, DryRunFlagName, defaults.DryRun, DryRunFlagUsage)
	AddToggleFlag(command.Flags(), &values.SkipHooks, SkipHooksFlagName, defaults.SkipHooks, SkipHooksFlagUsage)
	return &values
}

// FlagChanged reports whether the named local flag was set explicitly on command.
func FlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	flag := command.Flags().Lookup(flagName)
	return flag != nil && flag.Changed
}
