package shared

// UpdatePolicy specifies whether a verified fast-forward is applied or only reported.
type UpdatePolicy int

const (
	// UpdateApply moves branch references and refreshes working trees.
	UpdateApply UpdatePolicy = iota
	// UpdateDryRun stops after classification and leaves repositories untouched.
	UpdateDryRun
)

// UpdatePolicyFromBool converts a dry-run flag into a policy.
func UpdatePolicyFromBool(dryRun bool) UpdatePolicy {
	if dryRun {
		return UpdateDryRun
	}
	return UpdateApply
}

// ShouldApply reports whether repositories may be mutated.
func (policy UpdatePolicy) ShouldApply() bool {
	return policy == UpdateApply
}

// HookPolicy describes whether post-update hooks run after a successful update.
type HookPolicy int

const (
	// HooksEnabled runs configured post-update hooks.
	HooksEnabled HookPolicy = iota
	// HooksDisabled skips post-update hooks.
	HooksDisabled
)

// HookPolicyFromBool converts a skip-hooks flag into a policy value.
func HookPolicyFromBool(skipHooks bool) HookPolicy {
	if skipHooks {
		return HooksDisabled
	}
	return HooksEnabled
}

// RunHooks reports whether post-update hooks should run.
func (policy HookPolicy) RunHooks() bool {
	return policy == HooksEnabled
}
