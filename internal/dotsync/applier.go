package dotsync

import (
	"context"
	"errors"
	"fmt"
)

// FastForwardApplier moves a branch to a verified fast-forward target.
type FastForwardApplier interface {
	Apply(executionContext context.Context, repository Repository, branch string, verdict VerdictFastForward) (Updated, error)
}

// GitApplier applies fast-forwards with a compare-and-swap on the branch followed by a forced checkout.
type GitApplier struct{}

// NewGitApplier constructs a GitApplier.
func NewGitApplier() GitApplier {
	return GitApplier{}
}

// Apply moves branch from verdict.From to verdict.Target. When branch is checked out, tracked
// files are overwritten to match; untracked files are kept. A failed checkout rolls the branch
// back to verdict.From and then re-materializes the tracked files of verdict.From, so a
// half-written working tree is repaired too. When that restore also fails both errors are
// returned and the working tree may still hold a mix of the two commits.
// A zero target is a programming error and panics.
func (GitApplier) Apply(executionContext context.Context, repository Repository, branch string, verdict VerdictFastForward) (Updated, error) {
	if verdict.Target.IsZero() {
		panic(zeroFastForwardTargetPanicMessageConstant)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return Updated{}, contextError
	}

	if swapError := repository.CompareAndSwapBranch(branch, verdict.From, verdict.Target); swapError != nil {
		return Updated{}, swapError
	}

	checkedOutBranch, checkedOut := repository.CheckedOutBranch()
	if !checkedOut || checkedOutBranch != branch {
		return Updated{From: verdict.From, To: verdict.Target, WorktreeRefreshed: false}, nil
	}

	checkoutError := repository.ForceCheckout(branch)
	if checkoutError == nil {
		return Updated{From: verdict.From, To: verdict.Target, WorktreeRefreshed: true}, nil
	}

	rollbackError := repository.CompareAndSwapBranch(branch, verdict.Target, verdict.From)
	if rollbackError != nil {
		return Updated{}, errors.Join(checkoutError, fmt.Errorf(rollbackErrorTemplateConstant, branch, verdict.From, rollbackError))
	}
	if restoreError := repository.ForceCheckout(branch); restoreError != nil {
		return Updated{}, errors.Join(checkoutError, fmt.Errorf(worktreeRestoreErrorTemplateConstant, branch, verdict.From, restoreError))
	}
	return Updated{}, checkoutError
}
