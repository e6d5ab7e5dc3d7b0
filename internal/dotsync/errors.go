package dotsync

import (
	"context"
	"errors"

	"github.com/temirov/dotupdater/internal/gitrepo"
)

const (
	pathNotFoundMessageConstant               = "repository path not found"
	hookFailedMessageConstant                 = "post-update hook failed"
	batchFailedMessageConstant                = "one or more repositories failed to synchronize"
	repositoryOpenerNotConfiguredMessage      = "repository opener not configured"
	remoteSynchronizerNotConfiguredMessage    = "remote synchronizer not configured"
	fastForwardApplierNotConfiguredMessage    = "fast-forward applier not configured"
	logSinkNotConfiguredMessageConstant       = "log sink not configured"
	credentialProviderNotConfiguredMessage    = "credential provider not configured"
	connectionWaiterNotConfiguredMessage      = "connection waiter not configured"
	shellExecutorNotConfiguredMessage         = "shell executor not configured"
	zeroFastForwardTargetPanicMessageConstant = "dotsync: fast-forward verdict with zero target"
	wrappedErrorTemplateConstant              = "%w: %w"
	pathErrorTemplateConstant                 = "%w: %s"
	contextualErrorTemplateConstant           = "%s: %w"
	rollbackErrorTemplateConstant             = "rolling back %s to %s: %w"
	worktreeRestoreErrorTemplateConstant      = "restoring worktree of %s at %s: %w"
)

// ErrPathNotFound indicates the configured repository path does not exist.
var ErrPathNotFound = errors.New(pathNotFoundMessageConstant)

// Repository-level failures surfaced by the handle. They are re-exported so callers classify outcomes through one package.
var (
	ErrNotARepository          = gitrepo.ErrNotARepository
	ErrRepositoryCorrupt       = gitrepo.ErrRepositoryCorrupt
	ErrRemoteUnreachable       = gitrepo.ErrRemoteUnreachable
	ErrRefMissing              = gitrepo.ErrRefMissing
	ErrReferenceUpdateConflict = gitrepo.ErrReferenceUpdateConflict
	ErrCheckoutFailure         = gitrepo.ErrCheckoutFailure
)

// ErrHookFailed indicates a post-update hook exited non-zero or could not start.
var ErrHookFailed = errors.New(hookFailedMessageConstant)

// ErrBatchFailed indicates at least one repository ended in the Failed state.
var ErrBatchFailed = errors.New(batchFailedMessageConstant)

// ErrRepositoryOpenerNotConfigured indicates the orchestrator was built without an opener.
var ErrRepositoryOpenerNotConfigured = errors.New(repositoryOpenerNotConfiguredMessage)

// ErrRemoteSynchronizerNotConfigured indicates the orchestrator was built without a synchronizer.
var ErrRemoteSynchronizerNotConfigured = errors.New(remoteSynchronizerNotConfiguredMessage)

// ErrFastForwardApplierNotConfigured indicates the orchestrator was built without an applier.
var ErrFastForwardApplierNotConfigured = errors.New(fastForwardApplierNotConfiguredMessage)

// ErrLogSinkNotConfigured indicates the orchestrator was built without a sink.
var ErrLogSinkNotConfigured = errors.New(logSinkNotConfiguredMessageConstant)

// ErrCredentialProviderNotConfigured indicates the synchronizer was built without credentials.
var ErrCredentialProviderNotConfigured = errors.New(credentialProviderNotConfiguredMessage)

// ErrConnectionWaiterNotConfigured indicates the synchronizer was built without a waiter.
var ErrConnectionWaiterNotConfigured = errors.New(connectionWaiterNotConfiguredMessage)

// ErrShellExecutorNotConfigured indicates the hook runner was built without an executor.
var ErrShellExecutorNotConfigured = errors.New(shellExecutorNotConfiguredMessage)

var classifiedErrorKinds = []struct {
	target error
	kind   string
}{
	{target: ErrPathNotFound, kind: "path-not-found"},
	{target: ErrNotARepository, kind: "not-a-repository"},
	{target: ErrRepositoryCorrupt, kind: "repository-corrupt"},
	{target: ErrRemoteUnreachable, kind: "remote-unreachable"},
	{target: ErrRefMissing, kind: "ref-missing"},
	{target: ErrReferenceUpdateConflict, kind: "reference-update-conflict"},
	{target: ErrCheckoutFailure, kind: "checkout-failure"},
	{target: ErrHookFailed, kind: "hook-failed"},
	{target: gitrepo.ErrNoRemote, kind: "remote-unreachable"},
}

// ErrorKind names the failure class of err for the error_kind log field.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, classified := range classifiedErrorKinds {
		if errors.Is(err, classified.target) {
			return classified.kind
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "unexpected"
}
