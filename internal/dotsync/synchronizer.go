package dotsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/credentials"
	"github.com/temirov/dotupdater/internal/gitrepo"
)

const (
	localTipContextTemplateConstant     = "reading local tip of %s"
	remoteTipContextTemplateConstant    = "reading fetched tip of %s"
	credentialsContextTemplateConstant  = "credentials for %s"
	ancestryContextTemplateConstant     = "relating %s to %s"
	waitingForNetworkLogMessageConstant = "waiting for network before fetch"
	fetchingBranchLogMessageConstant    = "fetching branch"
	fetchedBranchLogMessageConstant     = "fetched branch"
	remoteURLUnparsedLogMessageConstant = "remote url not recognized, assuming network transport"
	logFieldRepositoryConstant          = "repository"
	logFieldBranchConstant              = "branch"
	logFieldRemoteConstant              = "remote"
	logFieldRemoteURLConstant           = "remote_url"
	logFieldLocalTipConstant            = "local_tip"
	logFieldRemoteTipConstant           = "remote_tip"
	logFieldAncestryConstant            = "ancestry"
)

// Repository is the handle surface the synchronizer and applier operate on.
// *gitrepo.Repository satisfies it.
type Repository interface {
	Path() string
	BranchTip(branch string) (plumbing.Hash, error)
	RemoteTrackingTip(remoteName string, branch string) (plumbing.Hash, error)
	Remote(remoteName string) (gitrepo.RemoteInfo, error)
	FetchBranch(executionContext context.Context, remoteName string, branch string, authMethod transport.AuthMethod) error
	AncestryRelation(first plumbing.Hash, second plumbing.Hash) (gitrepo.AncestryRelation, error)
	CompareAndSwapBranch(branch string, expected plumbing.Hash, target plumbing.Hash) error
	CheckedOutBranch() (string, bool)
	ForceCheckout(branch string) error
}

// ConnectionWaiter blocks until the network is reachable or the context ends.
type ConnectionWaiter interface {
	WaitForConnection(executionContext context.Context) error
}

// SyncStatus is what a fetch revealed about the remote branch.
//
//sumtype:decl
type SyncStatus interface {
	isSyncStatus()
}

// RemoteUpToDate means the fetched tip is already contained in the local branch.
type RemoteUpToDate struct {
	Tip plumbing.Hash
}

// UpdatesAvailable means the fetched tip holds commits the local branch lacks.
type UpdatesAvailable struct {
	LocalTip  plumbing.Hash
	RemoteTip plumbing.Hash
	Relation  gitrepo.AncestryRelation
}

func (RemoteUpToDate) isSyncStatus()   {}
func (UpdatesAvailable) isSyncStatus() {}

// RemoteSynchronizer fetches a branch and reports whether updates exist.
type RemoteSynchronizer interface {
	Synchronize(executionContext context.Context, repository Repository, branch string) (SyncStatus, error)
}

// SynchronizerDependencies wires a GitSynchronizer.
type SynchronizerDependencies struct {
	Credentials credentials.Provider
	Waiter      ConnectionWaiter
	Logger      *zap.Logger
	RemoteName  string
}

// GitSynchronizer fetches the configured branch from origin and relates it to the local tip.
type GitSynchronizer struct {
	credentials credentials.Provider
	waiter      ConnectionWaiter
	logger      *zap.Logger
	remoteName  string
}

// NewGitSynchronizer validates dependencies and constructs a GitSynchronizer.
func NewGitSynchronizer(dependencies SynchronizerDependencies) (*GitSynchronizer, error) {
	if dependencies.Credentials == nil {
		return nil, ErrCredentialProviderNotConfigured
	}
	if dependencies.Waiter == nil {
		return nil, ErrConnectionWaiterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	remoteName := dependencies.RemoteName
	if len(remoteName) == 0 {
		remoteName = gitrepo.DefaultRemoteName
	}
	return &GitSynchronizer{
		credentials: dependencies.Credentials,
		waiter:      dependencies.Waiter,
		logger:      logger,
		remoteName:  remoteName,
	}, nil
}

// Synchronize fetches branch and classifies the fetched tip against the local tip.
// No branch reference is moved.
func (synchronizer *GitSynchronizer) Synchronize(executionContext context.Context, repository Repository, branch string) (SyncStatus, error) {
	localTip, localTipError := repository.BranchTip(branch)
	if localTipError != nil {
		return nil, fmt.Errorf(contextualErrorTemplateConstant, fmt.Sprintf(localTipContextTemplateConstant, branch), localTipError)
	}

	remoteInfo, remoteError := repository.Remote(synchronizer.remoteName)
	if remoteError != nil {
		if errors.Is(remoteError, gitrepo.ErrNoRemote) {
			return nil, fmt.Errorf(wrappedErrorTemplateConstant, ErrRemoteUnreachable, remoteError)
		}
		return nil, remoteError
	}
	remoteURL := remoteInfo.PrimaryURL()

	fieldLogger := synchronizer.logger.With(
		zap.String(logFieldRepositoryConstant, repository.Path()),
		zap.String(logFieldBranchConstant, branch),
		zap.String(logFieldRemoteConstant, remoteInfo.Name),
		zap.String(logFieldRemoteURLConstant, remoteURL),
	)

	if synchronizer.requiresNetwork(remoteURL, fieldLogger) {
		fieldLogger.Debug(waitingForNetworkLogMessageConstant)
		if waitError := synchronizer.waiter.WaitForConnection(executionContext); waitError != nil {
			return nil, waitError
		}
	}

	authMethod, credentialsError := synchronizer.credentials.Method(remoteURL)
	if credentialsError != nil {
		return nil, fmt.Errorf(wrappedErrorTemplateConstant, ErrRemoteUnreachable, fmt.Errorf(contextualErrorTemplateConstant, fmt.Sprintf(credentialsContextTemplateConstant, remoteURL), credentialsError))
	}

	fieldLogger.Debug(fetchingBranchLogMessageConstant)
	if fetchError := repository.FetchBranch(executionContext, synchronizer.remoteName, branch, authMethod); fetchError != nil {
		return nil, fetchError
	}

	remoteTip, remoteTipError := repository.RemoteTrackingTip(synchronizer.remoteName, branch)
	if remoteTipError != nil {
		return nil, fmt.Errorf(contextualErrorTemplateConstant, fmt.Sprintf(remoteTipContextTemplateConstant, branch), remoteTipError)
	}

	relation, relationError := repository.AncestryRelation(localTip, remoteTip)
	if relationError != nil {
		return nil, fmt.Errorf(contextualErrorTemplateConstant, fmt.Sprintf(ancestryContextTemplateConstant, localTip, remoteTip), relationError)
	}

	fieldLogger.Debug(
		fetchedBranchLogMessageConstant,
		zap.String(logFieldLocalTipConstant, localTip.String()),
		zap.String(logFieldRemoteTipConstant, remoteTip.String()),
		zap.Stringer(logFieldAncestryConstant, relation),
	)

	switch relation {
	case gitrepo.AncestryEqual, gitrepo.AncestrySecondIsAncestor:
		return RemoteUpToDate{Tip: localTip}, nil
	default:
		return UpdatesAvailable{LocalTip: localTip, RemoteTip: remoteTip, Relation: relation}, nil
	}
}

func (synchronizer *GitSynchronizer) requiresNetwork(remoteURL string, fieldLogger *zap.Logger) bool {
	parsedURL, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		fieldLogger.Debug(remoteURLUnparsedLogMessageConstant, zap.Error(parseError))
		return true
	}
	return parsedURL.RequiresNetwork()
}
