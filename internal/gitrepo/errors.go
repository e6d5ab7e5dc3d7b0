package gitrepo

import "errors"

const (
	notARepositoryMessageConstant            = "path is not a git repository"
	repositoryCorruptMessageConstant         = "repository object store is unreadable"
	referenceMissingMessageConstant          = "reference not found"
	remoteNotConfiguredMessageConstant       = "remote not configured"
	remoteUnreachableMessageConstant         = "remote unreachable"
	referenceUpdateConflictMessageConstant   = "reference changed during update"
	checkoutFailureMessageConstant           = "checkout failed"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	remoteNameRequiredMessageConstant        = "remote name must be provided"
	remoteURLMissingMessageConstant          = "remote has no configured url"
	requiredValueMessageConstant             = "value required"
	invalidRemoteURLMessageConstant          = "invalid remote url"
	unknownRemoteProtocolMessageConstant     = "unsupported remote protocol"
	remoteURLParseErrorTemplateConstant      = "%s: %s"
	referenceNotFoundErrorTemplateConstant   = "%w: %s"
	commitLookupErrorTemplateConstant        = "%w: commit %s: %w"
	ancestryErrorTemplateConstant            = "%w: ancestry of %s and %s: %w"
	openErrorTemplateConstant                = "%w: %s: %w"
	remoteLookupErrorTemplateConstant        = "%w: %s: %w"
	fetchErrorTemplateConstant               = "%w: fetching %s from %s: %w"
	referenceUpdateErrorTemplateConstant     = "%w: %s: %w"
	referenceConflictErrorTemplateConstant   = "%w: %s expected %s found %s"
	checkoutErrorTemplateConstant            = "%w: %s: %w"
	referenceReadErrorTemplateConstant       = "%w: reading %s: %w"
	cancelledFetchErrorTemplateConstant      = "fetching %s from %s: %w"
	worktreeUnavailableErrorTemplateConstant = "%w: worktree unavailable: %w"
	branchNotCheckedOutMessageConstant       = "branch is not checked out"
)

var errBranchNotCheckedOut = errors.New(branchNotCheckedOutMessageConstant)

// ErrNotARepository indicates the path exists but holds no git repository.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrRepositoryCorrupt indicates the repository metadata or object store could not be read.
var ErrRepositoryCorrupt = errors.New(repositoryCorruptMessageConstant)

// ErrRefMissing indicates a branch or remote-tracking reference does not exist.
var ErrRefMissing = errors.New(referenceMissingMessageConstant)

// ErrNoRemote indicates the requested remote is not configured.
var ErrNoRemote = errors.New(remoteNotConfiguredMessageConstant)

// ErrRemoteUnreachable indicates the remote could not be contacted or refused the request.
var ErrRemoteUnreachable = errors.New(remoteUnreachableMessageConstant)

// ErrReferenceUpdateConflict indicates the branch moved between observation and update.
var ErrReferenceUpdateConflict = errors.New(referenceUpdateConflictMessageConstant)

// ErrCheckoutFailure indicates the working tree could not be materialized.
var ErrCheckoutFailure = errors.New(checkoutFailureMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path was supplied.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrBranchNameRequired indicates an empty branch name was supplied.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrRemoteNameRequired indicates an empty remote name was supplied.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
