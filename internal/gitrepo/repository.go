package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	// DefaultRemoteName is the remote consulted when none is configured.
	DefaultRemoteName = "origin"

	fetchRefSpecTemplateConstant = "+refs/heads/%s:refs/remotes/%s/%s"
)

// RemoteInfo describes a configured remote.
type RemoteInfo struct {
	Name string
	URLs []string
}

// PrimaryURL returns the first configured URL, which is the one git uses for fetches.
func (info RemoteInfo) PrimaryURL() string {
	if len(info.URLs) == 0 {
		return ""
	}
	return info.URLs[0]
}

// Repository is an opened git repository.
type Repository struct {
	path       string
	repository *git.Repository
}

// Open opens the repository rooted at repositoryPath without searching parent directories.
func Open(repositoryPath string) (*Repository, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}

	gitRepository, openError := git.PlainOpenWithOptions(trimmedPath, &git.PlainOpenOptions{
		DetectDotGit:          false,
		EnableDotGitCommonDir: true,
	})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(referenceNotFoundErrorTemplateConstant, ErrNotARepository, trimmedPath)
		}
		return nil, fmt.Errorf(openErrorTemplateConstant, ErrRepositoryCorrupt, trimmedPath, openError)
	}

	return &Repository{path: trimmedPath, repository: gitRepository}, nil
}

// Path returns the filesystem path the repository was opened from.
func (repository *Repository) Path() string {
	return repository.path
}

// BranchTip resolves refs/heads/<branch> to a commit identifier.
func (repository *Repository) BranchTip(branch string) (plumbing.Hash, error) {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return plumbing.ZeroHash, ErrBranchNameRequired
	}
	return repository.resolveReference(plumbing.NewBranchReferenceName(trimmedBranch))
}

// RemoteTrackingTip resolves refs/remotes/<remote>/<branch> as recorded by the latest fetch.
func (repository *Repository) RemoteTrackingTip(remoteName string, branch string) (plumbing.Hash, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return plumbing.ZeroHash, ErrRemoteNameRequired
	}
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return plumbing.ZeroHash, ErrBranchNameRequired
	}
	return repository.resolveReference(plumbing.NewRemoteReferenceName(trimmedRemoteName, trimmedBranch))
}

func (repository *Repository) resolveReference(referenceName plumbing.ReferenceName) (plumbing.Hash, error) {
	reference, referenceError := repository.repository.Reference(referenceName, true)
	if referenceError != nil {
		if errors.Is(referenceError, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, fmt.Errorf(referenceNotFoundErrorTemplateConstant, ErrRefMissing, referenceName)
		}
		return plumbing.ZeroHash, fmt.Errorf(referenceReadErrorTemplateConstant, ErrRepositoryCorrupt, referenceName, referenceError)
	}
	return reference.Hash(), nil
}

// Remote returns the configuration of the named remote.
func (repository *Repository) Remote(remoteName string) (RemoteInfo, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return RemoteInfo{}, ErrRemoteNameRequired
	}

	remote, remoteError := repository.repository.Remote(trimmedRemoteName)
	if remoteError != nil {
		if errors.Is(remoteError, git.ErrRemoteNotFound) {
			return RemoteInfo{}, fmt.Errorf(referenceNotFoundErrorTemplateConstant, ErrNoRemote, trimmedRemoteName)
		}
		return RemoteInfo{}, fmt.Errorf(remoteLookupErrorTemplateConstant, ErrRepositoryCorrupt, trimmedRemoteName, remoteError)
	}

	remoteConfiguration := remote.Config()
	if len(remoteConfiguration.URLs) == 0 {
		return RemoteInfo{}, fmt.Errorf(remoteURLParseErrorTemplateConstant, trimmedRemoteName, remoteURLMissingMessageConstant)
	}

	urls := make([]string, len(remoteConfiguration.URLs))
	copy(urls, remoteConfiguration.URLs)
	return RemoteInfo{Name: remoteConfiguration.Name, URLs: urls}, nil
}

// FetchBranch retrieves a single branch from the remote into its remote-tracking reference.
// The local branch and the working tree are left untouched.
func (repository *Repository) FetchBranch(executionContext context.Context, remoteName string, branch string, authMethod transport.AuthMethod) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return ErrRemoteNameRequired
	}
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return ErrBranchNameRequired
	}

	refSpec := config.RefSpec(fmt.Sprintf(fetchRefSpecTemplateConstant, trimmedBranch, trimmedRemoteName, trimmedBranch))
	fetchError := repository.repository.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: trimmedRemoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       authMethod,
		Tags:       git.NoTags,
	})

	switch {
	case fetchError == nil:
		return nil
	case errors.Is(fetchError, git.NoErrAlreadyUpToDate):
		return nil
	case executionContext.Err() != nil:
		return fmt.Errorf(cancelledFetchErrorTemplateConstant, trimmedBranch, trimmedRemoteName, executionContext.Err())
	case errors.Is(fetchError, git.NoMatchingRefSpecError{}):
		return fmt.Errorf(fetchErrorTemplateConstant, ErrRefMissing, trimmedBranch, trimmedRemoteName, fetchError)
	case errors.Is(fetchError, transport.ErrEmptyRemoteRepository):
		return fmt.Errorf(fetchErrorTemplateConstant, ErrRefMissing, trimmedBranch, trimmedRemoteName, fetchError)
	case errors.Is(fetchError, git.ErrRemoteNotFound):
		return fmt.Errorf(fetchErrorTemplateConstant, ErrNoRemote, trimmedBranch, trimmedRemoteName, fetchError)
	default:
		return fmt.Errorf(fetchErrorTemplateConstant, ErrRemoteUnreachable, trimmedBranch, trimmedRemoteName, fetchError)
	}
}

// CompareAndSwapBranch moves refs/heads/<branch> from expected to target.
// The update is refused with ErrReferenceUpdateConflict when the branch no longer points at expected.
func (repository *Repository) CompareAndSwapBranch(branch string, expected plumbing.Hash, target plumbing.Hash) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return ErrBranchNameRequired
	}

	referenceName := plumbing.NewBranchReferenceName(trimmedBranch)
	currentTip, currentTipError := repository.resolveReference(referenceName)
	if currentTipError != nil {
		return currentTipError
	}
	if currentTip != expected {
		return fmt.Errorf(referenceConflictErrorTemplateConstant, ErrReferenceUpdateConflict, referenceName, expected, currentTip)
	}

	// Packed heads have no loose file for CheckAndSetReference to compare
	// against, so the comparison above is the guard and SetReference holds
	// the ref lock while writing.
	setError := repository.repository.Storer.SetReference(plumbing.NewHashReference(referenceName, target))
	if setError != nil {
		return fmt.Errorf(referenceUpdateErrorTemplateConstant, ErrReferenceUpdateConflict, referenceName, setError)
	}
	return nil
}

// CheckedOutBranch reports the branch HEAD symbolically points at.
// The boolean is false for bare repositories and detached heads.
func (repository *Repository) CheckedOutBranch() (string, bool) {
	if _, worktreeError := repository.repository.Worktree(); worktreeError != nil {
		return "", false
	}

	headReference, headError := repository.repository.Reference(plumbing.HEAD, false)
	if headError != nil {
		return "", false
	}
	if headReference.Type() != plumbing.SymbolicReference {
		return "", false
	}
	if !headReference.Target().IsBranch() {
		return "", false
	}
	return headReference.Target().Short(), true
}

// ForceCheckout materializes the tip of the checked-out branch in the working tree.
// Every path tracked by the index or by the branch tip is overwritten or removed to match the tip.
// Untracked files and directories are left in place.
func (repository *Repository) ForceCheckout(branch string) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return ErrBranchNameRequired
	}

	checkedOutBranch, checkedOut := repository.CheckedOutBranch()
	if !checkedOut || checkedOutBranch != trimmedBranch {
		return fmt.Errorf(checkoutErrorTemplateConstant, ErrCheckoutFailure, trimmedBranch, errBranchNotCheckedOut)
	}

	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return fmt.Errorf(worktreeUnavailableErrorTemplateConstant, ErrCheckoutFailure, worktreeError)
	}

	branchTip, tipError := repository.BranchTip(trimmedBranch)
	if tipError != nil {
		return tipError
	}

	trackedPaths, trackedPathsError := repository.trackedPaths(branchTip)
	if trackedPathsError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, ErrCheckoutFailure, trimmedBranch, trackedPathsError)
	}
	if len(trackedPaths) == 0 {
		return nil
	}

	// An empty Files list would make the reset touch untracked paths as well.
	resetError := worktree.Reset(&git.ResetOptions{
		Commit: branchTip,
		Mode:   git.HardReset,
		Files:  trackedPaths,
	})
	if resetError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, ErrCheckoutFailure, trimmedBranch, resetError)
	}
	return nil
}

// trackedPaths lists the union of index entries and files of the commit tree, sorted.
func (repository *Repository) trackedPaths(commitHash plumbing.Hash) ([]string, error) {
	pathSet := make(map[string]struct{})

	repositoryIndex, indexError := repository.repository.Storer.Index()
	if indexError != nil {
		return nil, indexError
	}
	for _, entry := range repositoryIndex.Entries {
		pathSet[entry.Name] = struct{}{}
	}

	commit, commitError := repository.lookupCommit(commitHash)
	if commitError != nil {
		return nil, commitError
	}
	tree, treeError := commit.Tree()
	if treeError != nil {
		return nil, treeError
	}
	walkError := tree.Files().ForEach(func(file *object.File) error {
		pathSet[file.Name] = struct{}{}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	paths := make([]string, 0, len(pathSet))
	for path := range pathSet {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
