// Package gitfixture builds throwaway git repositories for tests.
package gitfixture

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	// DefaultBranchName is the branch every fixture repository starts on.
	DefaultBranchName = "main"
	// TrackedFileName is the file the initial commit creates.
	TrackedFileName = "dotfile.conf"

	initialContentConstant         = "initial\n"
	initialCommitMessageConstant   = "initial commit"
	authorNameConstant             = "Fixture Author"
	authorEmailConstant            = "fixture@example.com"
	originDirectoryNameConstant    = "origin"
	cloneDirectoryNameConstant     = "clone"
	gitExecutableNameConstant      = "git"
	missingGitSkipMessageConstant  = "git executable is required for local transport fixtures"
	trackedFilePermissionsConstant = 0o644
)

// Repository is a fixture repository on disk.
// Helpers reopen the repository on every call so writes made by the code under test are visible.
type Repository struct {
	Path string
}

// RequireGitExecutable skips the test when the local git transport cannot run.
func RequireGitExecutable(testInstance testing.TB) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip(missingGitSkipMessageConstant)
	}
}

// NewOrigin initializes a repository with one commit on DefaultBranchName.
func NewOrigin(testInstance testing.TB) *Repository {
	testInstance.Helper()

	originPath := filepath.Join(testInstance.TempDir(), originDirectoryNameConstant)
	_, initError := git.PlainInitWithOptions(originPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranchName)},
		Bare:        false,
	})
	require.NoError(testInstance, initError)

	origin := &Repository{Path: originPath}
	origin.Commit(testInstance, TrackedFileName, initialContentConstant, initialCommitMessageConstant)
	return origin
}

// Clone clones the origin into a fresh directory with origin as its only remote.
func Clone(testInstance testing.TB, origin *Repository) *Repository {
	testInstance.Helper()
	RequireGitExecutable(testInstance)

	clonePath := filepath.Join(testInstance.TempDir(), cloneDirectoryNameConstant)
	_, cloneError := git.PlainClone(clonePath, false, &git.CloneOptions{
		URL:           origin.Path,
		ReferenceName: plumbing.NewBranchReferenceName(DefaultBranchName),
		SingleBranch:  true,
	})
	require.NoError(testInstance, cloneError)

	return &Repository{Path: clonePath}
}

func (fixture *Repository) open(testInstance testing.TB) *git.Repository {
	testInstance.Helper()

	gitRepository, openError := git.PlainOpen(fixture.Path)
	require.NoError(testInstance, openError)
	return gitRepository
}

// Commit writes content to fileName in the working tree and commits it on the checked out branch.
func (fixture *Repository) Commit(testInstance testing.TB, fileName string, content string, message string) plumbing.Hash {
	testInstance.Helper()

	worktree, worktreeError := fixture.open(testInstance).Worktree()
	require.NoError(testInstance, worktreeError)

	writeError := util.WriteFile(worktree.Filesystem, fileName, []byte(content), trackedFilePermissionsConstant)
	require.NoError(testInstance, writeError)

	_, addError := worktree.Add(fileName)
	require.NoError(testInstance, addError)

	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: authorNameConstant, Email: authorEmailConstant, When: time.Now()},
	})
	require.NoError(testInstance, commitError)
	return commitHash
}

// WriteUntracked writes a file into the working tree without staging it.
func (fixture *Repository) WriteUntracked(testInstance testing.TB, fileName string, content string) {
	testInstance.Helper()

	worktree, worktreeError := fixture.open(testInstance).Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, util.WriteFile(worktree.Filesystem, fileName, []byte(content), trackedFilePermissionsConstant))
}

// ReadFile returns the working tree content of fileName.
func (fixture *Repository) ReadFile(testInstance testing.TB, fileName string) string {
	testInstance.Helper()

	worktree, worktreeError := fixture.open(testInstance).Worktree()
	require.NoError(testInstance, worktreeError)

	content, readError := util.ReadFile(worktree.Filesystem, fileName)
	require.NoError(testInstance, readError)
	return string(content)
}

// BranchTip returns the commit refs/heads/<branch> points at.
func (fixture *Repository) BranchTip(testInstance testing.TB, branch string) plumbing.Hash {
	testInstance.Helper()

	reference, referenceError := fixture.open(testInstance).Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(testInstance, referenceError)
	return reference.Hash()
}

// IsClean reports whether the working tree has no changes relative to HEAD.
func (fixture *Repository) IsClean(testInstance testing.TB) bool {
	testInstance.Helper()

	worktree, worktreeError := fixture.open(testInstance).Worktree()
	require.NoError(testInstance, worktreeError)

	status, statusError := worktree.Status()
	require.NoError(testInstance, statusError)
	return status.IsClean()
}

// CreateBranchAt creates refs/heads/<branch> at the given commit without checking it out.
func (fixture *Repository) CreateBranchAt(testInstance testing.TB, branch string, commitHash plumbing.Hash) {
	testInstance.Helper()

	reference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), commitHash)
	require.NoError(testInstance, fixture.open(testInstance).Storer.SetReference(reference))
}

// CheckoutBranch switches the working tree to an existing branch.
func (fixture *Repository) CheckoutBranch(testInstance testing.TB, branch string) {
	testInstance.Helper()

	worktree, worktreeError := fixture.open(testInstance).Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}))
}

// SetOriginURL replaces the URL of the origin remote.
func (fixture *Repository) SetOriginURL(testInstance testing.TB, remoteURL string) {
	testInstance.Helper()

	gitRepository := fixture.open(testInstance)
	require.NoError(testInstance, gitRepository.DeleteRemote(git.DefaultRemoteName))
	_, createError := gitRepository.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{remoteURL},
	})
	require.NoError(testInstance, createError)
}
