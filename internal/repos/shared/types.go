package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

const (
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	repositoryPathInvalidMessageConstant  = "repository path must be a single line"
	branchNameRequiredMessageConstant     = "branch name must be provided"
	branchNameInvalidMessageConstant      = "branch name contains characters git does not allow"
	valueErrorTemplateConstant            = "%w: %q"
	forbiddenBranchCharactersConstant     = " ~^:?*[\\"
	forbiddenBranchSequenceConstant       = ".."
	lineBreakCharactersConstant           = "\r\n"
	branchReferencePrefixConstant         = "refs/heads/"
)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrRepositoryPathInvalid indicates a repository path spanning several lines.
var ErrRepositoryPathInvalid = errors.New(repositoryPathInvalidMessageConstant)

// ErrBranchNameRequired indicates an empty branch name.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrBranchNameInvalid indicates a branch name git would reject.
var ErrBranchNameInvalid = errors.New(branchNameInvalidMessageConstant)

// RepositoryPath is a trimmed, single-line repository path as written in configuration.
type RepositoryPath struct {
	value string
}

// NewRepositoryPath validates raw and returns a RepositoryPath.
func NewRepositoryPath(raw string) (RepositoryPath, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return RepositoryPath{}, ErrRepositoryPathRequired
	}
	if strings.ContainsAny(trimmed, lineBreakCharactersConstant) {
		return RepositoryPath{}, fmt.Errorf(valueErrorTemplateConstant, ErrRepositoryPathInvalid, raw)
	}
	return RepositoryPath{value: trimmed}, nil
}

// String returns the path.
func (path RepositoryPath) String() string {
	return path.value
}

// BranchName is a short local branch name such as "main".
type BranchName struct {
	value string
}

// NewBranchName validates raw and returns a BranchName. A leading refs/heads/ is stripped.
func NewBranchName(raw string) (BranchName, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), branchReferencePrefixConstant)
	if len(trimmed) == 0 {
		return BranchName{}, ErrBranchNameRequired
	}
	if strings.ContainsAny(trimmed, forbiddenBranchCharactersConstant+lineBreakCharactersConstant) ||
		strings.Contains(trimmed, forbiddenBranchSequenceConstant) ||
		strings.HasPrefix(trimmed, "-") ||
		strings.HasSuffix(trimmed, "/") ||
		strings.HasSuffix(trimmed, ".lock") {
		return BranchName{}, fmt.Errorf(valueErrorTemplateConstant, ErrBranchNameInvalid, raw)
	}
	return BranchName{value: trimmed}, nil
}

// String returns the branch name.
func (branch BranchName) String() string {
	return branch.value
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by the synchronization and setup services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}
