// Package pathutils resolves configured repository paths to absolute locations.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts a leading tilde to the user's home directory.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using provider, or the operating system lookup when nil.
func NewHomeExpander(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves "~" and "~/..." prefixes. Other paths, including "~user", are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil || len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return expander.homeDirectory
	}
	for _, prefix := range []string{tildeForwardSlashPrefixConstant, tildeSymbolConstant + string(os.PathSeparator)} {
		if strings.HasPrefix(candidatePath, prefix) {
			return filepath.Join(expander.homeDirectory, strings.TrimPrefix(candidatePath, prefix))
		}
	}
	return candidatePath
}

// RepositoryPathResolver turns configured repository paths into absolute paths.
// Relative paths are anchored at the base directory.
type RepositoryPathResolver struct {
	homeExpander  *HomeExpander
	baseDirectory string
}

// DefaultBaseDirectory returns the user configuration directory, where dotfile repositories usually live.
func DefaultBaseDirectory() string {
	return xdg.ConfigHome
}

// NewRepositoryPathResolver constructs a resolver. An empty baseDirectory selects DefaultBaseDirectory.
func NewRepositoryPathResolver(homeExpander *HomeExpander, baseDirectory string) *RepositoryPathResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander(nil)
	}
	trimmedBaseDirectory := strings.TrimSpace(baseDirectory)
	if len(trimmedBaseDirectory) == 0 {
		trimmedBaseDirectory = DefaultBaseDirectory()
	}
	return &RepositoryPathResolver{
		homeExpander:  homeExpander,
		baseDirectory: filepath.Clean(homeExpander.Expand(os.ExpandEnv(trimmedBaseDirectory))),
	}
}

// BaseDirectory returns the resolved anchor for relative paths.
func (resolver *RepositoryPathResolver) BaseDirectory() string {
	return resolver.baseDirectory
}

// Resolve expands environment variables and a leading tilde, then anchors relative paths at the base directory.
func (resolver *RepositoryPathResolver) Resolve(configuredPath string) string {
	expandedPath := resolver.homeExpander.Expand(os.ExpandEnv(strings.TrimSpace(configuredPath)))
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath)
	}
	return filepath.Join(resolver.baseDirectory, expandedPath)
}
