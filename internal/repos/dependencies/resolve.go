package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/execshell"
	"github.com/temirov/dotupdater/internal/repos/filesystem"
	"github.com/temirov/dotupdater/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}

// ResolveShellExecutor returns the provided executor or constructs an os/exec-backed default.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}
