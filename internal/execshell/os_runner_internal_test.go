package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeEnvironmentReplacesOverriddenKeys(testInstance *testing.T) {
	merged := mergeEnvironment(
		[]string{"PATH=/usr/bin", "DOTUPDATER_BRANCH=stale", "HOME=/home/user"},
		map[string]string{"DOTUPDATER_BRANCH": "main", "DOTUPDATER_REPOSITORY": "/home/user/.config/nvim"},
	)

	require.Equal(testInstance, []string{
		"PATH=/usr/bin",
		"HOME=/home/user",
		"DOTUPDATER_BRANCH=main",
		"DOTUPDATER_REPOSITORY=/home/user/.config/nvim",
	}, merged)
}
