package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/dotupdater/internal/utils/path"
)

const (
	testHomeDirectoryConstant = "/home/tester"
	testBaseDirectoryConstant = "/home/tester/.config"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpander(func() (string, error) { return testHomeDirectoryConstant, nil })

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare_tilde", input: "~", expected: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/dotfiles", expected: filepath.Join(testHomeDirectoryConstant, "dotfiles")},
		{name: "other_user", input: "~root/dotfiles", expected: "~root/dotfiles"},
		{name: "absolute", input: "/srv/dotfiles", expected: "/srv/dotfiles"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderKeepsPathWhenHomeUnknown(testInstance *testing.T) {
	expander := pathutils.NewHomeExpander(func() (string, error) { return "", errors.New("no home") })
	require.Equal(testInstance, "~/dotfiles", expander.Expand("~/dotfiles"))
}

func TestRepositoryPathResolverResolve(testInstance *testing.T) {
	testInstance.Setenv("DOTUPDATER_TEST_ROOT", "/opt/dot")
	expander := pathutils.NewHomeExpander(func() (string, error) { return testHomeDirectoryConstant, nil })
	resolver := pathutils.NewRepositoryPathResolver(expander, testBaseDirectoryConstant)

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "relative_to_base", input: "nvim", expected: filepath.Join(testBaseDirectoryConstant, "nvim")},
		{name: "nested_relative", input: " tmux/plugins ", expected: filepath.Join(testBaseDirectoryConstant, "tmux", "plugins")},
		{name: "absolute_kept", input: "/srv/git/../dotfiles", expected: "/srv/dotfiles"},
		{name: "tilde_expanded", input: "~/work/dotfiles", expected: filepath.Join(testHomeDirectoryConstant, "work", "dotfiles")},
		{name: "environment_expanded", input: "$DOTUPDATER_TEST_ROOT/zsh", expected: "/opt/dot/zsh"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, resolver.Resolve(testCase.input))
		})
	}
}

func TestRepositoryPathResolverDefaultsBaseDirectory(testInstance *testing.T) {
	resolver := pathutils.NewRepositoryPathResolver(nil, "  ")
	require.Equal(testInstance, filepath.Clean(pathutils.DefaultBaseDirectory()), resolver.BaseDirectory())

	tildeResolver := pathutils.NewRepositoryPathResolver(
		pathutils.NewHomeExpander(func() (string, error) { return testHomeDirectoryConstant, nil }),
		"~/dots",
	)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "dots"), tildeResolver.BaseDirectory())
}
