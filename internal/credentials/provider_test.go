package credentials_test

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"

	"github.com/temirov/dotupdater/internal/credentials"
)

const (
	testSSHRemoteConstant        = "git@github.com:owner/dotfiles.git"
	testHTTPSRemoteConstant      = "https://github.com/owner/dotfiles.git"
	testLocalRemoteConstant      = "/srv/git/dotfiles"
	testTokenEnvironmentConstant = "TEST_DOTUPDATER_TOKEN"
	testTokenValueConstant       = "s3cr3t"
	testMissingKeyFileConstant   = "id_missing"
)

func staticEnvironment(values map[string]string) credentials.EnvironmentLookup {
	return func(name string) string {
		return values[name]
	}
}

func TestNewProviderSelectsImplementation(testInstance *testing.T) {
	testCases := []struct {
		name         string
		method       credentials.Method
		expectedType any
		expectError  error
	}{
		{name: "default_is_agent", method: "", expectedType: &credentials.SSHAgentProvider{}},
		{name: "agent", method: credentials.MethodSSHAgent, expectedType: &credentials.SSHAgentProvider{}},
		{name: "key", method: credentials.MethodSSHKey, expectedType: &credentials.SSHKeyProvider{}},
		{name: "token", method: credentials.MethodToken, expectedType: &credentials.TokenProvider{}},
		{name: "none", method: credentials.MethodNone, expectedType: credentials.NoneProvider{}},
		{name: "unknown", method: credentials.Method("kerberos"), expectError: credentials.ErrUnsupportedMethod},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider, providerError := credentials.NewProvider(credentials.Options{Method: testCase.method})
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, providerError, testCase.expectError)
				return
			}
			require.NoError(testInstance, providerError)
			require.IsType(testInstance, testCase.expectedType, provider)
		})
	}
}

func TestNewProviderDefaultsSSHUser(testInstance *testing.T) {
	provider, providerError := credentials.NewProvider(credentials.Options{Method: credentials.MethodSSHAgent})
	require.NoError(testInstance, providerError)

	agentProvider, isAgentProvider := provider.(*credentials.SSHAgentProvider)
	require.True(testInstance, isAgentProvider)
	require.Equal(testInstance, credentials.DefaultSSHUser, agentProvider.Username)
	require.Nil(testInstance, agentProvider.HostKeyCallback)

	insecureProvider, insecureError := credentials.NewProvider(credentials.Options{Method: credentials.MethodSSHAgent, InsecureIgnoreHostKey: true})
	require.NoError(testInstance, insecureError)
	require.NotNil(testInstance, insecureProvider.(*credentials.SSHAgentProvider).HostKeyCallback)
}

func TestSSHProvidersSkipNonSSHRemotes(testInstance *testing.T) {
	providers := map[string]credentials.Provider{
		"agent": &credentials.SSHAgentProvider{Username: credentials.DefaultSSHUser},
		"key":   &credentials.SSHKeyProvider{Username: credentials.DefaultSSHUser},
	}

	for providerName, provider := range providers {
		for _, remoteURL := range []string{testHTTPSRemoteConstant, testLocalRemoteConstant} {
			testInstance.Run(providerName+"_"+remoteURL, func(testInstance *testing.T) {
				authMethod, methodError := provider.Method(remoteURL)
				require.NoError(testInstance, methodError)
				require.Nil(testInstance, authMethod)
			})
		}
	}
}

func TestSSHAgentProviderWithoutAgent(testInstance *testing.T) {
	testInstance.Setenv("SSH_AUTH_SOCK", "")

	provider := &credentials.SSHAgentProvider{Username: credentials.DefaultSSHUser}
	authMethod, methodError := provider.Method(testSSHRemoteConstant)
	require.ErrorIs(testInstance, methodError, credentials.ErrCredentialsUnavailable)
	require.Nil(testInstance, authMethod)
}

func TestSSHKeyProviderReportsUnusableKeys(testInstance *testing.T) {
	testCases := []struct {
		name    string
		keyPath string
	}{
		{name: "missing_path", keyPath: ""},
		{name: "missing_file", keyPath: filepath.Join(testInstance.TempDir(), testMissingKeyFileConstant)},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := &credentials.SSHKeyProvider{Username: credentials.DefaultSSHUser, KeyPath: testCase.keyPath}
			_, methodError := provider.Method(testSSHRemoteConstant)
			require.ErrorIs(testInstance, methodError, credentials.ErrCredentialsUnavailable)
		})
	}
}

func TestTokenProvider(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remoteURL     string
		environment   map[string]string
		expectAuth    bool
		expectedError error
	}{
		{
			name:        "https_with_token",
			remoteURL:   testHTTPSRemoteConstant,
			environment: map[string]string{testTokenEnvironmentConstant: testTokenValueConstant},
			expectAuth:  true,
		},
		{
			name:          "https_without_token",
			remoteURL:     testHTTPSRemoteConstant,
			environment:   map[string]string{},
			expectedError: credentials.ErrCredentialsUnavailable,
		},
		{
			name:        "ssh_remote_is_anonymous",
			remoteURL:   testSSHRemoteConstant,
			environment: map[string]string{testTokenEnvironmentConstant: testTokenValueConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider, providerError := credentials.NewProvider(credentials.Options{
				Method:            credentials.MethodToken,
				TokenEnv:          testTokenEnvironmentConstant,
				EnvironmentLookup: staticEnvironment(testCase.environment),
			})
			require.NoError(testInstance, providerError)

			authMethod, methodError := provider.Method(testCase.remoteURL)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, methodError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, methodError)
			if !testCase.expectAuth {
				require.Nil(testInstance, authMethod)
				return
			}
			basicAuth, isBasicAuth := authMethod.(*http.BasicAuth)
			require.True(testInstance, isBasicAuth)
			require.Equal(testInstance, testTokenValueConstant, basicAuth.Password)
		})
	}
}

func TestNoneProviderIsAnonymous(testInstance *testing.T) {
	authMethod, methodError := credentials.NoneProvider{}.Method(testSSHRemoteConstant)
	require.NoError(testInstance, methodError)
	require.Nil(testInstance, authMethod)
}
