package dotsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/credentials"
	"github.com/temirov/dotupdater/internal/dotsync"
	"github.com/temirov/dotupdater/internal/gitrepo"
)

const (
	testNetworkRemoteURL = "https://github.com/owner/dotfiles.git"
	testLocalRemoteURL   = "/srv/git/dotfiles"
)

func newTestSynchronizer(testInstance *testing.T, provider credentials.Provider, waiter dotsync.ConnectionWaiter) *dotsync.GitSynchronizer {
	testInstance.Helper()
	synchronizer, buildError := dotsync.NewGitSynchronizer(dotsync.SynchronizerDependencies{
		Credentials: provider,
		Waiter:      waiter,
		Logger:      zap.NewNop(),
	})
	require.NoError(testInstance, buildError)
	return synchronizer
}

func anonymousProvider() credentials.Provider {
	return credentials.ProviderFunc(func(string) (transport.AuthMethod, error) { return nil, nil })
}

func TestNewGitSynchronizerValidatesDependencies(testInstance *testing.T) {
	_, missingCredentialsError := dotsync.NewGitSynchronizer(dotsync.SynchronizerDependencies{Waiter: &stubWaiter{}})
	require.ErrorIs(testInstance, missingCredentialsError, dotsync.ErrCredentialProviderNotConfigured)

	_, missingWaiterError := dotsync.NewGitSynchronizer(dotsync.SynchronizerDependencies{Credentials: anonymousProvider()})
	require.ErrorIs(testInstance, missingWaiterError, dotsync.ErrConnectionWaiterNotConfigured)
}

func TestSynchronizeReportsStatus(testInstance *testing.T) {
	testCases := []struct {
		name           string
		relation       gitrepo.AncestryRelation
		remoteTip      string
		expectedStatus func() dotsync.SyncStatus
	}{
		{
			name:     "equal",
			relation: gitrepo.AncestryEqual,
			expectedStatus: func() dotsync.SyncStatus {
				return dotsync.RemoteUpToDate{Tip: testLocalTip}
			},
		},
		{
			name:     "local_ahead",
			relation: gitrepo.AncestrySecondIsAncestor,
			expectedStatus: func() dotsync.SyncStatus {
				return dotsync.RemoteUpToDate{Tip: testLocalTip}
			},
		},
		{
			name:     "remote_ahead",
			relation: gitrepo.AncestryFirstIsAncestor,
			expectedStatus: func() dotsync.SyncStatus {
				return dotsync.UpdatesAvailable{LocalTip: testLocalTip, RemoteTip: testRemoteTip, Relation: gitrepo.AncestryFirstIsAncestor}
			},
		},
		{
			name:     "diverged",
			relation: gitrepo.AncestryDiverged,
			expectedStatus: func() dotsync.SyncStatus {
				return dotsync.UpdatesAvailable{LocalTip: testLocalTip, RemoteTip: testRemoteTip, Relation: gitrepo.AncestryDiverged}
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := &stubRepository{
				path:       testFirstRepositoryPath,
				localTip:   testLocalTip,
				remoteTip:  testRemoteTip,
				relation:   testCase.relation,
				remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testLocalRemoteURL}},
			}
			synchronizer := newTestSynchronizer(testInstance, anonymousProvider(), &stubWaiter{})

			status, synchronizeError := synchronizer.Synchronize(context.Background(), repository, testBranchName)
			require.NoError(testInstance, synchronizeError)
			require.Equal(testInstance, testCase.expectedStatus(), status)
			require.Equal(testInstance, 1, repository.fetchCount)
		})
	}
}

func TestSynchronizeWaitsForNetworkOnlyForNetworkRemotes(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remoteURL     string
		expectedCalls int
	}{
		{name: "https_remote", remoteURL: testNetworkRemoteURL, expectedCalls: 1},
		{name: "scp_remote", remoteURL: "git@github.com:owner/dotfiles.git", expectedCalls: 1},
		{name: "local_remote", remoteURL: testLocalRemoteURL, expectedCalls: 0},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := &stubRepository{
				path:       testFirstRepositoryPath,
				localTip:   testLocalTip,
				remoteTip:  testLocalTip,
				remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testCase.remoteURL}},
			}
			waiter := &stubWaiter{}
			synchronizer := newTestSynchronizer(testInstance, anonymousProvider(), waiter)

			_, synchronizeError := synchronizer.Synchronize(context.Background(), repository, testBranchName)
			require.NoError(testInstance, synchronizeError)
			require.Equal(testInstance, testCase.expectedCalls, waiter.calls)
		})
	}
}

func TestSynchronizePassesCredentialsToFetch(testInstance *testing.T) {
	expectedAuth := &http.BasicAuth{Username: "x-access-token", Password: "secret"}
	var requestedURL string
	provider := credentials.ProviderFunc(func(remoteURL string) (transport.AuthMethod, error) {
		requestedURL = remoteURL
		return expectedAuth, nil
	})
	repository := &stubRepository{
		path:       testFirstRepositoryPath,
		localTip:   testLocalTip,
		remoteTip:  testLocalTip,
		remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testNetworkRemoteURL}},
	}

	_, synchronizeError := newTestSynchronizer(testInstance, provider, &stubWaiter{}).Synchronize(context.Background(), repository, testBranchName)
	require.NoError(testInstance, synchronizeError)
	require.Equal(testInstance, testNetworkRemoteURL, requestedURL)
	require.Same(testInstance, expectedAuth, repository.receivedAuth)
}

func TestSynchronizeClassifiesFailures(testInstance *testing.T) {
	waitAborted := errors.New("wait aborted")
	testCases := []struct {
		name          string
		repository    *stubRepository
		provider      credentials.Provider
		waiter        *stubWaiter
		expectedError error
		expectFetch   bool
	}{
		{
			name:          "missing_local_branch",
			repository:    &stubRepository{localTipError: gitrepo.ErrRefMissing},
			expectedError: gitrepo.ErrRefMissing,
		},
		{
			name:          "no_remote",
			repository:    &stubRepository{remoteError: gitrepo.ErrNoRemote},
			expectedError: gitrepo.ErrRemoteUnreachable,
		},
		{
			name:          "network_wait_aborted",
			repository:    &stubRepository{remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testNetworkRemoteURL}}},
			waiter:        &stubWaiter{waitError: waitAborted},
			expectedError: waitAborted,
		},
		{
			name:       "credentials_unavailable",
			repository: &stubRepository{remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testNetworkRemoteURL}}},
			provider: credentials.ProviderFunc(func(string) (transport.AuthMethod, error) {
				return nil, credentials.ErrCredentialsUnavailable
			}),
			expectedError: gitrepo.ErrRemoteUnreachable,
		},
		{
			name:          "fetch_failure",
			repository:    &stubRepository{remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testLocalRemoteURL}}, fetchError: gitrepo.ErrRemoteUnreachable},
			expectedError: gitrepo.ErrRemoteUnreachable,
			expectFetch:   true,
		},
		{
			name:          "ancestry_failure",
			repository:    &stubRepository{remoteInfo: gitrepo.RemoteInfo{Name: gitrepo.DefaultRemoteName, URLs: []string{testLocalRemoteURL}}, relationError: gitrepo.ErrRepositoryCorrupt},
			expectedError: gitrepo.ErrRepositoryCorrupt,
			expectFetch:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = anonymousProvider()
			}
			waiter := testCase.waiter
			if waiter == nil {
				waiter = &stubWaiter{}
			}
			testCase.repository.path = testFirstRepositoryPath
			testCase.repository.localTip = testLocalTip
			testCase.repository.remoteTip = testRemoteTip

			status, synchronizeError := newTestSynchronizer(testInstance, provider, waiter).Synchronize(context.Background(), testCase.repository, testBranchName)
			require.ErrorIs(testInstance, synchronizeError, testCase.expectedError)
			require.Nil(testInstance, status)
			require.Equal(testInstance, testCase.expectFetch, testCase.repository.fetchCount == 1)
		})
	}
}
