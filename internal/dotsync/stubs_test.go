package dotsync_test

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/dotupdater/internal/dotsync"
	"github.com/temirov/dotupdater/internal/gitrepo"
	"github.com/temirov/dotupdater/internal/logsink"
)

var (
	testLocalTip   = plumbing.NewHash("1111111111111111111111111111111111111111")
	testRemoteTip  = plumbing.NewHash("2222222222222222222222222222222222222222")
	testSiblingTip = plumbing.NewHash("3333333333333333333333333333333333333333")
	testStartTime  = time.Date(2024, time.May, 4, 8, 0, 0, 0, time.UTC)
)

type recordedEvent struct {
	Timestamp time.Time
	Severity  logsink.Severity
	Message   string
	Fields    map[string]any
}

type recordingSink struct {
	mutex  sync.Mutex
	events []recordedEvent
}

func (sink *recordingSink) Record(timestamp time.Time, severity logsink.Severity, message string, fields ...zap.Field) {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.events = append(sink.events, recordedEvent{Timestamp: timestamp, Severity: severity, Message: message, Fields: encoder.Fields})
}

func (sink *recordingSink) eventsWithMessage(message string) []recordedEvent {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	matching := make([]recordedEvent, 0, len(sink.events))
	for _, event := range sink.events {
		if event.Message == message {
			matching = append(matching, event)
		}
	}
	return matching
}

func (sink *recordingSink) terminalEvents() []recordedEvent {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	terminal := make([]recordedEvent, 0, len(sink.events))
	for _, event := range sink.events {
		if _, hasOutcome := event.Fields["outcome"]; hasOutcome {
			terminal = append(terminal, event)
		}
	}
	return terminal
}

type steppingClock struct {
	current time.Time
}

func (clock *steppingClock) Now() time.Time {
	clock.current = clock.current.Add(time.Second)
	return clock.current
}

type stubFileSystem struct {
	missingPaths map[string]bool
	statErrors   map[string]error
}

func (fileSystem stubFileSystem) Stat(path string) (fs.FileInfo, error) {
	if fileSystem.missingPaths[path] {
		return nil, fs.ErrNotExist
	}
	if statError, exists := fileSystem.statErrors[path]; exists {
		return nil, statError
	}
	return nil, nil
}

func (stubFileSystem) Abs(path string) (string, error) { return path, nil }

func (stubFileSystem) MkdirAll(string, fs.FileMode) error { return nil }

func (stubFileSystem) ReadFile(string) ([]byte, error) { return nil, fs.ErrNotExist }

func (stubFileSystem) WriteFile(string, []byte, fs.FileMode) error { return nil }

type stubRepository struct {
	path             string
	localTip         plumbing.Hash
	localTipError    error
	remoteTip        plumbing.Hash
	remoteInfo       gitrepo.RemoteInfo
	remoteError      error
	fetchError       error
	relation         gitrepo.AncestryRelation
	relationError    error
	swapErrors       []error
	checkedOut       string
	checkoutErrors   []error
	fetchCount       int
	swapCalls        [][2]plumbing.Hash
	checkoutCalls    []string
	receivedAuth     transport.AuthMethod
	fetchInterceptor func(context.Context)
}

func (repository *stubRepository) Path() string { return repository.path }

func (repository *stubRepository) BranchTip(string) (plumbing.Hash, error) {
	return repository.localTip, repository.localTipError
}

func (repository *stubRepository) RemoteTrackingTip(string, string) (plumbing.Hash, error) {
	return repository.remoteTip, nil
}

func (repository *stubRepository) Remote(string) (gitrepo.RemoteInfo, error) {
	return repository.remoteInfo, repository.remoteError
}

func (repository *stubRepository) FetchBranch(executionContext context.Context, _ string, _ string, authMethod transport.AuthMethod) error {
	repository.fetchCount++
	repository.receivedAuth = authMethod
	if repository.fetchInterceptor != nil {
		repository.fetchInterceptor(executionContext)
	}
	return repository.fetchError
}

func (repository *stubRepository) AncestryRelation(plumbing.Hash, plumbing.Hash) (gitrepo.AncestryRelation, error) {
	return repository.relation, repository.relationError
}

func (repository *stubRepository) CompareAndSwapBranch(_ string, expected plumbing.Hash, target plumbing.Hash) error {
	repository.swapCalls = append(repository.swapCalls, [2]plumbing.Hash{expected, target})
	if len(repository.swapErrors) == 0 {
		return nil
	}
	swapError := repository.swapErrors[0]
	repository.swapErrors = repository.swapErrors[1:]
	return swapError
}

func (repository *stubRepository) CheckedOutBranch() (string, bool) {
	return repository.checkedOut, len(repository.checkedOut) > 0
}

func (repository *stubRepository) ForceCheckout(branch string) error {
	repository.checkoutCalls = append(repository.checkoutCalls, branch)
	if len(repository.checkoutErrors) == 0 {
		return nil
	}
	checkoutError := repository.checkoutErrors[0]
	repository.checkoutErrors = repository.checkoutErrors[1:]
	return checkoutError
}

type stubOpener struct {
	repositories map[string]*stubRepository
	openErrors   map[string]error
	openedPaths  []string
}

func (opener *stubOpener) Open(path string) (dotsync.Repository, error) {
	opener.openedPaths = append(opener.openedPaths, path)
	if openError, exists := opener.openErrors[path]; exists {
		return nil, openError
	}
	repository, exists := opener.repositories[path]
	if !exists {
		return nil, gitrepo.ErrNotARepository
	}
	return repository, nil
}

type stubSynchronizer struct {
	statuses       map[string]dotsync.SyncStatus
	errors         map[string]error
	synchronized   []string
	onSynchronized func(path string)
}

func (synchronizer *stubSynchronizer) Synchronize(_ context.Context, repository dotsync.Repository, _ string) (dotsync.SyncStatus, error) {
	path := repository.Path()
	synchronizer.synchronized = append(synchronizer.synchronized, path)
	if synchronizer.onSynchronized != nil {
		synchronizer.onSynchronized(path)
	}
	if synchronizeError, exists := synchronizer.errors[path]; exists {
		return nil, synchronizeError
	}
	return synchronizer.statuses[path], nil
}

type stubApplier struct {
	applyError        error
	worktreeRefreshed bool
	appliedVerdicts   []dotsync.VerdictFastForward
}

func (applier *stubApplier) Apply(_ context.Context, _ dotsync.Repository, _ string, verdict dotsync.VerdictFastForward) (dotsync.Updated, error) {
	applier.appliedVerdicts = append(applier.appliedVerdicts, verdict)
	if applier.applyError != nil {
		return dotsync.Updated{}, applier.applyError
	}
	return dotsync.Updated{From: verdict.From, To: verdict.Target, WorktreeRefreshed: applier.worktreeRefreshed}, nil
}

type stubHookRunner struct {
	hookError error
	invoked   []dotsync.RepositoryTarget
}

func (runner *stubHookRunner) RunHook(_ context.Context, target dotsync.RepositoryTarget, _ dotsync.Updated) error {
	runner.invoked = append(runner.invoked, target)
	return runner.hookError
}

type stubWaiter struct {
	waitError error
	calls     int
}

func (waiter *stubWaiter) WaitForConnection(context.Context) error {
	waiter.calls++
	return waiter.waitError
}
