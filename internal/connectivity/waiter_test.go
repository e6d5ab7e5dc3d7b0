package connectivity_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/dotupdater/internal/connectivity"
)

const (
	testRetryIntervalConstant = 5 * time.Millisecond
	testMaxWaitConstant       = 50 * time.Millisecond
)

func TestNewWaiterRequiresProber(testInstance *testing.T) {
	waiter, creationError := connectivity.NewWaiter(nil, connectivity.Options{})
	require.ErrorIs(testInstance, creationError, connectivity.ErrProberNotConfigured)
	require.Nil(testInstance, waiter)
}

func TestWaitForConnectionRetriesUntilReachable(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	var attempts atomic.Int32
	prober := connectivity.ProberFunc(func(context.Context) bool {
		return attempts.Add(1) >= 3
	})

	waiter, creationError := connectivity.NewWaiter(prober, connectivity.Options{
		RetryInterval: testRetryIntervalConstant,
		Logger:        zap.New(observerCore),
	})
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, waiter.WaitForConnection(context.Background()))
	require.Equal(testInstance, int32(3), attempts.Load())
	require.Len(testInstance, observerLogs.FilterMessage("network unreachable, retrying").All(), 2)
	require.Len(testInstance, observerLogs.FilterMessage("network reachable").All(), 1)
}

func TestWaitForConnectionStopsAtDeadline(testInstance *testing.T) {
	testCases := []struct {
		name           string
		maxWait        time.Duration
		contextBuilder func() (context.Context, context.CancelFunc)
	}{
		{
			name:    "max_wait",
			maxWait: testMaxWaitConstant,
			contextBuilder: func() (context.Context, context.CancelFunc) {
				return context.WithCancel(context.Background())
			},
		},
		{
			name: "cancelled_context",
			contextBuilder: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), testMaxWaitConstant)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			waiter, creationError := connectivity.NewWaiter(
				connectivity.ProberFunc(func(context.Context) bool { return false }),
				connectivity.Options{RetryInterval: testRetryIntervalConstant, MaxWait: testCase.maxWait},
			)
			require.NoError(testInstance, creationError)

			executionContext, cancel := testCase.contextBuilder()
			defer cancel()

			waitError := waiter.WaitForConnection(executionContext)
			require.ErrorIs(testInstance, waitError, connectivity.ErrWaitAborted)
			require.ErrorIs(testInstance, waitError, context.DeadlineExceeded)
		})
	}
}

func TestTCPProberReachesListener(testInstance *testing.T) {
	listener, listenError := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(testInstance, listenError)
	defer listener.Close()

	go func() {
		for {
			connection, acceptError := listener.Accept()
			if acceptError != nil {
				return
			}
			_ = connection.Close()
		}
	}()

	reachableProber := connectivity.TCPProber{Address: listener.Addr().String(), Timeout: time.Second}
	require.True(testInstance, reachableProber.IsReachable(context.Background()))

	closedListener, closedListenError := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(testInstance, closedListenError)
	closedAddress := closedListener.Addr().String()
	require.NoError(testInstance, closedListener.Close())

	unreachableProber := connectivity.TCPProber{Address: closedAddress, Timeout: time.Second}
	require.False(testInstance, unreachableProber.IsReachable(context.Background()))
}

func TestNewTCPWaiterWithoutAddressNeverBlocks(testInstance *testing.T) {
	waiter, creationError := connectivity.NewTCPWaiter("", 0, connectivity.Options{})
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(testInstance, waiter.WaitForConnection(cancelledContext))
}
