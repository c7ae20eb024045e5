package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prjemian/flyscan/logger"
)

func TestRunner_Run(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, logger.GetLogger())

	done := make(chan error, 1)
	err := runner.Run("action", func() error {
		return nil
	}, func(err error) {
		done <- err
	})
	require.NoError(err)

	select {
	case actErr := <-done:
		require.NoError(actErr)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for action completion")
	}

	runner.Stop()
	runner.Wait()
	require.Equal(0, runner.TaskCount())
}

func TestRunner_RunError(t *testing.T) {
	require := require.New(t)

	runner := NewRunner(context.Background(), logger.GetLogger())

	actionErr := errors.New("action failed")
	done := make(chan error, 1)

	err := runner.Run("failing", func() error {
		return actionErr
	}, func(err error) {
		done <- err
	})
	require.NoError(err)

	select {
	case actErr := <-done:
		require.ErrorIs(actErr, actionErr)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for action completion")
	}
}

func TestRunner_RunPanic(t *testing.T) {
	require := require.New(t)

	runner := NewRunner(context.Background(), logger.GetLogger())

	done := make(chan error, 1)
	err := runner.Run("panicking", func() error {
		panic("boom")
	}, func(err error) {
		done <- err
	})
	require.NoError(err)

	select {
	case actErr := <-done:
		require.Error(actErr)
		require.Contains(actErr.Error(), "boom")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for action completion")
	}
}

func TestRunner_RunAfterStop(t *testing.T) {
	require := require.New(t)

	runner := NewRunner(context.Background(), logger.GetLogger())
	runner.Stop()
	runner.Wait()

	// Wait rearms the runner, so a new task can start again
	done := make(chan error, 1)
	err := runner.Run("afterStop", func() error { return nil }, func(err error) { done <- err })
	require.NoError(err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for action completion")
	}
}

func TestRunner_StartLoop(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, logger.GetLogger())

	var count atomic.Int32
	err := runner.StartLoop("loop", func() bool {
		return count.Add(1) < 5
	})
	require.NoError(err)

	require.Eventually(func() bool {
		return count.Load() == 5 && runner.TaskCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRunner_StartInterval(t *testing.T) {
	require := require.New(t)

	runner := NewRunner(context.Background(), logger.GetLogger())

	var count atomic.Int32
	ticker, err := runner.StartInterval("interval", func() bool {
		count.Add(1)
		return true
	}, 5*time.Millisecond, true)
	require.NoError(err)
	require.NotNil(ticker)

	// duplicate name is rejected
	_, err = runner.StartInterval("interval", func() bool { return true }, 5*time.Millisecond, false)
	require.Error(err)

	require.Eventually(func() bool {
		return count.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(runner.StopInterval("interval"))
	require.Error(runner.StopInterval("interval"))

	runner.Stop()
	runner.Wait()
}

func TestRunner_StartIntervalInvalid(t *testing.T) {
	require := require.New(t)

	runner := NewRunner(context.Background(), logger.GetLogger())

	_, err := runner.StartInterval("bad", func() bool { return true }, 0, false)
	require.Error(err)
}
