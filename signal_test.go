package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatchInterrupts_ParentCancel(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	ctx := watchInterrupts(parent, make(chan os.Signal), func() { close(stopped) }, discardLogger(), func(int) {
		t.Error("exit called without a signal")
	})

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context outlived its parent")
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("signal channel never released")
	}
}

func TestWatchInterrupts_FirstCancelsSecondExits(t *testing.T) {
	t.Parallel()

	sigs := make(chan os.Signal)
	exited := make(chan int, 1)

	ctx := watchInterrupts(context.Background(), sigs, func() {}, discardLogger(), func(code int) {
		exited <- code
	})

	sigs <- syscall.SIGINT

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first signal did not cancel")
	}

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Empty(t, exited, "one signal must not exit")

	sigs <- syscall.SIGTERM

	select {
	case code := <-exited:
		assert.Equal(t, exitInterrupted, code)
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not exit")
	}
}
