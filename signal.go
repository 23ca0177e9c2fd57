package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exitInterrupted is the status for a run abandoned by a second interrupt.
const exitInterrupted = 130

// shutdownContext wires SIGINT and SIGTERM to watchInterrupts.
func shutdownContext(parent context.Context, logger *slog.Logger) context.Context {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return watchInterrupts(parent, sigCh, func() { signal.Stop(sigCh) }, logger, os.Exit)
}

// watchInterrupts cancels the returned context on the first signal, which
// ends a walkthrough pause or stops the twin. A second signal calls exit
// without waiting for in-flight API calls. stop runs once the watcher is
// done with sigs.
func watchInterrupts(parent context.Context, sigs <-chan os.Signal, stop func(), logger *slog.Logger, exit func(int)) context.Context {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer stop()

		var sig os.Signal

		select {
		case sig = <-sigs:
		case <-ctx.Done():
			return
		}

		logger.Info("interrupted, finishing current call", slog.String("signal", sig.String()))
		cancel()

		select {
		case sig = <-sigs:
			logger.Warn("interrupted again, exiting", slog.String("signal", sig.String()))
			exit(exitInterrupted)
		case <-parent.Done():
		}
	}()

	return ctx
}
