package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// signalContext derives a context cancelled on SIGINT or SIGTERM, so that
// long-running commands unwind cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-signalChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signalChan)
	}()
	return ctx, cancel
}
