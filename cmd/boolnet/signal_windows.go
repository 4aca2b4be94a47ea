//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// signalContext returns a context canceled on Ctrl+C.
// On Windows, only os.Interrupt is supported; SIGTERM does not exist.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
