// Package handshake implements the two-way SIGUSR1 rendezvous that lets the
// master and slave agree the PTY is ready before the slave execs the real
// shell.
package handshake

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Timeout bounds how long either side waits for the other's signal.
const Timeout = 3 * time.Second

// AckAttempts and AckSpacing bound the slave's best-effort acknowledgment
// back to the master: the kill can race the master's own process-table
// bookkeeping right after fork, so it is retried a few times rather than
// attempted once.
const (
	AckAttempts = 5
	AckSpacing  = 20 * time.Millisecond
)

// ErrTimeout is returned when the peer's signal does not arrive within
// Timeout.
var ErrTimeout = errors.New("handshake: timed out waiting for SIGUSR1")

// Await subscribes to SIGUSR1 at once and returns wait, which blocks until a
// SIGUSR1 arrives or Timeout elapses, and cancel, which drops the
// subscription. Callers must install the subscription before the peer might
// send, which is why subscribing and waiting are split — call Await before
// sending/forking, and wait afterwards.
func Await() (wait func() error, cancel func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	wait = func() error {
		select {
		case <-ch:
			return nil
		case <-time.After(Timeout):
			return ErrTimeout
		}
	}
	cancel = func() { signal.Stop(ch) }
	return wait, cancel
}

// Signal sends SIGUSR1 to pid once.
func Signal(pid int) error {
	return syscall.Kill(pid, syscall.SIGUSR1)
}

// Acknowledge sends SIGUSR1 to pid, retrying up to AckAttempts times spaced
// AckSpacing apart if the kill itself fails (e.g. the target hasn't fully
// appeared in the process table yet).
func Acknowledge(pid int) error {
	var lastErr error
	for i := 0; i < AckAttempts; i++ {
		if err := Signal(pid); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < AckAttempts-1 {
			time.Sleep(AckSpacing)
		}
	}
	return lastErr
}
