// Package sigplane forwards process-lifecycle signals the way the master
// side of the bridge must.
//
// The reference implementation installs a Win32 console control handler
// alongside its ordinary signal handling: CTRL_C_EVENT is swallowed by the
// handler rather than left to terminate the process, CTRL_BREAK_EVENT is
// consumed and suppressed (no teardown), and CTRL_CLOSE_EVENT /
// CTRL_LOGOFF_EVENT / CTRL_SHUTDOWN_EVENT tear the slave down with SIGHUP.
// There is no Win32 console, and so no SetConsoleCtrlHandler, on this
// POSIX build target — the closest reachable analog for each case is:
//
//	CTRL_C_EVENT              -> SIGINT:  forwarded into the PTY as a
//	                             Ctrl+C byte rather than terminating the
//	                             master, matching "ignored by the handler,
//	                             handled by the slave instead"
//	CTRL_BREAK_EVENT           -> SIGQUIT: consumed and suppressed — the
//	                             master relays an interrupt to the slave's
//	                             process group but does not tear down or
//	                             re-raise on itself
//	CTRL_CLOSE/LOGOFF/SHUTDOWN -> SIGTERM: torn down onto the slave's
//	                             process group with SIGHUP, then
//	                             re-raised on self so the bridge exits
//	                             with the expected signal
//
// SIGHUP is ignored outright: a hangup on the master's own controlling
// terminal must not tear down a session that may still have a live slave.
package sigplane

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nick/ptybridge/internal/pipeio"
)

// Plane owns the signal subscription for one bridge session.
type Plane struct {
	PTY      *os.File
	SlavePID int

	sigc chan os.Signal
	stop chan struct{}
}

// New subscribes to the signals the master side must handle. The slave's
// own SIGHUP/SIGINT/SIGTERM/SIGQUIT dispositions are unaffected — those run
// in a separate process.
func New(pty *os.File, slavePID int) *Plane {
	p := &Plane{
		PTY:      pty,
		SlavePID: slavePID,
		sigc:     make(chan os.Signal, 4),
		stop:     make(chan struct{}),
	}
	signal.Notify(p.sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	return p
}

// Run services signals until Stop is called or a fatal SIGTERM causes the
// process to re-raise on itself (which this function does not return from,
// since re-raising a default-disposition signal kills the process).
func (p *Plane) Run() {
	for {
		select {
		case sig := <-p.sigc:
			p.handle(sig)
		case <-p.stop:
			return
		}
	}
}

// Stop releases the signal subscription without sending anything further.
func (p *Plane) Stop() {
	signal.Stop(p.sigc)
	close(p.stop)
}

func (p *Plane) handle(sig os.Signal) {
	switch sig {
	case syscall.SIGHUP:
		// Ignored: a hangup on the master's controlling terminal must not
		// tear down the bridge while the slave is still running.
	case syscall.SIGINT:
		_ = pipeio.WriteAll(p.PTY, []byte{0x03})
	case syscall.SIGQUIT:
		// Consumed and suppressed, like CTRL_BREAK_EVENT: relay to the
		// slave's process group without tearing the session down.
		_ = killGroup(p.SlavePID, syscall.SIGINT)
	case syscall.SIGTERM:
		_ = killGroup(p.SlavePID, syscall.SIGHUP)
		signal.Reset(sig)
		_ = syscall.Kill(os.Getpid(), sig.(syscall.Signal))
	}
}

// killGroup sends sig to the process group led by pid (the slave, which is
// set as its own session/group leader at launch).
func killGroup(pid int, sig syscall.Signal) error {
	return syscall.Kill(-pid, sig)
}
