// Package supervisor drives one event-loop cycle at a time in the fixed
// order the rest of the bridge depends on: liveness, heartbeat, commands,
// output drain, input records, input inject. It is the only place that
// knows about per-phase error tolerance and the exhausted-gate between
// output and input.
package supervisor

import (
	"errors"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/nick/ptybridge/internal/command"
	"github.com/nick/ptybridge/internal/inputrecord"
	"github.com/nick/ptybridge/internal/ptypump"
)

// IOErrTolerance is how many consecutive failures a single I/O phase
// absorbs before the loop treats it as fatal.
const IOErrTolerance = 2

// HeartbeatCycles is how many consecutive idle cycles (no phase reporting
// activity) elapse before the heartbeat logs and resets.
const HeartbeatCycles = 500

// Backoff is the pause after a tolerated per-phase failure.
const Backoff = 10 * time.Millisecond

// ErrSlaveExited is returned by Run when the slave process has terminated —
// a normal, non-fatal way for the loop to end.
var ErrSlaveExited = errors.New("supervisor: slave process exited")

// Supervisor owns one session's event loop. Commands is nil in stand-alone
// mode (there is no command channel without a host). HostIn is nil unless
// ManagedMode is true and the host supplied a byte-stream input handle.
type Supervisor struct {
	SlavePID    int
	Commands    *command.Processor
	Records     *inputrecord.Processor
	Pump        *ptypump.Pump
	HostIn      *os.File
	ManagedMode bool
	Logger      *log.Logger

	stop chan struct{}

	heartbeat int
	outputErr int
	recordErr int
	inputErr  int
}

// Stop requests that Run return at the start of its next cycle.
func (s *Supervisor) Stop() {
	if s.stop == nil {
		s.stop = make(chan struct{})
	}
	close(s.stop)
}

// Run executes cycles until a fatal condition, the slave exits, or Stop is
// called. The slave's death returns ErrSlaveExited, a normal end rather than
// an error worth a non-zero exit code, and Stop makes it return nil; every
// other return is fatal.
func (s *Supervisor) Run() error {
	if s.stop == nil {
		s.stop = make(chan struct{})
	}
	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		if !s.slaveAlive() {
			return ErrSlaveExited
		}

		activity := false

		if s.Commands != nil {
			if _, err := s.Commands.Cycle(); err != nil {
				return err
			}
		}

		exhaustedOut, err := s.Pump.DrainOutput()
		if err != nil {
			if !s.tolerate(&s.outputErr) {
				return err
			}
			continue
		}
		s.outputErr = 0
		if !exhaustedOut {
			activity = true
		}

		exhaustedRec, ok, err := s.Records.Cycle()
		if !ok {
			return err
		}
		if err != nil {
			if !s.tolerate(&s.recordErr) {
				return err
			}
			continue
		}
		s.recordErr = 0
		if !exhaustedRec {
			activity = true
		}

		if s.ManagedMode && s.HostIn != nil && exhaustedOut && exhaustedRec {
			if err := s.Pump.InjectInput(s.HostIn); err != nil {
				if !s.tolerate(&s.inputErr) {
					return err
				}
				continue
			}
			s.inputErr = 0
		}

		s.updateHeartbeat(activity)
	}
}

// tolerate increments *counter and reports whether the failure should be
// absorbed (true, with a backoff sleep already applied) or is now fatal
// (false).
func (s *Supervisor) tolerate(counter *int) bool {
	*counter++
	if *counter > IOErrTolerance {
		return false
	}
	time.Sleep(Backoff)
	return true
}

func (s *Supervisor) updateHeartbeat(activity bool) {
	if activity {
		s.heartbeat = 0
		return
	}
	s.heartbeat++
	if s.heartbeat >= HeartbeatCycles {
		if s.Logger != nil {
			s.Logger.Printf("supervisor: idle for %d cycles", s.heartbeat)
		}
		s.heartbeat = 0
	}
}

func (s *Supervisor) slaveAlive() bool {
	if err := syscall.Kill(s.SlavePID, 0); err != nil {
		return false
	}
	var ws syscall.WaitStatus
	wpid, err := syscall.Wait4(s.SlavePID, &ws, syscall.WNOHANG, nil)
	if err != nil {
		return false
	}
	return wpid != s.SlavePID
}
