// Package ptypump implements the two core I/O phases of one event-loop
// cycle: draining bytes out of the PTY master toward the host, and
// injecting bytes from the host into the PTY. Both halves retain partial
// progress across calls so a transient failure never drops data.
package ptypump

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nick/ptybridge/internal/pipeio"
)

// OutputCapacity and InputCapacity are the fixed buffer sizes the reference
// implementation used; a read never pulls more than this per cycle.
const (
	OutputCapacity = 4096
	InputCapacity  = 4096
)

// ReadLoopTimeout is the multiplexing wait on the PTY master fd per cycle.
const ReadLoopTimeout = 20 * time.Millisecond

// Sink is the output half's destination: a managed-mode host pipe, or the
// stand-alone console adapter. Both share this one write_all contract.
type Sink interface {
	Write(buf []byte) error
}

// FileSink adapts a plain *os.File (e.g. H_out) to the Sink contract.
type FileSink struct{ F *os.File }

// Write implements Sink.
func (s FileSink) Write(buf []byte) error {
	return pipeio.WriteAll(s.F, buf)
}

// Pump drains the PTY master toward Sink and injects host bytes into the
// PTY. The output and input buffers are retained fields, not locals, so a
// write failure leaves partial progress in place for the next cycle.
type Pump struct {
	PTY  *os.File
	Sink Sink

	outputBuf []byte // residual bytes read from PTY, pending forward
	inputBuf  []byte // residual bytes read from host, pending PTY write
	inputIdx  int
}

// DrainOutput implements §4.4(a). exhausted reports whether the PTY had
// fewer than OutputCapacity bytes ready (or none at all) — callers use this
// to gate the input-inject phase.
func (p *Pump) DrainOutput() (exhausted bool, err error) {
	hadLeftover := len(p.outputBuf) > 0
	exhausted = true

	for {
		if len(p.outputBuf) == 0 {
			readable, werr := waitReadable(p.PTY, ReadLoopTimeout)
			if werr != nil {
				return true, werr
			}
			if !readable {
				return true, nil
			}
			buf := make([]byte, OutputCapacity)
			n, rerr := p.PTY.Read(buf)
			if rerr != nil {
				return true, rerr
			}
			p.outputBuf = buf[:n]
			exhausted = n < OutputCapacity
		}

		if werr := p.Sink.Write(p.outputBuf); werr != nil {
			// Leave outputBuf intact: next cycle skips straight to this
			// write instead of issuing a fresh PTY read.
			return exhausted, werr
		}
		p.outputBuf = nil

		if !hadLeftover {
			return exhausted, nil
		}
		hadLeftover = false
	}
}

// InjectInput implements §4.4(b). Callers must only invoke this when the
// output and input-record phases both reported exhausted — the backpressure
// rule that keeps the host from burying the loop in unconsumed keystrokes.
func (p *Pump) InjectInput(in *os.File) error {
	if len(p.inputBuf) == 0 {
		buf, err := pipeio.TryRead(in, InputCapacity)
		if err != nil {
			return err
		}
		if buf == nil {
			return nil
		}
		p.inputBuf = buf
		p.inputIdx = 0
	}

	n, err := p.PTY.Write(p.inputBuf[p.inputIdx:])
	if err != nil {
		return err
	}
	p.inputIdx += n
	if p.inputIdx == len(p.inputBuf) {
		p.inputBuf = nil
		p.inputIdx = 0
	}
	return nil
}

func waitReadable(f *os.File, d time.Duration) (bool, error) {
	fd := int(f.Fd())
	var set unix.FdSet
	fdSet(&set, fd)
	tv := unix.NsecToTimeval(d.Nanoseconds())

	n, err := unix.Select(fd+1, &set, nil, nil, &tv)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}
