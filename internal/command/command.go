// Package command implements the out-of-band control channel: a
// single-request-per-cycle, synchronous request/response state machine over
// a paired (cin, cout) pipe used by the host to query or modify terminal
// state.
package command

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/nick/ptybridge/internal/pipeio"
	"github.com/nick/ptybridge/internal/termblob"
)

// Opcodes recognized on the command channel.
const (
	Ping       byte = 1
	GetWinsize byte = 2
	SetWinsize byte = 3
	GetTermios byte = 4
	SetTermios byte = 5
)

// Status bytes prefixing every response.
const (
	StatusSuccess byte = 0
	StatusFailure byte = 1
)

// Processor services one command cycle at a time over a fixed PTY master fd.
type Processor struct {
	Cin  *os.File
	Cout *os.File
	PTYFd int
}

// Cycle attempts to service exactly one request. If no opcode byte is
// currently queued on Cin, it returns (true, nil) — nothing to do this
// cycle. A non-nil error means the command channel itself is desynchronized
// (a broken pipe or corrupt framing) and is fatal to the supervisor; ok is
// false in that case. Any other failure (a syscall failing inside a request)
// is reported to the host via the 01 status byte and Cycle still returns
// (true, nil) — the control plane itself stayed healthy.
func (p *Processor) Cycle() (ok bool, err error) {
	opcode, err := pipeio.TryReadExact(p.Cin, 1)
	if err != nil {
		return false, err
	}
	if opcode == nil {
		return true, nil
	}

	switch opcode[0] {
	case Ping:
		err = p.respondSuccess(nil)
	case GetWinsize:
		err = p.handleGetWinsize()
	case SetWinsize:
		err = p.handleSetWinsize()
	case GetTermios:
		err = p.handleGetTermios()
	case SetTermios:
		err = p.handleSetTermios()
	default:
		err = p.respondFailure("unknown opcode")
	}
	return err == nil, err
}

func (p *Processor) handleGetWinsize() error {
	ws, err := unix.IoctlGetWinsize(p.PTYFd, unix.TIOCGWINSZ)
	if err != nil {
		return p.respondFailure(err.Error())
	}
	payload := make([]byte, 4)
	payload[0] = byte(ws.Col)
	payload[1] = byte(ws.Col >> 8)
	payload[2] = byte(ws.Row)
	payload[3] = byte(ws.Row >> 8)
	return p.respondSuccess(payload)
}

func (p *Processor) handleSetWinsize() error {
	cols, err := pipeio.ReadUint16(p.Cin)
	if err != nil {
		return err
	}
	rows, err := pipeio.ReadUint16(p.Cin)
	if err != nil {
		return err
	}
	ws := &unix.Winsize{Col: cols, Row: rows}
	if err := unix.IoctlSetWinsize(p.PTYFd, unix.TIOCSWINSZ, ws); err != nil {
		return p.respondFailure(err.Error())
	}
	return p.respondSuccess(nil)
}

func (p *Processor) handleGetTermios() error {
	t, err := unix.IoctlGetTermios(p.PTYFd, ioctlReadTermios)
	if err != nil {
		return p.respondFailure(err.Error())
	}
	return p.respondSuccess(termblob.Encode(t))
}

func (p *Processor) handleSetTermios() error {
	blob, err := pipeio.ReadExact(p.Cin, termblob.Size)
	if err != nil {
		return err
	}
	t, err := termblob.Decode(blob)
	if err != nil {
		return p.respondFailure(err.Error())
	}
	// Apply-now semantics: no drain, no flush.
	if err := unix.IoctlSetTermios(p.PTYFd, ioctlWriteTermios, t); err != nil {
		return p.respondFailure(err.Error())
	}
	return p.respondSuccess(nil)
}

func (p *Processor) respondSuccess(payload []byte) error {
	if err := pipeio.WriteAll(p.Cout, []byte{StatusSuccess}); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return pipeio.WriteAll(p.Cout, payload)
}

func (p *Processor) respondFailure(msg string) error {
	if err := pipeio.WriteAll(p.Cout, []byte{StatusFailure}); err != nil {
		return err
	}
	return pipeio.WriteAll(p.Cout, []byte(msg))
}
