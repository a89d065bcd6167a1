// Package inputrecord consumes a stream of fixed-size input records —
// sourced from a managed-mode pipe or synthesized by the stand-alone tty
// adapter — and translates each into an action on the PTY: a resize ioctl,
// bytes written to the shell, or a silent skip.
package inputrecord

import (
	"log"
	"os"

	"golang.org/x/sys/unix"

	"github.com/nick/ptybridge/internal/pipeio"
	"github.com/nick/ptybridge/internal/record"
)

// MaxBatch is the largest number of records read and dispatched in a single
// cycle.
const MaxBatch = 100

// Source yields a batch of records for one cycle. Managed mode and
// stand-alone mode each implement this with a different underlying
// mechanism but share this one contract, mirroring the single write_all
// sink abstraction used for output.
type Source interface {
	// ReadBatch returns up to max records available right now. An empty,
	// nil-error result means nothing is pending (not an error).
	ReadBatch(max int) ([]record.Record, error)
}

// Geometry reports authoritative terminal geometry, consulted only in
// stand-alone mode to override a WINDOW_BUFFER_SIZE record's payload with
// the real console screen buffer dimensions.
type Geometry interface {
	Size() (cols, rows int16, err error)
}

// NoSource is used in managed mode when the host supplied no H_in_rec
// handle: records are disabled entirely and every batch is empty.
type NoSource struct{}

// ReadBatch implements Source.
func (NoSource) ReadBatch(max int) ([]record.Record, error) { return nil, nil }

// PipeSource reads records from a managed-mode H_in_rec pipe: as many whole
// 20-byte records as try_read_exact yields atomically, stopping at the
// first non-atomic frame boundary.
type PipeSource struct {
	H *os.File
}

// ReadBatch implements Source.
func (s *PipeSource) ReadBatch(max int) ([]record.Record, error) {
	batch := make([]record.Record, 0, max)
	for len(batch) < max {
		buf, err := pipeio.TryReadExact(s.H, record.Size)
		if err != nil {
			return batch, err
		}
		if buf == nil {
			break
		}
		batch = append(batch, record.Decode(buf))
	}
	return batch, nil
}

// WinSize mirrors the session's current terminal dimensions, updated as a
// side effect of WINDOW_BUFFER_SIZE dispatch.
type WinSize struct {
	Cols int16
	Rows int16
}

// Processor dispatches one batch of records per cycle.
type Processor struct {
	PTY        *os.File
	Source     Source
	StandAlone bool
	Geometry   Geometry // only consulted when StandAlone is true
	WinSize    *WinSize
	Logger     *log.Logger
}

// Cycle reads and dispatches one batch. exhausted reports whether fewer than
// MaxBatch records were available (i.e. the source has nothing more queued
// right now) — the input-inject phase's backpressure gate depends on this.
// ok is false only when ReadBatch itself fails (the source pipe is gone);
// that is fatal the same way the command channel's read failure is. A
// dispatch failure on an individual record — resize ioctl or key write —
// is reported through err with ok still true, so the caller routes it
// through its own per-phase tolerance counter like every other phase
// instead of treating one bad record as fatal to the whole cycle.
func (p *Processor) Cycle() (exhausted bool, ok bool, err error) {
	batch, err := p.Source.ReadBatch(MaxBatch)
	if err != nil {
		return true, false, err
	}
	exhausted = len(batch) < MaxBatch

	for _, rec := range batch {
		switch rec.EventType {
		case record.WindowBufferSizeEvent:
			if err := p.dispatchResize(rec); err != nil {
				return exhausted, true, err
			}
		case record.KeyEvent:
			if err := p.dispatchKey(rec); err != nil {
				return exhausted, true, err
			}
		default:
			if p.Logger != nil {
				p.Logger.Printf("inputrecord: ignoring event type %d", rec.EventType)
			}
		}
	}
	return exhausted, true, nil
}

func (p *Processor) dispatchResize(rec record.Record) error {
	ws := rec.DecodeWindowSize()
	cols, rows := ws.X, ws.Y

	if p.StandAlone && p.Geometry != nil {
		if c, r, err := p.Geometry.Size(); err == nil {
			cols, rows = c, r
		}
	}

	if p.WinSize != nil {
		p.WinSize.Cols = cols
		p.WinSize.Rows = rows
	}

	return unix.IoctlSetWinsize(int(p.PTY.Fd()), unix.TIOCSWINSZ, &unix.Winsize{
		Col: uint16(cols),
		Row: uint16(rows),
	})
}

func (p *Processor) dispatchKey(rec record.Record) error {
	k := rec.DecodeKey()
	if k.KeyDown == 0 {
		return nil
	}
	if k.IsCtrlSpace() {
		return pipeio.WriteAll(p.PTY, []byte{0x00})
	}
	if k.UnicodeChar == 0 {
		return nil
	}
	return pipeio.WriteAll(p.PTY, utf16UnitToUTF8(k.UnicodeChar))
}

// utf16UnitToUTF8 transcodes a single UTF-16 code unit to its UTF-8 form.
// Surrogate pairs are not assembled across records: a lone surrogate unit
// transcodes to its direct (invalid, but deterministic) UTF-8 form rather
// than being buffered waiting for a partner that may never arrive.
func utf16UnitToUTF8(u uint16) []byte {
	r := rune(u)
	switch {
	case r < 0x80:
		return []byte{byte(r)}
	case r < 0x800:
		return []byte{
			byte(0xC0 | (r >> 6)),
			byte(0x80 | (r & 0x3F)),
		}
	default:
		return []byte{
			byte(0xE0 | (r >> 12)),
			byte(0x80 | ((r >> 6) & 0x3F)),
			byte(0x80 | (r & 0x3F)),
		}
	}
}
