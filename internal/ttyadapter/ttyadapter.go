// Package ttyadapter is the stand-alone-mode replacement for the Windows
// console adapter: it is used only when the host supplies no pipe handles
// and the bridge is driven directly by its own attached terminal. Windows
// ReadConsoleInputW events become synthetic records decoded from stdin
// and SIGWINCH; WriteConsoleA becomes a plain write to stdout.
package ttyadapter

import (
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/nick/ptybridge/internal/pipeio"
	"github.com/nick/ptybridge/internal/record"
)

// Adapter reads input records from stdin/SIGWINCH and writes output bytes to
// stdout. It implements both inputrecord.Source (ReadBatch) and the output
// sink contract (Write) so ptypump can treat it interchangeably with a
// managed-mode pipe pair.
type Adapter struct {
	In  *os.File
	Out *os.File

	winch chan os.Signal

	// partial holds the tail of a read that ended mid-UTF-8-sequence, so
	// the bytes can be prefixed onto the next read instead of decoding to
	// utf8.RuneError.
	partial []byte
}

// New installs the SIGWINCH handler and returns a ready Adapter. Stop must
// be called to release the signal channel.
func New(in, out *os.File) *Adapter {
	a := &Adapter{In: in, Out: out, winch: make(chan os.Signal, 1)}
	signal.Notify(a.winch, syscall.SIGWINCH)
	return a
}

// Stop releases the SIGWINCH subscription.
func (a *Adapter) Stop() {
	signal.Stop(a.winch)
}

// ReadBatch implements inputrecord.Source: any queued SIGWINCH notifications
// become resize records first (geometry is re-resolved at dispatch time via
// Size), then stdin bytes are decoded as UTF-8 and become one synthetic KEY
// record per rune.
func (a *Adapter) ReadBatch(max int) ([]record.Record, error) {
	batch := make([]record.Record, 0, max)

	for len(batch) < max {
		select {
		case <-a.winch:
			batch = append(batch, record.EncodeWindowSize(record.WindowSize{}))
		default:
			goto drainedResize
		}
	}
drainedResize:

	if len(batch) >= max {
		return batch, nil
	}

	avail, err := pipeio.Available(a.In)
	if err != nil {
		return batch, err
	}
	if avail == 0 {
		return batch, nil
	}
	room := max - len(batch)
	if avail > room {
		avail = room
	}
	buf := make([]byte, avail)
	n, err := a.In.Read(buf)
	if err != nil {
		return batch, err
	}

	data := buf[:n]
	if len(a.partial) > 0 {
		data = append(a.partial, data...)
		a.partial = nil
	}

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(data) {
				// Truncated multi-byte sequence at the end of this read:
				// hold it for the next ReadBatch instead of emitting a
				// garbled KEY record.
				a.partial = append([]byte(nil), data...)
				break
			}
			// A genuinely invalid byte, not just a short read: emit it as
			// a KEY record whose UnicodeChar is the byte's value rather
			// than drop it.
			r = rune(data[0])
			size = 1
		}
		k := record.Key{KeyDown: 1, UnicodeChar: uint16(r), RepeatCount: 1}
		batch = append(batch, record.EncodeKey(k))
		data = data[size:]
	}
	return batch, nil
}

// Write implements the output sink contract by forwarding bytes to stdout.
func (a *Adapter) Write(buf []byte) error {
	return pipeio.WriteAll(a.Out, buf)
}

// Size implements inputrecord.Geometry using TIOCGWINSZ on the controlling
// terminal. The reference implementation distinguishes the console's
// visible window from its scrollback screen buffer (rows derive from the
// window rectangle, cols from the buffer width) — a distinction POSIX
// termios winsize has no equivalent for, so both dimensions here come from
// the same ioctl result.
func (a *Adapter) Size() (cols, rows int16, err error) {
	ws, err := unix.IoctlGetWinsize(int(a.In.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int16(ws.Col), int16(ws.Row), nil
}
