// Package bridge defines the bridge session's resolved configuration: which
// mode it runs in, the handles and geometry it was given, and the
// validation that decides whether those add up to a runnable session.
package bridge

import (
	"errors"
	"os"

	"github.com/nick/ptybridge/internal/ptylog"
)

// Mode is fixed once at startup from whether --out was supplied.
type Mode int

const (
	// StandAlone: no host pipe handles; driven by the attached console.
	StandAlone Mode = iota
	// Managed: host supplies at least --out plus --ins and/or --inr.
	Managed
)

func (m Mode) String() string {
	if m == Managed {
		return "managed"
	}
	return "stand-alone"
}

// Default geometry per §6: rows 25, cols 80; 0 means "auto" (query the
// attached terminal instead).
const (
	DefaultRows = uint16(25)
	DefaultCols = uint16(80)
)

// Options is the fully-parsed, not-yet-validated command line.
type Options struct {
	Mode Mode

	Out *os.File
	Ins *os.File
	Inr *os.File

	CmdIn  *os.File
	CmdOut *os.File

	Rows uint16
	Cols uint16
	// RowsSet and ColsSet record whether --rows/--cols were given at all,
	// distinguishing an explicit 0 ("auto": query the attached terminal)
	// from an omitted flag, which should fall back to DefaultRows/Cols.
	RowsSet bool
	ColsSet bool

	Dir      string
	Defaults string

	LogLevel ptylog.Level
	Syslog   bool

	Shell []string
}

// Validate fixes Mode from the presence of Out and checks the mode-specific
// handle/shell requirements described in §6. It must be called after
// parsing and before a session is built.
func (o *Options) Validate() error {
	if o.Out == nil {
		o.Mode = StandAlone
	} else {
		o.Mode = Managed
		if o.Ins == nil && o.Inr == nil {
			return errors.New("managed mode requires --ins, --inr, or both")
		}
	}
	if len(o.Shell) == 0 {
		return errors.New("missing shell command")
	}
	if !o.RowsSet {
		o.Rows = DefaultRows
	}
	if !o.ColsSet {
		o.Cols = DefaultCols
	}
	return nil
}

// HasCommandChannel reports whether both halves of the command channel were
// supplied. A managed session may omit it; a stand-alone session never has
// one regardless of what --cmd said.
func (o *Options) HasCommandChannel() bool {
	return o.Mode == Managed && o.CmdIn != nil && o.CmdOut != nil
}
