package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nick/ptybridge/internal/bridge"
	"github.com/nick/ptybridge/internal/ptylog"
)

const usage = `usage: ptybridge [options...] [-] <shell> [shell-args...]

options:
  --help              print this message and exit
  --version           print version and exit
  --out N             managed-mode output sink pipe handle
  --ins N             managed-mode byte-stream input pipe handle
  --inr N             managed-mode record-stream input pipe handle
  --cmd A;B           command channel pipe handles (in;out)
  --rows N            initial rows (default 25; 0 = auto)
  --cols N            initial cols (default 80; 0 = auto)
  --dir P             chdir before exec; sets CHERE_INVOKING=1
  --defaults P        YAML file overriding slave termios/chdir defaults
  --log L             minimum log level, 0..4 (TRACE..ERROR)
  --syslog            mirror WARN and ERROR logs to the system log
  -                   end of bridge options; remainder is the shell command
`

const version = "ptybridge 1.0.0"

// argError is returned for any problem with the command line itself, which
// main.go maps to exit code 1.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

// errHelpRequested and errVersionRequested are sentinel errors so main.go can
// special-case the exit-0 paths.
var (
	errHelpRequested    = &argError{"help requested"}
	errVersionRequested = &argError{"version requested"}
)

func parseArgs(args []string) (*bridge.Options, error) {
	opts := &bridge.Options{LogLevel: ptylog.Info}

	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-":
			i++
			goto shell
		case a == "--help":
			return nil, errHelpRequested
		case a == "--version":
			return nil, errVersionRequested
		case a == "--syslog":
			opts.Syslog = true
		case a == "--out", a == "--ins", a == "--inr", a == "--cmd",
			a == "--rows", a == "--cols", a == "--dir", a == "--log", a == "--defaults":
			if i+1 >= len(args) {
				return nil, &argError{fmt.Sprintf("%s requires a value", a)}
			}
			val := args[i+1]
			i++
			if err := applyOption(opts, a, val); err != nil {
				return nil, err
			}
		case strings.HasPrefix(a, "--"):
			return nil, &argError{fmt.Sprintf("unrecognized option %q", a)}
		default:
			// First non-option token with no explicit "-" separator: this
			// and everything after it is the shell command.
			goto shell
		}
	}
shell:
	opts.Shell = args[i:]
	return opts, nil
}

func applyOption(opts *bridge.Options, name, val string) error {
	switch name {
	case "--out":
		f, err := handleFile(val)
		if err != nil {
			return err
		}
		opts.Out = f
	case "--ins":
		f, err := handleFile(val)
		if err != nil {
			return err
		}
		opts.Ins = f
	case "--inr":
		f, err := handleFile(val)
		if err != nil {
			return err
		}
		opts.Inr = f
	case "--cmd":
		parts := strings.SplitN(val, ";", 2)
		if len(parts) != 2 {
			return &argError{"--cmd expects two handles separated by ';'"}
		}
		in, err := handleFile(parts[0])
		if err != nil {
			return err
		}
		out, err := handleFile(parts[1])
		if err != nil {
			return err
		}
		opts.CmdIn = in
		opts.CmdOut = out
	case "--rows":
		n, err := strconv.ParseUint(val, 10, 16)
		if err != nil {
			return &argError{fmt.Sprintf("--rows: %v", err)}
		}
		opts.Rows = uint16(n)
		opts.RowsSet = true
	case "--cols":
		n, err := strconv.ParseUint(val, 10, 16)
		if err != nil {
			return &argError{fmt.Sprintf("--cols: %v", err)}
		}
		opts.Cols = uint16(n)
		opts.ColsSet = true
	case "--dir":
		opts.Dir = val
	case "--defaults":
		opts.Defaults = val
	case "--log":
		n, err := strconv.Atoi(val)
		if err != nil {
			return &argError{fmt.Sprintf("--log: %v", err)}
		}
		lvl, err := ptylog.ParseLevel(n)
		if err != nil {
			return &argError{err.Error()}
		}
		opts.LogLevel = lvl
	}
	return nil
}

func handleFile(val string) (*os.File, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, &argError{fmt.Sprintf("invalid pipe handle %q: %v", val, err)}
	}
	return os.NewFile(uintptr(n), fmt.Sprintf("handle:%d", n)), nil
}
