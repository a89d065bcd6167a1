// Package launch allocates the PTY and starts the slave shell, carrying it
// through the handshake in internal/handshake. Go cannot run arbitrary code
// between fork and exec the way the reference do_slave/do_master pair does,
// so the pre-exec setup (termios defaults, chdir, the SIGUSR1 ack) runs in a
// re-exec of this same binary: the child process is started as "itself in
// slave-setup mode", does its setup, then syscall.Exec's into the real
// shell — replacing its own image without forking again, so the pid the
// master recorded as SlavePID stays valid all the way through.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"github.com/nick/ptybridge/internal/handshake"
)

// SlaveSetupArg is the argv[1] marker that tells main() to call
// RunSlaveSetup instead of starting a normal bridge session.
const SlaveSetupArg = "__ptybridge_slave_setup__"

// DefaultsEnvVar carries the --defaults path through the re-exec into the
// slave-setup process, which has no other channel back to the parsed CLI.
const defaultsEnvVar = "PTYBRIDGE_DEFAULTS"

// DefaultsEnvVar is the exported name, used by main() to read the value
// back out in the re-exec'd child.
const DefaultsEnvVar = defaultsEnvVar

// Session is a running PTY + slave shell pair, owned exclusively by the
// master for the remainder of the process lifetime.
type Session struct {
	PTY      *os.File
	SlavePID int
}

// Start allocates a PTY, re-execs this binary as the slave-setup process
// attached to the PTY's slave side, and blocks for the startup handshake.
// dir and defaults are forwarded to the slave via env/argv so RunSlaveSetup
// can apply them without needing a shared memory channel.
func Start(shell []string, rows, cols uint16, dir, defaultsPath string) (*Session, error) {
	if len(shell) == 0 {
		return nil, fmt.Errorf("launch: no shell command given")
	}

	ptm, pts, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("launch: opening pty: %w", err)
	}
	defer pts.Close()

	// A zero dimension means "auto": take it from the attached terminal
	// (stdin). It stays zero when stdin is not a terminal.
	if rows == 0 || cols == 0 {
		if ws, err := pty.GetsizeFull(os.Stdin); err == nil {
			if rows == 0 {
				rows = ws.Rows
			}
			if cols == 0 {
				cols = ws.Cols
			}
		}
	}

	if rows > 0 || cols > 0 {
		if err := pty.Setsize(ptm, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
			ptm.Close()
			return nil, fmt.Errorf("launch: setting initial size: %w", err)
		}
	}

	exe, err := os.Executable()
	if err != nil {
		ptm.Close()
		return nil, fmt.Errorf("launch: resolving own executable: %w", err)
	}

	argv := append([]string{exe, SlaveSetupArg, dir}, shell...)
	cmd := exec.Command(exe, argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = pts, pts, pts
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	cmd.Env = os.Environ()
	if defaultsPath != "" {
		cmd.Env = append(cmd.Env, defaultsEnvVar+"="+defaultsPath)
	}

	if err := cmd.Start(); err != nil {
		ptm.Close()
		return nil, fmt.Errorf("launch: starting slave setup: %w", err)
	}

	wait, cancel := handshake.Await()
	defer cancel()
	if err := handshake.Signal(cmd.Process.Pid); err != nil {
		ptm.Close()
		return nil, fmt.Errorf("launch: signaling slave: %w", err)
	}
	if err := wait(); err != nil {
		ptm.Close()
		return nil, fmt.Errorf("launch: %w", err)
	}

	return &Session{PTY: ptm, SlavePID: cmd.Process.Pid}, nil
}

// RunSlaveSetup is the entry point for the re-exec'd slave-setup process. It
// waits for the master's SIGUSR1, applies termios defaults and the working
// directory, acknowledges back to the master (os.Getppid(), stable across
// the later exec), then execs into the shell in args.
func RunSlaveSetup(args []string, dir string, defaults Defaults) error {
	wait, cancel := handshake.Await()
	if err := wait(); err != nil {
		cancel()
		return fmt.Errorf("launch: slave setup: %w", err)
	}
	cancel()

	if err := defaults.Apply(int(os.Stdin.Fd())); err != nil {
		return fmt.Errorf("launch: applying termios defaults: %w", err)
	}

	if dir != "" {
		if err := os.Chdir(dir); err != nil {
			return fmt.Errorf("launch: chdir %s: %w", dir, err)
		}
		if err := os.Setenv("CHERE_INVOKING", "1"); err != nil {
			return fmt.Errorf("launch: setting CHERE_INVOKING: %w", err)
		}
	}

	if err := handshake.Acknowledge(os.Getppid()); err != nil {
		return fmt.Errorf("launch: acknowledging master: %w", err)
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("launch: resolving shell %q: %w", args[0], err)
	}
	return syscall.Exec(path, args, os.Environ())
}
