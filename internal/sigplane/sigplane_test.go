package sigplane

import (
	"os/exec"
	"syscall"
	"testing"

	"github.com/creack/pty"
)

func TestSIGINTWritesCtrlC(t *testing.T) {
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()
	defer pts.Close()

	p := &Plane{PTY: ptm, SlavePID: 0}
	p.handle(syscall.SIGINT)

	buf := make([]byte, 1)
	n, err := pts.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != 0x03 {
		t.Fatalf("got %v, want [0x03]", buf[:n])
	}
}

func TestSIGHUPIsIgnored(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	p := &Plane{PTY: ptm, SlavePID: 0}
	p.handle(syscall.SIGHUP) // must not panic or block
}

func TestSIGQUITConsumedWithoutTeardown(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	cmd := exec.Command("sleep", "1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sleep for test: %v", err)
	}
	defer func() { _ = cmd.Process.Kill(); _ = cmd.Wait() }()

	p := &Plane{PTY: ptm, SlavePID: cmd.Process.Pid}
	p.handle(syscall.SIGQUIT) // must not panic, block, or re-raise on self

	// The relayed SIGINT may already have ended sleep, so this probe's
	// result is not checked; reaching this line shows handle did not
	// re-raise SIGQUIT on the test process.
	_ = cmd.Process.Signal(syscall.Signal(0))
}
