package supervisor

import (
	"os/exec"
	"testing"

	"github.com/creack/pty"

	"github.com/nick/ptybridge/internal/inputrecord"
	"github.com/nick/ptybridge/internal/ptypump"
	"github.com/nick/ptybridge/internal/record"
)

type emptySource struct{}

func (emptySource) ReadBatch(max int) ([]record.Record, error) { return nil, nil }

type discardSink struct{}

func (discardSink) Write(buf []byte) error { return nil }

func TestRunExitsWhenSlaveExits(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	cmd := exec.Command("sleep", "0.05")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sleep for test: %v", err)
	}

	s := &Supervisor{
		SlavePID: cmd.Process.Pid,
		Records:  &inputrecord.Processor{Source: emptySource{}, PTY: ptm},
		Pump:     &ptypump.Pump{PTY: ptm, Sink: discardSink{}},
	}

	err = s.Run()
	if err != ErrSlaveExited {
		t.Fatalf("Run() = %v, want %v", err, ErrSlaveExited)
	}
	_ = cmd.Wait()
}
