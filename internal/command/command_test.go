package command

import (
	"os"
	"testing"

	"github.com/creack/pty"

	"github.com/nick/ptybridge/internal/pipeio"
)

func newProcessor(t *testing.T) (*Processor, *os.File, *os.File) {
	t.Helper()
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ptm.Close() })

	cinR, cinW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	coutR, coutW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		cinR.Close()
		cinW.Close()
		coutR.Close()
		coutW.Close()
	})

	return &Processor{Cin: cinR, Cout: coutW, PTYFd: int(ptm.Fd())}, cinW, coutR
}

func TestCycleNoOpcode(t *testing.T) {
	p, _, _ := newProcessor(t)
	ok, err := p.Cycle()
	if !ok || err != nil {
		t.Fatalf("Cycle() with no data = %v, %v; want true, nil", ok, err)
	}
}

func TestPing(t *testing.T) {
	p, cinW, coutR := newProcessor(t)
	if _, err := cinW.Write([]byte{Ping}); err != nil {
		t.Fatal(err)
	}
	waitReadable(t, p.Cin)

	ok, err := p.Cycle()
	if !ok || err != nil {
		t.Fatalf("Cycle: %v, %v", ok, err)
	}
	resp, err := pipeio.ReadExact(coutR, 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp[0] != StatusSuccess {
		t.Fatalf("ping status = %d, want %d", resp[0], StatusSuccess)
	}
}

func TestSetThenGetWinsize(t *testing.T) {
	p, cinW, coutR := newProcessor(t)

	req := []byte{SetWinsize, 120, 0, 40, 0}
	if _, err := cinW.Write(req); err != nil {
		t.Fatal(err)
	}
	waitReadable(t, p.Cin)
	if ok, err := p.Cycle(); !ok || err != nil {
		t.Fatalf("SET_WINSIZE cycle: %v, %v", ok, err)
	}
	resp, err := pipeio.ReadExact(coutR, 1)
	if err != nil || resp[0] != StatusSuccess {
		t.Fatalf("SET_WINSIZE response: %v %v", resp, err)
	}

	if _, err := cinW.Write([]byte{GetWinsize}); err != nil {
		t.Fatal(err)
	}
	waitReadable(t, p.Cin)
	if ok, err := p.Cycle(); !ok || err != nil {
		t.Fatalf("GET_WINSIZE cycle: %v, %v", ok, err)
	}
	resp, err = pipeio.ReadExact(coutR, 5)
	if err != nil {
		t.Fatal(err)
	}
	if resp[0] != StatusSuccess {
		t.Fatalf("GET_WINSIZE status = %d", resp[0])
	}
	cols := uint16(resp[1]) | uint16(resp[2])<<8
	rows := uint16(resp[3]) | uint16(resp[4])<<8
	if cols != 120 || rows != 40 {
		t.Fatalf("got cols=%d rows=%d, want 120x40", cols, rows)
	}
}

func TestUnknownOpcode(t *testing.T) {
	p, cinW, coutR := newProcessor(t)
	if _, err := cinW.Write([]byte{0xEE}); err != nil {
		t.Fatal(err)
	}
	waitReadable(t, p.Cin)
	if ok, err := p.Cycle(); !ok || err != nil {
		t.Fatalf("Cycle: %v, %v", ok, err)
	}
	resp, err := pipeio.ReadExact(coutR, 1)
	if err != nil || resp[0] != StatusFailure {
		t.Fatalf("unknown opcode response: %v %v", resp, err)
	}
}

func waitReadable(t *testing.T, f *os.File) {
	t.Helper()
	for i := 0; i < 100; i++ {
		n, err := pipeio.Available(f)
		if err != nil {
			t.Fatal(err)
		}
		if n > 0 {
			return
		}
	}
	t.Fatal("timed out waiting for data to become readable")
}
