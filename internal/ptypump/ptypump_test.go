package ptypump

import (
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
)

type bufSink struct {
	fail bool
	got  []byte
}

func (s *bufSink) Write(buf []byte) error {
	if s.fail {
		return os.ErrClosed
	}
	s.got = append(s.got, buf...)
	return nil
}

func TestDrainOutputExhaustedOnNoData(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	p := &Pump{PTY: ptm, Sink: &bufSink{}}
	exhausted, err := p.DrainOutput()
	if err != nil {
		t.Fatalf("DrainOutput: %v", err)
	}
	if !exhausted {
		t.Fatal("expected exhausted with nothing written to the slave")
	}
}

func TestDrainOutputForwardsBytes(t *testing.T) {
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()
	defer pts.Close()

	if _, err := pts.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	sink := &bufSink{}
	p := &Pump{PTY: ptm, Sink: sink}
	if _, err := p.DrainOutput(); err != nil {
		t.Fatalf("DrainOutput: %v", err)
	}
	if string(sink.got) != "hello" {
		t.Fatalf("got %q, want %q", sink.got, "hello")
	}
}

func TestDrainOutputRetainsLeftoverOnWriteFailure(t *testing.T) {
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()
	defer pts.Close()

	if _, err := pts.Write([]byte("retry-me")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	sink := &bufSink{fail: true}
	p := &Pump{PTY: ptm, Sink: sink}
	if _, err := p.DrainOutput(); err == nil {
		t.Fatal("expected write failure to propagate")
	}

	sink.fail = false
	if _, err := p.DrainOutput(); err != nil {
		t.Fatalf("retry DrainOutput: %v", err)
	}
	if string(sink.got) != "retry-me" {
		t.Fatalf("got %q after retry, want %q", sink.got, "retry-me")
	}
}

func TestInjectInputPartialWriteTracksIndex(t *testing.T) {
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()
	defer pts.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	payload := []byte("abc")
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	p := &Pump{PTY: ptm}
	if err := p.InjectInput(r); err != nil {
		t.Fatalf("InjectInput: %v", err)
	}

	buf := make([]byte, 3)
	n, err := pts.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "abc" {
		t.Fatalf("slave received %q, want %q", buf[:n], "abc")
	}
}
