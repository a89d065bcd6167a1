package inputrecord

import (
	"testing"

	"github.com/creack/pty"

	"github.com/nick/ptybridge/internal/record"
)

type fixedSource struct {
	batches [][]record.Record
	i       int
}

func (s *fixedSource) ReadBatch(max int) ([]record.Record, error) {
	if s.i >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.i]
	s.i++
	return b, nil
}

func TestResizeUpdatesWinSize(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	ws := &WinSize{}
	src := &fixedSource{batches: [][]record.Record{
		{record.EncodeWindowSize(record.WindowSize{X: 100, Y: 30})},
	}}
	p := &Processor{PTY: ptm, Source: src, WinSize: ws}

	exhausted, ok, err := p.Cycle()
	if err != nil || !ok {
		t.Fatalf("Cycle: ok=%v err=%v", ok, err)
	}
	if !exhausted {
		t.Fatal("expected exhausted batch (below MaxBatch)")
	}
	if ws.Cols != 100 || ws.Rows != 30 {
		t.Fatalf("WinSize = %+v, want cols=100 rows=30", ws)
	}
}

func TestCtrlSpaceWritesSingleNUL(t *testing.T) {
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()
	defer pts.Close()

	k := record.Key{KeyDown: 1, VKey: record.VKSpace, CtrlState: record.LeftCtrlPressed, RepeatCount: 9}
	src := &fixedSource{batches: [][]record.Record{{record.EncodeKey(k)}}}
	p := &Processor{PTY: ptm, Source: src}

	if _, ok, err := p.Cycle(); !ok || err != nil {
		t.Fatalf("Cycle: ok=%v err=%v", ok, err)
	}

	buf := make([]byte, 4)
	n, err := pts.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != 0x00 {
		t.Fatalf("got %v, want exactly one 0x00 byte", buf[:n])
	}
}

func TestKeyUpIgnored(t *testing.T) {
	ptm, _, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer ptm.Close()

	k := record.Key{KeyDown: 0, UnicodeChar: 'a'}
	src := &fixedSource{batches: [][]record.Record{{record.EncodeKey(k)}}}
	p := &Processor{PTY: ptm, Source: src}

	if _, ok, err := p.Cycle(); !ok || err != nil {
		t.Fatalf("Cycle: ok=%v err=%v", ok, err)
	}
}
