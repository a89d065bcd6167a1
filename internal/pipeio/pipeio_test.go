package pipeio

import (
	"os"
	"testing"
	"time"
)

func TestTryReadNoData(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	buf, err := TryRead(r, 16)
	if err != nil {
		t.Fatalf("TryRead: %v", err)
	}
	if buf != nil {
		t.Fatalf("expected nil buf on empty pipe, got %v", buf)
	}
}

func TestTryReadExactPartialFrame(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if _, err := w.Write([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	buf, err := TryReadExact(r, 20)
	if err != nil {
		t.Fatalf("TryReadExact: %v", err)
	}
	if buf != nil {
		t.Fatalf("expected nil on short frame, got %v", buf)
	}

	if _, err := w.Write(make([]byte, 17)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	buf, err = TryReadExact(r, 20)
	if err != nil {
		t.Fatalf("TryReadExact after fill: %v", err)
	}
	if len(buf) != 20 {
		t.Fatalf("expected 20 bytes, got %d", len(buf))
	}
}

func TestUint16RoundTrip(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	go func() {
		_ = WriteUint16(w, 0x1234)
	}()

	v, err := ReadUint16(r)
	if err != nil {
		t.Fatalf("ReadUint16: %v", err)
	}
	if v != 0x1234 {
		t.Fatalf("got %#x, want %#x", v, 0x1234)
	}
}

func TestWriteAllPropagatesPartial(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			if _, err := r.Read(buf); err != nil {
				return
			}
		}
	}()

	payload := make([]byte, 1<<20)
	if err := WriteAll(w, payload); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	w.Close()
	<-done
}
