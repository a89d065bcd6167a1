// Package pipeio provides the atomic-or-absent read/write primitives the
// rest of the bridge builds on. A "pipe handle" in the host sense is
// represented here as a plain *os.File wrapping a POSIX file descriptor —
// Cygwin/MSYS2 pipe HANDLEs are themselves backed by POSIX fds under the
// emulation layer, so the fd is the natural re-expression of the handle on
// this side of the bridge.
package pipeio

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned when a read on the handle reaches io.EOF because the
// peer closed it. TryRead and TryReadExact only read after FIONREAD reports
// queued bytes, and FIONREAD reports 0 on a pipe whose peer has closed, so
// those two report a closed peer as "nothing available", not as ErrClosed.
var ErrClosed = errors.New("pipeio: handle closed")

// ReadExact loops over the OS read primitive until n bytes are obtained.
// It never returns a short read: either len(result) == n or a non-nil error.
func ReadExact(h *os.File, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(h, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return buf, nil
}

// Available reports how many bytes are currently queued for read on h
// without consuming any of them, via FIONREAD. This is the POSIX
// replacement for PeekNamedPipe.
func Available(h *os.File) (int, error) {
	n, err := unix.IoctlGetInt(int(h.Fd()), unix.FIONREAD)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// TryRead peeks h for at least one available byte. If none is queued it
// returns (nil, nil) without blocking. Otherwise it performs one read and
// returns whatever bytes that read produced (which may be fewer than n).
func TryRead(h *os.File, n int) ([]byte, error) {
	avail, err := Available(h)
	if err != nil {
		return nil, err
	}
	if avail == 0 {
		return nil, nil
	}
	if avail > n {
		avail = n
	}
	buf := make([]byte, avail)
	k, err := h.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return buf[:k], nil
}

// TryReadExact peeks h for at least n available bytes. If fewer are queued
// it returns (nil, nil) without consuming anything — the atomic gate that
// prevents the event loop from committing to a blocking read mid-frame.
// Otherwise it performs ReadExact and returns exactly n bytes.
func TryReadExact(h *os.File, n int) ([]byte, error) {
	avail, err := Available(h)
	if err != nil {
		return nil, err
	}
	if avail < n {
		return nil, nil
	}
	return ReadExact(h, n)
}

// WriteAll loops over the OS write primitive until every byte of buf is
// written. Any error is propagated.
func WriteAll(h *os.File, buf []byte) error {
	for len(buf) > 0 {
		k, err := h.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[k:]
	}
	return nil
}

// ReadUint16 decodes a little-endian 16-bit integer, blocking until both
// bytes arrive.
func ReadUint16(h *os.File) (uint16, error) {
	b, err := ReadExact(h, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// WriteUint16 encodes v as a little-endian 16-bit integer and writes it in
// full.
func WriteUint16(h *os.File, v uint16) error {
	return WriteAll(h, []byte{byte(v), byte(v >> 8)})
}
