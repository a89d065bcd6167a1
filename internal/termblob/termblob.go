// Package termblob codecs the 44-byte termios blob exchanged opaquely over
// the command channel's GET_TERMIOS/SET_TERMIOS opcodes. The wire layout is
// fixed and little-endian; the host is responsible for interpreting it the
// same way on its side, so this package never reasons about what any
// individual flag means — it only shuttles bytes in and out of
// golang.org/x/sys/unix.Termios.
package termblob

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Size is the fixed wire size: 4 flag words (4 bytes each) + 1 line
// discipline byte + 18 control-char bytes + 2 speed words (4 bytes each) +
// 1 reserved alignment byte.
const Size = 44

const ccWireLen = 18

// Decode parses a 44-byte blob into a unix.Termios suitable for
// IoctlSetTermios.
func Decode(buf []byte) (*unix.Termios, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("termblob: want %d bytes, got %d", Size, len(buf))
	}
	t := &unix.Termios{}
	t.Iflag = binary.LittleEndian.Uint32(buf[0:4])
	t.Oflag = binary.LittleEndian.Uint32(buf[4:8])
	t.Cflag = binary.LittleEndian.Uint32(buf[8:12])
	t.Lflag = binary.LittleEndian.Uint32(buf[12:16])
	t.Line = buf[16]
	n := ccWireLen
	if n > len(t.Cc) {
		n = len(t.Cc)
	}
	copy(t.Cc[:n], buf[17:17+ccWireLen])
	off := 17 + ccWireLen
	t.Ispeed = binary.LittleEndian.Uint32(buf[off : off+4])
	t.Ospeed = binary.LittleEndian.Uint32(buf[off+4 : off+8])
	// buf[off+8] is reserved padding, intentionally unused.
	return t, nil
}

// Encode serializes t into its 44-byte wire form.
func Encode(t *unix.Termios) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], t.Iflag)
	binary.LittleEndian.PutUint32(buf[4:8], t.Oflag)
	binary.LittleEndian.PutUint32(buf[8:12], t.Cflag)
	binary.LittleEndian.PutUint32(buf[12:16], t.Lflag)
	buf[16] = t.Line
	n := ccWireLen
	if n > len(t.Cc) {
		n = len(t.Cc)
	}
	copy(buf[17:17+ccWireLen], t.Cc[:n])
	off := 17 + ccWireLen
	binary.LittleEndian.PutUint32(buf[off:off+4], t.Ispeed)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], t.Ospeed)
	return buf
}
