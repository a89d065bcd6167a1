// Package record decodes and encodes the 20-byte fixed-layout input record
// that mirrors the Windows console API's INPUT_RECORD: a 2-byte event type,
// 2 bytes of reserved padding, and a 16-byte event union. Only the KEY and
// WINDOW_BUFFER_SIZE variants are interpreted; everything else passes
// through as an opaque union for logging purposes.
package record

import "encoding/binary"

// Size is the wire size of one record: 2 (type) + 2 (padding) + 16 (union).
const Size = 20

// Event type discriminants, matching the Windows console API's constants.
const (
	KeyEvent              uint16 = 1
	MouseEvent            uint16 = 2
	WindowBufferSizeEvent uint16 = 4
)

// Ctrl-state bits relevant to the Ctrl+Space special case.
const (
	RightCtrlPressed = 0x0004
	LeftCtrlPressed  = 0x0008
)

// VKSpace is the virtual-key code for the space bar.
const VKSpace = 0x20

// Record is one decoded 20-byte input record.
type Record struct {
	EventType uint16
	Union     [16]byte
}

// Decode parses exactly Size bytes into a Record. Callers are expected to
// have already gated on an atomic read of Size bytes (see pipeio.TryReadExact).
func Decode(buf []byte) Record {
	var r Record
	r.EventType = binary.LittleEndian.Uint16(buf[0:2])
	// buf[2:4] is reserved padding, intentionally skipped.
	copy(r.Union[:], buf[4:20])
	return r
}

// Encode serializes r back to its 20-byte wire form, the inverse of Decode.
func Encode(r Record) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint16(buf[0:2], r.EventType)
	copy(buf[4:20], r.Union[:])
	return buf
}

// Key is the subset of the KEY union the bridge inspects.
type Key struct {
	KeyDown     uint32
	RepeatCount uint16
	VKey        uint16
	ScanCode    uint16
	UnicodeChar uint16
	CtrlState   uint32
}

// DecodeKey reinterprets the union as a Key payload.
func (r Record) DecodeKey() Key {
	u := r.Union[:]
	return Key{
		KeyDown:     binary.LittleEndian.Uint32(u[0:4]),
		RepeatCount: binary.LittleEndian.Uint16(u[4:6]),
		VKey:        binary.LittleEndian.Uint16(u[6:8]),
		ScanCode:    binary.LittleEndian.Uint16(u[8:10]),
		UnicodeChar: binary.LittleEndian.Uint16(u[10:12]),
		CtrlState:   binary.LittleEndian.Uint32(u[12:16]),
	}
}

// EncodeKey packs k into a KEY record's union.
func EncodeKey(k Key) Record {
	var r Record
	r.EventType = KeyEvent
	u := r.Union[:]
	binary.LittleEndian.PutUint32(u[0:4], k.KeyDown)
	binary.LittleEndian.PutUint16(u[4:6], k.RepeatCount)
	binary.LittleEndian.PutUint16(u[6:8], k.VKey)
	binary.LittleEndian.PutUint16(u[8:10], k.ScanCode)
	binary.LittleEndian.PutUint16(u[10:12], k.UnicodeChar)
	binary.LittleEndian.PutUint32(u[12:16], k.CtrlState)
	return r
}

// WindowSize is the subset of the WINDOW_BUFFER_SIZE union the bridge
// inspects.
type WindowSize struct {
	X int16
	Y int16
}

// DecodeWindowSize reinterprets the union as a WindowSize payload.
func (r Record) DecodeWindowSize() WindowSize {
	u := r.Union[:]
	return WindowSize{
		X: int16(binary.LittleEndian.Uint16(u[0:2])),
		Y: int16(binary.LittleEndian.Uint16(u[2:4])),
	}
}

// EncodeWindowSize packs a WindowSize into a WINDOW_BUFFER_SIZE record.
func EncodeWindowSize(ws WindowSize) Record {
	var r Record
	r.EventType = WindowBufferSizeEvent
	u := r.Union[:]
	binary.LittleEndian.PutUint16(u[0:2], uint16(ws.X))
	binary.LittleEndian.PutUint16(u[2:4], uint16(ws.Y))
	return r
}

// IsCtrlSpace reports whether k represents the Ctrl+Space / NUL special case:
// VK_SPACE with either Ctrl modifier held, regardless of repeat count.
func (k Key) IsCtrlSpace() bool {
	return k.VKey == VKSpace && k.CtrlState&(LeftCtrlPressed|RightCtrlPressed) != 0
}
