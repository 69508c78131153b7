package fixture

import (
	"bytes"
	"encoding/binary"
)

// encodeOSCMessage builds a minimal OSC message: a null-padded address
// string, a ",f" type tag, and a single big-endian float32 argument. OSC
// pads every string (including the type tag) with nulls to the next
// 4-byte boundary.
func encodeOSCMessage(address string, value float32) []byte {
	var buf bytes.Buffer
	buf.Write(oscPadString(address))
	buf.Write(oscPadString(",f"))
	binary.Write(&buf, binary.BigEndian, value)
	return buf.Bytes()
}

// oscPadString null-terminates s and pads it with additional nulls up to
// the next multiple of 4 bytes.
func oscPadString(s string) []byte {
	n := len(s) + 1
	padded := ((n + 3) / 4) * 4
	out := make([]byte, padded)
	copy(out, s)
	return out
}
