// Package wire implements the VTRemote fixed message header and the
// bounds-checked growable/borrowed byte buffers (WBuf/RBuf) that every
// higher-level message builder and parser is written on top of.
//
// Grounded on the teacher's internal/protocol/wire.go frame header
// read/write, adapted from its 14-byte {magic,version,type,flags,stream_id,
// hdr_len,payload_len} layout to VTRemote's fixed 12-byte
// {magic,version,type,length} layout (spec.md section 6).
package wire

import (
	"encoding/binary"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

// Magic identifies a VTRemote v1 frame: ASCII "VTR1".
const Magic uint32 = 0x56545231

// Version is the only protocol version this client speaks.
const Version uint16 = 1

// HeaderSize is the fixed size of a message header in bytes.
const HeaderSize = 12

// MsgType is the closed message-type enumeration (spec.md section 3).
type MsgType uint16

const (
	MsgHello MsgType = iota + 1
	MsgHelloAck
	MsgConfigure
	MsgConfigureAck
	MsgFrame
	MsgPacket
	MsgFlush
	MsgDone
	MsgError
	MsgPing
	MsgPong
)

var typeNames = map[MsgType]string{
	MsgHello:        "HELLO",
	MsgHelloAck:     "HELLO_ACK",
	MsgConfigure:    "CONFIGURE",
	MsgConfigureAck: "CONFIGURE_ACK",
	MsgFrame:        "FRAME",
	MsgPacket:       "PACKET",
	MsgFlush:        "FLUSH",
	MsgDone:         "DONE",
	MsgError:        "ERROR",
	MsgPing:         "PING",
	MsgPong:         "PONG",
}

// Name returns a short string for logging; "UNKNOWN" if out of range.
func (t MsgType) Name() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// Header is the 12-byte fixed frame header.
type Header struct {
	Magic   uint32
	Version uint16
	Type    MsgType
	Length  uint32 // payload bytes immediately following the header
}

// WriteHeader writes hdr into dst[:HeaderSize]. dst must be at least
// HeaderSize bytes.
func WriteHeader(dst []byte, hdr Header) error {
	if len(dst) < HeaderSize {
		return vterr.New(vterr.InvalidArgument, "header destination shorter than 12 bytes")
	}
	binary.BigEndian.PutUint32(dst[0:4], hdr.Magic)
	binary.BigEndian.PutUint16(dst[4:6], hdr.Version)
	binary.BigEndian.PutUint16(dst[6:8], uint16(hdr.Type))
	binary.BigEndian.PutUint32(dst[8:12], hdr.Length)
	return nil
}

// ReadHeader parses a header from src[:HeaderSize] and validates magic and
// version exactly, per spec.md section 3's invariant.
func ReadHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, vterr.New(vterr.InvalidArgument, "header source shorter than 12 bytes")
	}
	hdr := Header{
		Magic:   binary.BigEndian.Uint32(src[0:4]),
		Version: binary.BigEndian.Uint16(src[4:6]),
		Type:    MsgType(binary.BigEndian.Uint16(src[6:8])),
		Length:  binary.BigEndian.Uint32(src[8:12]),
	}
	if hdr.Magic != Magic {
		return Header{}, vterr.New(vterr.InvalidData, "bad magic")
	}
	if hdr.Version != Version {
		return Header{}, vterr.New(vterr.InvalidData, "unsupported version")
	}
	return hdr, nil
}

// BuildMessage allocates header+payload as one contiguous buffer.
func BuildMessage(msgType MsgType, payload []byte) ([]byte, error) {
	buf := make([]byte, HeaderSize+len(payload))
	if err := WriteHeader(buf, Header{
		Magic:   Magic,
		Version: Version,
		Type:    msgType,
		Length:  uint32(len(payload)),
	}); err != nil {
		return nil, err
	}
	copy(buf[HeaderSize:], payload)
	return buf, nil
}
