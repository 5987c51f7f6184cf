// Package session implements the encoder and decoder session state
// machines: the handshake, the pipelined send/receive message loop, and
// the pieces that depend on wire-level knowledge (compression, extradata)
// without themselves doing I/O.
//
// Grounded on the teacher's internal/pool/worker.go Worker, which drives
// a single subprocess through Exec/ExecStream/ReadFrame/Ping/Stop with
// the same "one owner, one loop, synchronous send then drain" shape this
// package gives a TCP peer instead of a pipe.
package session

import (
	"github.com/davelindo/videotoolbox-remote/internal/config"
)

// PixFmt is the pixel format a session negotiates; only NV12 and P010LE
// are supported (spec.md section 3 non-goals).
type PixFmt uint8

const (
	PixFmtNV12 PixFmt = 1
	PixFmtP010 PixFmt = 2
)

// WirePixFmt maps a config.CodecConfig.PixFmt string to its CONFIGURE
// wire value.
func WirePixFmt(s string) (PixFmt, bool) {
	switch s {
	case "nv12", "NV12":
		return PixFmtNV12, true
	case "p010le", "P010LE", "p010", "P010":
		return PixFmtP010, true
	default:
		return 0, false
	}
}

// Plane is one raw image plane: a stride and the bytes backing it. The
// caller owns Data for the duration of the SendFrame/ReceiveFrame call.
type Plane struct {
	Stride int
	Data   []byte
}

// Frame is one uncompressed NV12/P010LE video frame, always two planes
// per spec.md section 4.5 (plane 0 = full height, plane 1 = height/2).
type Frame struct {
	PTS      uint64
	Duration uint64
	Flags    uint32
	Planes   [2]Plane
}

// Packet is one encoded access unit.
type Packet struct {
	PTS, DTS, Duration uint64
	Keyframe           bool
	Data               []byte
}

// Rational is a timebase or frame-rate fraction.
type Rational struct {
	Num, Den uint32
}

// HandshakeResult carries what the handshake learned from CONFIGURE_ACK
// that the caller needs afterward.
type HandshakeResult struct {
	ExtradataAnnexB []byte
	ReportedPixFmt  PixFmt
	Warnings        []string
}

// CommonConfig is the subset of knobs both encoder and decoder sessions
// share (spec.md section 6's external API surface).
type CommonConfig struct {
	Host            string
	Token           string
	ClientName      string
	ClientBuildID   string
	TimeoutMS       int
	WireCompression config.WireCompression
	RequestedCodec  string // "h264" | "hevc"
	Width, Height   int
	PixFmt          PixFmt
	Timebase        Rational
	FrameRate       Rational
	Codec           config.CodecConfig
}
