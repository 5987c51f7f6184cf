// Package vtremote is the client-side bridge that lets a media
// encode/decode framework offload H.264 and HEVC codec work to a remote
// accelerator process over a single TCP connection per session.
//
// The protocol layer (internal/wire, internal/proto) and the session
// state machines (internal/session) do the real work; this package is a
// thin, framework-facing entry point: construct an EncoderConfig or
// DecoderConfig, call NewEncoderSession/NewDecoderSession, then drive the
// returned session with SendFrame/ReceivePacket or SendPacket/ReceiveFrame.
package vtremote

import (
	"log/slog"

	"github.com/davelindo/videotoolbox-remote/internal/config"
	"github.com/davelindo/videotoolbox-remote/internal/session"
)

// Re-exported session types so callers never need to import
// internal/session directly.
type (
	Frame     = session.Frame
	Packet    = session.Packet
	Plane     = session.Plane
	PixFmt    = session.PixFmt
	Rational  = session.Rational
	FrameSink = session.FrameSink
)

const (
	PixFmtNV12 = session.PixFmtNV12
	PixFmtP010 = session.PixFmtP010
)

// WireCompression selects optional per-plane payload compression.
type WireCompression = config.WireCompression

const (
	CompressionNone = config.CompressionNone
	CompressionLZ4  = config.CompressionLZ4
	CompressionZstd = config.CompressionZstd
)

// EncoderConfig configures an encoder session (spec.md section 6).
type EncoderConfig struct {
	Host          string
	Token         string
	ClientName    string
	ClientBuildID string

	TimeoutMS int // 100..60000, default 5000
	Inflight  int // 1..128, default 16

	WireCompression WireCompression
	RequestedCodec  string // "h264" | "hevc"

	Width, Height int
	PixFmt        PixFmt
	Timebase      Rational
	FrameRate     Rational

	Codec config.CodecConfig
}

func (c EncoderConfig) toSession() session.EncoderConfig {
	return session.EncoderConfig{
		CommonConfig: session.CommonConfig{
			Host: c.Host, Token: c.Token,
			ClientName: c.ClientName, ClientBuildID: c.ClientBuildID,
			TimeoutMS:       c.TimeoutMS,
			WireCompression: c.WireCompression,
			RequestedCodec:  c.RequestedCodec,
			Width:           c.Width, Height: c.Height,
			PixFmt:    c.PixFmt,
			Timebase:  c.Timebase,
			FrameRate: c.FrameRate,
			Codec:     c.Codec,
		},
		MaxInflight: c.Inflight,
	}
}

// NewEncoderSession connects, performs the handshake, and returns a
// ready-to-use encoder session.
func NewEncoderSession(cfg EncoderConfig, logger *slog.Logger) (*session.Encoder, error) {
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 5000
	}
	return session.NewEncoder(cfg.toSession(), logger)
}

// DecoderConfig configures a decoder session (spec.md section 6).
type DecoderConfig struct {
	Host          string
	Token         string
	ClientName    string
	ClientBuildID string

	TimeoutMS int // 100..60000, default 5000

	WireCompression WireCompression
	RequestedCodec  string // "h264" | "hevc"

	Width, Height int
	PixFmt        PixFmt
	Timebase      Rational
	FrameRate     Rational

	Codec config.CodecConfig
}

func (c DecoderConfig) toSession() session.DecoderConfig {
	return session.DecoderConfig{CommonConfig: session.CommonConfig{
		Host: c.Host, Token: c.Token,
		ClientName: c.ClientName, ClientBuildID: c.ClientBuildID,
		TimeoutMS:       c.TimeoutMS,
		WireCompression: c.WireCompression,
		RequestedCodec:  c.RequestedCodec,
		Width:           c.Width, Height: c.Height,
		PixFmt:    c.PixFmt,
		Timebase:  c.Timebase,
		FrameRate: c.FrameRate,
		Codec:     c.Codec,
	}}
}

// NewDecoderSession connects, performs the handshake, and returns a
// ready-to-use decoder session.
func NewDecoderSession(cfg DecoderConfig, logger *slog.Logger) (*session.Decoder, error) {
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 5000
	}
	return session.NewDecoder(cfg.toSession(), logger)
}
