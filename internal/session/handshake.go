package session

import (
	"fmt"
	"strconv"

	"github.com/davelindo/videotoolbox-remote/internal/config"
	"github.com/davelindo/videotoolbox-remote/internal/extradata"
	"github.com/davelindo/videotoolbox-remote/internal/proto"
	"github.com/davelindo/videotoolbox-remote/internal/transport"
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// checkWireCompression rejects wire_compression=zstd before a session
// connects: it is advertised in the option enum (spec.md section 4.4)
// but never implemented, so accepting it here would mean discovering
// the gap only after the accelerator answers CONFIGURE.
func checkWireCompression(c config.WireCompression) error {
	if c == config.CompressionZstd {
		return vterr.New(vterr.NotImplemented, "wire_compression=zstd is advertised but not implemented by this client")
	}
	return nil
}

// doHandshake runs the shared HELLO/CONFIGURE sequence (spec.md section
// 4.4) over an already-connected m, common to encoder and decoder
// sessions; the caller dials before calling it. convertExtradata
// selects whether the result's CONFIGURE_ACK "extra" bytes get run
// through the avcC/hvcC → Annex-B transform (encoders only; decoders
// never convert it, per the spec's preserved asymmetry).
func doHandshake(cfg CommonConfig, m *msgIO, convertExtradata bool) (HandshakeResult, error) {
	if err := checkWireCompression(cfg.WireCompression); err != nil {
		return HandshakeResult{}, err
	}
	if err := proto.BuildHello(&m.wbuf, proto.Hello{
		Token:          cfg.Token,
		RequestedCodec: cfg.RequestedCodec,
		ClientName:     cfg.ClientName,
		ClientBuildID:  cfg.ClientBuildID,
	}); err != nil {
		return HandshakeResult{}, err
	}
	if err := m.send(wire.MsgHello); err != nil {
		return HandshakeResult{}, err
	}

	ackPayload, err := m.recvExpect(wire.MsgHelloAck)
	if err != nil {
		return HandshakeResult{}, err
	}
	ack, err := proto.ParseHelloAck(ackPayload)
	if err != nil {
		return HandshakeResult{}, err
	}
	if ack.Status != proto.HelloAccepted {
		return HandshakeResult{}, vterr.New(vterr.PermissionDenied, "accelerator rejected HELLO")
	}

	opts, err := buildConfigureOpts(cfg)
	if err != nil {
		return HandshakeResult{}, err
	}
	pixFmt := cfg.PixFmt
	if cfg.Codec.PixFmt != "" {
		resolved, ok := WirePixFmt(cfg.Codec.PixFmt)
		if !ok {
			return HandshakeResult{}, vterr.New(vterr.InvalidArgument, fmt.Sprintf("unrecognized codec.pix_fmt %q", cfg.Codec.PixFmt))
		}
		pixFmt = resolved
	}
	if err := proto.BuildConfigure(&m.wbuf, proto.Configure{
		Width: uint32(cfg.Width), Height: uint32(cfg.Height),
		PixFmt:    proto.PixFmt(pixFmt),
		Timebase:  proto.Rational{Num: cfg.Timebase.Num, Den: cfg.Timebase.Den},
		FrameRate: proto.Rational{Num: cfg.FrameRate.Num, Den: cfg.FrameRate.Den},
		Opts:      opts,
	}); err != nil {
		return HandshakeResult{}, err
	}
	if err := m.send(wire.MsgConfigure); err != nil {
		return HandshakeResult{}, err
	}

	ackPayload, err = m.recvExpect(wire.MsgConfigureAck)
	if err != nil {
		return HandshakeResult{}, err
	}
	cack, err := proto.ParseConfigureAck(ackPayload)
	if err != nil {
		return HandshakeResult{}, err
	}
	if cack.Status != 0 {
		return HandshakeResult{}, vterr.New(vterr.InvalidData, "accelerator rejected CONFIGURE")
	}

	result := HandshakeResult{
		ReportedPixFmt: PixFmt(cack.ReportedPix),
		Warnings:       cack.Warnings,
	}
	if len(cack.Extra) > 0 && convertExtradata {
		var annexb []byte
		var cerr error
		switch cfg.RequestedCodec {
		case "hevc":
			annexb, cerr = extradata.HEVCToAnnexB(cack.Extra)
		default:
			annexb, cerr = extradata.AVCToAnnexB(cack.Extra)
		}
		if cerr != nil {
			return HandshakeResult{}, cerr
		}
		result.ExtradataAnnexB = annexb
	} else {
		result.ExtradataAnnexB = cack.Extra
	}
	return result, nil
}

// buildConfigureOpts emits the recognized CONFIGURE options whose source
// value is non-default (spec.md section 4.4). mode and wire_compression
// are always emitted since the accelerator needs both to proceed.
func buildConfigureOpts(cfg CommonConfig) ([]proto.KV, error) {
	c := cfg.Codec
	if c.Mode != "encode" && c.Mode != "decode" {
		return nil, vterr.New(vterr.InvalidArgument, "codec mode must be encode or decode")
	}
	opts := []proto.KV{
		{Key: "mode", Value: c.Mode},
		{Key: "wire_compression", Value: cfg.WireCompression.WireValue()},
	}
	addInt := func(key string, v int64) {
		if v != 0 {
			opts = append(opts, proto.KV{Key: key, Value: strconv.FormatInt(v, 10)})
		}
	}
	addIntPtr := func(key string, v *int) {
		if v != nil {
			opts = append(opts, proto.KV{Key: key, Value: strconv.Itoa(*v)})
		}
	}
	addBool := func(key string, v bool) {
		if v {
			opts = append(opts, proto.KV{Key: key, Value: "1"})
		}
	}

	addInt("bitrate", c.Bitrate)
	addInt("maxrate", c.MaxRate)
	addInt("gop", int64(c.GOP))
	addInt("max_b_frames", int64(c.MaxBFrames))
	addInt("flags", int64(c.Flags))
	addInt("global_quality", int64(c.GlobalQuality))
	addIntPtr("qmin", c.QMin)
	addIntPtr("qmax", c.QMax)
	addIntPtr("profile", c.Profile)
	addInt("level", int64(c.Level))
	addIntPtr("entropy", c.Entropy)
	addBool("allow_sw", c.AllowSW)
	addBool("require_sw", c.RequireSW)
	addIntPtr("realtime", c.Realtime)
	addBool("frames_before", c.FramesBefore)
	addBool("frames_after", c.FramesAfter)
	addIntPtr("prio_speed", c.PrioSpeed)
	addIntPtr("power_efficient", c.PowerEfficient)
	addIntPtr("spatial_aq", c.SpatialAQ)
	addInt("max_ref_frames", int64(c.MaxRefFrames))
	addIntPtr("max_slice_bytes", c.MaxSliceBytes)
	addBool("constant_bit_rate", c.ConstantBitRate)
	if c.AlphaQuality != 0 {
		opts = append(opts, proto.KV{Key: "alpha_quality", Value: strconv.FormatFloat(c.AlphaQuality, 'g', -1, 64)})
	}
	addInt("color_range", int64(c.ColorRange))
	addInt("colorspace", int64(c.Colorspace))
	addInt("color_primaries", int64(c.ColorPrimaries))
	addInt("color_trc", int64(c.ColorTRC))
	addInt("sar_num", int64(c.SARNum))
	addInt("sar_den", int64(c.SARDen))
	addIntPtr("a53_cc", c.A53CC)

	return opts, nil
}

// transportConnect is split out so tests can stub it; production code
// just calls transport.Connect.
var transportConnect = transport.Connect
