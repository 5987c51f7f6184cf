// Command vtremote-probe is a minimal smoke-test harness: it dials a
// VTRemote accelerator, performs the handshake for a chosen codec/mode,
// and either pushes one synthetic NV12 frame through an encoder session
// or one packet through a decoder session, printing a summary of what
// came back. It is not a production encoder/decoder integration — that
// integration is the embedding media framework's job.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	vtremote "github.com/davelindo/videotoolbox-remote"
	"github.com/davelindo/videotoolbox-remote/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "encode":
		runEncode(os.Args[2:])
	case "decode":
		runDecode(os.Args[2:])
	case "version":
		fmt.Printf("vtremote-probe v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	configPath := fs.String("config", "", "optional YAML config file (overrides -host and -log-level; -codec, -width and -height still apply)")
	host := fs.String("host", "127.0.0.1:9100", "accelerator host:port")
	codec := fs.String("codec", "h264", "h264 or hevc")
	width := fs.Int("width", 1280, "frame width")
	height := fs.Int("height", 720, "frame height")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	_ = fs.Parse(args)

	codecCfg := config.CodecConfig{Mode: "encode"}
	inflight := 0
	timeoutMS := 0
	wireCompression := config.CompressionNone
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		*host = fileCfg.Session.Host
		codecCfg = fileCfg.Codec
		inflight = fileCfg.Session.Inflight
		timeoutMS = fileCfg.Session.TimeoutMS
		wireCompression = fileCfg.Session.WireCompression
		*logLevel = fileCfg.Logging.Level
	}

	logger := setupLogger(*logLevel)
	cfg := vtremote.EncoderConfig{
		Host: *host, ClientName: "vtremote-probe", ClientBuildID: version,
		RequestedCodec: *codec, Width: *width, Height: *height,
		PixFmt:          vtremote.PixFmtNV12,
		Timebase:        vtremote.Rational{Num: 1, Den: 30},
		FrameRate:       vtremote.Rational{Num: 30, Den: 1},
		Codec:           codecCfg,
		Inflight:        inflight,
		TimeoutMS:       timeoutMS,
		WireCompression: wireCompression,
	}

	enc, err := vtremote.NewEncoderSession(cfg, logger)
	if err != nil {
		logger.Error("handshake failed", "error", err)
		os.Exit(1)
	}
	defer enc.Close()
	logger.Info("handshake complete", "extradata_bytes", len(enc.Extradata))

	frame := syntheticNV12Frame(*width, *height)
	if err := enc.SendFrame(frame); err != nil {
		logger.Error("send frame failed", "error", err)
		os.Exit(1)
	}
	pkt, err := enc.ReceivePacket()
	if err != nil {
		logger.Error("receive packet failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("packet: pts=%d dts=%d duration=%d keyframe=%v bytes=%d\n",
		pkt.PTS, pkt.DTS, pkt.Duration, pkt.Keyframe, len(pkt.Data))
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	configPath := fs.String("config", "", "optional YAML config file (overrides -host and -log-level; -codec, -width and -height still apply)")
	host := fs.String("host", "127.0.0.1:9100", "accelerator host:port")
	codec := fs.String("codec", "h264", "h264 or hevc")
	width := fs.Int("width", 1280, "frame width")
	height := fs.Int("height", 720, "frame height")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	_ = fs.Parse(args)

	codecCfg := config.CodecConfig{Mode: "decode"}
	timeoutMS := 0
	wireCompression := config.CompressionNone
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		*host = fileCfg.Session.Host
		codecCfg = fileCfg.Codec
		timeoutMS = fileCfg.Session.TimeoutMS
		wireCompression = fileCfg.Session.WireCompression
		*logLevel = fileCfg.Logging.Level
	}

	logger := setupLogger(*logLevel)
	cfg := vtremote.DecoderConfig{
		Host: *host, ClientName: "vtremote-probe", ClientBuildID: version,
		RequestedCodec: *codec, Width: *width, Height: *height,
		PixFmt:          vtremote.PixFmtNV12,
		Timebase:        vtremote.Rational{Num: 1, Den: 30},
		FrameRate:       vtremote.Rational{Num: 30, Den: 1},
		Codec:           codecCfg,
		TimeoutMS:       timeoutMS,
		WireCompression: wireCompression,
	}

	dec, err := vtremote.NewDecoderSession(cfg, logger)
	if err != nil {
		logger.Error("handshake failed", "error", err)
		os.Exit(1)
	}
	defer dec.Close()
	logger.Info("handshake complete", "reported_pix_fmt", dec.ReportedPixFmt)

	if err := dec.SendPacket(&vtremote.Packet{Data: []byte{0x00, 0x00, 0x00, 0x01, 0x65}}); err != nil {
		logger.Error("send packet failed", "error", err)
		os.Exit(1)
	}
	sink := newProbeFrameSink(*width, *height)
	pts, duration, flags, err := dec.ReceiveFrame(sink)
	if err != nil {
		logger.Error("receive frame failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("frame: pts=%d duration=%d flags=%d\n", pts, duration, flags)
}

// probeFrameSink is the simplest possible FrameSink: two flat buffers
// sized for NV12 at the configured resolution, no stride padding.
type probeFrameSink struct {
	planes [2][]byte
	stride [2]int
}

func newProbeFrameSink(width, height int) *probeFrameSink {
	return &probeFrameSink{
		planes: [2][]byte{make([]byte, width*height), make([]byte, width*height/2)},
		stride: [2]int{width, width},
	}
}

func (s *probeFrameSink) Plane(i int) ([]byte, int) { return s.planes[i], s.stride[i] }

func syntheticNV12Frame(width, height int) *vtremote.Frame {
	luma := make([]byte, width*height)
	chroma := make([]byte, width*height/2)
	for i := range luma {
		luma[i] = byte(i)
	}
	for i := range chroma {
		chroma[i] = 128
	}
	return &vtremote.Frame{
		Planes: [2]vtremote.Plane{
			{Stride: width, Data: luma},
			{Stride: width, Data: chroma},
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	var w io.Writer = os.Stderr
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func printUsage() {
	fmt.Println(`vtremote-probe - VTRemote protocol smoke test

Usage:
  vtremote-probe <command> [options]

Commands:
  encode   dial an accelerator and push one synthetic frame through
  decode   dial an accelerator and push one synthetic packet through
  version  print the version
  help     show this message`)
}
