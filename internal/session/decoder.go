package session

import (
	"log/slog"
	"time"

	"github.com/davelindo/videotoolbox-remote/internal/compress"
	"github.com/davelindo/videotoolbox-remote/internal/config"
	"github.com/davelindo/videotoolbox-remote/internal/proto"
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// DecoderConfig configures a decoder session.
type DecoderConfig struct {
	CommonConfig
}

// Decoder drives one decoder session: handshake, then a send-packet/
// receive-frame loop per spec.md section 4.6.
type Decoder struct {
	io     msgIO
	cfg    DecoderConfig
	logger *slog.Logger

	flushing bool
	done     bool

	packetsSent    uint64
	framesReceived uint64
	startedAt      time.Time

	scratch compress.Scratch

	ReportedPixFmt PixFmt
	Warnings       []string
}

// NewDecoder connects and performs the handshake.
func NewDecoder(cfg DecoderConfig, logger *slog.Logger) (*Decoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := checkWireCompression(cfg.WireCompression); err != nil {
		return nil, err
	}
	conn, err := transportConnect(cfg.Host, cfg.TimeoutMS)
	if err != nil {
		return nil, err
	}
	d := &Decoder{io: msgIO{conn: conn}, cfg: cfg, logger: logger, startedAt: time.Now()}
	result, err := doHandshake(cfg.CommonConfig, &d.io, false)
	if err != nil {
		conn.Close()
		return nil, err
	}
	d.ReportedPixFmt = result.ReportedPixFmt
	d.Warnings = result.Warnings
	for _, w := range d.Warnings {
		logger.Warn("accelerator warning", "message", w)
	}
	return d, nil
}

// Close releases the socket. It logs a byte-exact session summary
// (bytes in/out, packet/frame counts, elapsed time, throughput in each
// direction), grounded on ff_vtremote_dec_close's summary log line.
func (d *Decoder) Close() error {
	bytesOut := d.io.conn.BytesOut()
	bytesIn := d.io.conn.BytesIn()
	elapsed := time.Since(d.startedAt)
	d.logger.Info("session closed",
		"packets_sent", d.packetsSent,
		"frames_received", d.framesReceived,
		"bytes_out", bytesOut,
		"bytes_in", bytesIn,
		"elapsed", elapsed,
		"out_mbit_s", mbitPerSecond(bytesOut, elapsed),
		"in_mbit_s", mbitPerSecond(bytesIn, elapsed),
	)
	return d.io.conn.Close()
}

// SendPacket offers one encoded packet, or nil to signal draining. PTS of
// 0 and DTS of 0 are both taken literally: callers must resolve any
// "unset" sentinel from their own timestamp representation before
// calling SendPacket, since Packet has no such sentinel in Go.
func (d *Decoder) SendPacket(p *Packet) error {
	if d.done {
		return vterr.New(vterr.EndOfStream, "decoder session already done")
	}
	if p != nil && len(p.Data) > 0 {
		flags := uint32(0)
		if p.Keyframe {
			flags |= proto.PacketFlagKeyframe
		}
		if err := proto.BuildPacket(&d.io.wbuf, proto.PacketOut{
			PTS: p.PTS, DTS: p.DTS, Duration: p.Duration, Flags: flags, Data: p.Data,
		}); err != nil {
			return err
		}
		if err := d.io.send(wire.MsgPacket); err != nil {
			return err
		}
		d.packetsSent++
		return nil
	}
	if d.flushing {
		return nil
	}
	d.flushing = true
	proto.BuildEmpty(&d.io.wbuf)
	return d.io.send(wire.MsgFlush)
}

// FrameSink receives one decoded frame's planes. Planes is always length
// 2 (NV12/P010LE). DstStride lets the sink's destination buffer have a
// different stride than the wire plane; ReceiveFrame copies
// min(srcStride, dstStride) bytes per row.
type FrameSink interface {
	Plane(index int) (data []byte, dstStride int)
}

// ReceiveFrame drives the receive loop until a FRAME arrives, decompresses
// it if needed, and copies its planes row-wise into sink. Unlike the
// encoder, a WouldBlock observed on the very first header read of this
// call is returned to the caller as-is (spec.md's preserved asymmetry:
// the decoder treats "no output yet" as retryable, the encoder as IO).
func (d *Decoder) ReceiveFrame(sink FrameSink) (pts, duration uint64, flags uint32, err error) {
	if d.done {
		return 0, 0, 0, vterr.New(vterr.EndOfStream, "decoder session already done")
	}
	for {
		msgType, payload, rerr := d.io.recv()
		if rerr != nil {
			return 0, 0, 0, rerr
		}
		switch msgType {
		case wire.MsgFrame:
			view, perr := proto.ParseFrame(payload)
			if perr != nil {
				return 0, 0, 0, perr
			}
			if err := d.fillSink(view, sink); err != nil {
				return 0, 0, 0, err
			}
			d.framesReceived++
			return view.PTS, view.Duration, view.Flags, nil
		case wire.MsgDone:
			d.done = true
			return 0, 0, 0, vterr.New(vterr.EndOfStream, "accelerator sent DONE")
		case wire.MsgPing:
			proto.BuildEmpty(&d.io.wbuf)
			if err := d.io.send(wire.MsgPong); err != nil {
				return 0, 0, 0, err
			}
		case wire.MsgError:
			em, perr := proto.ParseError(payload)
			if perr == nil {
				d.logger.Error("accelerator reported error", "code", em.Code, "message", em.Message)
			}
			return 0, 0, 0, vterr.New(vterr.IO, "accelerator sent ERROR")
		default:
			// unknown message type: dropped per spec.md section 3.
		}
	}
}

func (d *Decoder) fillSink(view proto.FrameView, sink FrameSink) error {
	planeCount := view.PlaneCount
	if planeCount > 2 {
		planeCount = 2
	}
	for i := 0; i < planeCount; i++ {
		pv := view.Planes[i]
		src := pv.Data
		expected := int(pv.Stride) * int(pv.Height)
		if d.cfg.WireCompression == config.CompressionLZ4 && len(src) != expected {
			// len(src) == expected means the encoder fell back to sending
			// this plane raw (incompressible input); only attempt
			// decompression when the wire size actually differs.
			decompressed, err := d.scratch.DecompressPlane(src, expected)
			if err != nil {
				return err
			}
			src = decompressed
		}
		dst, dstStride := sink.Plane(i)
		copyPlaneRows(dst, dstStride, src, int(pv.Stride), int(pv.Height))
	}
	return nil
}

// copyPlaneRows copies height rows of min(srcStride, dstStride) bytes
// each from src to dst (spec.md section 4.6).
func copyPlaneRows(dst []byte, dstStride int, src []byte, srcStride int, height int) {
	rowLen := srcStride
	if dstStride < rowLen {
		rowLen = dstStride
	}
	for row := 0; row < height; row++ {
		srcOff := row * srcStride
		dstOff := row * dstStride
		if srcOff+rowLen > len(src) || dstOff+rowLen > len(dst) {
			return
		}
		copy(dst[dstOff:dstOff+rowLen], src[srcOff:srcOff+rowLen])
	}
}
