package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/davelindo/videotoolbox-remote/internal/compress"
	"github.com/davelindo/videotoolbox-remote/internal/config"
	"github.com/davelindo/videotoolbox-remote/internal/proto"
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// ErrBackpressure is returned by Encoder.SendFrame when inflight_frames
// has reached max_inflight: the caller must drain with ReceivePacket
// (which this call has already primed with one packet, if one arrived)
// before offering another frame.
var ErrBackpressure = errors.New("vtremote: encoder at max inflight, call ReceivePacket before sending more frames")

// EncoderConfig configures an encoder session.
type EncoderConfig struct {
	CommonConfig
	MaxInflight int // 1..128, default 16
}

// Encoder drives one encoder session: handshake, then a pipelined
// send-frame/receive-packet loop with backpressure and flush, per
// spec.md section 4.5.
type Encoder struct {
	io     msgIO
	cfg    EncoderConfig
	logger *slog.Logger

	maxInflight    int
	inflightFrames int
	highWatermark  int
	flushing       bool
	done           bool

	framesSent      uint64
	packetsReceived uint64
	startedAt       time.Time

	ring    *packetRing
	scratch compress.Scratch

	Extradata []byte // Annex-B, set after handshake
	Warnings  []string
}

// NewEncoder connects, performs the handshake, and returns a ready
// encoder session.
func NewEncoder(cfg EncoderConfig, logger *slog.Logger) (*Encoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 16
	}
	if cfg.MaxInflight < 1 || cfg.MaxInflight > 128 {
		return nil, vterr.New(vterr.InvalidArgument, "inflight must be 1..128")
	}
	if err := checkWireCompression(cfg.WireCompression); err != nil {
		return nil, err
	}
	conn, err := transportConnect(cfg.Host, cfg.TimeoutMS)
	if err != nil {
		return nil, err
	}
	e := &Encoder{
		io:          msgIO{conn: conn},
		cfg:         cfg,
		logger:      logger,
		maxInflight: cfg.MaxInflight,
		ring:        newPacketRing(cfg.MaxInflight),
		startedAt:   time.Now(),
	}
	result, err := doHandshake(cfg.CommonConfig, &e.io, true)
	if err != nil {
		conn.Close()
		return nil, err
	}
	e.Extradata = result.ExtradataAnnexB
	e.Warnings = result.Warnings
	for _, w := range e.Warnings {
		logger.Warn("accelerator warning", "message", w)
	}
	return e, nil
}

// Close releases the socket. Any packets still queued are discarded. It
// logs a byte-exact session summary (bytes in/out, frame/packet counts,
// high-watermark inflight, elapsed time, throughput in each direction),
// grounded on ff_vtremote_common_close's "VT remote summary" log line.
func (e *Encoder) Close() error {
	bytesOut := e.io.conn.BytesOut()
	bytesIn := e.io.conn.BytesIn()
	elapsed := time.Since(e.startedAt)
	e.logger.Info("session closed",
		"frames_sent", e.framesSent,
		"packets_received", e.packetsReceived,
		"bytes_out", bytesOut,
		"bytes_in", bytesIn,
		"max_inflight_watermark", e.highWatermark,
		"elapsed", elapsed,
		"out_mbit_s", mbitPerSecond(bytesOut, elapsed),
		"in_mbit_s", mbitPerSecond(bytesIn, elapsed),
	)
	return e.io.conn.Close()
}

// mbitPerSecond computes megabits/second for n bytes over elapsed,
// matching ff_vtremote_common_close's mbps_in/mbps_out formula.
func mbitPerSecond(n uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(n) * 8.0 / (secs * 1_000_000.0)
}

// SendFrame offers one frame, or nil to signal draining (the embedding
// framework is at EOF and wants remaining packets flushed out).
//
// If the session is already at max inflight, SendFrame attempts one
// receive instead of sending, primes the packet queue with whatever it
// gets, and returns ErrBackpressure without having sent f: the caller
// must call ReceivePacket and retry.
func (e *Encoder) SendFrame(f *Frame) error {
	if e.done {
		return vterr.New(vterr.EndOfStream, "encoder session already done")
	}
	if f != nil && e.inflightFrames >= e.maxInflight {
		if err := e.fillRingOnce(); err != nil {
			return err
		}
		return ErrBackpressure
	}
	if f != nil {
		if err := e.sendFrameMsg(f); err != nil {
			return err
		}
		e.framesSent++
		e.inflightFrames++
		if e.inflightFrames > e.highWatermark {
			e.highWatermark = e.inflightFrames
		}
		return nil
	}
	if e.flushing {
		return nil
	}
	e.flushing = true
	proto.BuildEmpty(&e.io.wbuf)
	return e.io.send(wire.MsgFlush)
}

// ReceivePacket returns the oldest queued packet, blocking on the
// network as needed to produce one.
func (e *Encoder) ReceivePacket() (*Packet, error) {
	if e.done {
		return nil, vterr.New(vterr.EndOfStream, "encoder session already done")
	}
	if p, ok := e.ring.pop(); ok {
		return p, nil
	}
	if err := e.fillRingOnce(); err != nil {
		return nil, err
	}
	p, _ := e.ring.pop()
	return p, nil
}

func (e *Encoder) sendFrameMsg(f *Frame) error {
	heights := [2]int{e.cfg.Height, e.cfg.Height / 2}
	planes := make([]proto.PlaneIn, 0, 2)
	for i, pl := range f.Planes {
		size := pl.Stride * heights[i]
		if size > len(pl.Data) {
			return vterr.New(vterr.InvalidArgument, "plane data shorter than stride*height")
		}
		data := pl.Data[:size]
		if e.cfg.WireCompression == config.CompressionLZ4 {
			compressed, ok, err := e.scratch.CompressPlane(data)
			if err != nil {
				return err
			}
			if ok {
				data = compressed
			}
			// else: incompressible plane, send data raw at its full
			// stride*height size; the decoder detects this by comparing
			// the wire data_len against stride*height.
		}
		planes = append(planes, proto.PlaneIn{Stride: uint32(pl.Stride), Height: uint32(heights[i]), Data: data})
	}
	if err := proto.BuildFrame(&e.io.wbuf, proto.FrameOut{
		PTS: f.PTS, Duration: f.Duration, Flags: f.Flags, Planes: planes,
	}); err != nil {
		return err
	}
	return e.io.send(wire.MsgFrame)
}

// fillRingOnce drives the receive loop until at least one packet has
// been enqueued, or a terminal/error condition is reached.
func (e *Encoder) fillRingOnce() error {
	for {
		msgType, payload, err := e.io.recv()
		if err != nil {
			if vterr.Is(err, vterr.WouldBlock) {
				return vterr.New(vterr.IO, "receive timed out (treated as IO for encoder sessions)")
			}
			return err
		}
		switch msgType {
		case wire.MsgPacket:
			view, err := proto.ParsePacket(payload)
			if err != nil {
				return err
			}
			pkt := &Packet{
				PTS: view.PTS, DTS: view.DTS, Duration: view.Duration,
				Keyframe: view.Flags&proto.PacketFlagKeyframe != 0,
				Data:     append([]byte(nil), view.Data...),
			}
			if err := e.ring.push(pkt); err != nil {
				return err
			}
			e.packetsReceived++
			if e.inflightFrames > 0 {
				e.inflightFrames--
			}
			return nil
		case wire.MsgDone:
			e.done = true
			return vterr.New(vterr.EndOfStream, "accelerator sent DONE")
		case wire.MsgPing:
			proto.BuildEmpty(&e.io.wbuf)
			if err := e.io.send(wire.MsgPong); err != nil {
				return err
			}
		case wire.MsgError:
			em, perr := proto.ParseError(payload)
			if perr == nil {
				e.logger.Error("accelerator reported error", "code", em.Code, "message", em.Message)
			}
			return vterr.New(vterr.IO, "accelerator sent ERROR")
		default:
			// unknown message type: dropped per spec.md section 3.
		}
	}
}
