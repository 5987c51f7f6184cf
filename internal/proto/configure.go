package proto

import (
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// PixFmt is the wire encoding of a pixel format in CONFIGURE.
type PixFmt uint8

const (
	PixFmtNV12  PixFmt = 1
	PixFmtP010  PixFmt = 2
)

// Rational is a timebase or frame-rate numerator/denominator pair.
type Rational struct {
	Num, Den uint32
}

// Configure is the client's codec-configuration request, sent once per
// session immediately after a successful HELLO/HELLO_ACK exchange.
type Configure struct {
	Width, Height uint32
	PixFmt        PixFmt
	Timebase      Rational
	FrameRate     Rational
	Opts          []KV
	Extradata     []byte
}

// BuildConfigure encodes c into w, which is reset first. Options are
// emitted in c.Opts order exactly as given; callers are responsible for
// including only non-default values (spec.md section 4.4).
func BuildConfigure(w *wire.WBuf, c Configure) error {
	if len(c.Opts) > 0xFFFF {
		return vterr.New(vterr.InvalidArgument, "too many configure options")
	}
	w.Reset()
	w.PutU32(c.Width)
	w.PutU32(c.Height)
	w.PutU8(uint8(c.PixFmt))
	w.PutU32(c.Timebase.Num)
	w.PutU32(c.Timebase.Den)
	w.PutU32(c.FrameRate.Num)
	w.PutU32(c.FrameRate.Den)
	w.PutU16(uint16(len(c.Opts)))
	for _, kv := range c.Opts {
		if err := w.PutString(kv.Key); err != nil {
			return err
		}
		if err := w.PutString(kv.Value); err != nil {
			return err
		}
	}
	if len(c.Extradata) > int(^uint32(0)) {
		return vterr.New(vterr.InvalidArgument, "extradata too large")
	}
	w.PutU32(uint32(len(c.Extradata)))
	w.PutBytes(c.Extradata)
	return nil
}

// ParseConfigure decodes a CONFIGURE payload. Used by tests and by any
// future server-side tooling; the client itself only builds this message.
func ParseConfigure(payload []byte) (Configure, error) {
	r := wire.NewRBuf(payload)
	var c Configure
	var err error
	if c.Width, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	if c.Height, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	pf, err := r.ReadU8()
	if err != nil {
		return Configure{}, err
	}
	c.PixFmt = PixFmt(pf)
	if c.Timebase.Num, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	if c.Timebase.Den, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	if c.FrameRate.Num, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	if c.FrameRate.Den, err = r.ReadU32(); err != nil {
		return Configure{}, err
	}
	count, err := r.ReadU16()
	if err != nil {
		return Configure{}, err
	}
	c.Opts = make([]KV, 0, count)
	for i := 0; i < int(count); i++ {
		k, err := r.ReadString()
		if err != nil {
			return Configure{}, err
		}
		v, err := r.ReadString()
		if err != nil {
			return Configure{}, err
		}
		c.Opts = append(c.Opts, KV{Key: k, Value: v})
	}
	extraLen, err := r.ReadU32()
	if err != nil {
		return Configure{}, err
	}
	if c.Extradata, err = r.ReadBytes(int(extraLen)); err != nil {
		return Configure{}, err
	}
	return c, nil
}

// ConfigureAck is the accelerator's reply to CONFIGURE.
type ConfigureAck struct {
	Status      uint8
	Extra       []byte
	ReportedPix PixFmt
	Warnings    []string
}

// BuildConfigureAck encodes a into w, which is reset first.
func BuildConfigureAck(w *wire.WBuf, a ConfigureAck) error {
	if len(a.Extra) > 0xFFFF {
		return vterr.New(vterr.InvalidArgument, "extra data exceeds 65535 bytes")
	}
	if len(a.Warnings) > 0xFF {
		return vterr.New(vterr.InvalidArgument, "too many warning strings")
	}
	w.Reset()
	w.PutU8(a.Status)
	w.PutU16(uint16(len(a.Extra)))
	w.PutBytes(a.Extra)
	w.PutU8(uint8(a.ReportedPix))
	w.PutU8(uint8(len(a.Warnings)))
	for _, warn := range a.Warnings {
		if err := w.PutString(warn); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfigureAck decodes a CONFIGURE_ACK payload: `{status:u8, extra_len:u16,
// extra_bytes, reported_pix:u8, warn_count:u8, warn_strs}` (spec.md section 6).
// A nonzero status is not itself treated as an error here; the session layer
// maps status!=0 to InvalidData per spec.md section 4.4 step 5.
func ParseConfigureAck(payload []byte) (ConfigureAck, error) {
	r := wire.NewRBuf(payload)
	var a ConfigureAck
	status, err := r.ReadU8()
	if err != nil {
		return ConfigureAck{}, err
	}
	a.Status = status
	extraLen, err := r.ReadU16()
	if err != nil {
		return ConfigureAck{}, err
	}
	extra, err := r.ReadBytes(int(extraLen))
	if err != nil {
		return ConfigureAck{}, err
	}
	a.Extra = extra
	reportedPix, err := r.ReadU8()
	if err != nil {
		return ConfigureAck{}, err
	}
	a.ReportedPix = PixFmt(reportedPix)
	warnCount, err := r.ReadU8()
	if err != nil {
		return ConfigureAck{}, err
	}
	a.Warnings = make([]string, 0, warnCount)
	for i := 0; i < int(warnCount); i++ {
		s, err := r.ReadString()
		if err != nil {
			return ConfigureAck{}, err
		}
		a.Warnings = append(a.Warnings, s)
	}
	return a, nil
}
