package proto

import (
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// packetMinSize is 8(pts)+8(dts)+8(duration)+4(flags)+4(data_len).
const packetMinSize = 8 + 8 + 8 + 4 + 4

// PacketFlagKeyframe marks an encoded packet as a keyframe (spec.md
// section 4.5: flags bit 0).
const PacketFlagKeyframe uint32 = 1 << 0

// PacketOut is the set of arguments used to build a PACKET message.
type PacketOut struct {
	PTS, DTS, Duration uint64
	Flags              uint32
	Data               []byte
}

// BuildPacket encodes p into w, which is reset first.
func BuildPacket(w *wire.WBuf, p PacketOut) error {
	w.Reset()
	w.PutU64(p.PTS)
	w.PutU64(p.DTS)
	w.PutU64(p.Duration)
	w.PutU32(p.Flags)
	w.PutU32(uint32(len(p.Data)))
	w.PutBytes(p.Data)
	return nil
}

// PacketView is a non-owning parsed view over a PACKET payload. It is
// valid only as long as the backing buffer is unmodified; callers that
// need to retain a packet past the lifetime of the receive buffer must
// copy Data.
type PacketView struct {
	PTS, DTS, Duration uint64
	Flags              uint32
	Data               []byte
}

// ParsePacket decodes a PACKET payload. Requires at least packetMinSize
// bytes before reading, and InvalidData if the declared data_len exceeds
// what remains (spec.md section 6, section 8 "PACKET parse").
func ParsePacket(payload []byte) (PacketView, error) {
	if len(payload) < packetMinSize {
		return PacketView{}, vterr.New(vterr.InvalidData, "packet payload shorter than minimum size")
	}
	r := wire.NewRBuf(payload)
	var v PacketView
	var err error
	if v.PTS, err = r.ReadU64(); err != nil {
		return PacketView{}, err
	}
	if v.DTS, err = r.ReadU64(); err != nil {
		return PacketView{}, err
	}
	if v.Duration, err = r.ReadU64(); err != nil {
		return PacketView{}, err
	}
	if v.Flags, err = r.ReadU32(); err != nil {
		return PacketView{}, err
	}
	dataLen, err := r.ReadU32()
	if err != nil {
		return PacketView{}, err
	}
	if v.Data, err = r.ReadBytes(int(dataLen)); err != nil {
		return PacketView{}, err
	}
	return v, nil
}
