package proto

import (
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// MaxPlanes is the largest plane count a FRAME message may carry
// (spec.md section 3: NV12/P010LE are both 2-plane formats, but the wire
// layout reserves room for up to 4).
const MaxPlanes = 4

// MaxSideData is the number of side-data slots a FrameView retains;
// additional entries on the wire are skipped but their bytes are still
// consumed so the cursor stays aligned (spec.md section 4.3).
const MaxSideData = 8

// PlaneIn describes one plane to be written into a FRAME payload.
type PlaneIn struct {
	Stride uint32
	Height uint32
	Data   []byte
}

// SideDataIn describes one side-data entry to be attached to a FRAME payload.
type SideDataIn struct {
	Type uint32
	Data []byte
}

// FrameOut is the set of arguments used to build a FRAME message.
type FrameOut struct {
	PTS      uint64
	Duration uint64
	Flags    uint32
	Planes   []PlaneIn
	SideData []SideDataIn
}

// FrameFlagKeyframe marks the encoded source as a keyframe; FRAME itself
// does not use this bit (packets do), but session code shares the flags
// field across both message kinds.
const FrameFlagKeyframe uint32 = 1 << 0

// BuildFrame encodes f into w, which is reset first. Rejects more than
// MaxPlanes planes before writing anything.
func BuildFrame(w *wire.WBuf, f FrameOut) error {
	if len(f.Planes) == 0 || len(f.Planes) > MaxPlanes {
		return vterr.New(vterr.InvalidArgument, "frame plane count must be 1..4")
	}
	w.Reset()
	w.PutU64(f.PTS)
	w.PutU64(f.Duration)
	w.PutU32(f.Flags)
	w.PutU8(uint8(len(f.Planes)))
	for _, p := range f.Planes {
		w.PutU32(p.Stride)
		w.PutU32(p.Height)
		w.PutU32(uint32(len(p.Data)))
		w.PutBytes(p.Data)
	}
	if len(f.SideData) == 0 {
		return nil
	}
	if len(f.SideData) > 0xFF {
		return vterr.New(vterr.InvalidArgument, "too many side-data entries")
	}
	w.PutU8(uint8(len(f.SideData)))
	for _, sd := range f.SideData {
		w.PutU32(sd.Type)
		w.PutU32(uint32(len(sd.Data)))
		w.PutBytes(sd.Data)
	}
	return nil
}

// PlaneView is a borrowed, non-owning view over one decoded plane.
type PlaneView struct {
	Stride  uint32
	Height  uint32
	DataLen uint32
	Data    []byte
}

// SideDataView is a borrowed side-data entry retained in a FrameView.
type SideDataView struct {
	Type uint32
	Data []byte
}

// FrameView is a non-owning parsed view over a FRAME payload. It is valid
// only as long as the backing buffer is unmodified.
type FrameView struct {
	PTS        uint64
	Duration   uint64
	Flags      uint32
	PlaneCount int
	Planes     [MaxPlanes]PlaneView
	SideCount  int
	SideData   [MaxSideData]SideDataView
}

// ParseFrame decodes a FRAME payload into a FrameView. Rejects plane_count
// greater than MaxPlanes with InvalidData. Side-data entries beyond
// MaxSideData are skipped but their bytes are still consumed.
func ParseFrame(payload []byte) (FrameView, error) {
	r := wire.NewRBuf(payload)
	var v FrameView
	var err error
	if v.PTS, err = r.ReadU64(); err != nil {
		return FrameView{}, err
	}
	if v.Duration, err = r.ReadU64(); err != nil {
		return FrameView{}, err
	}
	if v.Flags, err = r.ReadU32(); err != nil {
		return FrameView{}, err
	}
	planeCount, err := r.ReadU8()
	if err != nil {
		return FrameView{}, err
	}
	if planeCount > MaxPlanes {
		return FrameView{}, vterr.New(vterr.InvalidData, "plane_count exceeds 4")
	}
	v.PlaneCount = int(planeCount)
	for i := 0; i < v.PlaneCount; i++ {
		stride, err := r.ReadU32()
		if err != nil {
			return FrameView{}, err
		}
		height, err := r.ReadU32()
		if err != nil {
			return FrameView{}, err
		}
		dataLen, err := r.ReadU32()
		if err != nil {
			return FrameView{}, err
		}
		data, err := r.ReadBytes(int(dataLen))
		if err != nil {
			return FrameView{}, err
		}
		v.Planes[i] = PlaneView{Stride: stride, Height: height, DataLen: dataLen, Data: data}
	}
	if r.Remaining() == 0 {
		return v, nil
	}
	sideCount, err := r.ReadU8()
	if err != nil {
		return FrameView{}, err
	}
	for i := 0; i < int(sideCount); i++ {
		sdType, err := r.ReadU32()
		if err != nil {
			return FrameView{}, err
		}
		size, err := r.ReadU32()
		if err != nil {
			return FrameView{}, err
		}
		data, err := r.ReadBytes(int(size))
		if err != nil {
			return FrameView{}, err
		}
		if i < MaxSideData {
			v.SideData[i] = SideDataView{Type: sdType, Data: data}
			v.SideCount++
		}
	}
	return v, nil
}
