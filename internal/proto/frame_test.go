package proto

import (
	"bytes"
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// TestFrameParseTwoPlanes matches spec.md section 8's "FRAME parse" scenario.
func TestFrameParseTwoPlanes(t *testing.T) {
	f := FrameOut{
		PTS: 10, Duration: 2, Flags: 1,
		Planes: []PlaneIn{
			{Stride: 2, Height: 2, Data: []byte{1, 2, 3, 4}},
			{Stride: 2, Height: 1, Data: []byte{5, 6}},
		},
	}
	var w wire.WBuf
	if err := BuildFrame(&w, f); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	v, err := ParseFrame(w.Bytes())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if v.PTS != 10 || v.Duration != 2 || v.Flags != 1 || v.PlaneCount != 2 {
		t.Fatalf("header mismatch: %+v", v)
	}
	if v.Planes[0].Stride != 2 || v.Planes[0].Height != 2 || !bytes.Equal(v.Planes[0].Data, []byte{1, 2, 3, 4}) {
		t.Fatalf("plane0 mismatch: %+v", v.Planes[0])
	}
	if v.Planes[1].Stride != 2 || v.Planes[1].Height != 1 || !bytes.Equal(v.Planes[1].Data, []byte{5, 6}) {
		t.Fatalf("plane1 mismatch: %+v", v.Planes[1])
	}
}

// TestFrameRefusesPlaneCountFive matches spec.md's "FRAME refuses
// plane_count=5" property.
func TestFrameRefusesPlaneCountFive(t *testing.T) {
	var w wire.WBuf
	w.PutU64(0)
	w.PutU64(0)
	w.PutU32(0)
	w.PutU8(5)
	if _, err := ParseFrame(w.Bytes()); !vterr.Is(err, vterr.InvalidData) {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestBuildFrameRejectsTooManyPlanes(t *testing.T) {
	planes := make([]PlaneIn, 5)
	var w wire.WBuf
	if err := BuildFrame(&w, FrameOut{Planes: planes}); !vterr.Is(err, vterr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestFrameSideDataRoundtrip(t *testing.T) {
	f := FrameOut{
		Planes: []PlaneIn{{Stride: 1, Height: 1, Data: []byte{9}}},
		SideData: []SideDataIn{
			{Type: 1, Data: []byte{0xAA}},
			{Type: 2, Data: []byte{0xBB, 0xCC}},
		},
	}
	var w wire.WBuf
	if err := BuildFrame(&w, f); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	v, err := ParseFrame(w.Bytes())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if v.SideCount != 2 {
		t.Fatalf("side count = %d, want 2", v.SideCount)
	}
	if v.SideData[0].Type != 1 || !bytes.Equal(v.SideData[0].Data, []byte{0xAA}) {
		t.Fatalf("side[0] = %+v", v.SideData[0])
	}
	if v.SideData[1].Type != 2 || !bytes.Equal(v.SideData[1].Data, []byte{0xBB, 0xCC}) {
		t.Fatalf("side[1] = %+v", v.SideData[1])
	}
}

// TestFrameSideDataOverflowSkippedButConsumed verifies that side-data
// entries beyond MaxSideData are skipped yet their bytes remain consumed,
// keeping the cursor aligned (spec.md section 4.3).
func TestFrameSideDataOverflowSkippedButConsumed(t *testing.T) {
	f := FrameOut{Planes: []PlaneIn{{Stride: 1, Height: 1, Data: []byte{0}}}}
	for i := 0; i < MaxSideData+3; i++ {
		f.SideData = append(f.SideData, SideDataIn{Type: uint32(i), Data: []byte{byte(i)}})
	}
	var w wire.WBuf
	if err := BuildFrame(&w, f); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	v, err := ParseFrame(w.Bytes())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if v.SideCount != MaxSideData {
		t.Fatalf("side count = %d, want %d", v.SideCount, MaxSideData)
	}
}
