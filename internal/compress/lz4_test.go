package compress

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

func TestCompressDecompressRoundtrip(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF, 0x01}, 1024) // highly compressible
	var s Scratch

	compressed, ok, err := s.CompressPlane(src)
	if err != nil {
		t.Fatalf("CompressPlane: %v", err)
	}
	if !ok {
		t.Fatalf("expected repetitive data to compress")
	}
	if len(compressed) >= len(src) {
		t.Fatalf("expected compression to shrink repetitive data: got %d, src %d", len(compressed), len(src))
	}

	decompressed, err := s.DecompressPlane(compressed, len(src))
	if err != nil {
		t.Fatalf("DecompressPlane: %v", err)
	}
	if !bytes.Equal(decompressed, src) {
		t.Fatalf("decompressed data does not match source")
	}
}

// TestCompressPlaneIncompressibleFallsBackToRaw matches the pack's own
// lz4.CompressBlock usage: n==0 means "store raw", not an error.
func TestCompressPlaneIncompressibleFallsBackToRaw(t *testing.T) {
	src := make([]byte, 4096)
	if _, err := rand.Read(src); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	var s Scratch

	compressed, ok, err := s.CompressPlane(src)
	if err != nil {
		t.Fatalf("CompressPlane: %v", err)
	}
	if ok {
		// Extremely unlikely for random data, but not impossible; either
		// way the call must not be treated as a hard failure.
		if len(compressed) == 0 {
			t.Fatalf("ok=true but compressed is empty")
		}
		return
	}
	if compressed != nil {
		t.Fatalf("expected nil compressed slice when ok=false, got %d bytes", len(compressed))
	}
}

func TestDecompressSizeMismatchIsInvalidData(t *testing.T) {
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 256)
	var s Scratch
	compressed, ok, err := s.CompressPlane(src)
	if err != nil {
		t.Fatalf("CompressPlane: %v", err)
	}
	if !ok {
		t.Fatalf("expected repetitive data to compress")
	}
	if _, err := s.DecompressPlane(compressed, len(src)+16); !vterr.Is(err, vterr.InvalidData) {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestScratchBuffersReusedAcrossCalls(t *testing.T) {
	var s Scratch
	src1 := bytes.Repeat([]byte{9}, 4096)
	if _, _, err := s.CompressPlane(src1); err != nil {
		t.Fatalf("CompressPlane: %v", err)
	}
	firstCap := cap(s.compressBuf)

	src2 := bytes.Repeat([]byte{9}, 512)
	if _, _, err := s.CompressPlane(src2); err != nil {
		t.Fatalf("CompressPlane: %v", err)
	}
	if cap(s.compressBuf) != firstCap {
		t.Errorf("expected scratch buffer capacity to be retained across smaller calls, got %d want %d", cap(s.compressBuf), firstCap)
	}
}
