// Package compress implements the optional per-plane LZ4 block-mode
// compression layer (spec.md section 4.6): no framing, no checksums, just
// raw LZ4 blocks sized against the plane's own stride*height.
//
// The wire protocol carries no third-party serialization format (HELLO
// through PACKET are bit-exact structs), so the only domain dependency
// this client pulls in is the codec's own payload compressor. Grounded on
// the pack's pierrec/lz4/v4 users (syncthing, flydb, superchat), matching
// the original's direct liblz4 (LZ4_compress_default/LZ4_decompress_safe)
// linkage.
package compress

import (
	"github.com/pierrec/lz4/v4"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

// Scratch holds the two reusable compression buffers a session owns
// (spec.md section 4.1: "compression_scratch[2]"), one for compress,
// one for decompress, so steady-state encode/decode does no per-frame
// allocation beyond what LZ4 itself needs internally.
type Scratch struct {
	compressBuf   []byte
	decompressBuf []byte
	hashTable     []int
}

// CompressPlane compresses src (exactly stride*height bytes) into a
// buffer sized to lz4.CompressBlockBound(len(src)), reusing s's scratch
// buffer across calls. Returns the compressed slice and true, or, when
// src is incompressible, returns (nil, false, nil): lz4.CompressBlock
// reports that by returning n==0 rather than an expanded block, and
// callers must fall back to sending src itself uncompressed rather than
// treating this as a failure.
func (s *Scratch) CompressPlane(src []byte) ([]byte, bool, error) {
	bound := lz4.CompressBlockBound(len(src))
	if cap(s.compressBuf) < bound {
		s.compressBuf = make([]byte, bound)
	}
	dst := s.compressBuf[:bound]
	if len(s.hashTable) < 1<<16 {
		s.hashTable = make([]int, 1<<16)
	}
	n, err := lz4.CompressBlock(src, dst, s.hashTable)
	if err != nil {
		return nil, false, vterr.Wrap(vterr.ExternalLibrary, "lz4 compress failed", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	return dst[:n], true, nil
}

// DecompressPlane decompresses src into a buffer of exactly expectedSize
// bytes, reusing s's scratch buffer. The decompressed size must equal
// expectedSize exactly; any mismatch is InvalidData (spec.md section 4.6
// and the "LZ4 decoded size mismatch" error case in section 7).
func (s *Scratch) DecompressPlane(src []byte, expectedSize int) ([]byte, error) {
	if cap(s.decompressBuf) < expectedSize {
		s.decompressBuf = make([]byte, expectedSize)
	}
	dst := s.decompressBuf[:expectedSize]
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, vterr.Wrap(vterr.ExternalLibrary, "lz4 decompress failed", err)
	}
	if n != expectedSize {
		return nil, vterr.New(vterr.InvalidData, "lz4 decompressed size does not match expected plane size")
	}
	return dst, nil
}
