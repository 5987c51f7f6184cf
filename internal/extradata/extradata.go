// Package extradata converts the codec configuration blobs a CONFIGURE_ACK
// carries (avcC for H.264, hvcC for HEVC) into Annex-B byte-stream form so
// the embedding framework's muxers can reformat packets without knowing
// about the accelerator's native container (spec.md section 4.8).
//
// Grounded directly on vtremote_hevc_extradata_to_annexb and the inline
// avcC-handling branch of vtremote_handle_configure_ack in the original
// implementation; there is no third-party NAL-bitstream library in the
// example pack, so this is deliberately stdlib-only bit manipulation (see
// DESIGN.md).
package extradata

import (
	"encoding/binary"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

const startCode = "\x00\x00\x00\x01"

// minHVCCLength is the shortest legal hvcC box: configurationVersion
// through avgFrameRate (21 bytes) + lengthSizeMinusOne (1) + numOfArrays (1).
const minHVCCLength = 23

// AVCToAnnexB converts an avcC extradata blob into Annex-B. Layout:
// byte0 version, bytes1-3 profile/compat/level, byte4 lengthSizeMinusOne
// (low 2 bits), byte5 low 5 bits = SPS count, then SPS entries
// (u16 len + bytes), then a PPS count byte, then PPS entries.
func AVCToAnnexB(avcc []byte) ([]byte, error) {
	if len(avcc) < 6 || avcc[0] != 1 {
		return nil, vterr.New(vterr.InvalidData, "avcC extradata too short or wrong version")
	}
	pos := 5
	out := make([]byte, 0, len(avcc)+16)

	spsCount := int(avcc[pos] & 0x1f)
	pos++
	for i := 0; i < spsCount; i++ {
		nal, next, err := readLengthPrefixedNAL(avcc, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, startCode...)
		out = append(out, nal...)
		pos = next
	}

	if pos >= len(avcc) {
		return nil, vterr.New(vterr.InvalidData, "avcC extradata truncated before pps_count")
	}
	ppsCount := int(avcc[pos])
	pos++
	for i := 0; i < ppsCount; i++ {
		nal, next, err := readLengthPrefixedNAL(avcc, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, startCode...)
		out = append(out, nal...)
		pos = next
	}
	return out, nil
}

func readLengthPrefixedNAL(buf []byte, pos int) (nal []byte, next int, err error) {
	if pos+2 > len(buf) {
		return nil, 0, vterr.New(vterr.InvalidData, "avcC extradata truncated reading NAL length")
	}
	n := int(binary.BigEndian.Uint16(buf[pos : pos+2]))
	pos += 2
	if pos+n > len(buf) {
		return nil, 0, vterr.New(vterr.InvalidData, "avcC extradata truncated reading NAL body")
	}
	return buf[pos : pos+n], pos + n, nil
}

// isAnnexBStartCode reports whether buf begins with a 3- or 4-byte Annex-B
// start code.
func isAnnexBStartCode(buf []byte) bool {
	if len(buf) >= 4 && binary.BigEndian.Uint32(buf) == 1 {
		return true
	}
	if len(buf) >= 3 && buf[0] == 0 && buf[1] == 0 && buf[2] == 1 {
		return true
	}
	return false
}

// HEVCToAnnexB converts an hvcC extradata blob into Annex-B. If the input
// already begins with an Annex-B start code it is returned unchanged
// (some accelerators report HEVC extradata already reformatted).
// Otherwise it skips the 21 fixed bytes (configurationVersion through
// avgFrameRate) and the lengthSizeMinusOne byte, then walks numOfArrays
// groups of {header byte, u16 num_nalus, num_nalus x (u16 len + bytes)}.
func HEVCToAnnexB(hvcc []byte) ([]byte, error) {
	if isAnnexBStartCode(hvcc) {
		out := make([]byte, len(hvcc))
		copy(out, hvcc)
		return out, nil
	}
	if len(hvcc) < minHVCCLength {
		return nil, vterr.New(vterr.InvalidData, "hvcC extradata shorter than minimum length")
	}

	pos := 21
	if pos+2 > len(hvcc) {
		return nil, vterr.New(vterr.InvalidData, "hvcC extradata truncated before array count")
	}
	pos++ // lengthSizeMinusOne
	numArrays := int(hvcc[pos])
	pos++

	out := make([]byte, 0, len(hvcc)+16)
	for i := 0; i < numArrays; i++ {
		if pos+3 > len(hvcc) {
			return nil, vterr.New(vterr.InvalidData, "hvcC extradata truncated reading array header")
		}
		pos++ // array_completeness + reserved + NAL_unit_type
		numNalus := int(binary.BigEndian.Uint16(hvcc[pos : pos+2]))
		pos += 2
		for j := 0; j < numNalus; j++ {
			nal, next, err := readLengthPrefixedNAL(hvcc, pos)
			if err != nil {
				return nil, err
			}
			if len(nal) == 0 {
				return nil, vterr.New(vterr.InvalidData, "hvcC extradata has zero-length NAL")
			}
			out = append(out, startCode...)
			out = append(out, nal...)
			pos = next
		}
	}
	return out, nil
}
