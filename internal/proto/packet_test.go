package proto

import (
	"bytes"
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// TestPacketParseScenario matches spec.md section 8's "PACKET parse" scenario.
func TestPacketParseScenario(t *testing.T) {
	p := PacketOut{PTS: 10, DTS: 9, Duration: 2, Flags: 1, Data: []byte{0x00, 0x00, 0x01}}
	var w wire.WBuf
	if err := BuildPacket(&w, p); err != nil {
		t.Fatalf("BuildPacket: %v", err)
	}
	v, err := ParsePacket(w.Bytes())
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if v.PTS != 10 || v.DTS != 9 || v.Duration != 2 || v.Flags != 1 || !bytes.Equal(v.Data, p.Data) {
		t.Fatalf("mismatch: %+v", v)
	}
}

func TestPacketParseDataLenExceedsRemaining(t *testing.T) {
	var w wire.WBuf
	w.PutU64(10)
	w.PutU64(9)
	w.PutU64(2)
	w.PutU32(1)
	w.PutU32(100) // declared data_len, but nothing follows
	if _, err := ParsePacket(w.Bytes()); !vterr.Is(err, vterr.InvalidData) {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestPacketParseRejectsShortPayload(t *testing.T) {
	if _, err := ParsePacket([]byte{1, 2, 3}); !vterr.Is(err, vterr.InvalidData) {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

// TestPacketKeyframeFlagRoundTrip matches spec.md's "Keyframe flag
// round-trip" scenario.
func TestPacketKeyframeFlagRoundTrip(t *testing.T) {
	var w wire.WBuf
	if err := BuildPacket(&w, PacketOut{Flags: PacketFlagKeyframe, Data: []byte{1}}); err != nil {
		t.Fatalf("BuildPacket: %v", err)
	}
	v, err := ParsePacket(w.Bytes())
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if v.Flags&PacketFlagKeyframe == 0 {
		t.Fatalf("keyframe flag lost in roundtrip: flags=%d", v.Flags)
	}
}
