package proto

import (
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// TestConfigureBuildFieldOrder matches spec.md section 8's "CONFIGURE build"
// scenario: width=1920, height=1080, pix_fmt=1, tb=(1,30), fr=(30,1),
// opts=[("bitrate","2000000"),("gop","60")], extradata_len=0 produces
// exactly those fields in order followed by a trailing u32 0.
func TestConfigureBuildFieldOrder(t *testing.T) {
	c := Configure{
		Width: 1920, Height: 1080, PixFmt: PixFmtNV12,
		Timebase: Rational{Num: 1, Den: 30},
		FrameRate: Rational{Num: 30, Den: 1},
		Opts: []KV{{Key: "bitrate", Value: "2000000"}, {Key: "gop", Value: "60"}},
	}
	var w wire.WBuf
	if err := BuildConfigure(&w, c); err != nil {
		t.Fatalf("BuildConfigure: %v", err)
	}

	r := wire.NewRBuf(w.Bytes())
	if v, _ := r.ReadU32(); v != 1920 {
		t.Fatalf("width = %d", v)
	}
	if v, _ := r.ReadU32(); v != 1080 {
		t.Fatalf("height = %d", v)
	}
	if v, _ := r.ReadU8(); v != 1 {
		t.Fatalf("pix_fmt = %d", v)
	}
	if v, _ := r.ReadU32(); v != 1 {
		t.Fatalf("tb_num = %d", v)
	}
	if v, _ := r.ReadU32(); v != 30 {
		t.Fatalf("tb_den = %d", v)
	}
	if v, _ := r.ReadU32(); v != 30 {
		t.Fatalf("fr_num = %d", v)
	}
	if v, _ := r.ReadU32(); v != 1 {
		t.Fatalf("fr_den = %d", v)
	}
	if v, _ := r.ReadU16(); v != 2 {
		t.Fatalf("kv_count = %d", v)
	}
	if k, _ := r.ReadString(); k != "bitrate" {
		t.Fatalf("opt[0].key = %q", k)
	}
	if val, _ := r.ReadString(); val != "2000000" {
		t.Fatalf("opt[0].value = %q", val)
	}
	if k, _ := r.ReadString(); k != "gop" {
		t.Fatalf("opt[1].key = %q", k)
	}
	if val, _ := r.ReadString(); val != "60" {
		t.Fatalf("opt[1].value = %q", val)
	}
	if v, _ := r.ReadU32(); v != 0 {
		t.Fatalf("extradata_len = %d, want 0", v)
	}
	if r.Remaining() != 0 {
		t.Fatalf("unexpected trailing bytes: %d", r.Remaining())
	}
}

func TestConfigureRoundtripWithExtradata(t *testing.T) {
	c := Configure{
		Width: 640, Height: 480, PixFmt: PixFmtP010,
		Timebase: Rational{Num: 1, Den: 25}, FrameRate: Rational{Num: 25, Den: 1},
		Extradata: []byte{0xde, 0xad, 0xbe, 0xef},
	}
	var w wire.WBuf
	if err := BuildConfigure(&w, c); err != nil {
		t.Fatalf("BuildConfigure: %v", err)
	}
	got, err := ParseConfigure(w.Bytes())
	if err != nil {
		t.Fatalf("ParseConfigure: %v", err)
	}
	if got.Width != c.Width || got.Height != c.Height || got.PixFmt != c.PixFmt {
		t.Fatalf("mismatch: %+v", got)
	}
	if string(got.Extradata) != string(c.Extradata) {
		t.Fatalf("extradata mismatch: got %x want %x", got.Extradata, c.Extradata)
	}
}

func TestConfigureAckRoundtrip(t *testing.T) {
	a := ConfigureAck{
		Status:      0,
		Extra:       []byte{1, 2, 3},
		ReportedPix: PixFmtNV12,
		Warnings:    []string{"falling back to software path"},
	}
	var w wire.WBuf
	if err := BuildConfigureAck(&w, a); err != nil {
		t.Fatalf("BuildConfigureAck: %v", err)
	}
	got, err := ParseConfigureAck(w.Bytes())
	if err != nil {
		t.Fatalf("ParseConfigureAck: %v", err)
	}
	if got.Status != a.Status || got.ReportedPix != a.ReportedPix || len(got.Warnings) != 1 {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestConfigureAckRejectsTooManyWarnings(t *testing.T) {
	a := ConfigureAck{Warnings: make([]string, 256)}
	var w wire.WBuf
	if err := BuildConfigureAck(&w, a); !vterr.Is(err, vterr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
