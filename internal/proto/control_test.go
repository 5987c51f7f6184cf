package proto

import (
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

func TestBuildEmptyProducesZeroLengthPayload(t *testing.T) {
	var w wire.WBuf
	w.PutU8(0xFF) // pre-existing garbage should be discarded by Reset
	BuildEmpty(&w)
	if w.Len() != 0 {
		t.Fatalf("BuildEmpty left %d bytes, want 0", w.Len())
	}
}

func TestErrorRoundtrip(t *testing.T) {
	e := ErrorMsg{Code: 42, Message: "accelerator fault"}
	var w wire.WBuf
	if err := BuildError(&w, e); err != nil {
		t.Fatalf("BuildError: %v", err)
	}
	got, err := ParseError(w.Bytes())
	if err != nil {
		t.Fatalf("ParseError: %v", err)
	}
	if got != e {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, e)
	}
}
