package proto

import "github.com/davelindo/videotoolbox-remote/internal/wire"

// FLUSH, DONE, PING and PONG carry no payload; BuildEmpty and the zero
// length are the whole of their wire representation.

// BuildEmpty resets w and leaves it empty, for FLUSH/DONE/PING/PONG.
func BuildEmpty(w *wire.WBuf) {
	w.Reset()
}

// ErrorMsg is the peer's ERROR payload: a numeric code plus free text.
type ErrorMsg struct {
	Code    uint32
	Message string
}

// BuildError encodes e into w, which is reset first.
func BuildError(w *wire.WBuf, e ErrorMsg) error {
	w.Reset()
	w.PutU32(e.Code)
	return w.PutString(e.Message)
}

// ParseError decodes an ERROR payload: `{code:u32, message:str}`.
func ParseError(payload []byte) (ErrorMsg, error) {
	r := wire.NewRBuf(payload)
	var e ErrorMsg
	var err error
	if e.Code, err = r.ReadU32(); err != nil {
		return ErrorMsg{}, err
	}
	if e.Message, err = r.ReadString(); err != nil {
		return ErrorMsg{}, err
	}
	return e, nil
}
