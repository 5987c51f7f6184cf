package session

import (
	"github.com/davelindo/videotoolbox-remote/internal/transport"
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// msgIO owns the one socket, the one reusable write buffer, and the one
// reusable read buffer a session keeps for its whole lifetime (spec.md
// section 5: "a single socket ... one reusable payload WBuf owned by the
// session").
type msgIO struct {
	conn    *transport.Conn
	wbuf    wire.WBuf
	readBuf []byte
}

// send writes msgType with wbuf's current contents as payload.
func (m *msgIO) send(msgType wire.MsgType) error {
	payload := m.wbuf.Bytes()
	var hdr [wire.HeaderSize]byte
	if err := wire.WriteHeader(hdr[:], wire.Header{
		Magic:   wire.Magic,
		Version: wire.Version,
		Type:    msgType,
		Length:  uint32(len(payload)),
	}); err != nil {
		return err
	}
	if err := m.conn.WriteFull(hdr[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		return m.conn.WriteFull(payload)
	}
	return nil
}

// recv reads one full message and returns its type and a payload slice
// borrowed from m's reusable read buffer; the slice is invalidated by the
// next call to recv.
func (m *msgIO) recv() (wire.MsgType, []byte, error) {
	var hdrBuf [wire.HeaderSize]byte
	if err := m.conn.ReadFull(hdrBuf[:]); err != nil {
		return 0, nil, err
	}
	hdr, err := wire.ReadHeader(hdrBuf[:])
	if err != nil {
		return 0, nil, err
	}
	if cap(m.readBuf) < int(hdr.Length) {
		m.readBuf = make([]byte, hdr.Length)
	}
	payload := m.readBuf[:hdr.Length]
	if len(payload) > 0 {
		if err := m.conn.ReadFull(payload); err != nil {
			if vterr.Is(err, vterr.WouldBlock) {
				// The header is already consumed, so this is a mid-message timeout.
				return 0, nil, vterr.New(vterr.IO, "read timed out mid-message")
			}
			return 0, nil, err
		}
	}
	return hdr.Type, payload, nil
}

// recvExpect reads one message and requires it to be of type want,
// otherwise returns InvalidData.
func (m *msgIO) recvExpect(want wire.MsgType) ([]byte, error) {
	got, payload, err := m.recv()
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, vterr.New(vterr.InvalidData, "expected "+want.Name()+", got "+got.Name())
	}
	return payload, nil
}
