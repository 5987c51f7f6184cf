package proto

import (
	"github.com/davelindo/videotoolbox-remote/internal/vterr"
	"github.com/davelindo/videotoolbox-remote/internal/wire"
)

// Hello is the client's opening message (spec.md section 4.2): an auth
// token, the codec the client wants (h264/hevc), and free-form identity
// strings logged by the accelerator for diagnostics.
type Hello struct {
	Token          string
	RequestedCodec string
	ClientName     string
	ClientBuildID  string
}

// BuildHello encodes h into w, which is reset first.
func BuildHello(w *wire.WBuf, h Hello) error {
	w.Reset()
	if err := w.PutString(h.Token); err != nil {
		return err
	}
	if err := w.PutString(h.RequestedCodec); err != nil {
		return err
	}
	if err := w.PutString(h.ClientName); err != nil {
		return err
	}
	if err := w.PutString(h.ClientBuildID); err != nil {
		return err
	}
	return nil
}

// ParseHello decodes a HELLO payload.
func ParseHello(payload []byte) (Hello, error) {
	r := wire.NewRBuf(payload)
	var h Hello
	var err error
	if h.Token, err = r.ReadString(); err != nil {
		return Hello{}, err
	}
	if h.RequestedCodec, err = r.ReadString(); err != nil {
		return Hello{}, err
	}
	if h.ClientName, err = r.ReadString(); err != nil {
		return Hello{}, err
	}
	if h.ClientBuildID, err = r.ReadString(); err != nil {
		return Hello{}, err
	}
	return h, nil
}

// HelloAckStatus enumerates HELLO_ACK's leading status byte.
type HelloAckStatus uint8

const (
	HelloAccepted HelloAckStatus = 0
	HelloRejected HelloAckStatus = 1
)

// HelloAck is the accelerator's reply: whether the session was accepted,
// its identity, and the codecs/capabilities it actually supports.
type HelloAck struct {
	Status        HelloAckStatus
	ServerName    string
	ServerVersion string
	Caps          []string
	MaxSessions   uint16
	ActiveCount   uint16
}

// BuildHelloAck encodes a into w, which is reset first.
func BuildHelloAck(w *wire.WBuf, a HelloAck) error {
	w.Reset()
	w.PutU8(uint8(a.Status))
	if err := w.PutString(a.ServerName); err != nil {
		return err
	}
	if err := w.PutString(a.ServerVersion); err != nil {
		return err
	}
	if len(a.Caps) > 0xFF {
		return vterr.New(vterr.InvalidArgument, "too many capability strings")
	}
	w.PutU8(uint8(len(a.Caps)))
	for _, c := range a.Caps {
		if err := w.PutString(c); err != nil {
			return err
		}
	}
	w.PutU16(a.MaxSessions)
	w.PutU16(a.ActiveCount)
	return nil
}

// ParseHelloAck decodes a HELLO_ACK payload.
func ParseHelloAck(payload []byte) (HelloAck, error) {
	r := wire.NewRBuf(payload)
	var a HelloAck
	status, err := r.ReadU8()
	if err != nil {
		return HelloAck{}, err
	}
	a.Status = HelloAckStatus(status)
	if a.ServerName, err = r.ReadString(); err != nil {
		return HelloAck{}, err
	}
	if a.ServerVersion, err = r.ReadString(); err != nil {
		return HelloAck{}, err
	}
	count, err := r.ReadU8()
	if err != nil {
		return HelloAck{}, err
	}
	a.Caps = make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		c, err := r.ReadString()
		if err != nil {
			return HelloAck{}, err
		}
		a.Caps = append(a.Caps, c)
	}
	if a.MaxSessions, err = r.ReadU16(); err != nil {
		return HelloAck{}, err
	}
	if a.ActiveCount, err = r.ReadU16(); err != nil {
		return HelloAck{}, err
	}
	return a, nil
}
