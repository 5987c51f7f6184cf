package wire

import (
	"encoding/binary"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

// MaxStrLen is the largest length-prefixed string or byte blob the wire
// format allows (spec.md section 3: u16 length prefix).
const MaxStrLen = 0xFFFF

// WBuf is a growable, single-owner byte sequence. Go's append already grows
// geometrically, so WBuf is a thin wrapper that gives callers the teacher's
// reset-before-build discipline (see internal/protocol's WriteFrame pooling)
// instead of allocating a fresh slice per message.
type WBuf struct {
	buf []byte
}

// Reset truncates the buffer to zero length while retaining capacity.
func (b *WBuf) Reset() { b.buf = b.buf[:0] }

// Bytes returns the buffer's current contents. The slice is only valid
// until the next mutating call on b.
func (b *WBuf) Bytes() []byte { return b.buf }

// Len returns the number of bytes currently written.
func (b *WBuf) Len() int { return len(b.buf) }

func (b *WBuf) PutU8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *WBuf) PutU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *WBuf) PutU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *WBuf) PutU64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *WBuf) PutBytes(src []byte) {
	b.buf = append(b.buf, src...)
}

// PutStr writes a length-prefixed byte string: u16 length + bytes. Returns
// InvalidArgument if s is longer than MaxStrLen.
func (b *WBuf) PutStr(s []byte) error {
	if len(s) > MaxStrLen {
		return vterr.New(vterr.InvalidArgument, "string exceeds 65535 bytes")
	}
	b.PutU16(uint16(len(s)))
	b.PutBytes(s)
	return nil
}

// PutString is a convenience wrapper over PutStr for Go strings.
func (b *WBuf) PutString(s string) error {
	return b.PutStr([]byte(s))
}

// RBuf is a borrowed byte slice with a read cursor. It never reallocates;
// every read advances pos only on success.
type RBuf struct {
	data []byte
	pos  int
}

// NewRBuf wraps data for sequential, bounds-checked reads.
func NewRBuf(data []byte) *RBuf {
	return &RBuf{data: data}
}

// Pos returns the current read cursor.
func (r *RBuf) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *RBuf) Remaining() int { return len(r.data) - r.pos }

// Len returns the total buffer size.
func (r *RBuf) Len() int { return len(r.data) }

func (r *RBuf) need(n int) error {
	if r.pos+n > len(r.data) {
		return vterr.New(vterr.InvalidData, "read past end of payload")
	}
	return nil
}

func (r *RBuf) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *RBuf) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *RBuf) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *RBuf) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes returns a borrowed slice of n bytes, advancing the cursor.
func (r *RBuf) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, vterr.New(vterr.InvalidData, "negative length")
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadStr reads a length-prefixed byte string (u16 len + bytes). The
// returned slice is a borrow into the underlying buffer and is not required
// to be valid UTF-8.
func (r *RBuf) ReadStr() ([]byte, error) {
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// ReadString is a convenience wrapper over ReadStr producing a Go string
// (which copies).
func (r *RBuf) ReadString() (string, error) {
	b, err := r.ReadStr()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *RBuf) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}
