package session

import "github.com/davelindo/videotoolbox-remote/internal/vterr"

// packetRing is the fixed-capacity FIFO queue of decoded PACKET records
// an encoder session holds between the network loop and the framework's
// pull (spec.md section 5: "size = max(4, max_inflight), fixed-capacity
// ring").
type packetRing struct {
	buf   []*Packet
	head  int
	count int
}

func newPacketRing(capacity int) *packetRing {
	if capacity < 4 {
		capacity = 4
	}
	return &packetRing{buf: make([]*Packet, capacity)}
}

func (r *packetRing) len() int { return r.count }

func (r *packetRing) push(p *Packet) error {
	if r.count == len(r.buf) {
		return vterr.New(vterr.ResourceExhausted, "packet ring is full")
	}
	tail := (r.head + r.count) % len(r.buf)
	r.buf[tail] = p
	r.count++
	return nil
}

func (r *packetRing) pop() (*Packet, bool) {
	if r.count == 0 {
		return nil, false
	}
	p := r.buf[r.head]
	r.buf[r.head] = nil
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return p, true
}
