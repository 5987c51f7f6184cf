// Package transport implements the blocking TCP connection the client
// speaks the wire protocol over: address resolution, per-call timeouts,
// and full-read/full-write helpers that turn partial I/O and peer
// disconnects into the error taxonomy the session layer expects.
//
// Grounded on the teacher's internal/pool/worker.go read/write-loop
// shape (it drives a subprocess pipe the same cooperative way a session
// drives a socket), adapted from os/exec.Cmd pipes to net.Conn.
package transport

import (
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

// Conn wraps a single TCP connection with the timeout and full-I/O
// semantics spec.md section 4.3 requires.
type Conn struct {
	nc        net.Conn
	timeout   time.Duration
	bytesIn   uint64
	bytesOut  uint64
}

// Connect parses hostport as "HOST:PORT" (the last colon is the
// separator; host must be nonempty, port at most 15 characters),
// resolves it, and dials with timeoutMS applied to the dial itself and
// to every subsequent read/write. Returns InvalidArgument on a malformed
// address, IO if the dial fails.
func Connect(hostport string, timeoutMS int) (*Conn, error) {
	host, port, err := splitHostPort(hostport)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond
	d := net.Dialer{Timeout: timeout}
	nc, err := d.Dial("tcp4", net.JoinHostPort(host, port))
	if err != nil {
		return nil, vterr.Wrap(vterr.IO, "connect failed", err)
	}
	return &Conn{nc: nc, timeout: timeout}, nil
}

func splitHostPort(hostport string) (host, port string, err error) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 {
		return "", "", vterr.New(vterr.InvalidArgument, "hostport missing ':' separator")
	}
	host, port = hostport[:i], hostport[i+1:]
	if host == "" {
		return "", "", vterr.New(vterr.InvalidArgument, "hostport has empty host")
	}
	if len(port) == 0 || len(port) > 15 {
		return "", "", vterr.New(vterr.InvalidArgument, "hostport has invalid port")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", "", vterr.New(vterr.InvalidArgument, "hostport has non-numeric port")
	}
	return host, port, nil
}

// BytesIn and BytesOut report cumulative byte counts since Connect, used
// by Session for the per-connection counters spec.md section 4.1 names.
func (c *Conn) BytesIn() uint64  { return c.bytesIn }
func (c *Conn) BytesOut() uint64 { return c.bytesOut }

// Close closes the underlying socket. Any peer blocked in a read
// observes EOF.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// WriteFull writes all of buf, retrying on short writes, translating a
// timeout or closed connection into IO.
func (c *Conn) WriteFull(buf []byte) error {
	if err := c.nc.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return vterr.Wrap(vterr.IO, "set write deadline", err)
	}
	written := 0
	for written < len(buf) {
		n, err := c.nc.Write(buf[written:])
		written += n
		c.bytesOut += uint64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return vterr.New(vterr.EndOfStream, "peer closed connection during write")
			}
			return vterr.Wrap(vterr.IO, "write failed", err)
		}
	}
	return nil
}

// ReadFull reads exactly len(buf) bytes. If the very first read of this
// call times out with nothing yet read, it returns WouldBlock (the
// caller asked to be non-blocking and should retry later); a timeout
// after some bytes have already been read for this message is IO, since
// the framing is now desynchronized. A zero-byte read is EndOfStream.
func (c *Conn) ReadFull(buf []byte) error {
	if err := c.nc.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return vterr.Wrap(vterr.IO, "set read deadline", err)
	}
	read := 0
	for read < len(buf) {
		n, err := c.nc.Read(buf[read:])
		read += n
		c.bytesIn += uint64(n)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if read == 0 {
					return vterr.New(vterr.WouldBlock, "read timed out with no bytes received")
				}
				return vterr.New(vterr.IO, "read timed out mid-message")
			}
			if errors.Is(err, io.EOF) {
				return vterr.New(vterr.EndOfStream, "peer closed connection")
			}
			return vterr.Wrap(vterr.IO, "read failed", err)
		}
	}
	return nil
}
