package sink

import "net"

// TCP is a Sink/Source backed by a stream connection. It has no
// PositionedSink/PositionedSource counterpart: a live socket has no
// stable notion of an absolute offset to seek back to.
type TCP struct {
	conn net.Conn
}

// NewTCP wraps an established connection.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{conn: conn}
}

// Write writes to the connection.
func (t *TCP) Write(p []byte) (int, error) { return t.conn.Write(p) }

// Read reads from the connection.
func (t *TCP) Read(p []byte) (int, error) { return t.conn.Read(p) }

// Close closes the underlying connection.
func (t *TCP) Close() error { return t.conn.Close() }
