// Package sink supplies the concrete Sink/Source implementations serial.
// Output/Input write through to: an in-memory growable buffer, a plain
// file, and a TCP connection.
package sink

import (
	"sync"

	"github.com/norensa/libspl-go/errs"
)

// Memory is a growable in-memory Sink/Source/PositionedSink/
// PositionedSource backed by a byte slice guarded by a RWMutex, in the
// style of a simple thread-safe key-value store: readers take RLock,
// the single writer path takes Lock, and every returned/stored slice is
// copied so callers can never observe or corrupt internal state through
// an aliased buffer.
type Memory struct {
	mu      sync.RWMutex
	buf     []byte
	readCur int
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryFrom returns a Memory sink pre-populated with a copy of data,
// positioned for reading from the start.
func NewMemoryFrom(data []byte) *Memory {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Memory{buf: buf}
}

// Write appends p to the buffer.
func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = append(m.buf, p...)
	return len(p), nil
}

// WriteAt overwrites (or extends) the buffer at an absolute offset.
func (m *Memory) WriteAt(p []byte, pos int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[pos:end], p)
	return len(p), nil
}

// Read copies buffered bytes starting at the internal read cursor. The
// cursor advances by the number of bytes actually copied.
func (m *Memory) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readCur >= len(m.buf) {
		return 0, errs.ErrElementNotFound
	}
	n := copy(p, m.buf[m.readCur:])
	m.readCur += n
	return n, nil
}

// ReadAt copies bytes from an absolute offset without disturbing the
// sequential read cursor.
func (m *Memory) ReadAt(p []byte, pos int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pos >= int64(len(m.buf)) {
		return 0, errs.ErrElementNotFound
	}
	n := copy(p, m.buf[pos:])
	return n, nil
}

// Len returns the current buffer length.
func (m *Memory) Len() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.buf)), nil
}

// Bytes returns a copy of the full buffer contents.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}
