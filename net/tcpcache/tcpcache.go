package tcpcache

import (
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Connection is a cached client connection, identified by the raw file
// descriptor the cache polls on.
type Connection struct {
	FD    int
	Conn  net.Conn
	Fresh bool // true if this connection was just accepted by this PollOrAccept call
}

type entry struct {
	fd     int
	file   *os.File
	conn   net.Conn
	id     string // random identifier used only to correlate log lines for this connection's lifetime
	polled bool   // false while held by the caller between delivery and ReturnConnection
}

// Cache wraps a TCP listener plus a set of accepted connections, and
// multiplexes readiness across all of them with one poll(2) call.
type Cache struct {
	mu       sync.Mutex
	listener *net.TCPListener
	listenFD int
	listenFile *os.File

	conns map[int]*entry
	log   *zap.Logger
	closed bool
}

// NewCache wraps an already-listening TCP socket.
func NewCache(listener *net.TCPListener, log *zap.Logger) (*Cache, error) {
	file, err := listener.File()
	if err != nil {
		return nil, errors.Wrap(err, "tcpcache: failed to obtain listener fd")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		listener:   listener,
		listenFD:   int(file.Fd()),
		listenFile: file,
		conns:      make(map[int]*entry),
		log:        log,
	}, nil
}

// PollOrAccept performs one poll(2) call across the listener and every
// currently-polled cached connection, with timeoutMs milliseconds
// (negative blocks indefinitely). Each ready file descriptor is either
// the listener — a new connection is accepted and inserted into the
// cache, delivered as ready — or an existing cached connection, which is
// removed from the polled set until the caller calls ReturnConnection.
// A HUP/ERR/NVAL event closes and evicts the connection instead.
func (c *Cache) PollOrAccept(timeoutMs int) ([]Connection, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("tcpcache: cache is closed")
	}
	fds := make([]unix.PollFd, 0, len(c.conns)+1)
	fds = append(fds, unix.PollFd{Fd: int32(c.listenFD), Events: unix.POLLIN})
	order := make([]int, 0, len(c.conns))
	for fd, e := range c.conns {
		if !e.polled {
			continue
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		order = append(order, fd)
	}
	c.mu.Unlock()

	n, err := pollRetryingEINTR(fds, timeoutMs)
	if err != nil {
		return nil, errors.Wrap(err, "tcpcache: poll failed")
	}
	if n == 0 {
		return nil, nil
	}

	var ready []Connection
	c.mu.Lock()
	defer c.mu.Unlock()

	if fds[0].Revents&unix.POLLIN != 0 {
		conn, acceptErr := c.acceptLocked()
		if acceptErr == nil {
			conn.Fresh = true
			ready = append(ready, conn)
		} else {
			c.log.Warn("tcpcache: accept failed", zap.Error(acceptErr))
		}
	}

	for i, fd := range order {
		pf := fds[i+1]
		if pf.Revents == 0 {
			continue
		}
		e, ok := c.conns[fd]
		if !ok {
			continue
		}
		if pf.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			c.closeEntryLocked(e)
			continue
		}
		if pf.Revents&unix.POLLIN != 0 {
			e.polled = false
			ready = append(ready, Connection{FD: e.fd, Conn: e.conn})
		}
	}
	return ready, nil
}

func pollRetryingEINTR(fds []unix.PollFd, timeoutMs int) (int, error) {
	var n int
	op := func() error {
		var err error
		n, err = unix.Poll(fds, timeoutMs)
		if errors.Is(err, syscall.EINTR) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), 10)
	if err := backoff.Retry(op, policy); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Cache) acceptLocked() (Connection, error) {
	conn, err := c.listener.Accept()
	if err != nil {
		return Connection{}, err
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return Connection{}, errors.New("tcpcache: accepted non-TCP connection")
	}
	file, err := tcpConn.File()
	if err != nil {
		conn.Close()
		return Connection{}, errors.Wrap(err, "tcpcache: failed to obtain connection fd")
	}
	fd := int(file.Fd())
	e := &entry{fd: fd, file: file, conn: conn, id: uuid.NewString(), polled: true}
	c.conns[fd] = e
	c.log.Debug("tcpcache: accepted connection", zap.String("id", e.id), zap.Int("fd", fd), zap.String("remote", conn.RemoteAddr().String()))
	return Connection{FD: fd, Conn: conn}, nil
}

// ReturnConnection re-arms POLLIN interest for a connection previously
// delivered by PollOrAccept, so future polls consider it again.
func (c *Cache) ReturnConnection(fd int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.conns[fd]
	if !ok {
		return errors.New("tcpcache: unknown connection")
	}
	e.polled = true
	return nil
}

func (c *Cache) closeEntryLocked(e *entry) {
	c.log.Debug("tcpcache: evicting connection", zap.String("id", e.id), zap.Int("fd", e.fd))
	e.conn.Close()
	e.file.Close()
	delete(c.conns, e.fd)
}

// Close shuts down every cached connection, then the listener itself.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for _, e := range c.conns {
		e.conn.Close()
		e.file.Close()
	}
	c.conns = make(map[int]*entry)
	c.listenFile.Close()
	return c.listener.Close()
}
