package broadcast

import (
	"context"
	"net"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Listen opens a UDP socket suitable for use as the conn argument to
// NewSender/NewReceiver, with SO_BROADCAST and SO_REUSEADDR set so
// multiple processes on the same host can share addr and so datagrams
// addressed to a broadcast address are accepted for sending.
func Listen(addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
				if sockErr != nil {
					return
				}
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	conn, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		return nil, errors.Wrap(err, "broadcast: failed to open socket")
	}
	return conn, nil
}
