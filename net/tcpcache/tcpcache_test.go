package tcpcache_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/norensa/libspl-go/net/tcpcache"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func listen(t *testing.T) *net.TCPListener {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	return l.(*net.TCPListener)
}

func TestAcceptDeliversFreshConnection(t *testing.T) {
	listener := listen(t)
	defer listener.Close()

	cache, err := tcpcache.NewCache(listener, zap.NewNop())
	require.NoError(t, err)
	defer cache.Close()

	go func() {
		conn, err := net.Dial("tcp4", listener.Addr().String())
		if err == nil {
			defer conn.Close()
			conn.Write([]byte("hi"))
			time.Sleep(100 * time.Millisecond)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := cache.Accept(ctx)
	require.NoError(t, err)
	require.True(t, conn.Fresh)
	require.NotNil(t, conn.Conn)
}

func TestPollReturnsReadableCachedConnection(t *testing.T) {
	listener := listen(t)
	defer listener.Close()

	cache, err := tcpcache.NewCache(listener, zap.NewNop())
	require.NoError(t, err)
	defer cache.Close()

	client, err := net.Dial("tcp4", listener.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted, err := cache.Accept(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.ReturnConnection(accepted.FD))

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)

	ready, err := cache.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, accepted.FD, ready.FD)
	require.False(t, ready.Fresh)

	buf := make([]byte, 4)
	n, err := ready.Conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))
}
