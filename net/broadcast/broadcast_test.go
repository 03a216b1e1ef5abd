package broadcast_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/norensa/libspl-go/net/broadcast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestSendRecvLoopbackNoLoss is concrete scenario 4: a single message sent
// over a loopback UDP socket with no artificial loss arrives intact.
func TestSendRecvLoopbackNoLoss(t *testing.T) {
	log := zap.NewNop()

	senderConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer senderConn.Close()

	recvConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer recvConn.Close()

	cfg := broadcast.Config{MTU: 1200}
	sender := broadcast.NewSender(senderConn, []net.Addr{recvConn.LocalAddr()}, cfg, log)
	defer sender.Close()
	receiver := broadcast.NewReceiver(recvConn, cfg, log, nil)
	defer receiver.Close()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, sender.Send(payload))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buf := make([]byte, len(payload))
	n, _, err := receiver.Recv(ctx, buf, true)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, buf[:n])
}

// TestSendRecvManySmallMessages is concrete scenario 5 in miniature: a
// burst of small messages all arrives over loopback with no loss.
func TestSendRecvManySmallMessages(t *testing.T) {
	log := zap.NewNop()

	senderConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer senderConn.Close()

	recvConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer recvConn.Close()

	cfg := broadcast.Config{MTU: 512}
	sender := broadcast.NewSender(senderConn, []net.Addr{recvConn.LocalAddr()}, cfg, log)
	defer sender.Close()
	receiver := broadcast.NewReceiver(recvConn, cfg, log, nil)
	defer receiver.Close()

	const count = 50
	go func() {
		for i := 0; i < count; i++ {
			msg := []byte{byte(i)}
			_ = sender.Send(msg)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := 0
	buf := make([]byte, 64)
	for received < count {
		n, _, err := receiver.Recv(ctx, buf, true)
		if err != nil {
			break
		}
		if n > 0 {
			received++
		}
	}
	require.Equal(t, count, received)
}
