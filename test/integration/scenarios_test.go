// Package integration exercises library components together rather than
// in isolation, the way a real caller would combine them.
package integration_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/norensa/libspl-go/net/broadcast"
	"github.com/norensa/libspl-go/serial"
	"github.com/norensa/libspl-go/serial/sink"
)

// dropConn wraps a net.PacketConn and silently discards every nth
// outgoing datagram, simulating a lossy link for
// TestBroadcastWithArtificialLoss.
type dropConn struct {
	net.PacketConn
	every int
	count int
}

func (d *dropConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	d.count++
	if d.count%d.every == 0 {
		return len(b), nil // pretend it went out, drop it on the floor
	}
	return d.PacketConn.WriteTo(b, addr)
}

// TestBroadcastWithArtificialLoss is concrete scenario 5: 1,000 messages
// of 8KiB each, sent over a link with roughly 5% of datagrams dropped,
// all still arrive via the resend path.
func TestBroadcastWithArtificialLoss(t *testing.T) {
	if testing.Short() {
		t.Skip("slow: exercises the full resend path over many messages")
	}
	log := zap.NewNop()

	rawSender, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer rawSender.Close()

	recvConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer recvConn.Close()

	lossySender := &dropConn{PacketConn: rawSender, every: 20} // ~5% loss

	cfg := broadcast.Config{MTU: 1400, StreamTimeout: 200 * time.Millisecond}
	sender := broadcast.NewSender(lossySender, []net.Addr{recvConn.LocalAddr()}, cfg, log)
	defer sender.Close()
	receiver := broadcast.NewReceiver(recvConn, cfg, log, nil)
	defer receiver.Close()

	const (
		count = 1000
		size  = 8 * 1024
	)

	go func() {
		for i := 0; i < count; i++ {
			msg := make([]byte, size)
			msg[0] = byte(i)
			msg[1] = byte(i >> 8)
			_ = sender.Send(msg)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	received := 0
	buf := make([]byte, size)
	for received < count {
		n, _, err := receiver.Recv(ctx, buf, true)
		if err != nil {
			break
		}
		if n > 0 {
			received++
		}
	}
	require.Equal(t, count, received, "resend path should recover every dropped datagram")
}

type widget struct {
	id        int32
	destroyed *bool
}

func (w *widget) ObjectCode() uint32 { return 9001 }

func (w *widget) WriteObject(out *serial.Output) error {
	return out.WriteUint32(uint32(w.id))
}

func (w *widget) ReadObject(in *serial.Input) error {
	id, err := in.ReadUint32()
	if err != nil {
		return err
	}
	w.id = int32(id)
	return nil
}

func (w *widget) Close() error {
	*w.destroyed = true
	return nil
}

// TestSerializerNullRoundTripDestroysPrevious is concrete scenario 6:
// decoding a null object code destroys whatever instance previously
// occupied that slot.
func TestSerializerNullRoundTripDestroysPrevious(t *testing.T) {
	f := serial.NewFactory()
	destroyed := false
	f.Register(9001, func() serial.Serializable { return &widget{destroyed: &destroyed} })

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, serial.WriteSerializable(w, &widget{id: 7, destroyed: &destroyed}))
	require.NoError(t, serial.WriteSerializable(w, nil))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))

	got, err := serial.ReadSerializable(r, f, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int32(7), got.(*widget).id)
	require.False(t, destroyed)

	got2, err := serial.ReadSerializable(r, f, got)
	require.NoError(t, err)
	require.Nil(t, got2)
	require.True(t, destroyed, "decoding object code 0 must destroy the previous instance")
}
