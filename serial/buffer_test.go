package serial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/serial"
	"github.com/norensa/libspl-go/serial/sink"
)

func TestOutputInputRoundTrip(t *testing.T) {
	mem := sink.NewMemory()
	w := serial.NewOutput(mem)

	require.NoError(t, w.WriteUint8(7))
	require.NoError(t, w.WriteUint32(123456))
	require.NoError(t, w.WriteUint64(9876543210))
	require.NoError(t, w.WriteString("hello world!"))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.EqualValues(t, 7, u8)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.EqualValues(t, 123456, u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 9876543210, u64)

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello world!", s)
}

func TestLockCommitDefersFlush(t *testing.T) {
	mem := sink.NewMemory()
	w := serial.NewOutput(mem)

	require.NoError(t, w.WriteUint32(1))
	w.Lock()
	require.NoError(t, w.WriteUint32(2))
	require.NoError(t, w.Flush())

	n, err := mem.Len()
	require.NoError(t, err)
	assert.EqualValues(t, 4, n, "only the pre-lock bytes should have reached the sink")

	w.Commit()
	require.NoError(t, w.Flush())

	n, err = mem.Len()
	require.NoError(t, err)
	assert.EqualValues(t, 8, n, "commit should release the locked bytes to the next flush")
}

func TestCompressedLevelRoundTrip(t *testing.T) {
	mem := sink.NewMemory()
	w := serial.NewOutputLevel(mem, serial.LevelCompressed)
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, w.WriteBytes(payload))
	require.NoError(t, w.Close())

	r := serial.NewInputLevel(sink.NewMemoryFrom(mem.Bytes()), serial.LevelCompressed)
	got, err := r.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
