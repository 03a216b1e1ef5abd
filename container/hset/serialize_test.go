package hset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/container/hset"
	"github.com/norensa/libspl-go/internal/xhash"
	"github.com/norensa/libspl-go/serial"
	"github.com/norensa/libspl-go/serial/sink"
)

var stringCodec = hset.Codec[string]{
	Encode: func(w *serial.Output, v string) error { return w.WriteString(v) },
	Decode: func(r *serial.Input) (string, error) { return r.ReadString() },
}

func TestSetWriteToReadFromRoundTrip(t *testing.T) {
	s := hset.New[string](8, xhash.String)
	s.Add("a")
	s.Add("b")
	s.Add("c")

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, s.WriteTo(w, stringCodec))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))
	got := hset.New[string](1, xhash.String)
	require.NoError(t, got.ReadFrom(r, xhash.String, stringCodec))

	assert.Equal(t, s.Len(), got.Len())
	assert.True(t, got.Contains("a"))
	assert.True(t, got.Contains("b"))
	assert.True(t, got.Contains("c"))
}

func TestMultiSetWriteToReadFromRoundTrip(t *testing.T) {
	ms := hset.NewMulti[string](8, xhash.String)
	ms.Add("a")
	ms.Add("a")
	ms.Add("b")

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, ms.WriteTo(w, stringCodec))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))
	got := hset.NewMulti[string](1, xhash.String)
	require.NoError(t, got.ReadFrom(r, xhash.String, stringCodec))

	assert.Equal(t, 3, got.Len())
	assert.Equal(t, 2, got.Count("a"))
	assert.Equal(t, 1, got.Count("b"))
}
