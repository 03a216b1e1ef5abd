package hmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/container/hmap"
	"github.com/norensa/libspl-go/internal/xhash"
	"github.com/norensa/libspl-go/serial"
	"github.com/norensa/libspl-go/serial/sink"
)

var intCodec = hmap.Codec[int]{
	Encode: func(w *serial.Output, v int) error { return w.WriteUint64(uint64(v)) },
	Decode: func(r *serial.Input) (int, error) {
		v, err := r.ReadUint64()
		return int(v), err
	},
}

var stringCodec = hmap.Codec[string]{
	Encode: func(w *serial.Output, v string) error { return w.WriteString(v) },
	Decode: func(r *serial.Input) (string, error) { return r.ReadString() },
}

func TestMapWriteToReadFromRoundTrip(t *testing.T) {
	m := hmap.New[int, int](16, intHasher)
	for k := 0; k < 100; k++ {
		m.Put(k, k*k)
	}

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, m.WriteTo(w, intCodec, intCodec))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))
	got := hmap.New[int, int](1, intHasher)
	require.NoError(t, got.ReadFrom(r, intHasher, intCodec, intCodec))

	require.Equal(t, m.Len(), got.Len())
	for k := 0; k < 100; k++ {
		v, err := got.Get(k)
		require.NoError(t, err)
		assert.Equal(t, k*k, v)
	}
}

func TestMultiMapWriteToReadFromRoundTrip(t *testing.T) {
	mm := hmap.NewMulti[string, int](8, xhash.String)
	mm.Put("k", 1)
	mm.Put("k", 2)
	mm.Put("j", 3)

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, mm.WriteTo(w, stringCodec, intCodec))
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))
	got := hmap.NewMulti[string, int](1, xhash.String)
	require.NoError(t, got.ReadFrom(r, xhash.String, stringCodec, intCodec))

	assert.Equal(t, 3, got.Len())
	var vals []int
	got.Values("k", func(v int) bool { vals = append(vals, v); return true })
	assert.ElementsMatch(t, []int{1, 2}, vals)
}
