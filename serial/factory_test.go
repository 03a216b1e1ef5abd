package serial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norensa/libspl-go/errs"
	"github.com/norensa/libspl-go/serial"
	"github.com/norensa/libspl-go/serial/sink"
)

func TestReadSerializableUnknownObjectCode(t *testing.T) {
	f := serial.NewFactory()

	mem := sink.NewMemory()
	w := serial.NewOutput(mem)
	require.NoError(t, w.WriteUint32(12345)) // no constructor registered for this code
	require.NoError(t, w.Close())

	r := serial.NewInput(sink.NewMemoryFrom(mem.Bytes()))
	_, err := serial.ReadSerializable(r, f, nil)
	assert.ErrorIs(t, err, errs.ErrSerialization)
}
