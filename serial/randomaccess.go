package serial

import "github.com/norensa/libspl-go/errs"

// RandomAccessOutput is an Output variant over a PositionedSink, adding
// Tell/Seek support for formats that need to patch earlier fields (e.g.
// a length prefix written after its payload).
type RandomAccessOutput struct {
	*Output
	sink PositionedSink
	base int64 // absolute position of buf[0] in the sink
}

// NewRandomAccessOutput constructs a RandomAccessOutput at LevelPlain.
// Random access is incompatible with the compressed levels, whose byte
// stream has no stable mapping back to sink offsets.
func NewRandomAccessOutput(sink PositionedSink) *RandomAccessOutput {
	return &RandomAccessOutput{
		Output: NewOutput(sink),
		sink:   sink,
	}
}

// Tell returns the absolute position of the write cursor in the sink.
func (o *RandomAccessOutput) Tell() int64 {
	return o.base + int64(o.write)
}

// SeekTo flushes pending writes and repositions the write cursor to an
// absolute offset. The locked cursor, if any, must already have been
// committed — seeking across a pending Lock is not supported.
func (o *RandomAccessOutput) SeekTo(pos int64) error {
	if o.locked >= 0 {
		return errs.ErrOutOfRange
	}
	if err := o.Flush(); err != nil {
		return err
	}
	length, err := o.sink.Len()
	if err != nil {
		return err
	}
	if pos < 0 || pos > length {
		return errs.ErrOutOfRange
	}
	o.base = pos
	o.buf = o.buf[:0]
	o.write = 0
	return nil
}

// Seek repositions the write cursor relative to its current position.
func (o *RandomAccessOutput) Seek(delta int64) error {
	return o.SeekTo(o.Tell() + delta)
}

// WriteAt writes data at an absolute sink position without disturbing
// the current write cursor, flushing first so the two writes cannot be
// reordered by the internal buffer.
func (o *RandomAccessOutput) WriteAt(data []byte, pos int64) error {
	if err := o.Flush(); err != nil {
		return err
	}
	_, err := o.sink.WriteAt(data, pos)
	return err
}

// RandomAccessInput is an Input variant over a PositionedSource, adding
// Tell/Seek support.
type RandomAccessInput struct {
	*Input
	src  PositionedSource
	base int64 // absolute position of buf[0] in the source
}

// NewRandomAccessInput constructs a RandomAccessInput at LevelPlain.
func NewRandomAccessInput(src PositionedSource) *RandomAccessInput {
	return &RandomAccessInput{
		Input: NewInput(src),
		src:   src,
	}
}

// Tell returns the absolute position of the read cursor in the source.
func (in *RandomAccessInput) Tell() int64 {
	return in.base + int64(in.cur)
}

// SeekTo discards the buffered read-ahead and repositions the read
// cursor to an absolute offset.
func (in *RandomAccessInput) SeekTo(pos int64) error {
	length, err := in.src.Len()
	if err != nil {
		return err
	}
	if pos < 0 || pos > length {
		return errs.ErrOutOfRange
	}
	in.base = pos
	in.cur = 0
	in.avail = 0
	return nil
}

// Seek repositions the read cursor relative to its current position.
func (in *RandomAccessInput) Seek(delta int64) error {
	return in.SeekTo(in.Tell() + delta)
}

// ReadAt reads data from an absolute source position without disturbing
// the current read cursor.
func (in *RandomAccessInput) ReadAt(buf []byte, pos int64) error {
	_, err := in.src.ReadAt(buf, pos)
	return err
}

// AlignForward advances the cursor to the next multiple of n, skipping
// padding bytes. Used to keep fixed-width container regions aligned when
// interleaved with variable-length fields.
func (o *RandomAccessOutput) AlignForward(n int) error {
	pos := o.Tell()
	pad := (int64(n) - pos%int64(n)) % int64(n)
	if pad == 0 {
		return nil
	}
	return o.Put(make([]byte, pad))
}

// AlignForward is the Input counterpart of Output.AlignForward.
func (in *RandomAccessInput) AlignForward(n int) error {
	pos := in.Tell()
	pad := (int64(n) - pos%int64(n)) % int64(n)
	if pad == 0 {
		return nil
	}
	return in.Get(make([]byte, pad))
}
