package serial

// Sink is the write side of a serialization target: a growable memory
// buffer, a file, or a stream socket. Output never assumes anything about
// the sink beyond Write being a synchronous, all-or-nothing call — a
// short write without an error is treated as a bug in the sink, not a
// condition Output retries.
type Sink interface {
	Write(p []byte) (int, error)
}

// Source is the read side of a deserialization origin.
type Source interface {
	Read(p []byte) (int, error)
}

// PositionedSink is a Sink that also supports writes at an absolute
// offset and reports its current declared length, for the random-access
// Output variant.
type PositionedSink interface {
	Sink
	WriteAt(p []byte, pos int64) (int, error)
	Len() (int64, error)
}

// PositionedSource is a Source that also supports reads at an absolute
// offset and reports its declared length, for the random-access Input
// variant.
type PositionedSource interface {
	Source
	ReadAt(p []byte, pos int64) (int, error)
	Len() (int64, error)
}
