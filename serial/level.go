package serial

import (
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Level selects how an Output/Input pair encodes the bytes it carries.
type Level int

const (
	// LevelPlain passes bytes through unmodified. The hmap/hset
	// serializers write the same per-element stream at this level as at
	// any other.
	LevelPlain Level = iota
	// LevelCompacted passes bytes through unmodified, exactly like
	// LevelPlain; no varint or other compaction is applied.
	LevelCompacted
	// LevelCompressed wraps the sink/source in a streaming s2 compressor,
	// favoring throughput over ratio.
	LevelCompressed
	// LevelCompressed2 wraps the sink/source in a streaming zstd
	// compressor, favoring ratio over throughput.
	LevelCompressed2
)

// wrapSinkForLevel wraps a raw Sink in the compressor (if any) the level
// calls for. The returned closer must be closed to flush any buffered
// compressor state; for LevelPlain/LevelCompacted it is a no-op.
func wrapSinkForLevel(level Level, sink Sink) (Sink, io.Closer, error) {
	switch level {
	case LevelCompressed:
		w := s2.NewWriter(sinkWriter{sink})
		return sinkFromWriteCloser{w}, w, nil
	case LevelCompressed2:
		w, err := zstd.NewWriter(sinkWriter{sink})
		if err != nil {
			return nil, nil, err
		}
		return sinkFromWriteCloser{w}, w, nil
	default:
		return sink, nopCloser{}, nil
	}
}

// wrapSourceForLevel is the read-side counterpart of wrapSinkForLevel.
func wrapSourceForLevel(level Level, src Source) (Source, io.Closer, error) {
	switch level {
	case LevelCompressed:
		r := s2.NewReader(sourceReader{src})
		return sourceFromReader{r}, nopCloser{}, nil
	case LevelCompressed2:
		r, err := zstd.NewReader(sourceReader{src})
		if err != nil {
			return nil, nil, err
		}
		return sourceFromReader{r}, closerFunc(func() error { r.Close(); return nil }), nil
	default:
		return src, nopCloser{}, nil
	}
}

type sinkWriter struct{ s Sink }

func (w sinkWriter) Write(p []byte) (int, error) { return w.s.Write(p) }

type sourceReader struct{ s Source }

func (r sourceReader) Read(p []byte) (int, error) { return r.s.Read(p) }

type sinkFromWriteCloser struct{ w io.Writer }

func (s sinkFromWriteCloser) Write(p []byte) (int, error) { return s.w.Write(p) }

type sourceFromReader struct{ r io.Reader }

func (s sourceFromReader) Read(p []byte) (int, error) { return s.r.Read(p) }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
