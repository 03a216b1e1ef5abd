package sink

import "os"

// File is a Sink/Source/PositionedSink/PositionedSource backed by an
// *os.File, for persisting serialized containers across process
// restarts.
type File struct {
	f *os.File
}

// OpenFile opens path for reading and writing, creating it if absent.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// CreateFile truncates (or creates) path for writing.
func CreateFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Write appends at the file's current offset.
func (f *File) Write(p []byte) (int, error) { return f.f.Write(p) }

// WriteAt writes at an absolute offset.
func (f *File) WriteAt(p []byte, pos int64) (int, error) { return f.f.WriteAt(p, pos) }

// Read reads from the file's current offset.
func (f *File) Read(p []byte) (int, error) { return f.f.Read(p) }

// ReadAt reads from an absolute offset.
func (f *File) ReadAt(p []byte, pos int64) (int, error) { return f.f.ReadAt(p, pos) }

// Len returns the file's current size.
func (f *File) Len() (int64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }
