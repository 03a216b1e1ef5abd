// Package serial implements the buffered, randomly-accessible
// serialization framework used throughout libspl-go: an Output stream
// writer and Input stream reader over a pluggable Sink/Source (see
// serial/sink), random-access variants adding seek support, a
// process-wide object-code factory for polymorphic deserialization of
// Serializable values, and pluggable serialization Levels (plain,
// compacted, and two compressed tiers backed by klauspost/compress).
//
// Output owns a byte buffer with three cursors: a base, a write cursor,
// and an optional locked cursor. Flush writes everything up to the locked
// cursor (or the write cursor, if nothing is locked) to the sink and
// compacts any remaining buffered bytes to the front. Bytes written after
// Lock are never flushed until the matching Commit, regardless of how
// many Flush calls happen in between — this is the framework's one
// ordering guarantee beyond "writes happen in the order Put was called".
package serial
