package hmap

import (
	"github.com/norensa/libspl-go/container/htable"
	"github.com/norensa/libspl-go/serial"
)

// Codec supplies the encode/decode pair a Map needs to serialize keys or
// values of type T. Unlike the serial.Serializable interface (which a
// type implements on itself), Codec lets hmap serialize containers of
// arbitrary K/V without requiring every key or value type to carry its
// own WriteObject/ReadObject methods.
type Codec[T any] struct {
	Encode func(w *serial.Output, v T) error
	Decode func(r *serial.Input) (T, error)
}

// WriteTo writes the map's geometry, element count, and then a per-element
// (hash, key, value) stream, in iteration order, using the supplied
// codecs. This is the serial.LevelCompacted/LevelCompressed path; PLAIN
// raw-array serialization is left to callers whose V is itself a fixed
// byte layout, since hmap's V is an arbitrary Go type with no guaranteed
// in-memory representation to copy verbatim.
func (m *Map[K, V]) WriteTo(w *serial.Output, kc Codec[K], vc Codec[V]) error {
	return writeTable[K, V](w, m.tb, kc, vc)
}

// ReadFrom replaces the map's contents by replaying an element stream
// previously written by WriteTo. The table is rebuilt from a fresh array
// sized from the serialized geometry, which is taken as authoritative.
// hasher must be the same hash function the map was (or will be) used
// with; the wire format carries geometry and elements, not the hash
// function itself.
func (m *Map[K, V]) ReadFrom(r *serial.Input, hasher htable.Hasher[K], kc Codec[K], vc Codec[V]) error {
	tb, err := readTable[K, V](r, hasher, equalComparable[K], kc, vc, true)
	if err != nil {
		return err
	}
	m.tb = tb
	return nil
}

// WriteTo is the MultiMap counterpart of Map.WriteTo.
func (m *MultiMap[K, V]) WriteTo(w *serial.Output, kc Codec[K], vc Codec[V]) error {
	return writeTable[K, V](w, m.tb, kc, vc)
}

// ReadFrom is the MultiMap counterpart of Map.ReadFrom.
func (m *MultiMap[K, V]) ReadFrom(r *serial.Input, hasher htable.Hasher[K], kc Codec[K], vc Codec[V]) error {
	tb, err := readTable[K, V](r, hasher, equalComparable[K], kc, vc, false)
	if err != nil {
		return err
	}
	m.tb = tb
	return nil
}

func writeTable[K comparable, V any](w *serial.Output, tb *htable.Table[K, V], kc Codec[K], vc Codec[V]) error {
	b, n, t := tb.Geometry()
	if err := w.WriteUint32(uint32(b)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(n)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(t)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(tb.Len())); err != nil {
		return err
	}

	it := tb.Iter()
	defer it.Close()
	for it.Next() {
		if err := w.WriteUint64(it.Hash()); err != nil {
			return err
		}
		if err := kc.Encode(w, it.Key()); err != nil {
			return err
		}
		if err := vc.Encode(w, it.Value()); err != nil {
			return err
		}
	}
	return nil
}

func readTable[K comparable, V any](r *serial.Input, hasher htable.Hasher[K], eq htable.Equal[K], kc Codec[K], vc Codec[V], unique bool) (*htable.Table[K, V], error) {
	if _, err := r.ReadUint32(); err != nil { // b, recomputed by New* as the table is repopulated
		return nil, err
	}
	if _, err := r.ReadUint32(); err != nil { // n
		return nil, err
	}
	tSize, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	tb := htable.New[K, V](int(tSize), hasher, eq)
	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadUint64(); err != nil { // hash; recomputed from the key via hasher on insert
			return nil, err
		}
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		v, err := vc.Decode(r)
		if err != nil {
			return nil, err
		}
		if unique {
			tb.InsertUnique(k, v, true)
		} else {
			tb.InsertMulti(k, v)
		}
	}
	return tb, nil
}
