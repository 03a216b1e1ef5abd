package hset

import (
	"github.com/norensa/libspl-go/container/htable"
	"github.com/norensa/libspl-go/serial"
)

// Codec supplies the encode/decode pair a Set needs to serialize elements
// of type K, mirroring hmap.Codec.
type Codec[K any] struct {
	Encode func(w *serial.Output, v K) error
	Decode func(r *serial.Input) (K, error)
}

// WriteTo writes the set's geometry, element count, and a per-element
// (hash, key) stream in iteration order.
func (s *Set[K]) WriteTo(w *serial.Output, kc Codec[K]) error {
	return writeTable[K](w, s.tb, kc)
}

// ReadFrom replaces the set's contents from a stream written by WriteTo.
func (s *Set[K]) ReadFrom(r *serial.Input, hasher htable.Hasher[K], kc Codec[K]) error {
	tb, err := readTable[K](r, hasher, equalComparable[K], kc, true)
	if err != nil {
		return err
	}
	s.tb = tb
	return nil
}

// WriteTo is the MultiSet counterpart of Set.WriteTo.
func (s *MultiSet[K]) WriteTo(w *serial.Output, kc Codec[K]) error {
	return writeTable[K](w, s.tb, kc)
}

// ReadFrom is the MultiSet counterpart of Set.ReadFrom.
func (s *MultiSet[K]) ReadFrom(r *serial.Input, hasher htable.Hasher[K], kc Codec[K]) error {
	tb, err := readTable[K](r, hasher, equalComparable[K], kc, false)
	if err != nil {
		return err
	}
	s.tb = tb
	return nil
}

func writeTable[K comparable](w *serial.Output, tb *htable.Table[K, empty], kc Codec[K]) error {
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
	}
	return nil
}

func readTable[K comparable](r *serial.Input, hasher htable.Hasher[K], eq htable.Equal[K], kc Codec[K], unique bool) (*htable.Table[K, empty], error) {
	if _, err := r.ReadUint32(); err != nil {
		return nil, err
	}
	if _, err := r.ReadUint32(); err != nil {
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

	tb := htable.New[K, empty](int(tSize), hasher, eq)
	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadUint64(); err != nil { // hash; recomputed from the key via hasher on insert
			return nil, err
		}
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		if unique {
			tb.InsertUnique(k, empty{}, false)
		} else {
			tb.InsertMulti(k, empty{})
		}
	}
	return tb, nil
}
