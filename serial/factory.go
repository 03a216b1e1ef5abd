package serial

import (
	"fmt"
	"io"
	"sync"

	"github.com/norensa/libspl-go/errs"
)

// Serializable is implemented by types that can serialize themselves
// polymorphically: ObjectCode identifies the concrete type on the wire so
// ReadSerializable can reconstruct the right Go type without the caller
// naming it.
type Serializable interface {
	ObjectCode() uint32
	WriteObject(w *Output) error
	ReadObject(r *Input) error
}

// Factory maps object codes to constructors, letting ReadSerializable
// reconstruct a Serializable value of the type the writer used without
// the reader having to know it in advance. Safe for concurrent use.
type Factory struct {
	mu           sync.RWMutex
	constructors map[uint32]func() Serializable
}

// NewFactory returns an empty Factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[uint32]func() Serializable)}
}

// DefaultFactory is the process-wide factory ReadSerializable consults
// when it is passed a nil Factory.
var DefaultFactory = NewFactory()

// Register associates an object code with a zero-value constructor.
// Registering the same code twice panics: this indicates two types
// collided on a code at init time, a programming error that must be
// caught immediately rather than silently overwritten.
func (f *Factory) Register(code uint32, ctor func() Serializable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.constructors[code]; exists {
		panic(fmt.Sprintf("serial: object code %d already registered", code))
	}
	f.constructors[code] = ctor
}

// Lookup returns the constructor registered for code, if any.
func (f *Factory) Lookup(code uint32) (func() Serializable, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ctor, ok := f.constructors[code]
	return ctor, ok
}

// WriteSerializable writes v's object code followed by its encoded form.
// A nil v is encoded as object code 0 with no payload.
func WriteSerializable(w *Output, v Serializable) error {
	if v == nil {
		return w.WriteUint32(0)
	}
	if err := w.WriteUint32(v.ObjectCode()); err != nil {
		return err
	}
	return v.WriteObject(w)
}

// ReadSerializable reads an object code and, if non-zero, looks up its
// constructor in f and decodes into a fresh instance. A stream encoding
// object code 0 yields a nil Serializable; if prev is non-nil it is
// destroyed first (closed, if it implements io.Closer), matching the
// "reading a null pointer destroys the previous instance" contract used
// throughout the wire format for optional/polymorphic fields.
func ReadSerializable(r *Input, f *Factory, prev Serializable) (Serializable, error) {
	code, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if code == 0 {
		if closer, ok := prev.(io.Closer); ok {
			closer.Close()
		}
		return nil, nil
	}
	if f == nil {
		f = DefaultFactory
	}
	ctor, ok := f.Lookup(code)
	if !ok {
		return nil, errs.NewSerializationError(errs.ReasonUnknownObjectCode, code, "")
	}
	v := ctor()
	if v == nil {
		return nil, errs.NewSerializationError(errs.ReasonNotConstructible, code, "")
	}
	if err := v.ReadObject(r); err != nil {
		return nil, err
	}
	return v, nil
}
