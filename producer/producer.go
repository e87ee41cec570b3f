package producer

// Iterator provides pull-based access to a byte sequence, one byte at a time.
type Iterator interface {
	// Next returns the next byte. Returns (0, false, nil) when exhausted and a
	// non-nil error when the producer faults.
	Next() (b byte, ok bool, err error)
}

// Factory builds a fresh Iterator. Each call starts an independent sequence.
type Factory func() Iterator

// IteratorFunc adapts a plain function to the Iterator interface.
type IteratorFunc func() (byte, bool, error)

// Next calls f.
func (f IteratorFunc) Next() (byte, bool, error) { return f() }

// Stopper is implemented by iterators that hold resources to release when the
// consumer abandons them before exhaustion.
type Stopper interface {
	Stop()
}

// Stop releases it if it implements Stopper.
func Stop(it Iterator) {
	if s, ok := it.(Stopper); ok {
		s.Stop()
	}
}
