package producer

import "sync/atomic"

// Limit returns a factory whose iterators yield at most n bytes of f's sequence.
func Limit(f Factory, n int64) Factory {
	return func() Iterator {
		return &limitIter{inner: f(), remaining: n}
	}
}

type limitIter struct {
	inner     Iterator
	remaining int64
}

func (it *limitIter) Next() (byte, bool, error) {
	if it.remaining <= 0 {
		Stop(it.inner)
		return 0, false, nil
	}
	b, ok, err := it.inner.Next()
	if ok && err == nil {
		it.remaining--
	}
	return b, ok, err
}

func (it *limitIter) Stop() { Stop(it.inner) }

// CountingIterator records how many times Next has been called.
type CountingIterator struct {
	inner Iterator
	calls atomic.Int64
}

// Counted wraps it so callers can observe the pull count.
func Counted(it Iterator) *CountingIterator {
	return &CountingIterator{inner: it}
}

// Next forwards to the wrapped iterator.
func (c *CountingIterator) Next() (byte, bool, error) {
	c.calls.Add(1)
	return c.inner.Next()
}

// Calls returns the number of Next calls so far.
func (c *CountingIterator) Calls() int64 { return c.calls.Load() }

// Stop forwards to the wrapped iterator.
func (c *CountingIterator) Stop() { Stop(c.inner) }

// Failing returns a factory that yields f's bytes until after bytes have been
// produced, then reports err. Used to exercise producer-failure handling.
func Failing(f Factory, after int64, err error) Factory {
	return func() Iterator {
		inner := f()
		var n int64
		return IteratorFunc(func() (byte, bool, error) {
			if n >= after {
				return 0, false, err
			}
			n++
			return inner.Next()
		})
	}
}
