package producer

import (
	"bufio"
	"io"
	"iter"
)

// FromSlice returns a finite factory yielding the bytes of data in order.
func FromSlice(data []byte) Factory {
	return func() Iterator {
		return &sliceIter{data: data}
	}
}

type sliceIter struct {
	data []byte
	pos  int
}

func (it *sliceIter) Next() (byte, bool, error) {
	if it.pos >= len(it.data) {
		return 0, false, nil
	}
	b := it.data[it.pos]
	it.pos++
	return b, true, nil
}

// FromSeq returns a factory over a range-over-func sequence. Each Iterator
// pulls from its own iter.Pull of seq.
func FromSeq(seq iter.Seq[byte]) Factory {
	return func() Iterator {
		next, stop := iter.Pull(seq)
		return &seqIter{next: next, stop: stop}
	}
}

type seqIter struct {
	next func() (byte, bool)
	stop func()
}

func (it *seqIter) Next() (byte, bool, error) {
	b, ok := it.next()
	if !ok {
		it.Stop()
	}
	return b, ok, nil
}

func (it *seqIter) Stop() {
	if it.stop != nil {
		it.stop()
		it.stop = nil
	}
}

// FromReader returns a factory pulling bytes from the reader built by open.
// io.EOF marks exhaustion; any other read error is a producer fault.
func FromReader(open func() io.Reader) Factory {
	return func() Iterator {
		return &readerIter{r: bufio.NewReader(open())}
	}
}

type readerIter struct {
	r *bufio.Reader
}

func (it *readerIter) Next() (byte, bool, error) {
	b, err := it.r.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

// Counter returns an infinite factory yielding 0, 1, ..., 255, 0, 1, ...
func Counter() Factory {
	return func() Iterator {
		var n byte
		return IteratorFunc(func() (byte, bool, error) {
			b := n
			n++
			return b, true, nil
		})
	}
}
