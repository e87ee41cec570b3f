package generator

import (
	"encoding/binary"

	"github.com/kbukum/streamgen/producer"
)

// IntGenerator yields 32-bit integers.
type IntGenerator interface {
	Next() uint32
}

// Bytes turns an integer generator into a byte producer emitting four
// little-endian bytes per integer. newGen is called once per iterator.
func Bytes(newGen func() IntGenerator) producer.Factory {
	return func() producer.Iterator {
		return &intBytes{gen: newGen(), pos: 4}
	}
}

type intBytes struct {
	gen IntGenerator
	buf [4]byte
	pos int
}

func (it *intBytes) Next() (byte, bool, error) {
	if it.pos == 4 {
		binary.LittleEndian.PutUint32(it.buf[:], it.gen.Next())
		it.pos = 0
	}
	b := it.buf[it.pos]
	it.pos++
	return b, true, nil
}
