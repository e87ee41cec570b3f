// Package producer defines the pull side of a byte stream: a stateful
// Iterator yielding one byte per call, and the zero-argument Factory that
// builds one.
//
// Once Next reports exhaustion (ok == false) or a fault (err != nil) the
// iterator must not be called again. Adaptors in this package turn slices,
// range-over-func sequences and io.Readers into factories, and wrap
// factories to bound or instrument them.
package producer
