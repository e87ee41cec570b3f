package stream

import (
	"context"
	"io"

	"github.com/kbukum/streamgen/errors"
)

// Iterator provides pull-based sequential access to a stream of chunks.
type Iterator interface {
	// Next returns the next chunk. Returns (nil, false, nil) when exhausted.
	Next(ctx context.Context) ([]byte, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Chunks returns an Iterator yielding r's chunks with their push boundaries
// intact. Closing the iterator closes r.
func Chunks(r *Readable) Iterator {
	return &chunkIter{r: r}
}

type chunkIter struct {
	r *Readable
}

func (it *chunkIter) Next(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, errors.Canceled(err)
	}
	c, err := it.r.next()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (it *chunkIter) Close() error { return it.r.Close() }

// Drain pulls every chunk from it and hands each to sink. It closes it.
func Drain(ctx context.Context, it Iterator, sink func(context.Context, []byte) error) error {
	defer it.Close()
	for {
		c, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := sink(ctx, c); err != nil {
			return err
		}
	}
}

// Collect pulls every chunk from it and returns them. It closes it.
func Collect(ctx context.Context, it Iterator) ([][]byte, error) {
	var out [][]byte
	err := Drain(ctx, it, func(_ context.Context, c []byte) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

// Copy writes every chunk of r to dst, stopping early if ctx is canceled.
// It closes r and returns the number of bytes written.
func Copy(ctx context.Context, dst io.Writer, r *Readable) (int64, error) {
	var total int64
	err := Drain(ctx, Chunks(r), func(_ context.Context, c []byte) error {
		n, err := dst.Write(c)
		total += int64(n)
		return err
	})
	return total, err
}
