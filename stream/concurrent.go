package stream

import (
	"context"

	"github.com/kbukum/streamgen/errors"
)

// result carries a chunk or error through a channel.
type result struct {
	chunk []byte
	err   error
}

// Buffer moves production of source onto its own goroutine, keeping at most
// size chunks in flight. The goroutine blocks on the full channel, which is
// the backpressure signal in this form. Closing the returned Iterator cancels
// the goroutine and closes source.
func Buffer(source Iterator, size int) Iterator {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan result, size)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(ch)
		for {
			c, ok, err := source.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case ch <- result{err: err}:
				case <-ctx.Done():
				}
				return
			}
			if !ok {
				return
			}
			select {
			case ch <- result{chunk: c}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &channelIter{
		ch: ch,
		closer: func() error {
			cancel()
			<-done
			return source.Close()
		},
	}
}

// channelIter reads chunks from a channel fed by Buffer.
type channelIter struct {
	ch     <-chan result
	closer func() error
	closed bool
}

func (it *channelIter) Next(ctx context.Context) ([]byte, bool, error) {
	select {
	case r, open := <-it.ch:
		if !open {
			return nil, false, nil
		}
		if r.err != nil {
			return nil, false, r.err
		}
		return r.chunk, true, nil
	case <-ctx.Done():
		return nil, false, errors.Canceled(ctx.Err())
	}
}

func (it *channelIter) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.closer()
}
