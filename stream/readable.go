package stream

import (
	"io"
	"sync"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/producer"
)

// Readable is a pull-driven byte stream backed by an adapter.Adapter.
// It is safe for use by one reader and one closer concurrently.
type Readable struct {
	mu      sync.Mutex
	adapter *adapter.Adapter
	hwm     int
	ceiling int64

	// queue holds offered chunks; queue[0] may be partially consumed.
	queue  [][]byte
	queued int
	// budget is how many more bytes the adapter may deliver; -1 is unlimited.
	budget int64

	ended  bool
	err    error
	closed bool
}

// NewReadable builds an adapter over factory feeding a new Readable.
// adapterOpts are applied after the chunk ceiling inherited from
// opts.HighWaterMark, so an explicit adapter.WithChunkCeiling wins.
func NewReadable(factory producer.Factory, opts Options, adapterOpts ...adapter.Option) (*Readable, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &Readable{hwm: opts.HighWaterMark, budget: -1}
	if opts.Limit > 0 {
		r.budget = opts.Limit
	}

	all := append([]adapter.Option{adapter.WithChunkCeiling(opts.HighWaterMark)}, adapterOpts...)
	a, err := adapter.New(factory, readableSink{r}, all...)
	if err != nil {
		return nil, err
	}
	r.adapter = a
	r.ceiling = int64(a.ChunkCeiling())
	return r, nil
}

// Adapter returns the underlying adapter.
func (r *Readable) Adapter() *adapter.Adapter { return r.adapter }

// Read implements io.Reader. It returns io.EOF once the producer is exhausted
// or the limit is reached, and the PRODUCER_FAILURE error if the producer faulted.
func (r *Readable) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fillLocked(); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) && r.queued > 0 {
		c := copy(p[n:], r.queue[0])
		r.consumeLocked(c)
		n += c
	}
	return n, nil
}

// WriteTo implements io.WriterTo, handing each queued chunk to w without copying.
func (r *Readable) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		chunks, err := r.takeAll()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		for _, c := range chunks {
			n, werr := w.Write(c)
			total += int64(n)
			if werr != nil {
				return total, werr
			}
		}
	}
}

// Close closes the stream and its adapter. Subsequent reads fail with
// STREAM_CLOSED. Close is idempotent.
func (r *Readable) Close() error {
	// Closing the adapter first stops a cycle running under r.mu after its
	// current offer instead of waiting for it.
	err := r.adapter.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.queue, r.queued = nil, 0
	return err
}

// Buffered returns the number of queued bytes not yet consumed.
func (r *Readable) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queued
}

// next returns the next whole queued chunk.
func (r *Readable) next() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fillLocked(); err != nil {
		return nil, err
	}
	c := r.queue[0]
	r.consumeLocked(len(c))
	return c, nil
}

func (r *Readable) takeAll() ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fillLocked(); err != nil {
		return nil, err
	}
	chunks := r.queue
	r.queue, r.queued = nil, 0
	return chunks, nil
}

// fillLocked makes sure at least one byte is queued, requesting more from the
// adapter if needed. It returns io.EOF, the failure, or STREAM_CLOSED when the
// queue is empty and nothing more can be produced.
func (r *Readable) fillLocked() error {
	for r.queued == 0 {
		switch {
		case r.closed:
			return errors.StreamClosed()
		case r.err != nil:
			return r.err
		case r.ended:
			return io.EOF
		case r.budget == 0:
			r.ended = true
			_ = r.adapter.Close()
			continue
		}

		hint := r.hwm
		if r.budget > 0 && r.budget < int64(hint) {
			hint = int(r.budget)
		}
		r.adapter.RequestMore(hint)

		if r.queued == 0 && r.adapter.State() == adapter.StateClosed && !r.ended && r.err == nil {
			r.ended = true
		}
	}
	return nil
}

func (r *Readable) consumeLocked(n int) {
	r.queued -= n
	if n == len(r.queue[0]) {
		r.queue[0] = nil
		r.queue = r.queue[1:]
		return
	}
	r.queue[0] = r.queue[0][n:]
}

// readableSink receives the adapter's pushes. Its methods run inside
// RequestMore, which the Readable only calls with r.mu held.
type readableSink struct {
	r *Readable
}

func (s readableSink) Offer(chunk []byte) bool {
	r := s.r
	r.queue = append(r.queue, chunk)
	r.queued += len(chunk)
	if r.budget >= 0 {
		r.budget -= int64(len(chunk))
		// Pause so the next request carries the remaining budget as its hint.
		if r.budget < r.ceiling {
			return false
		}
	}
	return r.queued < r.hwm
}

func (s readableSink) End() { s.r.ended = true }

func (s readableSink) Fail(err error) { s.r.err = err }
