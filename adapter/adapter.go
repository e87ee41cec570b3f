package adapter

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/producer"
)

// Adapter pulls bytes from a producer and pushes them, chunked, into a Sink.
type Adapter struct {
	id       string
	iter     producer.Iterator
	sink     Sink
	ceiling  int
	observer Observer
	log      *logger.Logger

	state   atomic.Int32
	running atomic.Bool
	release sync.Once

	pulled    atomic.Int64
	delivered atomic.Int64
	chunks    atomic.Int64
}

// New builds an Adapter over the iterator returned by factory. The factory is
// invoked exactly once.
func New(factory producer.Factory, sink Sink, opts ...Option) (*Adapter, error) {
	o := options{observer: NopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.ApplyDefaults()

	if factory == nil {
		return nil, errors.InvalidArgument("producer", "producer factory must not be nil")
	}
	if sink == nil {
		return nil, errors.InvalidArgument("sink", "sink must not be nil")
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.log == nil {
		o.log = logger.Get("adapter")
	}

	it := factory()
	if it == nil {
		return nil, errors.InvalidArgument("producer", "producer factory returned a nil iterator")
	}

	a := &Adapter{
		id:       o.id,
		iter:     it,
		sink:     sink,
		ceiling:  o.cfg.ChunkCeiling,
		observer: o.observer,
		log:      o.log.WithFields(logger.Fields(logger.FieldStreamID, o.id)),
	}
	a.log.Z().Debug().Int(logger.FieldCeiling, a.ceiling).Msg("adapter created")
	return a, nil
}

// ID returns the stream identifier.
func (a *Adapter) ID() string { return a.id }

// ChunkCeiling returns the configured per-chunk byte ceiling.
func (a *Adapter) ChunkCeiling() int { return a.ceiling }

// State returns the current flow state.
func (a *Adapter) State() State { return State(a.state.Load()) }

// Pulled returns how many bytes have been pulled from the producer.
func (a *Adapter) Pulled() int64 { return a.pulled.Load() }

// Delivered returns how many bytes have been offered downstream.
func (a *Adapter) Delivered() int64 { return a.delivered.Load() }

// Chunks returns how many chunks have been offered downstream.
func (a *Adapter) Chunks() int64 { return a.chunks.Load() }

// RequestMore runs fill-and-push cycles until the sink saturates, the
// producer is exhausted or faults, or the adapter is closed. sizeHint <= 0
// means no hint. Calls in a terminal state, and re-entrant calls made from
// inside Sink.Offer, return immediately.
func (a *Adapter) RequestMore(sizeHint int) {
	if !a.running.CompareAndSwap(false, true) {
		return
	}
	defer a.finishCycle()

	if !a.state.CompareAndSwap(int32(StatePaused), int32(StateProducing)) {
		return
	}

	target := a.ceiling
	if sizeHint > 0 && sizeHint < target {
		target = sizeHint
	}

	for {
		buf := make([]byte, target)
		for i := 0; i < target; i++ {
			b, ok, err := a.iter.Next()
			if err != nil {
				a.fail(err)
				return
			}
			if !ok {
				// The final chunk may be short; an empty one is never offered.
				if i > 0 {
					a.offer(buf[:i])
				}
				a.end()
				return
			}
			a.pulled.Add(1)
			buf[i] = b
		}

		ready := a.offer(buf)
		if a.State() != StateProducing {
			return
		}
		if !ready {
			if a.state.CompareAndSwap(int32(StateProducing), int32(StatePaused)) {
				a.observer.Paused()
				a.log.Z().Trace().Int64(logger.FieldBytes, a.Delivered()).Msg("downstream saturated, pausing")
			}
			return
		}
	}
}

// Close moves the adapter to the closed state. Future RequestMore calls are
// no-ops; a cycle already in flight stops after its current offer.
func (a *Adapter) Close() error {
	for {
		s := a.State()
		if s.Terminal() {
			return nil
		}
		if a.state.CompareAndSwap(int32(s), int32(StateClosed)) {
			break
		}
	}
	a.log.Z().Debug().Int64(logger.FieldBytes, a.Delivered()).Msg("adapter closed")
	if !a.running.Load() {
		a.releaseIterator()
	}
	return nil
}

func (a *Adapter) offer(chunk []byte) bool {
	a.delivered.Add(int64(len(chunk)))
	a.chunks.Add(1)
	a.observer.ChunkPushed(len(chunk))
	return a.sink.Offer(chunk)
}

func (a *Adapter) end() {
	if !a.state.CompareAndSwap(int32(StateProducing), int32(StateEnded)) {
		return
	}
	total := a.Delivered()
	a.sink.End()
	a.observer.Ended(total)
	a.log.Z().Debug().
		Int64(logger.FieldBytes, total).
		Int64(logger.FieldChunks, a.Chunks()).
		Msg("producer exhausted, stream ended")
}

func (a *Adapter) fail(cause error) {
	if !a.state.CompareAndSwap(int32(StateProducing), int32(StateFailed)) {
		return
	}
	err := errors.ProducerFailure(cause).
		WithDetail(logger.FieldStreamID, a.id).
		WithDetail("offset", a.Pulled())
	a.sink.Fail(err)
	a.observer.Failed(err)
	a.log.Z().Error().Err(cause).Int64("offset", a.Pulled()).Msg("producer failed")
}

// finishCycle clears the running flag and releases the iterator if the
// adapter reached a terminal state while the cycle was in flight.
func (a *Adapter) finishCycle() {
	a.running.Store(false)
	if a.State().Terminal() {
		a.releaseIterator()
	}
}

func (a *Adapter) releaseIterator() {
	a.release.Do(func() { producer.Stop(a.iter) })
}
