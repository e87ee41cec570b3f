package adapter

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/producer"
)

// recordingSink stores every offered chunk. accept decides the Offer result.
type recordingSink struct {
	chunks   [][]byte
	ends     int
	failures []error
	accept   func(offered int) bool
	onOffer  func()
}

func (s *recordingSink) Offer(chunk []byte) bool {
	s.chunks = append(s.chunks, chunk)
	if s.onOffer != nil {
		s.onOffer()
	}
	if s.accept == nil {
		return true
	}
	return s.accept(len(s.chunks))
}

func (s *recordingSink) End()           { s.ends++ }
func (s *recordingSink) Fail(err error) { s.failures = append(s.failures, err) }

func (s *recordingSink) bytes() []byte {
	return bytes.Join(s.chunks, nil)
}

func (s *recordingSink) sizes() []int {
	out := make([]int, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = len(c)
	}
	return out
}

// limiterSink lets exactly limit bytes through. It pauses whenever the
// remaining budget cannot hold another full chunk, so the driver re-requests
// with the remaining budget as the size hint.
type limiterSink struct {
	recordingSink
	ceiling   int
	remaining int
}

func (s *limiterSink) Offer(chunk []byte) bool {
	s.recordingSink.Offer(chunk)
	s.remaining -= len(chunk)
	return s.remaining >= s.ceiling
}

func (s *limiterSink) drive(a *Adapter) {
	for s.remaining > 0 && !a.State().Terminal() {
		a.RequestMore(s.remaining)
	}
	_ = a.Close()
}

func quietOpts(opts ...Option) []Option {
	return append([]Option{WithLogger(logger.Nop())}, opts...)
}

func TestNew_InvalidArgument(t *testing.T) {
	sink := &recordingSink{}

	tests := []struct {
		name    string
		factory producer.Factory
		sink    Sink
		opts    []Option
	}{
		{"nil factory", nil, sink, nil},
		{"nil sink", producer.Counter(), nil, nil},
		{"nil iterator", func() producer.Iterator { return nil }, sink, nil},
		{"negative ceiling", producer.Counter(), sink, []Option{WithChunkCeiling(-1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := New(tc.factory, tc.sink, quietOpts(tc.opts...)...)
			require.Error(t, err)
			assert.Nil(t, a)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "got %v", err)
		})
	}
}

func TestNew_InvokesFactoryOnce(t *testing.T) {
	calls := 0
	factory := func() producer.Iterator {
		calls++
		return producer.Counter()()
	}
	a, err := New(factory, &recordingSink{accept: func(int) bool { return false }}, quietOpts()...)
	require.NoError(t, err)

	a.RequestMore(0)
	a.RequestMore(0)
	assert.Equal(t, 1, calls)
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(producer.Counter(), &recordingSink{}, quietOpts()...)
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkCeiling, a.ChunkCeiling())
	assert.Equal(t, StatePaused, a.State())
	assert.NotEmpty(t, a.ID())

	named, err := New(producer.Counter(), &recordingSink{}, quietOpts(WithID("s-1"))...)
	require.NoError(t, err)
	assert.Equal(t, "s-1", named.ID())
}

func TestRequestMore_CounterScenario(t *testing.T) {
	sink := &limiterSink{ceiling: 4, remaining: 10}
	a, err := New(producer.Counter(), sink, quietOpts(WithChunkCeiling(4))...)
	require.NoError(t, err)

	sink.drive(a)

	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sink.bytes())
	assert.Equal(t, []int{4, 4, 2}, sink.sizes())
	assert.Equal(t, int64(10), a.Delivered())
	assert.Equal(t, StateClosed, a.State())
	assert.Zero(t, sink.ends, "closing before exhaustion does not signal end")
}

func TestRequestMore_SizeHintCapsChunk(t *testing.T) {
	sink := &recordingSink{accept: func(int) bool { return false }}
	a, err := New(producer.Counter(), sink, quietOpts(WithChunkCeiling(8))...)
	require.NoError(t, err)

	a.RequestMore(3)
	a.RequestMore(100)
	a.RequestMore(0)

	assert.Equal(t, []int{3, 8, 8}, sink.sizes())
}

func TestRequestMore_ExhaustionFlush(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		ceiling int
		sizes   []int
	}{
		{"partial final chunk", 10, 4, []int{4, 4, 2}},
		{"exact multiple has no empty chunk", 8, 4, []int{4, 4}},
		{"shorter than one chunk", 3, 4, []int{3}},
		{"empty producer", 0, 4, []int{}},
		{"ceiling of one", 3, 1, []int{1, 1, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]byte, tc.total)
			for i := range data {
				data[i] = byte(i * 7)
			}
			sink := &recordingSink{}
			a, err := New(producer.FromSlice(data), sink, quietOpts(WithChunkCeiling(tc.ceiling))...)
			require.NoError(t, err)

			a.RequestMore(0)

			assert.Equal(t, tc.sizes, sink.sizes())
			assert.Equal(t, 1, sink.ends)
			assert.Equal(t, data, append([]byte{}, sink.bytes()...))
			assert.Equal(t, StateEnded, a.State())
		})
	}
}

func TestRequestMore_NoPushAfterEnd(t *testing.T) {
	sink := &recordingSink{}
	a, err := New(producer.FromSlice([]byte{1, 2}), sink, quietOpts(WithChunkCeiling(4))...)
	require.NoError(t, err)

	a.RequestMore(0)
	a.RequestMore(0)
	a.RequestMore(10)

	assert.Len(t, sink.chunks, 1)
	assert.Equal(t, 1, sink.ends)
}

func TestRequestMore_BackpressureHalt(t *testing.T) {
	counted := producer.Counted(producer.Counter()())
	sink := &recordingSink{accept: func(n int) bool { return n%3 != 0 }}
	a, err := New(func() producer.Iterator { return counted }, sink, quietOpts(WithChunkCeiling(5))...)
	require.NoError(t, err)

	a.RequestMore(0)
	require.Len(t, sink.chunks, 3, "pauses on the third offer")
	assert.Equal(t, StatePaused, a.State())
	assert.Equal(t, int64(15), counted.Calls())

	// Nothing advances the cursor until the next request.
	assert.Equal(t, int64(15), counted.Calls())

	a.RequestMore(0)
	assert.Len(t, sink.chunks, 6)
	assert.Equal(t, int64(30), counted.Calls())
}

func TestRequestMore_ProducerFailure(t *testing.T) {
	boom := stderrors.New("generator crashed")
	sink := &recordingSink{}
	a, err := New(producer.Failing(producer.Counter(), 6, boom), sink, quietOpts(WithChunkCeiling(4))...)
	require.NoError(t, err)

	a.RequestMore(0)

	assert.Equal(t, []int{4}, sink.sizes(), "the partial buffer at the fault is dropped")
	require.Len(t, sink.failures, 1)
	assert.True(t, errors.Is(sink.failures[0], errors.ErrCodeProducerFailure))
	assert.ErrorIs(t, sink.failures[0], boom)
	assert.Zero(t, sink.ends)
	assert.Equal(t, StateFailed, a.State())

	a.RequestMore(0)
	assert.Len(t, sink.chunks, 1)
	assert.Len(t, sink.failures, 1)
}

func TestClose_StopsFutureCycles(t *testing.T) {
	counted := producer.Counted(producer.Counter()())
	sink := &recordingSink{accept: func(int) bool { return false }}
	a, err := New(func() producer.Iterator { return counted }, sink, quietOpts(WithChunkCeiling(2))...)
	require.NoError(t, err)

	a.RequestMore(0)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	a.RequestMore(0)

	assert.Equal(t, StateClosed, a.State())
	assert.Len(t, sink.chunks, 1)
	assert.Equal(t, int64(2), counted.Calls())
}

func TestClose_DuringOffer(t *testing.T) {
	sink := &recordingSink{}
	a, err := New(producer.Counter(), sink, quietOpts(WithChunkCeiling(2))...)
	require.NoError(t, err)
	sink.onOffer = func() {
		if len(sink.chunks) == 2 {
			_ = a.Close()
		}
	}

	a.RequestMore(0)

	assert.Len(t, sink.chunks, 2)
	assert.Equal(t, StateClosed, a.State())
	assert.Zero(t, sink.ends)
}

func TestRequestMore_ReentrantCallIgnored(t *testing.T) {
	sink := &recordingSink{}
	a, err := New(producer.Limit(producer.Counter(), 6), sink, quietOpts(WithChunkCeiling(2))...)
	require.NoError(t, err)
	sink.onOffer = func() { a.RequestMore(0) }

	a.RequestMore(0)

	assert.Equal(t, []int{2, 2, 2}, sink.sizes())
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, sink.bytes())
	assert.Equal(t, 1, sink.ends)
}

type countingObserver struct {
	chunks, pauses, ends, failures int
	total                          int64
}

func (o *countingObserver) ChunkPushed(int)   { o.chunks++ }
func (o *countingObserver) Paused()           { o.pauses++ }
func (o *countingObserver) Ended(total int64) { o.ends++; o.total = total }
func (o *countingObserver) Failed(error)      { o.failures++ }

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	sink := &recordingSink{accept: func(n int) bool { return n != 1 }}
	a, err := New(producer.FromSlice(make([]byte, 9)), sink, quietOpts(WithChunkCeiling(4), WithObserver(obs))...)
	require.NoError(t, err)

	a.RequestMore(0)
	a.RequestMore(0)

	assert.Equal(t, 3, obs.chunks)
	assert.Equal(t, 1, obs.pauses)
	assert.Equal(t, 1, obs.ends)
	assert.Equal(t, int64(9), obs.total)
	assert.Zero(t, obs.failures)
}

func TestConfig_ApplyDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultChunkCeiling, cfg.ChunkCeiling)
	assert.NoError(t, cfg.Validate())

	bad := Config{ChunkCeiling: -3}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_ceiling")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "producing", StateProducing.String())
	assert.Equal(t, "ended", StateEnded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.True(t, StateClosed.Terminal())
	assert.False(t, StatePaused.Terminal())
}
