package adapter

// Sink is the push side of the stream.
type Sink interface {
	// Offer hands chunk downstream; ownership of chunk transfers to the sink.
	// It returns false when the sink is saturated and wants production paused.
	Offer(chunk []byte) bool
	// End signals that the producer is exhausted. Called at most once.
	End()
	// Fail reports a terminal producer failure. Called at most once.
	Fail(err error)
}

// Observer receives lifecycle notifications from an Adapter.
type Observer interface {
	ChunkPushed(n int)
	Paused()
	Ended(total int64)
	Failed(err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) ChunkPushed(int) {}
func (NopObserver) Paused()         {}
func (NopObserver) Ended(int64)     {}
func (NopObserver) Failed(error)    {}
