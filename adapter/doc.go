// Package adapter turns a pull-based byte producer into a push-based stream
// that honours downstream backpressure.
//
// An Adapter owns exactly one producer.Iterator, obtained from the factory at
// construction. Each RequestMore call runs the fill-and-push cycle: pull up to
// min(sizeHint, ChunkCeiling) bytes into a fresh buffer, offer it to the Sink,
// and keep going for as long as the Sink accepts more. The cycle stops when
// the Sink reports saturation and resumes only on the next RequestMore.
//
// When the producer is exhausted the bytes pulled so far (if any) are offered
// as the final chunk and the Sink's End is called exactly once. When the
// producer faults, the Sink's Fail receives a PRODUCER_FAILURE error and no
// further chunks are offered.
//
//	a, err := adapter.New(generator.Counter(), sink, adapter.WithChunkCeiling(4))
//	if err != nil {
//	    return err
//	}
//	a.RequestMore(0)
//
// An Adapter is driven by a single goroutine at a time. Close may be called
// from any goroutine.
package adapter
