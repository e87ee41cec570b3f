// Package stream is the push-stream primitive an adapter.Adapter feeds.
//
// A Readable queues the chunks the adapter offers and reports saturation once
// the queued bytes reach the high-water mark, exactly like a readable stream's
// internal buffer. Consumers drive production by reading: Read, WriteTo and
// the chunk Iterator each issue a new RequestMore whenever the queue runs dry.
//
//	r, err := stream.NewReadable(generator.MustNew("mt19937", 0), stream.Options{Limit: 1945})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	_, err = io.Copy(file, r)
//
// For concurrent consumers, Buffer moves production onto its own goroutine
// behind a bounded channel:
//
//	it := stream.Buffer(stream.Chunks(r), 8)
//	defer it.Close()
//	err := stream.Drain(ctx, it, func(ctx context.Context, chunk []byte) error {
//	    _, err := conn.Write(chunk)
//	    return err
//	})
package stream
