// Package httpstream exposes generators over HTTP. A response body is the
// sink of a fresh adapter, so a slow client pauses production.
//
// Routes:
//
//	GET /v1/generators                  registered generators
//	GET /v1/bytes/:generator?n=&seed=&chunk=&digest=
//	GET /version
//	GET /health
//
// When digest is set the hex digest of the body is sent in the X-Digest trailer.
package httpstream
