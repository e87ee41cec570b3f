// Package digest hashes adapter-driven streams, mainly to check that a
// generator reproduces the same byte sequence run after run.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"net/http"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // fixture digests are RIPEMD-160
	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/producer"
	"github.com/kbukum/streamgen/stream"
)

// Algorithm names a supported hash function.
type Algorithm string

// Supported algorithms.
const (
	RIPEMD160 Algorithm = "ripemd160"
	SHA256    Algorithm = "sha256"
	BLAKE2b   Algorithm = "blake2b"
	BLAKE3    Algorithm = "blake3"
)

// Default is the algorithm used when none is configured.
const Default = RIPEMD160

var constructors = map[Algorithm]func() hash.Hash{
	RIPEMD160: ripemd160.New,
	SHA256:    sha256.New,
	BLAKE2b: func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	BLAKE3: func() hash.Hash { return blake3.New(32, nil) },
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	out := make([]string, 0, len(constructors))
	for a := range constructors {
		out = append(out, string(a))
	}
	sort.Strings(out)
	return out
}

// NewHash returns a fresh hash for algo. An empty algo selects Default.
func NewHash(algo Algorithm) (hash.Hash, error) {
	if algo == "" {
		algo = Default
	}
	newHash, ok := constructors[algo]
	if !ok {
		return nil, errors.InvalidArgument("digest", "unsupported algorithm "+string(algo)).
			WithDetail("available", Algorithms())
	}
	return newHash(), nil
}

// HashThrough is an io.Writer that hashes everything written to it and
// forwards it to an optional destination.
type HashThrough struct {
	algo Algorithm
	h    hash.Hash
	w    io.Writer
	n    int64
}

// NewHashThrough returns a HashThrough forwarding to w. w may be nil.
func NewHashThrough(algo Algorithm, w io.Writer) (*HashThrough, error) {
	h, err := NewHash(algo)
	if err != nil {
		return nil, err
	}
	if algo == "" {
		algo = Default
	}
	return &HashThrough{algo: algo, h: h, w: w}, nil
}

func (t *HashThrough) Write(p []byte) (int, error) {
	if t.w != nil {
		n, err := t.w.Write(p)
		t.h.Write(p[:n])
		t.n += int64(n)
		return n, err
	}
	t.h.Write(p)
	t.n += int64(len(p))
	return len(p), nil
}

// Algorithm returns the hash algorithm in use.
func (t *HashThrough) Algorithm() Algorithm { return t.algo }

// Bytes returns how many bytes were hashed.
func (t *HashThrough) Bytes() int64 { return t.n }

// Sum returns the hex digest of everything written so far.
func (t *HashThrough) Sum() string { return hex.EncodeToString(t.h.Sum(nil)) }

// Of streams the first n bytes of factory through an adapter and returns
// their hex digest.
func Of(ctx context.Context, factory producer.Factory, n int64, algo Algorithm, opts ...adapter.Option) (string, error) {
	if n < 1 {
		return "", errors.InvalidArgument("bytes", "must be at least 1")
	}
	ht, err := NewHashThrough(algo, nil)
	if err != nil {
		return "", err
	}
	r, err := stream.NewReadable(factory, stream.Options{Limit: n}, opts...)
	if err != nil {
		return "", err
	}
	if _, err := stream.Copy(ctx, ht, r); err != nil {
		return "", err
	}
	if ht.Bytes() != n {
		return "", errors.New(errors.ErrCodeInternal, "The producer ended before the requested length.", http.StatusInternalServerError).
			WithDetail("expected_bytes", n).
			WithDetail("hashed_bytes", ht.Bytes())
	}
	return ht.Sum(), nil
}

// Result reports a reproducibility check.
type Result struct {
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	Bytes     int64     `json:"bytes" yaml:"bytes"`
	First     string    `json:"first" yaml:"first"`
	Second    string    `json:"second" yaml:"second"`
	Match     bool      `json:"match" yaml:"match"`
}

// Reproducible runs two independent adapters over factory concurrently and
// compares the digests of their first n bytes.
func Reproducible(ctx context.Context, factory producer.Factory, n int64, algo Algorithm, opts ...adapter.Option) (Result, error) {
	if algo == "" {
		algo = Default
	}
	res := Result{Algorithm: algo, Bytes: n}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.First, err = Of(gctx, factory, n, algo, opts...)
		return err
	})
	g.Go(func() error {
		var err error
		res.Second, err = Of(gctx, factory, n, algo, opts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	res.Match = res.First == res.Second
	return res, nil
}
