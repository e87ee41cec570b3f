package generator

import (
	"sort"
	"sync"

	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/producer"
)

// Builder creates a producer factory for a seed. Seed 0 selects the
// generator's default seed.
type Builder func(seed uint64) producer.Factory

// Info describes a registered generator.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	DefaultSeed uint64 `json:"default_seed" yaml:"default_seed"`
}

type entry struct {
	info  Info
	build Builder
}

var (
	registryMu sync.RWMutex
	registry   = map[string]entry{}
)

func init() {
	Register(Info{Name: "counter", Description: "bytes 0..255 repeating, starting at seed mod 256"},
		func(seed uint64) producer.Factory {
			start := byte(seed)
			return func() producer.Iterator {
				n := start
				return producer.IteratorFunc(func() (byte, bool, error) {
					b := n
					n++
					return b, true, nil
				})
			}
		})
	Register(Info{Name: "mt19937", Description: "32-bit Mersenne Twister, little-endian", DefaultSeed: DefaultMTSeed},
		func(seed uint64) producer.Factory {
			return Bytes(func() IntGenerator { return NewMT19937(uint32(seed)) })
		})
	Register(Info{Name: "xoroshiro128plus", Description: "xoroshiro128+, low 32 bits first, little-endian"},
		func(seed uint64) producer.Factory {
			s0, s1 := uint64(DefaultXoroshiroS0), uint64(DefaultXoroshiroS1)
			if seed != 0 {
				s0, s1 = splitMix64(seed)
			}
			return Bytes(func() IntGenerator { return NewXoroshiro128Plus(s0, s1) })
		})
	Register(Info{Name: "chacha20", Description: "ChaCha20 keystream keyed by BLAKE2b-256(seed)", DefaultSeed: 1},
		ChaCha20)
	Register(Info{Name: "blake3", Description: "BLAKE3 extendable output of seed", DefaultSeed: 1},
		Blake3)
}

// Register adds or replaces a named generator.
func Register(info Info, build Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[info.Name] = entry{info: info, build: build}
}

// Names returns the registered generator names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered generators sorted by name.
func List() []Info {
	names := Names()
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Info, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name].info)
	}
	return out
}

// Lookup returns the description of a named generator.
func Lookup(name string) (Info, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	return e.info, ok
}

// New returns a producer factory for the named generator. Unknown names
// yield a NOT_FOUND error.
func New(name string, seed uint64) (producer.Factory, error) {
	registryMu.RLock()
	e, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NotFound("generator", name).
			WithDetail("available", Names())
	}
	if seed == 0 {
		seed = e.info.DefaultSeed
	}
	return e.build(seed), nil
}

// MustNew is like New but panics on an unknown name.
func MustNew(name string, seed uint64) producer.Factory {
	f, err := New(name, seed)
	if err != nil {
		panic(err)
	}
	return f
}
