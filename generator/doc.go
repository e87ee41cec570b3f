// Package generator provides deterministic byte producers for streamgen:
// integer PRNGs spread into little-endian bytes, and keystream sources.
//
// Every generator is addressable by name through the registry so the CLI,
// configuration and HTTP surface can pick one at runtime:
//
//	f, err := generator.New("mt19937", 0) // 0 selects the generator's default seed
//
// Generators are fixtures, not cryptographic randomness sources; ChaCha20 and
// BLAKE3 are keyed from the seed and therefore fully reproducible.
package generator
