package generator

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
	"lukechampine.com/blake3"

	"github.com/kbukum/streamgen/producer"
)

func seedBytes(seed uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], seed)
	return b[:]
}

// ChaCha20 returns a producer yielding the ChaCha20 keystream for a key
// derived from seed with BLAKE2b-256 and an all-zero nonce.
func ChaCha20(seed uint64) producer.Factory {
	key := blake2b.Sum256(seedBytes(seed))
	return producer.FromReader(func() io.Reader {
		c, err := chacha20.NewUnauthenticatedCipher(key[:], make([]byte, chacha20.NonceSize))
		if err != nil {
			// Key and nonce sizes are fixed above, so this cannot fail.
			panic(err)
		}
		return &keystreamReader{cipher: c}
	})
}

type keystreamReader struct {
	cipher *chacha20.Cipher
}

func (r *keystreamReader) Read(p []byte) (int, error) {
	clear(p)
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Blake3 returns a producer yielding the BLAKE3 extendable output of seed.
func Blake3(seed uint64) producer.Factory {
	return producer.FromReader(func() io.Reader {
		h := blake3.New(32, nil)
		_, _ = h.Write(seedBytes(seed))
		return h.XOF()
	})
}
