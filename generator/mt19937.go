package generator

// DefaultMTSeed is the MT19937 seed used when none is given.
const DefaultMTSeed = 1234567

const (
	mtN       = 624
	mtM       = 397
	mtMatrixA = 0x9908b0df
	mtUpper   = 0x80000000
	mtLower   = 0x7fffffff
)

// MT19937 is the 32-bit Mersenne Twister.
type MT19937 struct {
	state [mtN]uint32
	index int
}

// NewMT19937 returns a Mersenne Twister initialised with seed.
func NewMT19937(seed uint32) *MT19937 {
	m := &MT19937{index: mtN}
	m.state[0] = seed
	for i := 1; i < mtN; i++ {
		prev := m.state[i-1]
		m.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	return m
}

// Next returns the next tempered 32-bit output.
func (m *MT19937) Next() uint32 {
	if m.index >= mtN {
		m.twist()
	}
	y := m.state[m.index]
	m.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

func (m *MT19937) twist() {
	for i := 0; i < mtN; i++ {
		y := (m.state[i] & mtUpper) | (m.state[(i+1)%mtN] & mtLower)
		v := m.state[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		m.state[i] = v
	}
	m.index = 0
}
