package generate

// splitMix32 is a self-contained 32-bit scrambler. The generator must be
// bit-identical across platforms and process restarts for a fixed seed, so
// it cannot lean on math/rand or any ambient entropy.
type splitMix32 struct {
	state uint32
}

func newSplitMix32(seed uint32) *splitMix32 {
	return &splitMix32{state: seed}
}

// next advances the state by the golden-ratio increment and scrambles it.
func (r *splitMix32) next() uint32 {
	r.state += 0x9E3779B9
	z := r.state
	z ^= z >> 16
	z *= 0x21F0AAAD
	z ^= z >> 15
	z *= 0x735A2D97
	z ^= z >> 15
	return z
}

// intn returns a value in [0,n). n must be positive.
func (r *splitMix32) intn(n int) int {
	return int(r.next() % uint32(n))
}
