package audio

import "github.com/gopxl/beep"

// tee fans a single streamer out to a fixed number of branches that consume
// in lockstep. The per-core player needs every branch frame-aligned to the
// same source, which rules out independent decoders; instead the first
// branch of each round pulls a block from the source and the remaining
// branches replay it.
//
// Lockstep is guaranteed by construction: every branch chain is
// length-preserving and all branches are summed by one beep.Mixer, which
// pulls each of them over the same sample range per block.
type tee struct {
	src      beep.Streamer
	branches int
	buf      [][2]float64
	n        int
	ok       bool
	served   int
}

func newTee(src beep.Streamer, branches int) *tee {
	return &tee{src: src, branches: branches, ok: true}
}

// branch returns one reader over the shared source.
func (t *tee) branch() beep.Streamer {
	return &teeBranch{t: t}
}

func (t *tee) stream(samples [][2]float64) (int, bool) {
	if t.served == 0 {
		if cap(t.buf) < len(samples) {
			t.buf = make([][2]float64, len(samples))
		}
		t.buf = t.buf[:len(samples)]
		t.n, t.ok = t.src.Stream(t.buf)
	}

	copy(samples, t.buf[:t.n])
	t.served++
	if t.served == t.branches {
		t.served = 0
	}
	return t.n, t.ok
}

type teeBranch struct {
	t *tee
}

func (b *teeBranch) Stream(samples [][2]float64) (int, bool) {
	return b.t.stream(samples)
}

func (b *teeBranch) Err() error {
	return b.t.src.Err()
}
