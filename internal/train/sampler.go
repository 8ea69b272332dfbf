package train

import (
	"math/rand/v2"
)

// sampler hands out sample indices in shuffled passes, reshuffling whenever
// a pass is used up, so every sample is drawn once before any repeats.
type sampler struct {
	rng   *rand.Rand
	order []int
	pos   int
}

func newSampler(n int, rng *rand.Rand) *sampler {
	s := &sampler{rng: rng, order: make([]int, n)}
	for i := range s.order {
		s.order[i] = i
	}
	s.shuffle()
	return s
}

func (s *sampler) shuffle() {
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.pos = 0
}

// next returns the next index.
func (s *sampler) next() int {
	if s.pos == len(s.order) {
		s.shuffle()
	}
	i := s.order[s.pos]
	s.pos++
	return i
}
