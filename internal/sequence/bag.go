package sequence

import "math/rand/v2"

// fairBag hands out entry indices of one random block across a population.
//
// The bag is a queue of shuffled permutations of 0..n-1. A participant takes
// the first k queued indices it does not already hold; skipped indices stay
// queued for the next participant. When nothing eligible is left a fresh
// permutation is appended. Every index is queued the same number of times, so
// aggregate counts differ by at most the few indices still queued at the end.
type fairBag struct {
	n     int
	queue []int
}

func newFairBag(n int) *fairBag {
	return &fairBag{n: n}
}

func (b *fairBag) refill(rng *rand.Rand) {
	perm := rng.Perm(b.n)
	b.queue = append(b.queue, perm...)
}

// draw returns k distinct indices in random order. k must not exceed n.
func (b *fairBag) draw(k int, rng *rand.Rand) []int {
	picked := make([]int, 0, k)
	held := make([]bool, b.n)

	for len(picked) < k {
		j := -1
		for i, idx := range b.queue {
			if !held[idx] {
				j = i
				break
			}
		}
		if j < 0 {
			b.refill(rng)
			continue
		}

		idx := b.queue[j]
		if j == 0 {
			b.queue = b.queue[1:]
		} else {
			b.queue = append(b.queue[:j], b.queue[j+1:]...)
		}
		held[idx] = true
		picked = append(picked, idx)
	}

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked
}
