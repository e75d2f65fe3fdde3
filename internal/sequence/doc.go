// Package sequence generates balanced per-participant trial sequences and
// resolves steps inside them.
//
// Generate turns a study's ordering template into a population of concrete
// sequences. Balance across the population comes from per-block state that
// lives for one run:
//
// Random blocks draw from a fair bag: shuffled permutations of the block's
// entries, consumed in order and refilled when exhausted. Each entry is drawn
// floor(N*k/n) or ceil(N*k/n) times give or take one refill, instead of the
// binomial drift of independent draws.
//
// Latin-square blocks hand out rows of a balanced (Williams) Latin square from
// a shuffled pool, so every entry appears in every position equally often and
// each entry precedes every other entry equally often.
//
// Nested blocks are opaque units to their parent. Their own state is keyed by
// structural path ("root-1-0"), so a nested block balances its choices across
// the participants that reach it.
//
// FlatMap, SubSequence and FindTaskIndex are the read side used by routers and
// analysis tooling. They never mutate their input.
//
// Generation is synchronous and pure apart from its random source. Each run
// owns its *rand.Rand; concurrent runs never share state.
package sequence
