package testutil

// DefaultSeed is the seed used by golden-file scenarios that do not set one.
// Pass it to sequence.WithSeed for a reproducible population.
const DefaultSeed uint64 = 20240101
