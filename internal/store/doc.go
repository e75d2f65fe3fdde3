// Package store provides SQLite-backed persistence for generated study
// populations.
//
// The store keeps:
//   - Studies: compiled configurations, keyed by content hash
//   - Populations: generated sequence arrays, keyed by content hash
//   - Sequences: one row per participant sequence, in generation order
//   - Assignments: which participant received which sequence
//
// # Patterns
//
// Content-addressed identity
//   - Study and population IDs come from internal/ir/hash.go (canonical JSON
//     and SHA-256 with domain separation)
//   - Saving the same study or population twice is a no-op
//
// Logical ordering
//   - Populations and assignments are ordered by seq INTEGER, NEVER timestamps
//   - Participant n (0-based registration order) receives sequence n mod size
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
