package store

import "github.com/google/uuid"

// IDGenerator produces participant IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 participant IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort by
// registration time. Assignment order itself never depends on them; it uses
// the logical seq column.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Format: "01890a5d-ac96-774b-bcce-b302099a8057" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
