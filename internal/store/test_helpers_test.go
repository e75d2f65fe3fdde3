package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/testutil"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestStudy returns a small study with one random block.
func createTestStudy(n int) *ir.StudyConfig {
	return &ir.StudyConfig{
		UIConfig: ir.UIConfig{StudyID: "test-study", NumSequences: &n},
		Sequence: ir.OrderObject{
			Order: ir.OrderFixed,
			Components: []ir.Component{
				ir.Leaf("intro"),
				ir.Nested(&ir.OrderObject{
					Order:      ir.OrderRandom,
					Components: []ir.Component{ir.Leaf("a"), ir.Leaf("b"), ir.Leaf("c")},
				}),
			},
		},
		Components: map[string]ir.ComponentDef{
			"intro": {Type: "markdown"}, "a": {}, "b": {}, "c": {},
		},
	}
}

// createTestPopulation builds n distinguishable sequences without the generator.
func createTestPopulation(n int) []*ir.Sequence {
	orders := [][]string{{"a", "b", "c"}, {"b", "c", "a"}, {"c", "a", "b"}}
	seqs := make([]*ir.Sequence, n)
	for i := range seqs {
		o := orders[i%len(orders)]
		seqs[i] = &ir.Sequence{
			Order:     ir.OrderFixed,
			OrderPath: ir.RootPath,
			Components: []ir.SequenceEntry{
				ir.LeafEntry("intro"),
				ir.BlockEntry(&ir.Sequence{
					Order:     ir.OrderRandom,
					OrderPath: "root-1",
					Components: []ir.SequenceEntry{
						ir.LeafEntry(o[0]), ir.LeafEntry(o[1]), ir.LeafEntry(o[2]),
					},
				}),
				ir.LeafEntry(ir.EndStep),
			},
		}
	}
	return seqs
}

// savePopulation stores a study and n sequences, returning the population ID.
func savePopulation(t *testing.T, s *Store, n int) string {
	t.Helper()
	ctx := context.Background()
	studyHash, err := s.SaveStudy(ctx, createTestStudy(n))
	if err != nil {
		t.Fatalf("SaveStudy() failed: %v", err)
	}
	id, err := s.SavePopulation(ctx, studyHash, createTestPopulation(n), PopulationMeta{})
	if err != nil {
		t.Fatalf("SavePopulation() failed: %v", err)
	}
	return id
}

var _ IDGenerator = (*testutil.FixedIDGenerator)(nil)
