package ir

// Tree is the structural view shared by templates and resolved sequences.
// At returns either a leaf name (sub == nil) or a nested subtree.
type Tree interface {
	Len() int
	At(i int) (leaf string, sub Tree)
}

// Len implements Tree.
func (o *OrderObject) Len() int {
	return len(o.Components)
}

// At implements Tree.
func (o *OrderObject) At(i int) (string, Tree) {
	c := o.Components[i]
	if c.Block != nil {
		return "", c.Block
	}
	return c.Leaf, nil
}

// Len implements Tree.
func (s *Sequence) Len() int {
	return len(s.Components)
}

// At implements Tree.
func (s *Sequence) At(i int) (string, Tree) {
	e := s.Components[i]
	if e.Block != nil {
		return "", e.Block
	}
	return e.Leaf, nil
}
