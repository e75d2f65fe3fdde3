package ir

// Clone returns a deep copy of the block and all nested blocks.
func (o *OrderObject) Clone() *OrderObject {
	if o == nil {
		return nil
	}
	out := &OrderObject{Order: o.Order}
	if o.NumSamples != nil {
		n := *o.NumSamples
		out.NumSamples = &n
	}
	if o.Components != nil {
		out.Components = make([]Component, len(o.Components))
		for i, c := range o.Components {
			out.Components[i] = Component{Leaf: c.Leaf, Block: c.Block.Clone()}
		}
	}
	if o.Interruptions != nil {
		out.Interruptions = make([]Interruption, len(o.Interruptions))
		for i, in := range o.Interruptions {
			out.Interruptions[i] = Interruption{
				Spacing:          in.Spacing,
				NumInterruptions: in.NumInterruptions,
				Components:       append([]string(nil), in.Components...),
			}
		}
	}
	return out
}

// Clone returns a deep copy of the sequence and all nested blocks.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	out := &Sequence{Order: s.Order, OrderPath: s.OrderPath}
	if s.Components != nil {
		out.Components = make([]SequenceEntry, len(s.Components))
		for i, e := range s.Components {
			out.Components[i] = SequenceEntry{Leaf: e.Leaf, Block: e.Block.Clone()}
		}
	}
	return out
}

// Clone returns a deep copy of the study configuration.
func (c *StudyConfig) Clone() *StudyConfig {
	if c == nil {
		return nil
	}
	out := &StudyConfig{UIConfig: UIConfig{StudyID: c.UIConfig.StudyID}}
	if c.UIConfig.NumSequences != nil {
		n := *c.UIConfig.NumSequences
		out.UIConfig.NumSequences = &n
	}
	out.Sequence = *c.Sequence.Clone()
	if c.Components != nil {
		out.Components = make(map[string]ComponentDef, len(c.Components))
		for k, v := range c.Components {
			out.Components[k] = v
		}
	}
	return out
}
