package stack

// EtchResolution classifies the stack's layers for geometry derivation:
// which grow levels survive unetched, and which etch levels consume each
// target. It is recomputed on every call and never cached, so both the
// geometry builder and the script emitter see the same classification.
type EtchResolution struct {
	// Unetched lists grow-level names (with a physical id) whose geometry
	// is not consumed by any etch, in stack order.
	Unetched []string
	// EtchedBy maps a target level name to the etch-level names that etch
	// it. Etches apply cumulatively in this order. Targets are recorded
	// even when absent from the stack.
	EtchedBy map[string][]string
	// Etched lists the EtchedBy keys in first-reference order.
	Etched []string
}

// Resolve classifies the stack's levels. Etch levels are visited in stack
// order and their Into lists in declaration order. A target referenced by
// an etch loses its place in Unetched; repeated references accumulate in
// EtchedBy and the removal stays idempotent. Etch levels with an empty
// Into contribute nothing.
func (s *LayerStack) Resolve() EtchResolution {
	res := EtchResolution{EtchedBy: make(map[string][]string)}

	var unetched []string
	var etchNames []string
	for _, name := range s.names {
		level := s.levels[name]
		if level.Layer == nil {
			continue
		}
		switch level.Type {
		case Grow:
			unetched = append(unetched, name)
		case Etch:
			etchNames = append(etchNames, name)
		}
	}

	consumed := make(map[string]bool)
	for _, etchName := range etchNames {
		for _, target := range s.levels[etchName].Into {
			if _, seen := res.EtchedBy[target]; !seen {
				res.Etched = append(res.Etched, target)
			}
			res.EtchedBy[target] = append(res.EtchedBy[target], etchName)
			consumed[target] = true
		}
	}

	for _, name := range unetched {
		if !consumed[name] {
			res.Unetched = append(res.Unetched, name)
		}
	}
	return res
}
