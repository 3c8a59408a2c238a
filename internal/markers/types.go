package markers

// Region is one side of a merge conflict, delimited by marker lines.
//
// StartLine and EndLine are 0-based indices of the marker lines that open
// and terminate the region, not of its content lines. Name is the branch or
// ref label trailing the marker (e.g. "feature-x" in "<<<<<<< feature-x"),
// empty when the marker carries none.
type Region struct {
	StartLine uint32
	EndLine   uint32
	Name      string
}

// Conflict is a complete marker sequence: an ours and a theirs region, plus
// an ancestor region when the markers are diff3 style.
type Conflict struct {
	Ours     Region
	Theirs   Region
	Ancestor *Region
}

// StartLine returns the line of the opening <<<<<<< marker.
func (c Conflict) StartLine() uint32 { return c.Ours.StartLine }

// EndLine returns the line of the closing >>>>>>> marker.
func (c Conflict) EndLine() uint32 { return c.Theirs.EndLine }

// ContainsRange reports whether the conflict's span covers the line range
// [startLine, endLine]. The end may overshoot the closing marker by one
// line, because diagnostic ranges extend one line past it.
func (c Conflict) ContainsRange(startLine, endLine uint32) bool {
	return c.Ours.StartLine <= startLine && c.Theirs.EndLine+1 >= endLine
}

// Equal reports structural equality, region names included.
func (c Conflict) Equal(other Conflict) bool {
	if c.Ours != other.Ours || c.Theirs != other.Theirs {
		return false
	}
	if (c.Ancestor == nil) != (other.Ancestor == nil) {
		return false
	}
	return c.Ancestor == nil || *c.Ancestor == *other.Ancestor
}

// ConflictsEqual reports structural equality of two conflict lists.
func ConflictsEqual(a, b []Conflict) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
