package scip

// Range is a decoded SCIP range. Characters are in the document's position
// encoding; End is exclusive.
type Range struct {
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
}

// ParseRange decodes the three- and four-element SCIP range forms
func ParseRange(r []int32) (Range, bool) {
	switch len(r) {
	case 3:
		return Range{StartLine: int(r[0]), StartChar: int(r[1]), EndLine: int(r[0]), EndChar: int(r[2])}, true
	case 4:
		return Range{StartLine: int(r[0]), StartChar: int(r[1]), EndLine: int(r[2]), EndChar: int(r[3])}, true
	default:
		return Range{}, false
	}
}

// Touches reports whether (line, char) lies within the range or right at its end
func (r Range) Touches(line, char int) bool {
	if line < r.StartLine || line > r.EndLine {
		return false
	}
	if line == r.StartLine && char < r.StartChar {
		return false
	}
	if line == r.EndLine && char > r.EndChar {
		return false
	}
	return true
}

// ContainsLine reports whether line falls within the range's lines
func (r Range) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// OccurrencesAt returns the occurrences whose range touches (line, char)
func (d *Document) OccurrencesAt(line, char int) []*Occurrence {
	var out []*Occurrence
	for _, occ := range d.Occurrences {
		r, ok := ParseRange(occ.Range)
		if !ok || occ.Symbol == "" {
			continue
		}
		if r.Touches(line, char) {
			out = append(out, occ)
		}
	}
	return out
}
