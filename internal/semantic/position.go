package semantic

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"callroot/internal/backends/scip"
)

// lineIndex converts between byte offsets and SCIP (line, character)
// positions for one document's text.
type lineIndex struct {
	content []byte
	starts  []int
}

func newLineIndex(content []byte) *lineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{content: content, starts: starts}
}

// position returns the zero-based line and the character offset within it,
// counted in the given encoding.
func (li *lineIndex) position(offset int, encoding string) (line, char int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.content) {
		offset = len(li.content)
	}
	line = sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return line, units(li.content[li.starts[line]:offset], encoding)
}

// offset returns the byte offset of (line, char). Positions past the end of
// a line clamp to the line end; lines past the end clamp to the document end.
func (li *lineIndex) offset(line, char int, encoding string) int {
	if line < 0 {
		return 0
	}
	if line >= len(li.starts) {
		return len(li.content)
	}
	pos := li.starts[line]
	for count := 0; count < char && pos < len(li.content); {
		r, size := utf8.DecodeRune(li.content[pos:])
		if r == '\n' {
			break
		}
		count += runeUnits(r, size, encoding)
		pos += size
	}
	return pos
}

func units(text []byte, encoding string) int {
	switch encoding {
	case scip.EncodingUTF16, scip.EncodingUTF32:
		n := 0
		for len(text) > 0 {
			r, size := utf8.DecodeRune(text)
			n += runeUnits(r, size, encoding)
			text = text[size:]
		}
		return n
	default:
		return len(text)
	}
}

// runeUnits counts how many code units of encoding one decoded rune of size
// bytes occupies. Invalid bytes count as one unit each.
func runeUnits(r rune, size int, encoding string) int {
	switch encoding {
	case scip.EncodingUTF16:
		return utf16.RuneLen(r)
	case scip.EncodingUTF32:
		return 1
	default:
		return size
	}
}
