package markers

import (
	"sort"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("merge-assistant.markers")

const (
	markOurs     = "<<<<<<<"
	markAncestor = "|||||||"
	markTheirs   = "======="
	markEnd      = ">>>>>>>"
)

type markerKind int

const (
	kindOurs markerKind = iota
	kindAncestor
	kindTheirs
	kindEnd
)

// marker is one token line found in the document, located by byte offset
// and mapped to its 0-based line.
type marker struct {
	offset int
	line   uint32
	kind   markerKind
	name   string
}

// Scan finds every well-formed merge conflict in text, in document order.
//
// Markers pair positionally: the n-th <<<<<<< pairs with the n-th >>>>>>>,
// with an optional ||||||| ancestor section between <<<<<<< and =======.
// Stray, out-of-order, or unterminated markers are dropped without touching
// conflicts already collected, so one malformed sequence never hides the
// rest of the document. Scan never fails; text with no markers yields nil.
func Scan(text string) []Conflict {
	newlines := NewlineOffsets(text)
	marks := findMarkers(text, newlines)

	var conflicts []Conflict
	var ours, ancestor, theirs *marker
	reset := func() { ours, ancestor, theirs = nil, nil, nil }

	for i := range marks {
		m := &marks[i]
		switch m.kind {
		case kindOurs:
			if ours != nil {
				log.Debugf("dropping unterminated conflict opened at line %d", ours.line)
			}
			reset()
			ours = m
		case kindAncestor:
			if ours == nil || ancestor != nil || theirs != nil {
				log.Debugf("ignoring stray ancestor marker at line %d", m.line)
				continue
			}
			ancestor = m
		case kindTheirs:
			if ours == nil || theirs != nil {
				log.Debugf("ignoring stray separator at line %d", m.line)
				continue
			}
			theirs = m
		case kindEnd:
			if ours == nil || theirs == nil {
				log.Debugf("ignoring stray end marker at line %d", m.line)
				reset()
				continue
			}
			c := Conflict{
				Ours:   Region{StartLine: ours.line, EndLine: theirs.line, Name: ours.name},
				Theirs: Region{StartLine: theirs.line, EndLine: m.line, Name: m.name},
			}
			if ancestor != nil {
				c.Ours.EndLine = ancestor.line
				c.Ancestor = &Region{StartLine: ancestor.line, EndLine: theirs.line, Name: ancestor.name}
			}
			conflicts = append(conflicts, c)
			reset()
		}
	}
	if ours != nil {
		log.Debugf("dropping unterminated conflict opened at line %d", ours.line)
	}
	return conflicts
}

// findMarkers locates every marker token that starts a line and returns
// them sorted by byte offset. Line numbers come from a binary search
// against the newline table, so the text is never re-scanned per marker.
func findMarkers(text string, newlines []int) []marker {
	tokens := []struct {
		lit  string
		kind markerKind
	}{
		{markOurs, kindOurs},
		{markAncestor, kindAncestor},
		{markTheirs, kindTheirs},
		{markEnd, kindEnd},
	}

	var marks []marker
	for _, tok := range tokens {
		from := 0
		for {
			i := strings.Index(text[from:], tok.lit)
			if i < 0 {
				break
			}
			off := from + i
			from = off + len(tok.lit)
			if off > 0 && text[off-1] != '\n' {
				// Markers only count at the start of a line.
				continue
			}
			marks = append(marks, marker{
				offset: off,
				line:   uint32(sort.SearchInts(newlines, off)),
				kind:   tok.kind,
				name:   markerName(text, off+len(tok.lit)),
			})
		}
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].offset < marks[j].offset })
	return marks
}

// markerName extracts the trimmed label trailing a marker token, up to the
// end of its line.
func markerName(text string, from int) string {
	rest := text[from:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// NewlineOffsets returns the byte offset of every newline in text, in
// ascending order. The table doubles as a line index: the number of offsets
// strictly before a position is that position's 0-based line.
func NewlineOffsets(text string) []int {
	var offs []int
	from := 0
	for {
		i := strings.IndexByte(text[from:], '\n')
		if i < 0 {
			return offs
		}
		offs = append(offs, from+i)
		from += i + 1
	}
}

// LineStartOffset returns the byte offset at which the 0-based line begins,
// given the newline table for the text of length textLen. ok is false when
// the line does not exist in that text.
func LineStartOffset(newlines []int, textLen int, line uint32) (int, bool) {
	if line == 0 {
		return 0, true
	}
	if int(line) > len(newlines) {
		return 0, false
	}
	off := newlines[line-1] + 1
	if off > textLen {
		return 0, false
	}
	return off, true
}
