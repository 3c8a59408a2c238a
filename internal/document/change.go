package document

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/pdewey/merge-assistant/internal/markers"
)

// ApplyChanges applies LSP content changes to text strictly in the order
// received; a ranged change is resolved against the result of the previous
// one, matching the protocol's batching contract. A change whose range does
// not resolve against the current text is skipped; the rest of the batch
// still applies.
func ApplyChanges(text string, changes []any) string {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start, okStart := OffsetAt(text, c.Range.Start)
			end, okEnd := OffsetAt(text, c.Range.End)
			if !okStart || !okEnd {
				log.Warningf("change range %d:%d-%d:%d is outside the document, skipping edit",
					c.Range.Start.Line, c.Range.Start.Character, c.Range.End.Line, c.Range.End.Character)
				continue
			}
			if start > end {
				start = end
			}
			text = text[:start] + c.Text + text[end:]
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		default:
			log.Warningf("unsupported content change %T, skipping", change)
		}
	}
	return text
}

// OffsetAt converts an LSP position to a byte offset into text. Character
// counts UTF-16 code units per the protocol and is clamped to the end of
// its line; ok is false when the position's line does not exist.
func OffsetAt(text string, pos protocol.Position) (offset int, ok bool) {
	newlines := markers.NewlineOffsets(text)
	lineStart, ok := markers.LineStartOffset(newlines, len(text), pos.Line)
	if !ok {
		return 0, false
	}
	lineEnd := len(text)
	if int(pos.Line) < len(newlines) {
		lineEnd = newlines[pos.Line]
	}
	return lineStart + utf16Offset(text[lineStart:lineEnd], pos.Character), true
}

// utf16Offset converts a UTF-16 code unit count into a byte offset within
// line, clamping past the last rune.
func utf16Offset(line string, character protocol.UInteger) int {
	remaining := int(character)
	for i, r := range line {
		if remaining <= 0 {
			return i
		}
		if r >= 0x10000 {
			remaining -= 2 // surrogate pair
		} else {
			remaining--
		}
	}
	return len(line)
}
