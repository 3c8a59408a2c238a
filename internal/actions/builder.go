// Package actions turns a parsed merge conflict into the quick fixes a
// client can apply: keep ours, keep theirs, keep both, and (for diff3
// style conflicts) keep the ancestor revision.
package actions

import (
	"fmt"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/pdewey/merge-assistant/internal/diagnostics"
	"github.com/pdewey/merge-assistant/internal/markers"
)

var log = commonlog.GetLogger("merge-assistant.actions")

type choice struct {
	title   string
	regions []markers.Region
}

// Build assembles the quick fixes for one conflict. Each action replaces
// the whole conflict block with the chosen side's content. A choice whose
// region no longer fits the document text is dropped without affecting
// the others.
func Build(uri protocol.DocumentUri, text string, conflict markers.Conflict) []protocol.CodeAction {
	choices := []choice{
		{title("ours", conflict.Ours.Name), []markers.Region{conflict.Ours}},
		{title("theirs", conflict.Theirs.Name), []markers.Region{conflict.Theirs}},
		{"Keep both", []markers.Region{conflict.Ours, conflict.Theirs}},
	}
	if conflict.Ancestor != nil {
		choices = append(choices, choice{
			title("ancestor", conflict.Ancestor.Name),
			[]markers.Region{*conflict.Ancestor},
		})
	}

	newlines := markers.NewlineOffsets(text)
	kind := protocol.CodeActionKindQuickFix
	diagnostic := diagnostics.FromConflict(conflict)
	replaced := diagnostics.Range(conflict)

	var out []protocol.CodeAction
	for _, ch := range choices {
		newText := ""
		ok := true
		for _, region := range ch.regions {
			content, contentOK := regionContent(text, newlines, region)
			if !contentOK {
				log.Warningf("region %d..%d out of range for %s, dropping %q",
					region.StartLine, region.EndLine, uri, ch.title)
				ok = false
				break
			}
			newText += content
		}
		if !ok {
			continue
		}

		out = append(out, protocol.CodeAction{
			Title:       ch.title,
			Kind:        &kind,
			Diagnostics: []protocol.Diagnostic{diagnostic},
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					uri: {{Range: replaced, NewText: newText}},
				},
			},
		})
	}

	if len(out) == 1 {
		preferred := true
		out[0].IsPreferred = &preferred
	}
	return out
}

func title(side, name string) string {
	if name == "" {
		return "Keep " + side
	}
	return fmt.Sprintf("Keep %s (%s)", side, name)
}

// regionContent returns the lines between a region's markers, trailing
// newline included. The region's marker lines themselves are excluded.
func regionContent(text string, newlines []int, region markers.Region) (string, bool) {
	start, ok := markers.LineStartOffset(newlines, len(text), region.StartLine+1)
	if !ok {
		return "", false
	}
	end, ok := markers.LineStartOffset(newlines, len(text), region.EndLine)
	if !ok || end < start {
		return "", false
	}
	return text[start:end], true
}
