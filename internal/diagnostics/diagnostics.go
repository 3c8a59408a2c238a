package diagnostics

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/pdewey/merge-assistant/internal/markers"
)

// Source tags every diagnostic this server publishes.
const Source = "merge"

const message = "merge conflict"

// Range returns the client-facing range of a conflict: from the opening
// marker line to one line past the closing marker, both at character 0. The
// overshoot means a quick fix replacing this range removes the closing
// marker line without leaving a dangling blank line behind.
func Range(c markers.Conflict) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(c.StartLine())},
		End:   protocol.Position{Line: protocol.UInteger(c.EndLine()) + 1},
	}
}

// FromConflict builds the diagnostic for one conflict.
func FromConflict(c markers.Conflict) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := Source
	return protocol.Diagnostic{
		Range:    Range(c),
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// Params builds the publish notification for a document, one diagnostic per
// conflict. The diagnostics list is never nil: the empty list is what
// clears previously published conflicts on the client.
func Params(uri protocol.DocumentUri, version int32, conflicts []markers.Conflict) *protocol.PublishDiagnosticsParams {
	diags := make([]protocol.Diagnostic, 0, len(conflicts))
	for _, c := range conflicts {
		diags = append(diags, FromConflict(c))
	}
	v := protocol.UInteger(version)
	return &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: diags,
	}
}
