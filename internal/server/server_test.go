package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = protocol.DocumentUri("file:///test.txt")

const conflictedText = "a\n<<<<<<<\nb\n=======\nc\n>>>>>>>\nd\n"

// testServer runs reparse workers synchronously so each notification is
// observable as soon as the handler returns.
func testServer() *Server {
	s := New("test")
	s.spawn = func(fn func()) { fn() }
	return s
}

// deferredServer queues reparse workers instead of running them, letting
// tests interleave further edits before a worker fires.
func deferredServer() (*Server, *[]func()) {
	s := New("test")
	var queue []func()
	s.spawn = func(fn func()) { queue = append(queue, fn) }
	return s, &queue
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func open(t *testing.T, s *Server, ctx *glsp.Context, text string, version int32) {
	t.Helper()
	err := s.didOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     testURI,
			Version: version,
			Text:    text,
		},
	})
	require.NoError(t, err)
}

func change(t *testing.T, s *Server, ctx *glsp.Context, version int32, changes ...any) {
	t.Helper()
	err := s.didChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                version,
		},
		ContentChanges: changes,
	})
	require.NoError(t, err)
}

func requestActions(t *testing.T, s *Server, line protocol.UInteger) []protocol.CodeAction {
	t.Helper()
	result, err := s.codeAction(&glsp.Context{}, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range: protocol.Range{
			Start: protocol.Position{Line: line},
			End:   protocol.Position{Line: line},
		},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	out, ok := result.([]protocol.CodeAction)
	require.True(t, ok, "code action result should be []CodeAction, got %T", result)
	return out
}

func TestInitializeCapabilities(t *testing.T) {
	s := testServer()
	result, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, initResult.ServerInfo)
	assert.Equal(t, Name, initResult.ServerInfo.Name)

	sync, ok := initResult.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, sync.Change)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *sync.Change)

	actions, ok := initResult.Capabilities.CodeActionProvider.(protocol.CodeActionOptions)
	require.True(t, ok)
	assert.Equal(t, []protocol.CodeActionKind{protocol.CodeActionKindQuickFix}, actions.CodeActionKinds)
}

func TestOpenConflictedPublishesDiagnostics(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)

	require.Len(t, *captured, 1)
	params := (*captured)[0]
	assert.Equal(t, testURI, params.URI)
	require.NotNil(t, params.Version)
	assert.Equal(t, protocol.UInteger(1), *params.Version)

	require.Len(t, params.Diagnostics, 1)
	diag := params.Diagnostics[0]
	assert.Equal(t, protocol.UInteger(1), diag.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(6), diag.Range.End.Line)
	require.NotNil(t, diag.Source)
	assert.Equal(t, "merge", *diag.Source)
	assert.Equal(t, "merge conflict", diag.Message)
}

func TestOpenCleanPublishesNothing(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, "no conflicts here\n", 1)

	assert.Empty(t, *captured)
}

func TestResolvingConflictClearsDiagnostics(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)
	require.Len(t, *captured, 1)

	change(t, s, ctx, 2, protocol.TextDocumentContentChangeEventWhole{
		Text: "a\nb\nd\n",
	})

	require.Len(t, *captured, 2)
	last := (*captured)[1]
	assert.Empty(t, last.Diagnostics)
	assert.NotNil(t, last.Diagnostics, "clearing must send an empty list, not null")
	require.NotNil(t, last.Version)
	assert.Equal(t, protocol.UInteger(2), *last.Version)
}

func TestEditIntroducingConflictPublishes(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, "a\nd\n", 1)
	require.Empty(t, *captured)

	change(t, s, ctx, 2, protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 1},
			End:   protocol.Position{Line: 1},
		},
		Text: "<<<<<<<\nb\n=======\nc\n>>>>>>>\n",
	})

	require.Len(t, *captured, 1)
	assert.Len(t, (*captured)[0].Diagnostics, 1)
}

func TestUnrelatedEditDoesNotRepublish(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)
	require.Len(t, *captured, 1)

	// Append a line after the conflict; the conflict set is unchanged.
	change(t, s, ctx, 2, protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 7},
			End:   protocol.Position{Line: 7},
		},
		Text: "e\n",
	})

	assert.Len(t, *captured, 1, "an equivalent rescan must not republish")
}

func TestStaleChangeIgnored(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 5)
	require.Len(t, *captured, 1)

	change(t, s, ctx, 3, protocol.TextDocumentContentChangeEventWhole{
		Text: "resolved\n",
	})

	assert.Len(t, *captured, 1, "a stale change must neither edit nor publish")
	actions := requestActions(t, s, 2)
	assert.NotEmpty(t, actions, "the conflict must still be actionable")
}

func TestDuplicateOpenKeepsDocument(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)
	require.Len(t, *captured, 1)

	open(t, s, ctx, "clobbered\n", 1)

	assert.Len(t, *captured, 1)
	assert.NotEmpty(t, requestActions(t, s, 2))
}

func TestWorkerAfterCloseDoesNothing(t *testing.T) {
	s, queue := deferredServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)
	require.NoError(t, s.didClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))

	for _, fn := range *queue {
		fn()
	}
	assert.Empty(t, *captured)
}

func TestStaleWorkerDiscarded(t *testing.T) {
	s, queue := deferredServer()
	ctx, captured := capturingContext()

	open(t, s, ctx, conflictedText, 1)
	change(t, s, ctx, 2, protocol.TextDocumentContentChangeEventWhole{
		Text: conflictedText + "e\n",
	})

	// Both queued workers snapshot the final state; only one publish
	// results because the second sees an unchanged conflict set.
	for _, fn := range *queue {
		fn()
	}

	require.Len(t, *captured, 1)
	require.NotNil(t, (*captured)[0].Version)
	assert.Equal(t, protocol.UInteger(2), *(*captured)[0].Version)
}

func TestCodeActionInsideConflict(t *testing.T) {
	s := testServer()
	ctx, _ := capturingContext()
	open(t, s, ctx, conflictedText, 1)

	actions := requestActions(t, s, 3)
	require.Len(t, actions, 3)
	assert.Equal(t, "Keep ours", actions[0].Title)

	// The line just past the closing marker is still actionable, matching
	// the diagnostic's range.
	assert.NotEmpty(t, requestActions(t, s, 6))
}

func TestCodeActionOutsideConflict(t *testing.T) {
	s := testServer()
	ctx, _ := capturingContext()
	open(t, s, ctx, conflictedText, 1)

	assert.Empty(t, requestActions(t, s, 0))
	assert.Empty(t, requestActions(t, s, 7))
}

func TestCodeActionUnknownDocument(t *testing.T) {
	s := testServer()
	assert.Empty(t, requestActions(t, s, 0))
}

func TestCodeActionCleanDocument(t *testing.T) {
	s := testServer()
	ctx, _ := capturingContext()
	open(t, s, ctx, "nothing to fix\n", 1)

	assert.Empty(t, requestActions(t, s, 0))
}

func TestShutdownTwice(t *testing.T) {
	s := testServer()
	require.NoError(t, s.onShutdown(&glsp.Context{}))
	assert.True(t, s.shutdown)
	require.NoError(t, s.onShutdown(&glsp.Context{}))
}
