package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/pdewey/merge-assistant/internal/actions"
	"github.com/pdewey/merge-assistant/internal/diagnostics"
	"github.com/pdewey/merge-assistant/internal/markers"
)

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CodeActionProvider = protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.Version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) onShutdown(ctx *glsp.Context) error {
	if s.shutdown {
		log.Warning("repeated shutdown request")
	}
	s.shutdown = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	if !s.store.Open(doc.URI, doc.Version, doc.Text) {
		log.Warningf("didOpen for already open document %s", doc.URI)
		return nil
	}
	s.enqueueReparse(ctx, doc.URI)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !s.store.Apply(uri, params.TextDocument.Version, params.ContentChanges) {
		return nil
	}
	s.enqueueReparse(ctx, uri)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if !s.store.Close(params.TextDocument.URI) {
		log.Warningf("didClose for unknown document %s", params.TextDocument.URI)
	}
	return nil
}

func (s *Server) codeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	text, conflicts, ok := s.store.ConflictsAt(uri)
	if !ok {
		return nil, nil
	}
	for _, conflict := range conflicts {
		if conflict.ContainsRange(params.Range.Start.Line, params.Range.End.Line) {
			return actions.Build(uri, text, conflict), nil
		}
	}
	return nil, nil
}

// enqueueReparse schedules a scan of the document's current text. The
// worker runs off the dispatch goroutine; Reconcile discards its result
// if the document changed again in the meantime.
func (s *Server) enqueueReparse(ctx *glsp.Context, uri protocol.DocumentUri) {
	notify := ctx.Notify
	s.spawn(func() {
		s.reparse(notify, uri)
	})
}

func (s *Server) reparse(notify glsp.NotifyFunc, uri protocol.DocumentUri) {
	text, version, ok := s.store.Snapshot(uri)
	if !ok {
		return
	}
	conflicts := markers.Scan(text)
	publish, ok := s.store.Reconcile(uri, version, conflicts)
	if !ok || !publish {
		return
	}
	s.notify.publishDiagnostics(notify, diagnostics.Params(uri, version, conflicts))
}
