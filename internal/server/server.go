// Package server wires the document store, the conflict scanner and the
// quick-fix builder into a language server speaking over stdio.
package server

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"

	"github.com/pdewey/merge-assistant/internal/document"
)

// Name is reported to clients during the initialize handshake.
const Name = "merge-assistant"

var log = commonlog.GetLogger(Name)

type Server struct {
	Version string

	store   *document.Store
	handler protocol.Handler
	notify  notifier

	// spawn runs a reparse worker. Tests replace it to control when
	// workers execute relative to further edits.
	spawn func(fn func())

	shutdown bool
}

func New(version string) *Server {
	s := &Server{
		Version: version,
		store:   document.NewStore(),
		spawn:   func(fn func()) { go fn() },
	}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.onShutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentCodeAction: s.codeAction,
	}
	return s
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio(debug bool) error {
	return glspserv.NewServer(&s.handler, Name, debug).RunStdio()
}
