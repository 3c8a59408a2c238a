package server

import (
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// notifier serializes outbound diagnostics so that publishes from
// concurrent reparse workers never interleave on the wire.
type notifier struct {
	mu sync.Mutex
}

func (n *notifier) publishDiagnostics(notify glsp.NotifyFunc, params *protocol.PublishDiagnosticsParams) {
	n.mu.Lock()
	defer n.mu.Unlock()
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}
