package document

import (
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/pdewey/merge-assistant/internal/diagnostics"
	"github.com/pdewey/merge-assistant/internal/markers"
)

var log = commonlog.GetLogger("merge-assistant.document")

// Document is the tracked state of one open document.
type Document struct {
	URI     protocol.DocumentUri
	Text    string
	Version int32
	Cache   diagnostics.Cache
}

// Store owns every open document. All access goes through a single mutex;
// every critical section is a short read or read-modify-write — parsing and
// message sends never happen under the lock. Workers get value snapshots,
// never live references.
type Store struct {
	mu   sync.Mutex
	docs map[protocol.DocumentUri]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[protocol.DocumentUri]*Document)}
}

// Open tracks a new document with its conflicts not yet parsed. Opening a
// URI that is already tracked leaves the existing state alone and returns
// false: a duplicate didOpen must not clobber newer content.
func (s *Store) Open(uri protocol.DocumentUri, version int32, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[uri]; ok {
		return false
	}
	s.docs[uri] = &Document{URI: uri, Text: text, Version: version}
	return true
}

// Apply runs a batch of content changes against the stored document.
// Changes carrying a version older than the stored one are rejected:
// editors can deliver notifications out of order, and a stale edit must
// never overwrite newer content.
func (s *Store) Apply(uri protocol.DocumentUri, version int32, changes []any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		log.Warningf("change for unknown document %s", uri)
		return false
	}
	if version < doc.Version {
		log.Warningf("stale change for %s: version %d < stored %d", uri, version, doc.Version)
		return false
	}
	doc.Text = ApplyChanges(doc.Text, changes)
	doc.Version = version
	return true
}

// Close stops tracking a document. Reparse workers still in flight for it
// will find no entry and no-op.
func (s *Store) Close(uri protocol.DocumentUri) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[uri]; !ok {
		return false
	}
	delete(s.docs, uri)
	return true
}

// Snapshot returns a copy of the document content and version for a worker
// to scan without holding the lock.
func (s *Store) Snapshot(uri protocol.DocumentUri) (text string, version int32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found := s.docs[uri]
	if !found {
		return "", 0, false
	}
	return doc.Text, doc.Version, true
}

// Reconcile folds a worker's scan result back into the store. The result
// is discarded (ok false) when the document was closed, or when it was
// edited after the snapshot was taken and parsedVersion is no longer
// current — a late worker must not publish diagnostics for content the
// client has already replaced. Otherwise the publish decision table runs
// against the previous cache and the next cache state is recorded.
func (s *Store) Reconcile(uri protocol.DocumentUri, parsedVersion int32, current []markers.Conflict) (publish, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found := s.docs[uri]
	if !found {
		return false, false
	}
	if doc.Version != parsedVersion {
		log.Debugf("discarding scan of %s at version %d, document moved to %d", uri, parsedVersion, doc.Version)
		return false, false
	}
	publish, doc.Cache = diagnostics.Plan(doc.Cache, current)
	return publish, true
}

// ConflictsAt returns the document text together with its last parsed
// conflict set, for synchronous queries such as code actions. ok is false
// when the document is unknown or no conflicts are currently cached; the
// caller never triggers a reparse.
func (s *Store) ConflictsAt(uri protocol.DocumentUri) (text string, conflicts []markers.Conflict, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found := s.docs[uri]
	if !found {
		return "", nil, false
	}
	conflicts, parsed := doc.Cache.Conflicts()
	if !parsed || len(conflicts) == 0 {
		return "", nil, false
	}
	return doc.Text, conflicts, true
}
