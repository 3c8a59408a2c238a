package diagnostics

import "github.com/pdewey/merge-assistant/internal/markers"

// Cache is a document's conflict snapshot. It distinguishes three states:
// not parsed since the last relevant event (the zero value), parsed and
// clean, and parsed with conflicts. The distinction matters: a clean parse
// needs an (empty) notification only when the previous state still had
// conflicts on the client's screen.
type Cache struct {
	state     cacheState
	conflicts []markers.Conflict
}

type cacheState int

const (
	notYetParsed cacheState = iota
	parsedEmpty
	parsedConflicts
)

// Conflicts returns the cached conflict list. parsed is false when no scan
// result has been recorded since the document was opened or the cache was
// collapsed.
func (c Cache) Conflicts() (conflicts []markers.Conflict, parsed bool) {
	return c.conflicts, c.state != notYetParsed
}

// Plan decides whether a fresh scan result must be published and what the
// next cache state is:
//
//	previous        current    publish          next
//	not parsed      empty      no               not parsed
//	not parsed      non-empty  yes              conflicts
//	parsed empty    empty      no               not parsed
//	parsed empty    non-empty  yes              conflicts
//	conflicts       empty      yes (clears)     parsed empty
//	conflicts       unchanged  no               conflicts
//	conflicts       changed    yes              conflicts
//
// Skipping unchanged sets keeps the client from being flooded on every
// keystroke; publishing the empty transition clears resolved conflicts
// promptly.
func Plan(prev Cache, current []markers.Conflict) (publish bool, next Cache) {
	if len(current) == 0 {
		if prev.state == parsedConflicts {
			return true, Cache{state: parsedEmpty}
		}
		return false, Cache{}
	}
	if prev.state == parsedConflicts && markers.ConflictsEqual(prev.conflicts, current) {
		return false, prev
	}
	return true, Cache{state: parsedConflicts, conflicts: current}
}
