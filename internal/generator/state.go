package generator

import "sync"

// IDKind namespaces identifiers inside a State.
type IDKind string

const (
	CustomerIDs        IDKind = "CUS"
	AccountIDs         IDKind = "ACC"
	LoanIDs            IDKind = "LN"
	OffBalanceSheetIDs IDKind = "OBS"
)

// State tracks identifiers issued during one simulation run. It is safe for
// concurrent use so generators sharing a State never emit the same id.
type State struct {
	mu   sync.Mutex
	seen map[IDKind]map[string]struct{}
}

// NewState returns an empty run state.
func NewState() *State {
	return &State{seen: make(map[IDKind]map[string]struct{})}
}

// Claim records id under kind. It returns false if id was already issued.
func (s *State) Claim(kind IDKind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.seen[kind]
	if !ok {
		ids = make(map[string]struct{})
		s.seen[kind] = ids
	}
	if _, dup := ids[id]; dup {
		return false
	}
	ids[id] = struct{}{}
	return true
}

// Count returns how many identifiers of kind have been issued.
func (s *State) Count(kind IDKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen[kind])
}
