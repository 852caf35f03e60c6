// Package state holds the mutable accumulators of a migration run: the
// identity mapping, the pending relationship queue, and the progress and
// error counters. One State instance exists per run; it grows monotonically
// during content migration and is finalized into a report at the end.
package state

import "sync"

// Identity maps a source document id to its created target entity.
type Identity struct {
	ID         int    // numeric target id
	DocumentID string // target document identifier used by the REST collection
	Type       string // source entity type name
}

// PendingRelation is one deferred relation write, consumed exactly once by
// the resolution pass.
type PendingRelation struct {
	SourceType     string
	SourceID       string
	FieldName      string
	TargetSourceID string
	IsArray        bool
	Kind           string
}

// Counters tracks one phase's progress.
type Counters struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// ErrorEntry is one recorded, non-fatal failure.
type ErrorEntry struct {
	Phase   string `json:"phase"` // assets, entities, relations
	ID      string `json:"id"`    // offending source id, when known
	Message string `json:"message"`
}

// State is the process-wide progress and error accumulator for one run.
// Batch operations run concurrently, so mutations go through the mutex.
type State struct {
	mu sync.Mutex

	Assets    Counters
	Entities  Counters
	Relations Counters

	identities map[string]Identity
	assetIDs   map[string]int
	pending    []PendingRelation
	errors     []ErrorEntry
}

// New creates an empty State.
func New() *State {
	return &State{
		identities: make(map[string]Identity),
		assetIDs:   make(map[string]int),
	}
}

// MapIdentity records the target identity created for a source id.
// Populated exactly once per successfully created entity.
func (s *State) MapIdentity(sourceID string, identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[sourceID] = identity
}

// Identity resolves a source id to its target identity.
func (s *State) Identity(sourceID string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.identities[sourceID]
	return id, ok
}

// Identities returns a copy of the full id mapping.
func (s *State) Identities() map[string]Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Identity, len(s.identities))
	for k, v := range s.identities {
		out[k] = v
	}
	return out
}

// MapAsset records the target media id for an asset reference.
func (s *State) MapAsset(ref string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assetIDs[ref] = id
}

// Asset resolves an asset reference to its target media id.
func (s *State) Asset(ref string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.assetIDs[ref]
	return id, ok
}

// AssetMap returns a copy of the full asset mapping.
func (s *State) AssetMap() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.assetIDs))
	for k, v := range s.assetIDs {
		out[k] = v
	}
	return out
}

// Defer appends relation writes to the pending queue.
func (s *State) Defer(relations ...PendingRelation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, relations...)
}

// TakePending removes and returns the pending relationship queue.
func (s *State) TakePending() []PendingRelation {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending
	s.pending = nil
	return pending
}

// PendingCount returns the number of queued relation writes.
func (s *State) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RecordError appends an entry to the ordered error log.
func (s *State) RecordError(phase, id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, ErrorEntry{Phase: phase, ID: id, Message: message})
}

// Errors returns a copy of the ordered error log.
func (s *State) Errors() []ErrorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ErrorEntry, len(s.errors))
	copy(out, s.errors)
	return out
}

// Count mutators; each phase uses its own set.

func (s *State) AddAssetTotal(n int)     { s.mu.Lock(); s.Assets.Total += n; s.mu.Unlock() }
func (s *State) AssetCompleted()         { s.mu.Lock(); s.Assets.Completed++; s.mu.Unlock() }
func (s *State) AssetFailed()            { s.mu.Lock(); s.Assets.Failed++; s.mu.Unlock() }
func (s *State) AddEntityTotal(n int)    { s.mu.Lock(); s.Entities.Total += n; s.mu.Unlock() }
func (s *State) EntityCompleted()        { s.mu.Lock(); s.Entities.Completed++; s.mu.Unlock() }
func (s *State) EntityFailed()           { s.mu.Lock(); s.Entities.Failed++; s.mu.Unlock() }
func (s *State) AddRelationTotal(n int)  { s.mu.Lock(); s.Relations.Total += n; s.mu.Unlock() }
func (s *State) RelationCompleted()      { s.mu.Lock(); s.Relations.Completed++; s.mu.Unlock() }
func (s *State) RelationFailed()         { s.mu.Lock(); s.Relations.Failed++; s.mu.Unlock() }

// Snapshot returns the current counters without the accumulators.
func (s *State) Snapshot() (assets, entities, relations Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Assets, s.Entities, s.Relations
}
