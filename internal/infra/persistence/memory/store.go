// Package memory implements the metadata collection contract with an
// in-process store. It is the reference delegate used in tests and the
// substrate the durable drivers snapshot.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"metarepo/pkg/collection"
	"metarepo/pkg/instance"
	"metarepo/pkg/typedef"
)

// entityRecord couples the current revision of an entity with its prior
// revisions, oldest first. History backs undo and as-of-time queries.
type entityRecord struct {
	Current instance.EntityDetail   `json:"current"`
	History []instance.EntityDetail `json:"history,omitempty"`
}

type relationshipRecord struct {
	Current instance.Relationship   `json:"current"`
	History []instance.Relationship `json:"history,omitempty"`
}

type state struct {
	typeDefs      map[string]typedef.TypeDef
	attrDefs      map[string]typedef.AttributeTypeDef
	entities      map[string]*entityRecord
	relationships map[string]*relationshipRecord
	proxies       map[string]*instance.EntityProxy
}

func newState() state {
	return state{
		typeDefs:      make(map[string]typedef.TypeDef),
		attrDefs:      make(map[string]typedef.AttributeTypeDef),
		entities:      make(map[string]*entityRecord),
		relationships: make(map[string]*relationshipRecord),
		proxies:       make(map[string]*instance.EntityProxy),
	}
}

// Store is an in-memory metadata collection.
type Store struct {
	mu             sync.RWMutex
	state          state
	collectionID   string
	collectionName string
	nowFn          func() time.Time
	newGUID        func() string
	// onCommit runs after every successful mutation while the write lock
	// is still held, receiving the post-mutation snapshot. Durable drivers
	// hook persistence here.
	onCommit func(Snapshot) error
}

// NewStore constructs an in-memory metadata collection with the supplied
// identity. An empty collection id gets a generated one.
func NewStore(collectionID, collectionName string) *Store {
	if collectionID == "" {
		collectionID = uuid.NewString()
	}
	return &Store{
		state:          newState(),
		collectionID:   collectionID,
		collectionName: collectionName,
		nowFn:          func() time.Time { return time.Now().UTC() },
		newGUID:        uuid.NewString,
	}
}

var _ collection.MetadataCollection = (*Store)(nil)

// MetadataCollectionID returns the collection's unique identifier.
func (s *Store) MetadataCollectionID() string { return s.collectionID }

// MetadataCollectionName returns the collection's display name.
func (s *Store) MetadataCollectionName() string { return s.collectionName }

// SetCommitHook registers a function run after every successful mutation
// with the resulting state snapshot.
func (s *Store) SetCommitHook(fn func(Snapshot) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

func (s *Store) commit() error {
	if s.onCommit == nil {
		return nil
	}
	return s.onCommit(s.exportLocked())
}

func cloneEntityRecord(r *entityRecord) *entityRecord {
	cp := &entityRecord{Current: r.Current.Clone()}
	for _, rev := range r.History {
		cp.History = append(cp.History, rev.Clone())
	}
	return cp
}

func cloneRelationshipRecord(r *relationshipRecord) *relationshipRecord {
	cp := &relationshipRecord{Current: r.Current.Clone()}
	for _, rev := range r.History {
		cp.History = append(cp.History, rev.Clone())
	}
	return cp
}

// Snapshot is the serialisable form of the full store state, bucketed the
// way the durable drivers persist it.
type Snapshot struct {
	TypeDefs          []typedef.TypeDef          `json:"type_defs,omitempty"`
	AttributeTypeDefs []typedef.AttributeTypeDef `json:"attribute_type_defs,omitempty"`
	Entities          []entityRecord             `json:"entities,omitempty"`
	Relationships     []relationshipRecord       `json:"relationships,omitempty"`
	Proxies           []instance.EntityProxy     `json:"proxies,omitempty"`
}

// ExportState captures the current state as a snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportLocked()
}

func (s *Store) exportLocked() Snapshot {
	var snap Snapshot
	for _, def := range s.state.typeDefs {
		snap.TypeDefs = append(snap.TypeDefs, def.Clone())
	}
	for _, def := range s.state.attrDefs {
		snap.AttributeTypeDefs = append(snap.AttributeTypeDefs, def)
	}
	for _, rec := range s.state.entities {
		snap.Entities = append(snap.Entities, *cloneEntityRecord(rec))
	}
	for _, rec := range s.state.relationships {
		snap.Relationships = append(snap.Relationships, *cloneRelationshipRecord(rec))
	}
	for _, proxy := range s.state.proxies {
		snap.Proxies = append(snap.Proxies, *proxy.Clone())
	}
	return snap
}

// ImportState replaces the store state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := newState()
	for _, def := range snap.TypeDefs {
		st.typeDefs[def.GUID] = def.Clone()
	}
	for _, def := range snap.AttributeTypeDefs {
		st.attrDefs[def.GUID] = def
	}
	for i := range snap.Entities {
		rec := snap.Entities[i]
		st.entities[rec.Current.GUID] = cloneEntityRecord(&rec)
	}
	for i := range snap.Relationships {
		rec := snap.Relationships[i]
		st.relationships[rec.Current.GUID] = cloneRelationshipRecord(&rec)
	}
	for i := range snap.Proxies {
		proxy := snap.Proxies[i]
		st.proxies[proxy.GUID] = proxy.Clone()
	}
	s.state = st
}
