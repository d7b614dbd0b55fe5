package memory

import (
	"context"

	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
)

// SaveEntityReferenceCopy stores or overwrites the local copy of an entity
// homed in another collection. A copy claiming this collection as home, or
// colliding with a locally homed entity, is rejected.
func (s *Store) SaveEntityReferenceCopy(_ context.Context, _ string, entity instance.EntityDetail) error {
	if entity.GUID == "" || entity.MetadataCollectionID == "" {
		return ferr.New(ferr.NullParameter, "entity", "SaveEntityReferenceCopy", s.collectionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entity.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.HomeCollectionConflict, entity.GUID, entity.MetadataCollectionID)
	}
	if existing, ok := s.state.entities[entity.GUID]; ok && existing.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.HomeCollectionConflict, entity.GUID, s.collectionID)
	}
	if _, ok := s.state.typeDefs[entity.Type.GUID]; !ok {
		return ferr.New(ferr.TypeDefNotKnown, entity.Type.Name)
	}
	// A stored copy supersedes any proxy for the same entity.
	delete(s.state.proxies, entity.GUID)
	s.state.entities[entity.GUID] = &entityRecord{Current: entity.Clone()}
	return s.commit()
}

// PurgeEntityReferenceCopy removes the local copy of an entity homed
// elsewhere. Locally homed entities are purged through PurgeEntity.
func (s *Store) PurgeEntityReferenceCopy(_ context.Context, _ string, guid, typeGUID, typeName, homeCollectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if proxy, ok := s.state.proxies[guid]; ok {
		if err := confirmType(proxy.Header, typeGUID, typeName); err != nil {
			return err
		}
		delete(s.state.proxies, guid)
		return s.commit()
	}
	rec, ok := s.state.entities[guid]
	if !ok {
		return ferr.New(ferr.EntityNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.NotReferenceCopy, guid, "PurgeEntityReferenceCopy")
	}
	if homeCollectionID != "" && rec.Current.MetadataCollectionID != homeCollectionID {
		return ferr.New(ferr.HomeCollectionConflict, guid, rec.Current.MetadataCollectionID)
	}
	delete(s.state.entities, guid)
	return s.commit()
}

// RefreshEntityReferenceCopy validates a refresh request for an entity
// copy. Re-requesting the copy from its home repository is the cohort
// layer's job; here the request is checked and accepted.
func (s *Store) RefreshEntityReferenceCopy(_ context.Context, _ string, guid, typeGUID, typeName, homeCollectionID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		if _, proxy := s.state.proxies[guid]; proxy {
			return nil
		}
		return ferr.New(ferr.EntityNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.NotReferenceCopy, guid, "RefreshEntityReferenceCopy")
	}
	return nil
}

// SaveRelationshipReferenceCopy stores or overwrites the local copy of a
// relationship homed in another collection, registering proxies for any
// end entities not already known.
func (s *Store) SaveRelationshipReferenceCopy(_ context.Context, _ string, rel instance.Relationship) error {
	if rel.GUID == "" || rel.MetadataCollectionID == "" || rel.EntityOne == nil || rel.EntityTwo == nil {
		return ferr.New(ferr.NullParameter, "relationship", "SaveRelationshipReferenceCopy", s.collectionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.HomeCollectionConflict, rel.GUID, rel.MetadataCollectionID)
	}
	if existing, ok := s.state.relationships[rel.GUID]; ok && existing.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.HomeCollectionConflict, rel.GUID, s.collectionID)
	}
	if _, ok := s.state.typeDefs[rel.Type.GUID]; !ok {
		return ferr.New(ferr.TypeDefNotKnown, rel.Type.Name)
	}
	for _, end := range []*instance.EntityProxy{rel.EntityOne, rel.EntityTwo} {
		if _, ok := s.state.entities[end.GUID]; ok {
			continue
		}
		if _, ok := s.state.proxies[end.GUID]; ok {
			continue
		}
		s.state.proxies[end.GUID] = end.Clone()
	}
	s.state.relationships[rel.GUID] = &relationshipRecord{Current: rel.Clone()}
	return s.commit()
}

// PurgeRelationshipReferenceCopy removes the local copy of a relationship
// homed elsewhere.
func (s *Store) PurgeRelationshipReferenceCopy(_ context.Context, _ string, guid, typeGUID, typeName, homeCollectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.NotReferenceCopy, guid, "PurgeRelationshipReferenceCopy")
	}
	if homeCollectionID != "" && rec.Current.MetadataCollectionID != homeCollectionID {
		return ferr.New(ferr.HomeCollectionConflict, guid, rec.Current.MetadataCollectionID)
	}
	delete(s.state.relationships, guid)
	return s.commit()
}

// RefreshRelationshipReferenceCopy validates a refresh request for a
// relationship copy.
func (s *Store) RefreshRelationshipReferenceCopy(_ context.Context, _ string, guid, typeGUID, typeName, homeCollectionID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.NotReferenceCopy, guid, "RefreshRelationshipReferenceCopy")
	}
	return nil
}

// SaveInstanceReferenceCopies stores every instance in the graph that is
// homed in another collection. Locally homed instances in the graph are
// skipped rather than rejected, so a whole subgraph can be broadcast to
// every cohort member including the home repository itself.
func (s *Store) SaveInstanceReferenceCopies(ctx context.Context, userID string, graph instance.Graph) error {
	for _, entity := range graph.Entities {
		if entity.MetadataCollectionID == s.collectionID {
			continue
		}
		if err := s.SaveEntityReferenceCopy(ctx, userID, entity); err != nil {
			return err
		}
	}
	for _, rel := range graph.Relationships {
		if rel.MetadataCollectionID == s.collectionID {
			continue
		}
		if err := s.SaveRelationshipReferenceCopy(ctx, userID, rel); err != nil {
			return err
		}
	}
	return nil
}
