package memory

import (
	"context"
	"time"

	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/typedef"
)

// IsRelationshipKnown returns the relationship when it is stored locally,
// or nil without error when it is not.
func (s *Store) IsRelationshipKnown(_ context.Context, _ string, guid string) (*instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return nil, nil
	}
	rel := rec.Current.Clone()
	return &rel, nil
}

// Relationship returns the current revision of a relationship.
func (s *Store) Relationship(_ context.Context, _ string, guid string) (instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	return rec.Current.Clone(), nil
}

// RelationshipAsOfTime returns the revision of a relationship current at
// the supplied past time.
func (s *Store) RelationshipAsOfTime(_ context.Context, _ string, guid string, asOfTime time.Time) (instance.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	rel, found := revisionAsOf(rec.Current, rec.History, asOfTime, func(r instance.Relationship) time.Time { return r.UpdateTime })
	if !found {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	return rel.Clone(), nil
}

// AddRelationship creates a new locally homed relationship between two
// known entities.
func (s *Store) AddRelationship(_ context.Context, userID, typeGUID string, props *properties.InstanceProperties, entityOneGUID, entityTwoGUID string, initialStatus instance.Status) (instance.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.typeDefs[typeGUID]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.TypeDefNotKnown, typeGUID)
	}
	if def.Category != typedef.CategoryRelationshipDef {
		return instance.Relationship{}, ferr.New(ferr.TypeMismatch, "new relationship", string(def.Category), string(typedef.CategoryRelationshipDef))
	}
	if initialStatus == "" {
		initialStatus = def.InitialStatus
	}
	if initialStatus == "" {
		initialStatus = instance.StatusActive
	}
	if initialStatus == instance.StatusDeleted || !def.SupportsStatus(initialStatus) {
		return instance.Relationship{}, ferr.New(ferr.InvalidStatus, string(initialStatus), def.Name)
	}
	if err := s.validatePropertiesLocked(def, props); err != nil {
		return instance.Relationship{}, err
	}
	one, err := s.endProxyLocked(entityOneGUID)
	if err != nil {
		return instance.Relationship{}, err
	}
	two, err := s.endProxyLocked(entityTwoGUID)
	if err != nil {
		return instance.Relationship{}, err
	}
	now := s.nowFn()
	rel := instance.Relationship{
		Header: instance.Header{
			GUID:                   s.newGUID(),
			Type:                   instance.TypeRef{GUID: def.GUID, Name: def.Name, Version: def.Version},
			Status:                 initialStatus,
			Version:                1,
			MetadataCollectionID:   s.collectionID,
			MetadataCollectionName: s.collectionName,
			Provenance:             instance.ProvenanceLocalCohort,
			CreatedBy:              userID,
			CreateTime:             now,
			UpdateTime:             now,
		},
		Properties: props.Clone(),
		EntityOne:  one,
		EntityTwo:  two,
	}
	s.state.relationships[rel.GUID] = &relationshipRecord{Current: rel.Clone()}
	if err := s.commit(); err != nil {
		return instance.Relationship{}, err
	}
	return rel, nil
}

// endProxyLocked resolves a relationship end to a proxy, from either a
// locally stored entity or a stored proxy.
func (s *Store) endProxyLocked(guid string) (*instance.EntityProxy, error) {
	if rec, ok := s.state.entities[guid]; ok {
		if rec.Current.Status == instance.StatusDeleted {
			return nil, ferr.New(ferr.InvalidStatus, string(instance.StatusDeleted), rec.Current.Type.Name)
		}
		return rec.Current.Proxy(), nil
	}
	if proxy, ok := s.state.proxies[guid]; ok {
		return proxy.Clone(), nil
	}
	return nil, ferr.New(ferr.EntityNotKnown, guid)
}

// UpdateRelationshipStatus moves a relationship to a new lifecycle state.
func (s *Store) UpdateRelationshipStatus(_ context.Context, userID, guid string, status instance.Status) (instance.Relationship, error) {
	return s.mutateRelationship(userID, guid, "UpdateRelationshipStatus", func(r *instance.Relationship, def typedef.TypeDef) error {
		if !def.SupportsStatus(status) || !instance.ValidTransition(r.Status, status) {
			return ferr.New(ferr.InvalidStatus, string(status), def.Name)
		}
		r.Status = status
		return nil
	})
}

// UpdateRelationshipProperties replaces a relationship's property bag.
func (s *Store) UpdateRelationshipProperties(_ context.Context, userID, guid string, props *properties.InstanceProperties) (instance.Relationship, error) {
	return s.mutateRelationship(userID, guid, "UpdateRelationshipProperties", func(r *instance.Relationship, def typedef.TypeDef) error {
		if err := s.validatePropertiesLocked(def, props); err != nil {
			return err
		}
		r.Properties = props.Clone()
		return nil
	})
}

// UndoRelationshipUpdate restores the relationship's previous revision as
// a new version. A relationship with no prior revision is returned
// unchanged.
func (s *Store) UndoRelationshipUpdate(_ context.Context, userID, guid string) (instance.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if len(rec.History) == 0 {
		return rec.Current.Clone(), nil
	}
	prior := rec.History[len(rec.History)-1]
	rec.History = rec.History[:len(rec.History)-1]
	restored := prior.Clone()
	restored.Version = rec.Current.Version + 1
	restored.UpdatedBy = userID
	restored.UpdateTime = s.nowFn()
	rec.Current = restored
	if err := s.commit(); err != nil {
		return instance.Relationship{}, err
	}
	return restored.Clone(), nil
}

// DeleteRelationship soft-deletes a relationship.
func (s *Store) DeleteRelationship(_ context.Context, userID, typeGUID, typeName, guid string) (instance.Relationship, error) {
	return s.mutateRelationship(userID, guid, "DeleteRelationship", func(r *instance.Relationship, _ typedef.TypeDef) error {
		if err := confirmType(r.Header, typeGUID, typeName); err != nil {
			return err
		}
		if r.Status == instance.StatusDeleted {
			return ferr.New(ferr.InvalidStatus, string(instance.StatusDeleted), r.Type.Name)
		}
		r.StatusOnDelete = r.Status
		r.Status = instance.StatusDeleted
		return nil
	})
}

// PurgeRelationship permanently removes a soft-deleted relationship.
func (s *Store) PurgeRelationship(_ context.Context, _ string, typeGUID, typeName, guid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.Status != instance.StatusDeleted {
		return ferr.New(ferr.InstanceNotDeleted, guid, "PurgeRelationship")
	}
	delete(s.state.relationships, guid)
	return s.commit()
}

// RestoreRelationship returns a soft-deleted relationship to the state it
// held before deletion.
func (s *Store) RestoreRelationship(_ context.Context, userID, guid string) (instance.Relationship, error) {
	return s.mutateRelationship(userID, guid, "RestoreRelationship", func(r *instance.Relationship, _ typedef.TypeDef) error {
		if r.Status != instance.StatusDeleted {
			return ferr.New(ferr.InstanceNotDeleted, guid, "RestoreRelationship")
		}
		restored := r.StatusOnDelete
		if restored == "" {
			restored = instance.StatusActive
		}
		r.Status = restored
		r.StatusOnDelete = ""
		return nil
	})
}

// ReIdentifyRelationship swaps a relationship's guid.
func (s *Store) ReIdentifyRelationship(_ context.Context, userID, typeGUID, typeName, guid, newGUID string) (instance.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return instance.Relationship{}, err
	}
	if _, clash := s.state.relationships[newGUID]; clash {
		return instance.Relationship{}, ferr.New(ferr.RelationshipAlreadyExists, newGUID)
	}
	s.pushRelationshipRevision(rec)
	rec.Current.GUID = newGUID
	rec.Current.Version++
	rec.Current.UpdatedBy = userID
	rec.Current.UpdateTime = s.nowFn()
	delete(s.state.relationships, guid)
	s.state.relationships[newGUID] = rec
	if err := s.commit(); err != nil {
		return instance.Relationship{}, err
	}
	return rec.Current.Clone(), nil
}

// ReTypeRelationship swaps a relationship's type after re-validating its
// properties against the new type.
func (s *Store) ReTypeRelationship(_ context.Context, userID, guid string, currentType, newType instance.TypeRef) (instance.Relationship, error) {
	return s.mutateRelationship(userID, guid, "ReTypeRelationship", func(r *instance.Relationship, _ typedef.TypeDef) error {
		if err := confirmType(r.Header, currentType.GUID, currentType.Name); err != nil {
			return err
		}
		newDef, ok := s.state.typeDefs[newType.GUID]
		if !ok {
			return ferr.New(ferr.TypeDefNotKnown, newType.Name)
		}
		if newDef.Category != typedef.CategoryRelationshipDef {
			return ferr.New(ferr.TypeMismatch, guid, string(newDef.Category), string(typedef.CategoryRelationshipDef))
		}
		if err := s.validatePropertiesLocked(newDef, r.Properties); err != nil {
			return err
		}
		r.Type = instance.TypeRef{GUID: newDef.GUID, Name: newDef.Name, Version: newDef.Version}
		return nil
	})
}

// ReHomeRelationship transfers home ownership of a relationship to a new
// collection.
func (s *Store) ReHomeRelationship(_ context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) (instance.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return instance.Relationship{}, err
	}
	if rec.Current.MetadataCollectionID != homeCollectionID {
		return instance.Relationship{}, ferr.New(ferr.NotHomeInstance, guid, rec.Current.MetadataCollectionID, "ReHomeRelationship")
	}
	s.pushRelationshipRevision(rec)
	rec.Current.MetadataCollectionID = newHomeCollectionID
	rec.Current.MetadataCollectionName = newHomeCollectionName
	rec.Current.Provenance = instance.ProvenanceLocalCohort
	rec.Current.Version++
	rec.Current.UpdatedBy = userID
	rec.Current.UpdateTime = s.nowFn()
	if err := s.commit(); err != nil {
		return instance.Relationship{}, err
	}
	return rec.Current.Clone(), nil
}

// mutateRelationship applies fn to a locally stored relationship under the
// write lock, recording the prior revision and bumping the version.
func (s *Store) mutateRelationship(userID, guid, method string, fn func(*instance.Relationship, typedef.TypeDef) error) (instance.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.relationships[guid]
	if !ok {
		return instance.Relationship{}, ferr.New(ferr.RelationshipNotKnown, guid)
	}
	if rec.Current.MetadataCollectionID != s.collectionID {
		return instance.Relationship{}, ferr.New(ferr.NotHomeInstance, guid, rec.Current.MetadataCollectionID, method)
	}
	def := s.state.typeDefs[rec.Current.Type.GUID]
	working := rec.Current.Clone()
	if err := fn(&working, def); err != nil {
		return instance.Relationship{}, err
	}
	s.pushRelationshipRevision(rec)
	working.Version = rec.Current.Version + 1
	working.UpdatedBy = userID
	working.UpdateTime = s.nowFn()
	rec.Current = working
	if err := s.commit(); err != nil {
		return instance.Relationship{}, err
	}
	return working.Clone(), nil
}

func (s *Store) pushRelationshipRevision(rec *relationshipRecord) {
	rec.History = append(rec.History, rec.Current.Clone())
}
