package memory

import (
	"context"
	"time"

	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/typedef"
)

// IsEntityKnown returns the entity detail when the full entity is stored
// locally, or nil without error when it is not. Proxies do not count.
func (s *Store) IsEntityKnown(_ context.Context, _ string, guid string) (*instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return nil, nil
	}
	detail := rec.Current.Clone()
	return &detail, nil
}

// EntitySummary returns the header and classifications of an entity,
// whether it is stored in full or only as a proxy.
func (s *Store) EntitySummary(_ context.Context, _ string, guid string) (instance.EntitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.state.entities[guid]; ok {
		return rec.Current.EntitySummary.Clone(), nil
	}
	if proxy, ok := s.state.proxies[guid]; ok {
		return proxy.EntitySummary.Clone(), nil
	}
	return instance.EntitySummary{}, ferr.New(ferr.EntityNotKnown, guid)
}

// EntityDetail returns the full entity. An entity held only as a proxy is
// a distinguished proxy-only failure.
func (s *Store) EntityDetail(_ context.Context, _ string, guid string) (instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entityDetailLocked(guid)
}

func (s *Store) entityDetailLocked(guid string) (instance.EntityDetail, error) {
	if rec, ok := s.state.entities[guid]; ok {
		return rec.Current.Clone(), nil
	}
	if _, ok := s.state.proxies[guid]; ok {
		return instance.EntityDetail{}, ferr.New(ferr.EntityProxyOnly, guid)
	}
	return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
}

// EntityDetailAsOfTime returns the revision of an entity current at the
// supplied past time.
func (s *Store) EntityDetailAsOfTime(_ context.Context, _ string, guid string, asOfTime time.Time) (instance.EntityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
	}
	var best *instance.EntityDetail
	consider := func(rev instance.EntityDetail) {
		if rev.UpdateTime.After(asOfTime) {
			return
		}
		if best == nil || rev.UpdateTime.After(best.UpdateTime) {
			cp := rev.Clone()
			best = &cp
		}
	}
	for _, rev := range rec.History {
		consider(rev)
	}
	consider(rec.Current)
	if best == nil {
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
	}
	return *best, nil
}

// AddEntity creates a new locally homed entity.
func (s *Store) AddEntity(_ context.Context, userID, typeGUID string, props *properties.InstanceProperties, classifications []instance.Classification, initialStatus instance.Status) (instance.EntityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.typeDefs[typeGUID]
	if !ok {
		return instance.EntityDetail{}, ferr.New(ferr.TypeDefNotKnown, typeGUID)
	}
	if def.Category != typedef.CategoryEntityDef {
		return instance.EntityDetail{}, ferr.New(ferr.TypeMismatch, "new entity", string(def.Category), string(typedef.CategoryEntityDef))
	}
	if initialStatus == "" {
		initialStatus = def.InitialStatus
	}
	if initialStatus == "" {
		initialStatus = instance.StatusActive
	}
	if initialStatus == instance.StatusDeleted || !def.SupportsStatus(initialStatus) {
		return instance.EntityDetail{}, ferr.New(ferr.InvalidStatus, string(initialStatus), def.Name)
	}
	if err := s.validatePropertiesLocked(def, props); err != nil {
		return instance.EntityDetail{}, err
	}
	now := s.nowFn()
	entity := instance.EntityDetail{
		EntitySummary: instance.EntitySummary{
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
		},
		Properties: props.Clone(),
	}
	for _, c := range classifications {
		attached, err := s.buildClassificationLocked(def, c.Name, c.Properties, userID, now)
		if err != nil {
			return instance.EntityDetail{}, err
		}
		entity.Classifications = append(entity.Classifications, attached)
	}
	s.state.entities[entity.GUID] = &entityRecord{Current: entity.Clone()}
	if err := s.commit(); err != nil {
		return instance.EntityDetail{}, err
	}
	return entity, nil
}

// AddEntityProxy stores a proxy for an entity homed elsewhere. Storing a
// proxy for an entity already held in full is a no-op.
func (s *Store) AddEntityProxy(_ context.Context, _ string, proxy *instance.EntityProxy) error {
	if proxy == nil || proxy.GUID == "" {
		return ferr.New(ferr.NullParameter, "entityProxy", "AddEntityProxy", s.collectionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if proxy.MetadataCollectionID == s.collectionID {
		return ferr.New(ferr.HomeCollectionConflict, proxy.GUID, proxy.MetadataCollectionID)
	}
	if _, ok := s.state.entities[proxy.GUID]; ok {
		return nil
	}
	s.state.proxies[proxy.GUID] = proxy.Clone()
	return s.commit()
}

// UpdateEntityStatus moves an entity to a new lifecycle state.
func (s *Store) UpdateEntityStatus(_ context.Context, userID, guid string, status instance.Status) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "UpdateEntityStatus", func(e *instance.EntityDetail, def typedef.TypeDef) error {
		if !def.SupportsStatus(status) || !instance.ValidTransition(e.Status, status) {
			return ferr.New(ferr.InvalidStatus, string(status), def.Name)
		}
		e.Status = status
		return nil
	})
}

// UpdateEntityProperties replaces an entity's property bag.
func (s *Store) UpdateEntityProperties(_ context.Context, userID, guid string, props *properties.InstanceProperties) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "UpdateEntityProperties", func(e *instance.EntityDetail, def typedef.TypeDef) error {
		if err := s.validatePropertiesLocked(def, props); err != nil {
			return err
		}
		e.Properties = props.Clone()
		return nil
	})
}

// UndoEntityUpdate restores the entity's previous revision as a new
// version. An entity with no prior revision is returned unchanged.
func (s *Store) UndoEntityUpdate(_ context.Context, userID, guid string) (instance.EntityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
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
		return instance.EntityDetail{}, err
	}
	return restored.Clone(), nil
}

// DeleteEntity soft-deletes an entity. The caller confirms the entity's
// type to guard against acting on the wrong instance.
func (s *Store) DeleteEntity(_ context.Context, userID, typeGUID, typeName, guid string) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "DeleteEntity", func(e *instance.EntityDetail, _ typedef.TypeDef) error {
		if err := confirmType(e.Header, typeGUID, typeName); err != nil {
			return err
		}
		if e.Status == instance.StatusDeleted {
			return ferr.New(ferr.InvalidStatus, string(instance.StatusDeleted), e.Type.Name)
		}
		e.StatusOnDelete = e.Status
		e.Status = instance.StatusDeleted
		return nil
	})
}

// PurgeEntity permanently removes a soft-deleted entity together with the
// relationships attached to it. Irreversible.
func (s *Store) PurgeEntity(_ context.Context, _ string, typeGUID, typeName, guid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return ferr.New(ferr.EntityNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return err
	}
	if rec.Current.Status != instance.StatusDeleted {
		return ferr.New(ferr.InstanceNotDeleted, guid, "PurgeEntity")
	}
	delete(s.state.entities, guid)
	for relGUID, relRec := range s.state.relationships {
		if relRec.Current.EntityOne.GUID == guid || relRec.Current.EntityTwo.GUID == guid {
			delete(s.state.relationships, relGUID)
		}
	}
	return s.commit()
}

// RestoreEntity returns a soft-deleted entity to the state it held before
// deletion.
func (s *Store) RestoreEntity(_ context.Context, userID, guid string) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "RestoreEntity", func(e *instance.EntityDetail, _ typedef.TypeDef) error {
		if e.Status != instance.StatusDeleted {
			return ferr.New(ferr.InstanceNotDeleted, guid, "RestoreEntity")
		}
		restored := e.StatusOnDelete
		if restored == "" {
			restored = instance.StatusActive
		}
		e.Status = restored
		e.StatusOnDelete = ""
		return nil
	})
}

// ClassifyEntity attaches (or replaces) a named classification.
func (s *Store) ClassifyEntity(_ context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "ClassifyEntity", func(e *instance.EntityDetail, def typedef.TypeDef) error {
		attached, err := s.buildClassificationLocked(def, classificationName, props, userID, s.nowFn())
		if err != nil {
			return err
		}
		for i, c := range e.Classifications {
			if c.Name == classificationName {
				attached.Version = c.Version + 1
				attached.CreateTime = c.CreateTime
				attached.CreatedBy = c.CreatedBy
				e.Classifications[i] = attached
				return nil
			}
		}
		e.Classifications = append(e.Classifications, attached)
		return nil
	})
}

// DeclassifyEntity removes a named classification.
func (s *Store) DeclassifyEntity(_ context.Context, userID, guid, classificationName string) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "DeclassifyEntity", func(e *instance.EntityDetail, _ typedef.TypeDef) error {
		for i, c := range e.Classifications {
			if c.Name == classificationName {
				e.Classifications = append(e.Classifications[:i], e.Classifications[i+1:]...)
				return nil
			}
		}
		return ferr.New(ferr.ClassificationNotFound, classificationName, guid)
	})
}

// UpdateEntityClassification replaces the properties of an attached
// classification.
func (s *Store) UpdateEntityClassification(_ context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "UpdateEntityClassification", func(e *instance.EntityDetail, _ typedef.TypeDef) error {
		now := s.nowFn()
		for i, c := range e.Classifications {
			if c.Name == classificationName {
				c.Properties = props.Clone()
				c.UpdatedBy = userID
				c.UpdateTime = now
				c.Version++
				e.Classifications[i] = c
				return nil
			}
		}
		return ferr.New(ferr.ClassificationNotFound, classificationName, guid)
	})
}

// ReIdentifyEntity swaps an entity's guid, rewriting relationship ends
// that reference it.
func (s *Store) ReIdentifyEntity(_ context.Context, userID, typeGUID, typeName, guid, newGUID string) (instance.EntityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return instance.EntityDetail{}, err
	}
	if _, clash := s.state.entities[newGUID]; clash {
		return instance.EntityDetail{}, ferr.New(ferr.EntityAlreadyExists, newGUID)
	}
	s.pushEntityRevision(rec)
	rec.Current.GUID = newGUID
	rec.Current.Version++
	rec.Current.UpdatedBy = userID
	rec.Current.UpdateTime = s.nowFn()
	delete(s.state.entities, guid)
	s.state.entities[newGUID] = rec
	for _, relRec := range s.state.relationships {
		if relRec.Current.EntityOne.GUID == guid {
			relRec.Current.EntityOne.GUID = newGUID
		}
		if relRec.Current.EntityTwo.GUID == guid {
			relRec.Current.EntityTwo.GUID = newGUID
		}
	}
	if err := s.commit(); err != nil {
		return instance.EntityDetail{}, err
	}
	return rec.Current.Clone(), nil
}

// ReTypeEntity swaps an entity's type after re-validating its properties
// and classifications against the new type.
func (s *Store) ReTypeEntity(_ context.Context, userID, guid string, currentType, newType instance.TypeRef) (instance.EntityDetail, error) {
	return s.mutateEntity(userID, guid, "ReTypeEntity", func(e *instance.EntityDetail, _ typedef.TypeDef) error {
		if err := confirmType(e.Header, currentType.GUID, currentType.Name); err != nil {
			return err
		}
		newDef, ok := s.state.typeDefs[newType.GUID]
		if !ok {
			return ferr.New(ferr.TypeDefNotKnown, newType.Name)
		}
		if newDef.Category != typedef.CategoryEntityDef {
			return ferr.New(ferr.TypeMismatch, guid, string(newDef.Category), string(typedef.CategoryEntityDef))
		}
		if err := s.validatePropertiesLocked(newDef, e.Properties); err != nil {
			return err
		}
		for _, c := range e.Classifications {
			if err := s.validClassificationForLocked(newDef, c.Name); err != nil {
				return err
			}
		}
		e.Type = instance.TypeRef{GUID: newDef.GUID, Name: newDef.Name, Version: newDef.Version}
		return nil
	})
}

// ReHomeEntity transfers home ownership of an entity to a new collection.
func (s *Store) ReHomeEntity(_ context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) (instance.EntityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
	}
	if err := confirmType(rec.Current.Header, typeGUID, typeName); err != nil {
		return instance.EntityDetail{}, err
	}
	if rec.Current.MetadataCollectionID != homeCollectionID {
		return instance.EntityDetail{}, ferr.New(ferr.NotHomeInstance, guid, rec.Current.MetadataCollectionID, "ReHomeEntity")
	}
	s.pushEntityRevision(rec)
	rec.Current.MetadataCollectionID = newHomeCollectionID
	rec.Current.MetadataCollectionName = newHomeCollectionName
	rec.Current.Provenance = instance.ProvenanceLocalCohort
	rec.Current.Version++
	rec.Current.UpdatedBy = userID
	rec.Current.UpdateTime = s.nowFn()
	if err := s.commit(); err != nil {
		return instance.EntityDetail{}, err
	}
	return rec.Current.Clone(), nil
}

// mutateEntity applies fn to a locally stored entity under the write lock,
// recording the prior revision and bumping the version. Mutations require
// the instance to be locally home-owned.
func (s *Store) mutateEntity(userID, guid, method string, fn func(*instance.EntityDetail, typedef.TypeDef) error) (instance.EntityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.entities[guid]
	if !ok {
		if _, proxy := s.state.proxies[guid]; proxy {
			return instance.EntityDetail{}, ferr.New(ferr.EntityProxyOnly, guid)
		}
		return instance.EntityDetail{}, ferr.New(ferr.EntityNotKnown, guid)
	}
	if rec.Current.MetadataCollectionID != s.collectionID {
		return instance.EntityDetail{}, ferr.New(ferr.NotHomeInstance, guid, rec.Current.MetadataCollectionID, method)
	}
	def := s.state.typeDefs[rec.Current.Type.GUID]
	working := rec.Current.Clone()
	if err := fn(&working, def); err != nil {
		return instance.EntityDetail{}, err
	}
	s.pushEntityRevision(rec)
	working.Version = rec.Current.Version + 1
	working.UpdatedBy = userID
	working.UpdateTime = s.nowFn()
	rec.Current = working
	if err := s.commit(); err != nil {
		return instance.EntityDetail{}, err
	}
	return working.Clone(), nil
}

func (s *Store) pushEntityRevision(rec *entityRecord) {
	rec.History = append(rec.History, rec.Current.Clone())
}

func confirmType(h instance.Header, typeGUID, typeName string) error {
	if h.Type.GUID != typeGUID || h.Type.Name != typeName {
		return ferr.New(ferr.TypeGUIDMismatch, typeGUID, typeName, h.GUID)
	}
	return nil
}

// validatePropertiesLocked checks that every property name is declared by
// the type or one of its supertypes.
func (s *Store) validatePropertiesLocked(def typedef.TypeDef, props *properties.InstanceProperties) error {
	if props.Len() == 0 {
		return nil
	}
	declared := s.attributeNamesLocked(def)
	for _, name := range props.Names() {
		if _, ok := declared[name]; !ok {
			return ferr.New(ferr.PropertyNotValidForType, name, def.Name)
		}
	}
	return nil
}

func (s *Store) attributeNamesLocked(def typedef.TypeDef) map[string]struct{} {
	names := make(map[string]struct{})
	current := def
	for depth := 0; depth < 32; depth++ {
		for _, attr := range current.Attributes {
			names[attr.Name] = struct{}{}
		}
		if current.SuperType == nil {
			break
		}
		parent, ok := s.state.typeDefs[current.SuperType.GUID]
		if !ok {
			break
		}
		current = parent
	}
	return names
}

// buildClassificationLocked resolves a classification type by name and
// checks it may attach to the entity's type.
func (s *Store) buildClassificationLocked(entityDef typedef.TypeDef, name string, props *properties.InstanceProperties, userID string, now time.Time) (instance.Classification, error) {
	if err := s.validClassificationForLocked(entityDef, name); err != nil {
		return instance.Classification{}, err
	}
	classDef, _ := s.typeDefByNameLocked(name)
	if err := s.validatePropertiesLocked(classDef, props); err != nil {
		return instance.Classification{}, err
	}
	return instance.Classification{
		Name:       name,
		Type:       instance.TypeRef{GUID: classDef.GUID, Name: classDef.Name, Version: classDef.Version},
		Status:     instance.StatusActive,
		Properties: props.Clone(),
		CreatedBy:  userID,
		UpdatedBy:  userID,
		CreateTime: now,
		UpdateTime: now,
		Version:    1,
	}, nil
}

// validClassificationForLocked confirms the named classification type
// exists and admits the entity's type (or one of its supertypes).
func (s *Store) validClassificationForLocked(entityDef typedef.TypeDef, name string) error {
	classDef, ok := s.typeDefByNameLocked(name)
	if !ok || classDef.Category != typedef.CategoryClassificationDef {
		return ferr.New(ferr.ClassificationNotValid, name, entityDef.Name)
	}
	if len(classDef.ValidEntityDefs) == 0 {
		return nil
	}
	lineage := s.typeLineageLocked(entityDef)
	for _, link := range classDef.ValidEntityDefs {
		if _, ok := lineage[link.GUID]; ok {
			return nil
		}
	}
	return ferr.New(ferr.ClassificationNotValid, name, entityDef.Name)
}

// typeLineageLocked returns the guid set of a type and its supertypes.
func (s *Store) typeLineageLocked(def typedef.TypeDef) map[string]struct{} {
	lineage := make(map[string]struct{})
	current := def
	for depth := 0; depth < 32; depth++ {
		lineage[current.GUID] = struct{}{}
		if current.SuperType == nil {
			break
		}
		parent, ok := s.state.typeDefs[current.SuperType.GUID]
		if !ok {
			break
		}
		current = parent
	}
	return lineage
}

