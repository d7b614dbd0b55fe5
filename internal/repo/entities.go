package repo

import (
	"context"
	"time"

	"metarepo/pkg/collection"
	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/response"
	"metarepo/pkg/search"
)

// IsEntityKnown returns the entity when it is stored locally in full, or
// a nil result when it is not. Absence is a successful outcome here.
func (r *LocalRepository) IsEntityKnown(ctx context.Context, userID, guid string) response.Response[*instance.EntityDetail] {
	return read(r, ctx, "isEntityKnown", userID, func() (*instance.EntityDetail, error) {
		if guid == "" {
			return nil, ferr.New(ferr.NullParameter, "guid", "isEntityKnown", r.serverName)
		}
		return r.delegate.IsEntityKnown(ctx, userID, guid)
	})
}

// GetEntitySummary returns the header and classifications of an entity.
func (r *LocalRepository) GetEntitySummary(ctx context.Context, userID, guid string) response.Response[instance.EntitySummary] {
	return read(r, ctx, "getEntitySummary", userID, func() (instance.EntitySummary, error) {
		if guid == "" {
			return instance.EntitySummary{}, ferr.New(ferr.NullParameter, "guid", "getEntitySummary", r.serverName)
		}
		return r.delegate.EntitySummary(ctx, userID, guid)
	})
}

// GetEntityDetail returns the full current form of an entity.
func (r *LocalRepository) GetEntityDetail(ctx context.Context, userID, guid string) response.Response[instance.EntityDetail] {
	return read(r, ctx, "getEntityDetail", userID, func() (instance.EntityDetail, error) {
		if guid == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "guid", "getEntityDetail", r.serverName)
		}
		return r.delegate.EntityDetail(ctx, userID, guid)
	})
}

// GetEntityDetailAsOfTime returns the revision of an entity current at a
// past time.
func (r *LocalRepository) GetEntityDetailAsOfTime(ctx context.Context, userID, guid string, asOfTime time.Time) response.Response[instance.EntityDetail] {
	return read(r, ctx, "getEntityDetailAsOfTime", userID, func() (instance.EntityDetail, error) {
		if guid == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "guid", "getEntityDetailAsOfTime", r.serverName)
		}
		if asOfTime.IsZero() {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "asOfTime", "getEntityDetailAsOfTime", r.serverName)
		}
		return r.delegate.EntityDetailAsOfTime(ctx, userID, guid, asOfTime)
	})
}

// GetRelationshipsForEntity returns a page of the relationships attached
// to an entity.
func (r *LocalRepository) GetRelationshipsForEntity(ctx context.Context, userID, entityGUID, relationshipTypeGUID string, page collection.PageRequest) response.PagedResponse[instance.Relationship] {
	return paged(r, ctx, "getRelationshipsForEntity", userID, page, func() ([]instance.Relationship, error) {
		if entityGUID == "" {
			return nil, ferr.New(ferr.NullParameter, "entityGUID", "getRelationshipsForEntity", r.serverName)
		}
		return r.delegate.RelationshipsForEntity(ctx, userID, entityGUID, relationshipTypeGUID, page)
	})
}

// FindEntitiesByProperty returns a page of entities matching the supplied
// property bag under the given match criteria.
func (r *LocalRepository) FindEntitiesByProperty(ctx context.Context, userID, typeGUID string, matchProperties *properties.InstanceProperties, matchCriteria search.MatchCriteria, page collection.PageRequest) response.PagedResponse[instance.EntityDetail] {
	return paged(r, ctx, "findEntitiesByProperty", userID, page, func() ([]instance.EntityDetail, error) {
		predicate := search.Build(matchProperties, matchCriteria)
		return r.delegate.FindEntitiesByProperty(ctx, userID, typeGUID, predicate, page)
	})
}

// FindEntitiesByClassification returns a page of entities carrying the
// named classification, optionally filtered by classification properties.
func (r *LocalRepository) FindEntitiesByClassification(ctx context.Context, userID, typeGUID, classificationName string, matchProperties *properties.InstanceProperties, matchCriteria search.MatchCriteria, page collection.PageRequest) response.PagedResponse[instance.EntityDetail] {
	return paged(r, ctx, "findEntitiesByClassification", userID, page, func() ([]instance.EntityDetail, error) {
		if classificationName == "" {
			return nil, ferr.New(ferr.NullParameter, "classificationName", "findEntitiesByClassification", r.serverName)
		}
		predicate := search.Build(matchProperties, matchCriteria)
		return r.delegate.FindEntitiesByClassification(ctx, userID, typeGUID, classificationName, predicate, page)
	})
}

// FindEntitiesByPropertyValue returns a page of entities with any string
// property containing the search value.
func (r *LocalRepository) FindEntitiesByPropertyValue(ctx context.Context, userID, typeGUID, searchValue string, page collection.PageRequest) response.PagedResponse[instance.EntityDetail] {
	return paged(r, ctx, "findEntitiesByPropertyValue", userID, page, func() ([]instance.EntityDetail, error) {
		if searchValue == "" {
			return nil, ferr.New(ferr.NullParameter, "searchValue", "findEntitiesByPropertyValue", r.serverName)
		}
		return r.delegate.FindEntitiesByPropertyValue(ctx, userID, typeGUID, searchValue, page)
	})
}

// GetLinkingEntities returns the instances along a shortest path between
// two entities. An empty graph means the entities are unconnected.
func (r *LocalRepository) GetLinkingEntities(ctx context.Context, userID, startEntityGUID, endEntityGUID string, statusFilter []instance.Status) response.Response[instance.Graph] {
	return read(r, ctx, "getLinkingEntities", userID, func() (instance.Graph, error) {
		if startEntityGUID == "" || endEntityGUID == "" {
			return instance.Graph{}, ferr.New(ferr.NullParameter, "startEntityGUID/endEntityGUID", "getLinkingEntities", r.serverName)
		}
		return r.delegate.LinkingEntities(ctx, userID, startEntityGUID, endEntityGUID, statusFilter)
	})
}

// GetEntityNeighborhood returns the subgraph within a number of hops of a
// starting entity.
func (r *LocalRepository) GetEntityNeighborhood(ctx context.Context, userID, entityGUID string, entityTypeGUIDs, relationshipTypeGUIDs []string, statusFilter []instance.Status, level int) response.Response[instance.Graph] {
	return read(r, ctx, "getEntityNeighborhood", userID, func() (instance.Graph, error) {
		if entityGUID == "" {
			return instance.Graph{}, ferr.New(ferr.NullParameter, "entityGUID", "getEntityNeighborhood", r.serverName)
		}
		return r.delegate.EntityNeighborhood(ctx, userID, entityGUID, entityTypeGUIDs, relationshipTypeGUIDs, statusFilter, level)
	})
}

// AddEntity creates a new entity homed in the local collection.
func (r *LocalRepository) AddEntity(ctx context.Context, userID, typeGUID string, props *properties.InstanceProperties, classifications []instance.Classification, initialStatus instance.Status) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "addEntity", userID, "", func() (instance.EntityDetail, error) {
		if typeGUID == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "entityTypeGUID", "addEntity", r.serverName)
		}
		return r.delegate.AddEntity(ctx, userID, typeGUID, props, classifications, initialStatus)
	})
}

// AddEntityProxy stores a proxy for an entity homed in another
// repository.
func (r *LocalRepository) AddEntityProxy(ctx context.Context, userID string, proxy *instance.EntityProxy) response.Response[struct{}] {
	guid := ""
	if proxy != nil {
		guid = proxy.GUID
	}
	return r.mutateVoid(ctx, "addEntityProxy", userID, guid, func() error {
		return r.delegate.AddEntityProxy(ctx, userID, proxy)
	})
}

// UpdateEntityStatus moves an entity to a new lifecycle state.
func (r *LocalRepository) UpdateEntityStatus(ctx context.Context, userID, guid string, status instance.Status) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "updateEntityStatus", userID, guid, func() (instance.EntityDetail, error) {
		return r.delegate.UpdateEntityStatus(ctx, userID, guid, status)
	})
}

// UpdateEntityProperties replaces an entity's properties.
func (r *LocalRepository) UpdateEntityProperties(ctx context.Context, userID, guid string, props *properties.InstanceProperties) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "updateEntityProperties", userID, guid, func() (instance.EntityDetail, error) {
		return r.delegate.UpdateEntityProperties(ctx, userID, guid, props)
	})
}

// UndoEntityUpdate rolls an entity back to its previous revision.
func (r *LocalRepository) UndoEntityUpdate(ctx context.Context, userID, guid string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "undoEntityUpdate", userID, guid, func() (instance.EntityDetail, error) {
		return r.delegate.UndoEntityUpdate(ctx, userID, guid)
	})
}

// DeleteEntity soft-deletes an entity.
func (r *LocalRepository) DeleteEntity(ctx context.Context, userID, typeGUID, typeName, guid string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "deleteEntity", userID, guid, func() (instance.EntityDetail, error) {
		return r.delegate.DeleteEntity(ctx, userID, typeGUID, typeName, guid)
	})
}

// PurgeEntity permanently removes a soft-deleted entity.
func (r *LocalRepository) PurgeEntity(ctx context.Context, userID, typeGUID, typeName, guid string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "purgeEntity", userID, guid, func() error {
		return r.delegate.PurgeEntity(ctx, userID, typeGUID, typeName, guid)
	})
}

// RestoreEntity brings a soft-deleted entity back into use.
func (r *LocalRepository) RestoreEntity(ctx context.Context, userID, guid string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "restoreEntity", userID, guid, func() (instance.EntityDetail, error) {
		return r.delegate.RestoreEntity(ctx, userID, guid)
	})
}

// ClassifyEntity attaches a classification to an entity.
func (r *LocalRepository) ClassifyEntity(ctx context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "classifyEntity", userID, guid, func() (instance.EntityDetail, error) {
		if classificationName == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "classificationName", "classifyEntity", r.serverName)
		}
		return r.delegate.ClassifyEntity(ctx, userID, guid, classificationName, props)
	})
}

// DeclassifyEntity removes a classification from an entity.
func (r *LocalRepository) DeclassifyEntity(ctx context.Context, userID, guid, classificationName string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "declassifyEntity", userID, guid, func() (instance.EntityDetail, error) {
		if classificationName == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "classificationName", "declassifyEntity", r.serverName)
		}
		return r.delegate.DeclassifyEntity(ctx, userID, guid, classificationName)
	})
}

// UpdateEntityClassification replaces the properties of an attached
// classification.
func (r *LocalRepository) UpdateEntityClassification(ctx context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "updateEntityClassification", userID, guid, func() (instance.EntityDetail, error) {
		if classificationName == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "classificationName", "updateEntityClassification", r.serverName)
		}
		return r.delegate.UpdateEntityClassification(ctx, userID, guid, classificationName, props)
	})
}

// ReIdentifyEntity assigns a new guid to an entity.
func (r *LocalRepository) ReIdentifyEntity(ctx context.Context, userID, typeGUID, typeName, guid, newGUID string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "reIdentifyEntity", userID, guid, func() (instance.EntityDetail, error) {
		if newGUID == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "newEntityGUID", "reIdentifyEntity", r.serverName)
		}
		return r.delegate.ReIdentifyEntity(ctx, userID, typeGUID, typeName, guid, newGUID)
	})
}

// ReTypeEntity moves an entity to a different entity type.
func (r *LocalRepository) ReTypeEntity(ctx context.Context, userID, guid string, currentType, newType instance.TypeRef) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "reTypeEntity", userID, guid, func() (instance.EntityDetail, error) {
		if newType.GUID == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "newTypeDef", "reTypeEntity", r.serverName)
		}
		return r.delegate.ReTypeEntity(ctx, userID, guid, currentType, newType)
	})
}

// ReHomeEntity transfers home ownership of an entity to another
// collection.
func (r *LocalRepository) ReHomeEntity(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) response.Response[instance.EntityDetail] {
	return mutate(r, ctx, "reHomeEntity", userID, guid, func() (instance.EntityDetail, error) {
		if newHomeCollectionID == "" {
			return instance.EntityDetail{}, ferr.New(ferr.NullParameter, "newHomeMetadataCollectionId", "reHomeEntity", r.serverName)
		}
		return r.delegate.ReHomeEntity(ctx, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName)
	})
}
