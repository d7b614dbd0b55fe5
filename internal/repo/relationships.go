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

// IsRelationshipKnown returns the relationship when it is stored locally,
// or a nil result when it is not.
func (r *LocalRepository) IsRelationshipKnown(ctx context.Context, userID, guid string) response.Response[*instance.Relationship] {
	return read(r, ctx, "isRelationshipKnown", userID, func() (*instance.Relationship, error) {
		if guid == "" {
			return nil, ferr.New(ferr.NullParameter, "guid", "isRelationshipKnown", r.serverName)
		}
		return r.delegate.IsRelationshipKnown(ctx, userID, guid)
	})
}

// GetRelationship returns the current form of a relationship.
func (r *LocalRepository) GetRelationship(ctx context.Context, userID, guid string) response.Response[instance.Relationship] {
	return read(r, ctx, "getRelationship", userID, func() (instance.Relationship, error) {
		if guid == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "guid", "getRelationship", r.serverName)
		}
		return r.delegate.Relationship(ctx, userID, guid)
	})
}

// GetRelationshipAsOfTime returns the revision of a relationship current
// at a past time.
func (r *LocalRepository) GetRelationshipAsOfTime(ctx context.Context, userID, guid string, asOfTime time.Time) response.Response[instance.Relationship] {
	return read(r, ctx, "getRelationshipAsOfTime", userID, func() (instance.Relationship, error) {
		if guid == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "guid", "getRelationshipAsOfTime", r.serverName)
		}
		if asOfTime.IsZero() {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "asOfTime", "getRelationshipAsOfTime", r.serverName)
		}
		return r.delegate.RelationshipAsOfTime(ctx, userID, guid, asOfTime)
	})
}

// FindRelationshipsByProperty returns a page of relationships matching the
// supplied property bag under the given match criteria.
func (r *LocalRepository) FindRelationshipsByProperty(ctx context.Context, userID, typeGUID string, matchProperties *properties.InstanceProperties, matchCriteria search.MatchCriteria, page collection.PageRequest) response.PagedResponse[instance.Relationship] {
	return paged(r, ctx, "findRelationshipsByProperty", userID, page, func() ([]instance.Relationship, error) {
		predicate := search.Build(matchProperties, matchCriteria)
		return r.delegate.FindRelationshipsByProperty(ctx, userID, typeGUID, predicate, page)
	})
}

// FindRelationshipsByPropertyValue returns a page of relationships with
// any string property containing the search value.
func (r *LocalRepository) FindRelationshipsByPropertyValue(ctx context.Context, userID, typeGUID, searchValue string, page collection.PageRequest) response.PagedResponse[instance.Relationship] {
	return paged(r, ctx, "findRelationshipsByPropertyValue", userID, page, func() ([]instance.Relationship, error) {
		if searchValue == "" {
			return nil, ferr.New(ferr.NullParameter, "searchValue", "findRelationshipsByPropertyValue", r.serverName)
		}
		return r.delegate.FindRelationshipsByPropertyValue(ctx, userID, typeGUID, searchValue, page)
	})
}

// AddRelationship creates a new relationship homed in the local
// collection.
func (r *LocalRepository) AddRelationship(ctx context.Context, userID, typeGUID string, props *properties.InstanceProperties, entityOneGUID, entityTwoGUID string, initialStatus instance.Status) response.Response[instance.Relationship] {
	return mutate(r, ctx, "addRelationship", userID, "", func() (instance.Relationship, error) {
		if typeGUID == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "relationshipTypeGUID", "addRelationship", r.serverName)
		}
		if entityOneGUID == "" || entityTwoGUID == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "entityOneGUID/entityTwoGUID", "addRelationship", r.serverName)
		}
		return r.delegate.AddRelationship(ctx, userID, typeGUID, props, entityOneGUID, entityTwoGUID, initialStatus)
	})
}

// UpdateRelationshipStatus moves a relationship to a new lifecycle state.
func (r *LocalRepository) UpdateRelationshipStatus(ctx context.Context, userID, guid string, status instance.Status) response.Response[instance.Relationship] {
	return mutate(r, ctx, "updateRelationshipStatus", userID, guid, func() (instance.Relationship, error) {
		return r.delegate.UpdateRelationshipStatus(ctx, userID, guid, status)
	})
}

// UpdateRelationshipProperties replaces a relationship's properties.
func (r *LocalRepository) UpdateRelationshipProperties(ctx context.Context, userID, guid string, props *properties.InstanceProperties) response.Response[instance.Relationship] {
	return mutate(r, ctx, "updateRelationshipProperties", userID, guid, func() (instance.Relationship, error) {
		return r.delegate.UpdateRelationshipProperties(ctx, userID, guid, props)
	})
}

// UndoRelationshipUpdate rolls a relationship back to its previous
// revision.
func (r *LocalRepository) UndoRelationshipUpdate(ctx context.Context, userID, guid string) response.Response[instance.Relationship] {
	return mutate(r, ctx, "undoRelationshipUpdate", userID, guid, func() (instance.Relationship, error) {
		return r.delegate.UndoRelationshipUpdate(ctx, userID, guid)
	})
}

// DeleteRelationship soft-deletes a relationship.
func (r *LocalRepository) DeleteRelationship(ctx context.Context, userID, typeGUID, typeName, guid string) response.Response[instance.Relationship] {
	return mutate(r, ctx, "deleteRelationship", userID, guid, func() (instance.Relationship, error) {
		return r.delegate.DeleteRelationship(ctx, userID, typeGUID, typeName, guid)
	})
}

// PurgeRelationship permanently removes a soft-deleted relationship.
func (r *LocalRepository) PurgeRelationship(ctx context.Context, userID, typeGUID, typeName, guid string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "purgeRelationship", userID, guid, func() error {
		return r.delegate.PurgeRelationship(ctx, userID, typeGUID, typeName, guid)
	})
}

// RestoreRelationship brings a soft-deleted relationship back into use.
func (r *LocalRepository) RestoreRelationship(ctx context.Context, userID, guid string) response.Response[instance.Relationship] {
	return mutate(r, ctx, "restoreRelationship", userID, guid, func() (instance.Relationship, error) {
		return r.delegate.RestoreRelationship(ctx, userID, guid)
	})
}

// ReIdentifyRelationship assigns a new guid to a relationship.
func (r *LocalRepository) ReIdentifyRelationship(ctx context.Context, userID, typeGUID, typeName, guid, newGUID string) response.Response[instance.Relationship] {
	return mutate(r, ctx, "reIdentifyRelationship", userID, guid, func() (instance.Relationship, error) {
		if newGUID == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "newRelationshipGUID", "reIdentifyRelationship", r.serverName)
		}
		return r.delegate.ReIdentifyRelationship(ctx, userID, typeGUID, typeName, guid, newGUID)
	})
}

// ReTypeRelationship moves a relationship to a different relationship
// type.
func (r *LocalRepository) ReTypeRelationship(ctx context.Context, userID, guid string, currentType, newType instance.TypeRef) response.Response[instance.Relationship] {
	return mutate(r, ctx, "reTypeRelationship", userID, guid, func() (instance.Relationship, error) {
		if newType.GUID == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "newTypeDef", "reTypeRelationship", r.serverName)
		}
		return r.delegate.ReTypeRelationship(ctx, userID, guid, currentType, newType)
	})
}

// ReHomeRelationship transfers home ownership of a relationship to
// another collection.
func (r *LocalRepository) ReHomeRelationship(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) response.Response[instance.Relationship] {
	return mutate(r, ctx, "reHomeRelationship", userID, guid, func() (instance.Relationship, error) {
		if newHomeCollectionID == "" {
			return instance.Relationship{}, ferr.New(ferr.NullParameter, "newHomeMetadataCollectionId", "reHomeRelationship", r.serverName)
		}
		return r.delegate.ReHomeRelationship(ctx, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName)
	})
}
