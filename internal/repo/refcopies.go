package repo

import (
	"context"

	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/response"
)

// SaveEntityReferenceCopy stores the local copy of an entity homed in
// another repository.
func (r *LocalRepository) SaveEntityReferenceCopy(ctx context.Context, userID string, entity instance.EntityDetail) response.Response[struct{}] {
	return r.mutateVoid(ctx, "saveEntityReferenceCopy", userID, entity.GUID, func() error {
		r.noteUnknownHome(ctx, "saveEntityReferenceCopy", entity.GUID, entity.MetadataCollectionID)
		return r.delegate.SaveEntityReferenceCopy(ctx, userID, entity)
	})
}

// PurgeEntityReferenceCopy removes the local copy of an entity homed in
// another repository.
func (r *LocalRepository) PurgeEntityReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "purgeEntityReferenceCopy", userID, guid, func() error {
		if guid == "" {
			return ferr.New(ferr.NullParameter, "guid", "purgeEntityReferenceCopy", r.serverName)
		}
		return r.delegate.PurgeEntityReferenceCopy(ctx, userID, guid, typeGUID, typeName, homeCollectionID)
	})
}

// RefreshEntityReferenceCopy asks for the local copy of an entity to be
// refreshed from its home repository.
func (r *LocalRepository) RefreshEntityReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "refreshEntityReferenceCopy", userID, guid, func() error {
		if guid == "" {
			return ferr.New(ferr.NullParameter, "guid", "refreshEntityReferenceCopy", r.serverName)
		}
		return r.delegate.RefreshEntityReferenceCopy(ctx, userID, guid, typeGUID, typeName, homeCollectionID)
	})
}

// SaveRelationshipReferenceCopy stores the local copy of a relationship
// homed in another repository.
func (r *LocalRepository) SaveRelationshipReferenceCopy(ctx context.Context, userID string, rel instance.Relationship) response.Response[struct{}] {
	return r.mutateVoid(ctx, "saveRelationshipReferenceCopy", userID, rel.GUID, func() error {
		r.noteUnknownHome(ctx, "saveRelationshipReferenceCopy", rel.GUID, rel.MetadataCollectionID)
		return r.delegate.SaveRelationshipReferenceCopy(ctx, userID, rel)
	})
}

// PurgeRelationshipReferenceCopy removes the local copy of a relationship
// homed in another repository.
func (r *LocalRepository) PurgeRelationshipReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "purgeRelationshipReferenceCopy", userID, guid, func() error {
		if guid == "" {
			return ferr.New(ferr.NullParameter, "guid", "purgeRelationshipReferenceCopy", r.serverName)
		}
		return r.delegate.PurgeRelationshipReferenceCopy(ctx, userID, guid, typeGUID, typeName, homeCollectionID)
	})
}

// RefreshRelationshipReferenceCopy asks for the local copy of a
// relationship to be refreshed from its home repository.
func (r *LocalRepository) RefreshRelationshipReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "refreshRelationshipReferenceCopy", userID, guid, func() error {
		if guid == "" {
			return ferr.New(ferr.NullParameter, "guid", "refreshRelationshipReferenceCopy", r.serverName)
		}
		return r.delegate.RefreshRelationshipReferenceCopy(ctx, userID, guid, typeGUID, typeName, homeCollectionID)
	})
}

// SaveInstanceReferenceCopies stores a graph of reference copies,
// skipping instances homed locally.
func (r *LocalRepository) SaveInstanceReferenceCopies(ctx context.Context, userID string, graph instance.Graph) response.Response[struct{}] {
	return r.mutateVoid(ctx, "saveInstanceReferenceCopies", userID, "", func() error {
		return r.delegate.SaveInstanceReferenceCopies(ctx, userID, graph)
	})
}
