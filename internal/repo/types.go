package repo

import (
	"context"

	"metarepo/pkg/ferr"
	"metarepo/pkg/response"
	"metarepo/pkg/typedef"
)

// GetAllTypes returns every type and attribute type known to the
// repository.
func (r *LocalRepository) GetAllTypes(ctx context.Context, userID string) response.Response[typedef.Gallery] {
	return read(r, ctx, "getAllTypes", userID, func() (typedef.Gallery, error) {
		return r.delegate.AllTypes(ctx, userID)
	})
}

// GetTypeDefByGUID returns one type definition by identifier.
func (r *LocalRepository) GetTypeDefByGUID(ctx context.Context, userID, guid string) response.Response[typedef.TypeDef] {
	return read(r, ctx, "getTypeDefByGUID", userID, func() (typedef.TypeDef, error) {
		if guid == "" {
			return typedef.TypeDef{}, ferr.New(ferr.NullParameter, "guid", "getTypeDefByGUID", r.serverName)
		}
		return r.delegate.TypeDefByGUID(ctx, userID, guid)
	})
}

// GetTypeDefByName returns one type definition by unique name.
func (r *LocalRepository) GetTypeDefByName(ctx context.Context, userID, name string) response.Response[typedef.TypeDef] {
	return read(r, ctx, "getTypeDefByName", userID, func() (typedef.TypeDef, error) {
		if name == "" {
			return typedef.TypeDef{}, ferr.New(ferr.NullParameter, "name", "getTypeDefByName", r.serverName)
		}
		return r.delegate.TypeDefByName(ctx, userID, name)
	})
}

// GetAttributeTypeDefByGUID returns one attribute type definition by
// identifier.
func (r *LocalRepository) GetAttributeTypeDefByGUID(ctx context.Context, userID, guid string) response.Response[typedef.AttributeTypeDef] {
	return read(r, ctx, "getAttributeTypeDefByGUID", userID, func() (typedef.AttributeTypeDef, error) {
		if guid == "" {
			return typedef.AttributeTypeDef{}, ferr.New(ferr.NullParameter, "guid", "getAttributeTypeDefByGUID", r.serverName)
		}
		return r.delegate.AttributeTypeDefByGUID(ctx, userID, guid)
	})
}

// GetAttributeTypeDefByName returns one attribute type definition by name.
func (r *LocalRepository) GetAttributeTypeDefByName(ctx context.Context, userID, name string) response.Response[typedef.AttributeTypeDef] {
	return read(r, ctx, "getAttributeTypeDefByName", userID, func() (typedef.AttributeTypeDef, error) {
		if name == "" {
			return typedef.AttributeTypeDef{}, ferr.New(ferr.NullParameter, "name", "getAttributeTypeDefByName", r.serverName)
		}
		return r.delegate.AttributeTypeDefByName(ctx, userID, name)
	})
}

// FindTypeDefsByCategory returns the type definitions in one category.
func (r *LocalRepository) FindTypeDefsByCategory(ctx context.Context, userID string, category typedef.Category) response.Response[[]typedef.TypeDef] {
	return read(r, ctx, "findTypeDefsByCategory", userID, func() ([]typedef.TypeDef, error) {
		return r.delegate.TypeDefsByCategory(ctx, userID, category)
	})
}

// FindAttributeTypeDefsByCategory returns the attribute type definitions
// in one category.
func (r *LocalRepository) FindAttributeTypeDefsByCategory(ctx context.Context, userID string, category typedef.AttributeCategory) response.Response[[]typedef.AttributeTypeDef] {
	return read(r, ctx, "findAttributeTypeDefsByCategory", userID, func() ([]typedef.AttributeTypeDef, error) {
		return r.delegate.AttributeTypeDefsByCategory(ctx, userID, category)
	})
}

// FindTypeDefsByProperty returns the type definitions declaring every one
// of the named properties.
func (r *LocalRepository) FindTypeDefsByProperty(ctx context.Context, userID string, propertyNames []string) response.Response[[]typedef.TypeDef] {
	return read(r, ctx, "findTypeDefsByProperty", userID, func() ([]typedef.TypeDef, error) {
		return r.delegate.TypeDefsByProperty(ctx, userID, propertyNames)
	})
}

// FindTypesByExternalID returns the type definitions mapped to an external
// standard identifier.
func (r *LocalRepository) FindTypesByExternalID(ctx context.Context, userID, standard, organization, identifier string) response.Response[[]typedef.TypeDef] {
	return read(r, ctx, "findTypesByExternalID", userID, func() ([]typedef.TypeDef, error) {
		if standard == "" && organization == "" && identifier == "" {
			return nil, ferr.New(ferr.NullParameter, "standard/organization/identifier", "findTypesByExternalID", r.serverName)
		}
		return r.delegate.TypeDefsByExternalID(ctx, userID, standard, organization, identifier)
	})
}

// SearchForTypeDefs returns the type definitions whose names contain the
// search criteria.
func (r *LocalRepository) SearchForTypeDefs(ctx context.Context, userID, searchCriteria string) response.Response[[]typedef.TypeDef] {
	return read(r, ctx, "searchForTypeDefs", userID, func() ([]typedef.TypeDef, error) {
		if searchCriteria == "" {
			return nil, ferr.New(ferr.NullParameter, "searchCriteria", "searchForTypeDefs", r.serverName)
		}
		return r.delegate.SearchTypeDefs(ctx, userID, searchCriteria)
	})
}

// AddTypeDef registers a new type definition.
func (r *LocalRepository) AddTypeDef(ctx context.Context, userID string, def typedef.TypeDef) response.Response[struct{}] {
	return r.mutateVoid(ctx, "addTypeDef", userID, def.GUID, func() error {
		if def.GUID == "" || def.Name == "" {
			return ferr.New(ferr.NullParameter, "typeDef", "addTypeDef", r.serverName)
		}
		return r.delegate.AddTypeDef(ctx, userID, def)
	})
}

// AddAttributeTypeDef registers a new attribute type definition.
func (r *LocalRepository) AddAttributeTypeDef(ctx context.Context, userID string, def typedef.AttributeTypeDef) response.Response[struct{}] {
	return r.mutateVoid(ctx, "addAttributeTypeDef", userID, def.GUID, func() error {
		if def.GUID == "" || def.Name == "" {
			return ferr.New(ferr.NullParameter, "attributeTypeDef", "addAttributeTypeDef", r.serverName)
		}
		return r.delegate.AddAttributeTypeDef(ctx, userID, def)
	})
}

// AddTypeDefGallery registers a whole gallery of attribute types and
// types in one call. Attribute types go first so type attributes can
// resolve against them. The first failure stops the load; definitions
// registered before it remain registered.
func (r *LocalRepository) AddTypeDefGallery(ctx context.Context, userID string, gallery typedef.Gallery) response.Response[struct{}] {
	return r.mutateVoid(ctx, "addTypeDefGallery", userID, "", func() error {
		if len(gallery.AttributeTypeDefs) == 0 && len(gallery.TypeDefs) == 0 {
			return ferr.New(ferr.NullParameter, "gallery", "addTypeDefGallery", r.serverName)
		}
		for _, def := range gallery.AttributeTypeDefs {
			if err := r.delegate.AddAttributeTypeDef(ctx, userID, def); err != nil {
				return err
			}
		}
		for _, def := range gallery.TypeDefs {
			if err := r.delegate.AddTypeDef(ctx, userID, def); err != nil {
				return err
			}
		}
		return nil
	})
}

// VerifyTypeDef reports whether the supplied type definition is already
// known in compatible form. An unknown type yields false, not a failure.
func (r *LocalRepository) VerifyTypeDef(ctx context.Context, userID string, def typedef.TypeDef) response.Response[bool] {
	return read(r, ctx, "verifyTypeDef", userID, func() (bool, error) {
		if def.GUID == "" || def.Name == "" {
			return false, ferr.New(ferr.NullParameter, "typeDef", "verifyTypeDef", r.serverName)
		}
		return r.delegate.VerifyTypeDef(ctx, userID, def)
	})
}

// VerifyAttributeTypeDef reports whether the supplied attribute type is
// already known in compatible form.
func (r *LocalRepository) VerifyAttributeTypeDef(ctx context.Context, userID string, def typedef.AttributeTypeDef) response.Response[bool] {
	return read(r, ctx, "verifyAttributeTypeDef", userID, func() (bool, error) {
		if def.GUID == "" || def.Name == "" {
			return false, ferr.New(ferr.NullParameter, "attributeTypeDef", "verifyAttributeTypeDef", r.serverName)
		}
		return r.delegate.VerifyAttributeTypeDef(ctx, userID, def)
	})
}

// UpdateTypeDef applies a patch to a registered type definition and
// returns the resulting definition.
func (r *LocalRepository) UpdateTypeDef(ctx context.Context, userID string, patch *typedef.Patch) response.Response[typedef.TypeDef] {
	guid := ""
	if patch != nil {
		guid = patch.TypeDefGUID
	}
	return mutate(r, ctx, "updateTypeDef", userID, guid, func() (typedef.TypeDef, error) {
		return r.delegate.UpdateTypeDef(ctx, userID, patch)
	})
}

// DeleteTypeDef removes an unused type definition.
func (r *LocalRepository) DeleteTypeDef(ctx context.Context, userID, guid, name string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "deleteTypeDef", userID, guid, func() error {
		return r.delegate.DeleteTypeDef(ctx, userID, guid, name)
	})
}

// DeleteAttributeTypeDef removes an unused attribute type definition.
func (r *LocalRepository) DeleteAttributeTypeDef(ctx context.Context, userID, guid, name string) response.Response[struct{}] {
	return r.mutateVoid(ctx, "deleteAttributeTypeDef", userID, guid, func() error {
		return r.delegate.DeleteAttributeTypeDef(ctx, userID, guid, name)
	})
}

// ReIdentifyTypeDef assigns a new identifier and name to a registered
// type definition.
func (r *LocalRepository) ReIdentifyTypeDef(ctx context.Context, userID, guid, name, newGUID, newName string) response.Response[typedef.TypeDef] {
	return mutate(r, ctx, "reIdentifyTypeDef", userID, guid, func() (typedef.TypeDef, error) {
		if newGUID == "" || newName == "" {
			return typedef.TypeDef{}, ferr.New(ferr.NullParameter, "newTypeDefGUID", "reIdentifyTypeDef", r.serverName)
		}
		return r.delegate.ReIdentifyTypeDef(ctx, userID, guid, name, newGUID, newName)
	})
}

// ReIdentifyAttributeTypeDef assigns a new identifier and name to a
// registered attribute type definition.
func (r *LocalRepository) ReIdentifyAttributeTypeDef(ctx context.Context, userID, guid, name, newGUID, newName string) response.Response[typedef.AttributeTypeDef] {
	return mutate(r, ctx, "reIdentifyAttributeTypeDef", userID, guid, func() (typedef.AttributeTypeDef, error) {
		if newGUID == "" || newName == "" {
			return typedef.AttributeTypeDef{}, ferr.New(ferr.NullParameter, "newAttributeTypeDefGUID", "reIdentifyAttributeTypeDef", r.serverName)
		}
		return r.delegate.ReIdentifyAttributeTypeDef(ctx, userID, guid, name, newGUID, newName)
	})
}
