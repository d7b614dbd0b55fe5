package memory

import (
	"context"
	"sort"
	"strings"

	"metarepo/pkg/ferr"
	"metarepo/pkg/typedef"
)

// AllTypes returns every registered type and attribute type definition.
func (s *Store) AllTypes(_ context.Context, _ string) (typedef.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var gallery typedef.Gallery
	for _, def := range s.state.typeDefs {
		gallery.TypeDefs = append(gallery.TypeDefs, def.Clone())
	}
	for _, def := range s.state.attrDefs {
		gallery.AttributeTypeDefs = append(gallery.AttributeTypeDefs, def)
	}
	sort.Slice(gallery.TypeDefs, func(i, j int) bool {
		return gallery.TypeDefs[i].Name < gallery.TypeDefs[j].Name
	})
	sort.Slice(gallery.AttributeTypeDefs, func(i, j int) bool {
		return gallery.AttributeTypeDefs[i].Name < gallery.AttributeTypeDefs[j].Name
	})
	return gallery, nil
}

// TypeDefByGUID returns the identified type definition.
func (s *Store) TypeDefByGUID(_ context.Context, _ string, guid string) (typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.state.typeDefs[guid]
	if !ok {
		return typedef.TypeDef{}, ferr.New(ferr.TypeDefNotKnown, guid)
	}
	return def.Clone(), nil
}

// TypeDefByName returns the named type definition.
func (s *Store) TypeDefByName(_ context.Context, _ string, name string) (typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.typeDefByNameLocked(name)
	if !ok {
		return typedef.TypeDef{}, ferr.New(ferr.TypeDefNotKnown, name)
	}
	return def.Clone(), nil
}

func (s *Store) typeDefByNameLocked(name string) (typedef.TypeDef, bool) {
	for _, def := range s.state.typeDefs {
		if def.Name == name {
			return def, true
		}
	}
	return typedef.TypeDef{}, false
}

// AttributeTypeDefByGUID returns the identified attribute type definition.
func (s *Store) AttributeTypeDefByGUID(_ context.Context, _ string, guid string) (typedef.AttributeTypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.state.attrDefs[guid]
	if !ok {
		return typedef.AttributeTypeDef{}, ferr.New(ferr.TypeDefNotKnown, guid)
	}
	return def, nil
}

// AttributeTypeDefByName returns the named attribute type definition.
func (s *Store) AttributeTypeDefByName(_ context.Context, _ string, name string) (typedef.AttributeTypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, def := range s.state.attrDefs {
		if def.Name == name {
			return def, nil
		}
	}
	return typedef.AttributeTypeDef{}, ferr.New(ferr.TypeDefNotKnown, name)
}

// TypeDefsByCategory returns the type definitions of one category.
func (s *Store) TypeDefsByCategory(_ context.Context, _ string, category typedef.Category) ([]typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []typedef.TypeDef
	for _, def := range s.state.typeDefs {
		if def.Category == category {
			out = append(out, def.Clone())
		}
	}
	sortTypeDefs(out)
	return out, nil
}

// AttributeTypeDefsByCategory returns attribute type definitions of one
// category.
func (s *Store) AttributeTypeDefsByCategory(_ context.Context, _ string, category typedef.AttributeCategory) ([]typedef.AttributeTypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []typedef.AttributeTypeDef
	for _, def := range s.state.attrDefs {
		if def.Category == category {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TypeDefsByProperty returns types that declare every named attribute.
func (s *Store) TypeDefsByProperty(_ context.Context, _ string, propertyNames []string) ([]typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []typedef.TypeDef
	for _, def := range s.state.typeDefs {
		all := true
		for _, name := range propertyNames {
			if _, ok := def.AttributeByName(name); !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, def.Clone())
		}
	}
	sortTypeDefs(out)
	return out, nil
}

// TypeDefsByExternalID returns types mapped to the supplied external
// standard identifier. Empty filter fields match anything.
func (s *Store) TypeDefsByExternalID(_ context.Context, _ string, standard, organization, identifier string) ([]typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []typedef.TypeDef
	for _, def := range s.state.typeDefs {
		for _, m := range def.ExternalStandardMappings {
			if (standard == "" || m.StandardName == standard) &&
				(organization == "" || m.StandardOrganization == organization) &&
				(identifier == "" || m.StandardTypeName == identifier) {
				out = append(out, def.Clone())
				break
			}
		}
	}
	sortTypeDefs(out)
	return out, nil
}

// SearchTypeDefs returns types whose name or description contains the
// search criteria.
func (s *Store) SearchTypeDefs(_ context.Context, _ string, searchCriteria string) ([]typedef.TypeDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []typedef.TypeDef
	for _, def := range s.state.typeDefs {
		if strings.Contains(def.Name, searchCriteria) || strings.Contains(def.Description, searchCriteria) {
			out = append(out, def.Clone())
		}
	}
	sortTypeDefs(out)
	return out, nil
}

// AddTypeDef registers a new type definition. Registering an identifier or
// name that is already taken fails rather than overwriting.
func (s *Store) AddTypeDef(_ context.Context, userID string, def typedef.TypeDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if def.GUID == "" {
		return ferr.New(ferr.NullParameter, "typeDef.guid", "AddTypeDef", s.collectionID)
	}
	if def.Name == "" {
		return ferr.New(ferr.NullParameter, "typeDef.name", "AddTypeDef", s.collectionID)
	}
	if existing, ok := s.state.typeDefs[def.GUID]; ok {
		return ferr.New(ferr.TypeDefAlreadyKnown, existing.Name, def.GUID)
	}
	if existing, ok := s.typeDefByNameLocked(def.Name); ok {
		return ferr.New(ferr.TypeDefConflict, existing.Name)
	}
	stored := def.Clone()
	if stored.Version == 0 {
		stored.Version = 1
	}
	if stored.VersionName == "" {
		stored.VersionName = "1.0"
	}
	if stored.Status == "" {
		stored.Status = typedef.StatusActive
	}
	stored.CreatedBy = userID
	stored.CreateTime = s.nowFn()
	s.state.typeDefs[stored.GUID] = stored
	return s.commit()
}

// AddAttributeTypeDef registers a new attribute type definition.
func (s *Store) AddAttributeTypeDef(_ context.Context, _ string, def typedef.AttributeTypeDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if def.GUID == "" || def.Name == "" {
		return ferr.New(ferr.NullParameter, "attributeTypeDef", "AddAttributeTypeDef", s.collectionID)
	}
	if existing, ok := s.state.attrDefs[def.GUID]; ok {
		return ferr.New(ferr.TypeDefAlreadyKnown, existing.Name, def.GUID)
	}
	s.state.attrDefs[def.GUID] = def
	return s.commit()
}

// VerifyTypeDef reports whether the supplied definition is already known
// and matching. Unknown returns false; known with a clashing shape fails
// with a conflict.
func (s *Store) VerifyTypeDef(_ context.Context, _ string, def typedef.TypeDef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.state.typeDefs[def.GUID]
	if !ok {
		return false, nil
	}
	if existing.Name != def.Name || existing.Category != def.Category {
		return false, ferr.New(ferr.TypeDefConflict, def.Name)
	}
	return true, nil
}

// VerifyAttributeTypeDef reports whether the attribute type is already
// known and matching.
func (s *Store) VerifyAttributeTypeDef(_ context.Context, _ string, def typedef.AttributeTypeDef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.state.attrDefs[def.GUID]
	if !ok {
		return false, nil
	}
	if existing.Name != def.Name || existing.Category != def.Category {
		return false, ferr.New(ferr.TypeDefConflict, def.Name)
	}
	return true, nil
}

// UpdateTypeDef applies a patch to the stored type definition and returns
// the resulting version.
func (s *Store) UpdateTypeDef(_ context.Context, _ string, patch *typedef.Patch) (typedef.TypeDef, error) {
	if err := typedef.ValidatePatch(patch); err != nil {
		return typedef.TypeDef{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.state.typeDefs[patch.TypeDefGUID]
	if !ok {
		if byName, found := s.typeDefByNameLocked(patch.TypeName); found {
			current = byName
		} else {
			return typedef.TypeDef{}, ferr.New(ferr.TypeDefNotKnown, patch.TypeName)
		}
	}
	updated, err := typedef.ApplyPatch(&current, patch)
	if err != nil {
		return typedef.TypeDef{}, err
	}
	s.state.typeDefs[updated.GUID] = updated.Clone()
	if err := s.commit(); err != nil {
		return typedef.TypeDef{}, err
	}
	return updated, nil
}

// DeleteTypeDef removes a type definition. Deleting a type that still has
// instances fails.
func (s *Store) DeleteTypeDef(_ context.Context, _ string, guid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.typeDefs[guid]
	if !ok {
		return ferr.New(ferr.TypeDefNotKnown, name)
	}
	if def.Name != name {
		return ferr.New(ferr.TypeGUIDMismatch, guid, name, def.Name)
	}
	if s.typeInUseLocked(guid) {
		return ferr.New(ferr.TypeDefInUse, name)
	}
	delete(s.state.typeDefs, guid)
	return s.commit()
}

// DeleteAttributeTypeDef removes an attribute type definition.
func (s *Store) DeleteAttributeTypeDef(_ context.Context, _ string, guid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.attrDefs[guid]
	if !ok {
		return ferr.New(ferr.TypeDefNotKnown, name)
	}
	if def.Name != name {
		return ferr.New(ferr.TypeGUIDMismatch, guid, name, def.Name)
	}
	delete(s.state.attrDefs, guid)
	return s.commit()
}

// ReIdentifyTypeDef remaps a type definition's guid and name, rewriting
// the type references carried by its instances.
func (s *Store) ReIdentifyTypeDef(_ context.Context, _ string, guid, name, newGUID, newName string) (typedef.TypeDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.typeDefs[guid]
	if !ok {
		return typedef.TypeDef{}, ferr.New(ferr.TypeDefNotKnown, name)
	}
	if def.Name != name {
		return typedef.TypeDef{}, ferr.New(ferr.TypeGUIDMismatch, guid, name, def.Name)
	}
	if _, clash := s.state.typeDefs[newGUID]; clash && newGUID != guid {
		return typedef.TypeDef{}, ferr.New(ferr.TypeDefConflict, newName)
	}
	updated := def.Clone()
	updated.GUID = newGUID
	updated.Name = newName
	delete(s.state.typeDefs, guid)
	s.state.typeDefs[newGUID] = updated
	for _, rec := range s.state.entities {
		if rec.Current.Type.GUID == guid {
			rec.Current.Type.GUID = newGUID
			rec.Current.Type.Name = newName
		}
	}
	for _, rec := range s.state.relationships {
		if rec.Current.Type.GUID == guid {
			rec.Current.Type.GUID = newGUID
			rec.Current.Type.Name = newName
		}
	}
	if err := s.commit(); err != nil {
		return typedef.TypeDef{}, err
	}
	return updated.Clone(), nil
}

// ReIdentifyAttributeTypeDef remaps an attribute type definition's
// identity.
func (s *Store) ReIdentifyAttributeTypeDef(_ context.Context, _ string, guid, name, newGUID, newName string) (typedef.AttributeTypeDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.state.attrDefs[guid]
	if !ok {
		return typedef.AttributeTypeDef{}, ferr.New(ferr.TypeDefNotKnown, name)
	}
	if def.Name != name {
		return typedef.AttributeTypeDef{}, ferr.New(ferr.TypeGUIDMismatch, guid, name, def.Name)
	}
	def.GUID = newGUID
	def.Name = newName
	delete(s.state.attrDefs, guid)
	s.state.attrDefs[newGUID] = def
	if err := s.commit(); err != nil {
		return typedef.AttributeTypeDef{}, err
	}
	return def, nil
}

func (s *Store) typeInUseLocked(typeGUID string) bool {
	for _, rec := range s.state.entities {
		if rec.Current.Type.GUID == typeGUID {
			return true
		}
	}
	for _, rec := range s.state.relationships {
		if rec.Current.Type.GUID == typeGUID {
			return true
		}
		for _, c := range rec.Current.EntityOne.Classifications {
			if c.Type.GUID == typeGUID {
				return true
			}
		}
	}
	for _, rec := range s.state.entities {
		for _, c := range rec.Current.Classifications {
			if c.Type.GUID == typeGUID {
				return true
			}
		}
	}
	return false
}

func sortTypeDefs(defs []typedef.TypeDef) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
}
