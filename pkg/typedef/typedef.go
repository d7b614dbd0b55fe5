// Package typedef defines the versioned type system of the metadata
// repository: type definitions for entities, relationships and
// classifications, attribute type definitions, and the patch protocol that
// evolves them safely across a cohort.
package typedef

import "time"

// Category identifies what kind of instance a type definition describes.
type Category string

// Type definition categories.
const (
	CategoryEntityDef         Category = "entity_def"
	CategoryRelationshipDef   Category = "relationship_def"
	CategoryClassificationDef Category = "classification_def"
)

// Status tracks a type definition through its governance lifecycle.
type Status string

// Type definition statuses.
const (
	StatusActive               Status = "active"
	StatusDeprecated           Status = "deprecated"
	StatusRenamed              Status = "renamed"
	StatusDeletedTypeAvailable Status = "deleted"
)

// InstanceStatus enumerates the lifecycle states an instance of a type may
// occupy. It lives here because type definitions declare which statuses
// their instances support.
type InstanceStatus string

// Instance lifecycle states. Deleted is reachable only from Active and is
// reversible via restore; purge is terminal and leaves no record.
const (
	StatusProposed       InstanceStatus = "proposed"
	StatusDraft          InstanceStatus = "draft"
	StatusActiveInstance InstanceStatus = "active"
	StatusDeleted        InstanceStatus = "deleted"
	StatusUnknown        InstanceStatus = "unknown"
)

// AttributeCategory identifies the shape of an attribute type.
type AttributeCategory string

// Attribute type categories.
const (
	AttributePrimitive  AttributeCategory = "primitive"
	AttributeCollection AttributeCategory = "collection"
	AttributeEnum       AttributeCategory = "enum_def"
)

// AttributeTypeDef describes a reusable attribute type (a primitive kind,
// a collection shape, or an enumeration).
type AttributeTypeDef struct {
	GUID        string            `json:"guid"`
	Name        string            `json:"name"`
	Category    AttributeCategory `json:"category"`
	Description string            `json:"description,omitempty"`
	// EnumElements lists the symbols of an enum attribute type.
	EnumElements []EnumElement `json:"enum_elements,omitempty"`
}

// EnumElement is one symbol of an enum attribute type.
type EnumElement struct {
	Ordinal     int    `json:"ordinal"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// TypeDefAttribute declares one named attribute of a type definition.
// Attribute names are unique within a type; the attribute's declared type
// never changes across patches.
type TypeDefAttribute struct {
	Name         string `json:"name"`
	TypeGUID     string `json:"type_guid"`
	TypeName     string `json:"type_name"`
	Description  string `json:"description,omitempty"`
	Cardinality  string `json:"cardinality,omitempty"`
	ValuesMin    int    `json:"values_min,omitempty"`
	ValuesMax    int    `json:"values_max,omitempty"`
	Indexable    bool   `json:"indexable,omitempty"`
	Unique       bool   `json:"unique,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// Link references another type definition by identity.
type Link struct {
	GUID   string `json:"guid"`
	Name   string `json:"name"`
	Status Status `json:"status,omitempty"`
}

// EndDef describes one end of a relationship type: the entity type the end
// attaches to and how the end is named from that entity's perspective.
type EndDef struct {
	EntityType           Link   `json:"entity_type"`
	AttributeName        string `json:"attribute_name"`
	AttributeDescription string `json:"attribute_description,omitempty"`
	Cardinality          string `json:"cardinality,omitempty"`
}

// ExternalStandardMapping records equivalence with a type in an external
// standard.
type ExternalStandardMapping struct {
	StandardName         string `json:"standard_name"`
	StandardOrganization string `json:"standard_organization,omitempty"`
	StandardTypeName     string `json:"standard_type_name"`
}

// TypeDef is a named, versioned schema definition for an entity,
// relationship or classification type. It is created whole and mutated
// only through patch application; it is never deleted while instances of
// it exist.
type TypeDef struct {
	GUID                     string                    `json:"guid"`
	Name                     string                    `json:"name"`
	Category                 Category                  `json:"category"`
	Version                  int64                     `json:"version"`
	VersionName              string                    `json:"version_name"`
	Status                   Status                    `json:"status"`
	Description              string                    `json:"description,omitempty"`
	DescriptionGUID          string                    `json:"description_guid,omitempty"`
	SuperType                *Link                     `json:"super_type,omitempty"`
	Attributes               []TypeDefAttribute        `json:"attributes,omitempty"`
	Options                  map[string]string         `json:"options,omitempty"`
	ExternalStandardMappings []ExternalStandardMapping `json:"external_standard_mappings,omitempty"`
	ValidInstanceStatuses    []InstanceStatus          `json:"valid_instance_statuses,omitempty"`
	InitialStatus            InstanceStatus            `json:"initial_status,omitempty"`
	CreatedBy                string                    `json:"created_by,omitempty"`
	UpdatedBy                string                    `json:"updated_by,omitempty"`
	CreateTime               time.Time                 `json:"create_time,omitempty"`
	UpdateTime               time.Time                 `json:"update_time,omitempty"`

	// Relationship types carry exactly two end definitions.
	EndDef1 *EndDef `json:"end_def_1,omitempty"`
	EndDef2 *EndDef `json:"end_def_2,omitempty"`
	// Classification types list the entity types they may attach to.
	ValidEntityDefs []Link `json:"valid_entity_defs,omitempty"`
}

// Gallery bundles attribute type definitions and type definitions for bulk
// registration.
type Gallery struct {
	AttributeTypeDefs []AttributeTypeDef `json:"attribute_type_defs,omitempty"`
	TypeDefs          []TypeDef          `json:"type_defs,omitempty"`
}

// Clone deep-copies a type definition.
func (t TypeDef) Clone() TypeDef {
	cp := t
	if t.SuperType != nil {
		st := *t.SuperType
		cp.SuperType = &st
	}
	cp.Attributes = append([]TypeDefAttribute(nil), t.Attributes...)
	if t.Options != nil {
		cp.Options = make(map[string]string, len(t.Options))
		for k, v := range t.Options {
			cp.Options[k] = v
		}
	}
	cp.ExternalStandardMappings = append([]ExternalStandardMapping(nil), t.ExternalStandardMappings...)
	cp.ValidInstanceStatuses = append([]InstanceStatus(nil), t.ValidInstanceStatuses...)
	if t.EndDef1 != nil {
		e := *t.EndDef1
		cp.EndDef1 = &e
	}
	if t.EndDef2 != nil {
		e := *t.EndDef2
		cp.EndDef2 = &e
	}
	cp.ValidEntityDefs = append([]Link(nil), t.ValidEntityDefs...)
	return cp
}

// AttributeByName returns the named attribute definition, if present.
func (t TypeDef) AttributeByName(name string) (TypeDefAttribute, bool) {
	for _, attr := range t.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return TypeDefAttribute{}, false
}

// SupportsStatus reports whether instances of this type may occupy the
// supplied lifecycle state. An empty valid-status list admits every state.
func (t TypeDef) SupportsStatus(status InstanceStatus) bool {
	if len(t.ValidInstanceStatuses) == 0 {
		return true
	}
	for _, s := range t.ValidInstanceStatuses {
		if s == status {
			return true
		}
	}
	return false
}
