// Package collection defines the contract a local metadata collection
// implements: the instance and type storage operations the repository
// facade delegates to. Implementations raise faults from pkg/ferr rather
// than generic errors so the facade can map failures one to one into
// response envelopes.
package collection

import (
	"context"
	"time"

	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/search"
	"metarepo/pkg/typedef"
)

// SequencingOrder controls the ordering of paged query results.
type SequencingOrder string

// Sequencing orders.
const (
	SequenceGUID             SequencingOrder = "guid"
	SequenceCreateTimeRecent SequencingOrder = "create_recent"
	SequenceCreateTimeOldest SequencingOrder = "create_oldest"
	SequenceUpdateTimeRecent SequencingOrder = "update_recent"
	SequenceUpdateTimeOldest SequencingOrder = "update_oldest"
	SequenceProperty         SequencingOrder = "property"
)

// PageRequest carries the paging, filtering and sequencing detail shared by
// every query operation. A zero PageSize means unbounded. A zero AsOfTime
// queries current state.
type PageRequest struct {
	Offset             int
	PageSize           int
	StatusFilter       []instance.Status
	SequencingProperty string
	SequencingOrder    SequencingOrder
	AsOfTime           time.Time
}

// AdmitsStatus reports whether the request's status filter admits the
// supplied state. An empty filter admits every state except deleted, so
// soft-deleted instances only surface when explicitly requested.
func (p PageRequest) AdmitsStatus(status instance.Status) bool {
	if len(p.StatusFilter) == 0 {
		return status != instance.StatusDeleted
	}
	for _, s := range p.StatusFilter {
		if s == status {
			return true
		}
	}
	return false
}

// TypeStore covers type definition storage and the patch protocol.
type TypeStore interface {
	AllTypes(ctx context.Context, userID string) (typedef.Gallery, error)
	TypeDefByGUID(ctx context.Context, userID, guid string) (typedef.TypeDef, error)
	TypeDefByName(ctx context.Context, userID, name string) (typedef.TypeDef, error)
	AttributeTypeDefByGUID(ctx context.Context, userID, guid string) (typedef.AttributeTypeDef, error)
	AttributeTypeDefByName(ctx context.Context, userID, name string) (typedef.AttributeTypeDef, error)
	TypeDefsByCategory(ctx context.Context, userID string, category typedef.Category) ([]typedef.TypeDef, error)
	AttributeTypeDefsByCategory(ctx context.Context, userID string, category typedef.AttributeCategory) ([]typedef.AttributeTypeDef, error)
	TypeDefsByProperty(ctx context.Context, userID string, propertyNames []string) ([]typedef.TypeDef, error)
	TypeDefsByExternalID(ctx context.Context, userID, standard, organization, identifier string) ([]typedef.TypeDef, error)
	SearchTypeDefs(ctx context.Context, userID, searchCriteria string) ([]typedef.TypeDef, error)
	AddTypeDef(ctx context.Context, userID string, def typedef.TypeDef) error
	AddAttributeTypeDef(ctx context.Context, userID string, def typedef.AttributeTypeDef) error
	VerifyTypeDef(ctx context.Context, userID string, def typedef.TypeDef) (bool, error)
	VerifyAttributeTypeDef(ctx context.Context, userID string, def typedef.AttributeTypeDef) (bool, error)
	UpdateTypeDef(ctx context.Context, userID string, patch *typedef.Patch) (typedef.TypeDef, error)
	DeleteTypeDef(ctx context.Context, userID, guid, name string) error
	DeleteAttributeTypeDef(ctx context.Context, userID, guid, name string) error
	ReIdentifyTypeDef(ctx context.Context, userID, guid, name, newGUID, newName string) (typedef.TypeDef, error)
	ReIdentifyAttributeTypeDef(ctx context.Context, userID, guid, name, newGUID, newName string) (typedef.AttributeTypeDef, error)
}

// EntityStore covers entity retrieval, search and lifecycle mutation.
type EntityStore interface {
	IsEntityKnown(ctx context.Context, userID, guid string) (*instance.EntityDetail, error)
	EntitySummary(ctx context.Context, userID, guid string) (instance.EntitySummary, error)
	EntityDetail(ctx context.Context, userID, guid string) (instance.EntityDetail, error)
	EntityDetailAsOfTime(ctx context.Context, userID, guid string, asOfTime time.Time) (instance.EntityDetail, error)
	RelationshipsForEntity(ctx context.Context, userID, entityGUID, relationshipTypeGUID string, page PageRequest) ([]instance.Relationship, error)
	FindEntitiesByProperty(ctx context.Context, userID, typeGUID string, predicate search.Predicate, page PageRequest) ([]instance.EntityDetail, error)
	FindEntitiesByClassification(ctx context.Context, userID, typeGUID, classificationName string, predicate search.Predicate, page PageRequest) ([]instance.EntityDetail, error)
	FindEntitiesByPropertyValue(ctx context.Context, userID, typeGUID, searchValue string, page PageRequest) ([]instance.EntityDetail, error)
	LinkingEntities(ctx context.Context, userID, startGUID, endGUID string, statusFilter []instance.Status) (instance.Graph, error)
	EntityNeighborhood(ctx context.Context, userID, startGUID string, entityTypeGUIDs, relationshipTypeGUIDs []string, statusFilter []instance.Status, level int) (instance.Graph, error)
	AddEntity(ctx context.Context, userID, typeGUID string, props *properties.InstanceProperties, classifications []instance.Classification, initialStatus instance.Status) (instance.EntityDetail, error)
	AddEntityProxy(ctx context.Context, userID string, proxy *instance.EntityProxy) error
	UpdateEntityStatus(ctx context.Context, userID, guid string, status instance.Status) (instance.EntityDetail, error)
	UpdateEntityProperties(ctx context.Context, userID, guid string, props *properties.InstanceProperties) (instance.EntityDetail, error)
	UndoEntityUpdate(ctx context.Context, userID, guid string) (instance.EntityDetail, error)
	DeleteEntity(ctx context.Context, userID, typeGUID, typeName, guid string) (instance.EntityDetail, error)
	PurgeEntity(ctx context.Context, userID, typeGUID, typeName, guid string) error
	RestoreEntity(ctx context.Context, userID, guid string) (instance.EntityDetail, error)
	ClassifyEntity(ctx context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) (instance.EntityDetail, error)
	DeclassifyEntity(ctx context.Context, userID, guid, classificationName string) (instance.EntityDetail, error)
	UpdateEntityClassification(ctx context.Context, userID, guid, classificationName string, props *properties.InstanceProperties) (instance.EntityDetail, error)
	ReIdentifyEntity(ctx context.Context, userID, typeGUID, typeName, guid, newGUID string) (instance.EntityDetail, error)
	ReTypeEntity(ctx context.Context, userID, guid string, currentType, newType instance.TypeRef) (instance.EntityDetail, error)
	ReHomeEntity(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) (instance.EntityDetail, error)
}

// RelationshipStore covers relationship retrieval, search and mutation.
type RelationshipStore interface {
	IsRelationshipKnown(ctx context.Context, userID, guid string) (*instance.Relationship, error)
	Relationship(ctx context.Context, userID, guid string) (instance.Relationship, error)
	RelationshipAsOfTime(ctx context.Context, userID, guid string, asOfTime time.Time) (instance.Relationship, error)
	FindRelationshipsByProperty(ctx context.Context, userID, typeGUID string, predicate search.Predicate, page PageRequest) ([]instance.Relationship, error)
	FindRelationshipsByPropertyValue(ctx context.Context, userID, typeGUID, searchValue string, page PageRequest) ([]instance.Relationship, error)
	AddRelationship(ctx context.Context, userID, typeGUID string, props *properties.InstanceProperties, entityOneGUID, entityTwoGUID string, initialStatus instance.Status) (instance.Relationship, error)
	UpdateRelationshipStatus(ctx context.Context, userID, guid string, status instance.Status) (instance.Relationship, error)
	UpdateRelationshipProperties(ctx context.Context, userID, guid string, props *properties.InstanceProperties) (instance.Relationship, error)
	UndoRelationshipUpdate(ctx context.Context, userID, guid string) (instance.Relationship, error)
	DeleteRelationship(ctx context.Context, userID, typeGUID, typeName, guid string) (instance.Relationship, error)
	PurgeRelationship(ctx context.Context, userID, typeGUID, typeName, guid string) error
	RestoreRelationship(ctx context.Context, userID, guid string) (instance.Relationship, error)
	ReIdentifyRelationship(ctx context.Context, userID, typeGUID, typeName, guid, newGUID string) (instance.Relationship, error)
	ReTypeRelationship(ctx context.Context, userID, guid string, currentType, newType instance.TypeRef) (instance.Relationship, error)
	ReHomeRelationship(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID, newHomeCollectionID, newHomeCollectionName string) (instance.Relationship, error)
}

// ReferenceCopyStore covers federation: local persistence of instances
// homed in other repositories. These operations never block on network
// I/O; incoming copies are assumed to have already arrived.
type ReferenceCopyStore interface {
	SaveEntityReferenceCopy(ctx context.Context, userID string, entity instance.EntityDetail) error
	PurgeEntityReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) error
	RefreshEntityReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) error
	SaveRelationshipReferenceCopy(ctx context.Context, userID string, rel instance.Relationship) error
	PurgeRelationshipReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) error
	RefreshRelationshipReferenceCopy(ctx context.Context, userID, guid, typeGUID, typeName, homeCollectionID string) error
	SaveInstanceReferenceCopies(ctx context.Context, userID string, graph instance.Graph) error
}

// MetadataCollection is the full delegate contract the facade consumes.
type MetadataCollection interface {
	// MetadataCollectionID returns the unique identifier of this collection.
	MetadataCollectionID() string
	// MetadataCollectionName returns the optional display name.
	MetadataCollectionName() string
	TypeStore
	EntityStore
	RelationshipStore
	ReferenceCopyStore
}
