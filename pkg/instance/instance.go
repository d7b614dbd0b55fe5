// Package instance defines the concrete metadata instances managed by a
// repository: entities, relationships and classifications, each conforming
// to a type definition and carrying home-collection provenance and a
// monotonically increasing version.
package instance

import (
	"time"

	"metarepo/pkg/properties"
	"metarepo/pkg/typedef"
)

// Status is the lifecycle state of an instance.
type Status = typedef.InstanceStatus

// Lifecycle states re-exported for callers that only import this package.
const (
	StatusProposed = typedef.StatusProposed
	StatusDraft    = typedef.StatusDraft
	StatusActive   = typedef.StatusActiveInstance
	StatusDeleted  = typedef.StatusDeleted
	StatusUnknown  = typedef.StatusUnknown
)

// ProvenanceType records where an instance copy originated.
type ProvenanceType string

// Provenance types.
const (
	// ProvenanceLocalCohort marks an instance mastered by a cohort member.
	ProvenanceLocalCohort ProvenanceType = "local_cohort"
	// ProvenanceExportArchive marks an instance imported from an archive.
	ProvenanceExportArchive ProvenanceType = "export_archive"
	// ProvenanceExternalSource marks an instance mirrored from an external tool.
	ProvenanceExternalSource ProvenanceType = "external_source"
	ProvenanceUnknown        ProvenanceType = "unknown"
)

// TypeRef identifies the type definition an instance conforms to, pinned to
// the type version current when the instance was last written.
type TypeRef struct {
	GUID    string `json:"guid"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

// Header carries the control information common to every instance: its
// identity, type, lifecycle state, version and home metadata collection.
// Version strictly increases across every property, status or
// classification change so the previous revision is always identifiable.
type Header struct {
	GUID                   string         `json:"guid"`
	Type                   TypeRef        `json:"type"`
	Status                 Status         `json:"status"`
	Version                int64          `json:"version"`
	MetadataCollectionID   string         `json:"metadata_collection_id"`
	MetadataCollectionName string         `json:"metadata_collection_name,omitempty"`
	Provenance             ProvenanceType `json:"provenance,omitempty"`
	ReplicatedBy           string         `json:"replicated_by,omitempty"`
	InstanceURL            string         `json:"instance_url,omitempty"`
	CreatedBy              string         `json:"created_by,omitempty"`
	UpdatedBy              string         `json:"updated_by,omitempty"`
	CreateTime             time.Time      `json:"create_time,omitempty"`
	UpdateTime             time.Time      `json:"update_time,omitempty"`
	// StatusOnDelete remembers the state a soft-deleted instance held
	// before deletion so restore can put it back.
	StatusOnDelete Status `json:"status_on_delete,omitempty"`
}

// Classification attaches typed, named metadata to an entity. It has no
// guid of its own; it is identified by name within its entity.
type Classification struct {
	Name       string                         `json:"name"`
	Type       TypeRef                        `json:"type"`
	Status     Status                         `json:"status,omitempty"`
	Properties *properties.InstanceProperties `json:"properties,omitempty"`
	CreatedBy  string                         `json:"created_by,omitempty"`
	UpdatedBy  string                         `json:"updated_by,omitempty"`
	CreateTime time.Time                      `json:"create_time,omitempty"`
	UpdateTime time.Time                      `json:"update_time,omitempty"`
	Version    int64                          `json:"version,omitempty"`
}

// EntitySummary is the header-plus-classifications view of an entity.
type EntitySummary struct {
	Header
	Classifications []Classification `json:"classifications,omitempty"`
}

// EntityDetail is the full form of a locally stored entity.
type EntityDetail struct {
	EntitySummary
	Properties *properties.InstanceProperties `json:"properties,omitempty"`
}

// EntityProxy is a stand-in for an entity homed elsewhere, carrying just
// enough identity to serve as a relationship endpoint.
type EntityProxy struct {
	EntitySummary
	// UniqueProperties holds only the identifying properties of the entity.
	UniqueProperties *properties.InstanceProperties `json:"unique_properties,omitempty"`
}

// Relationship links exactly two entities, each referenced by proxy so the
// full entity need not be local.
type Relationship struct {
	Header
	Properties *properties.InstanceProperties `json:"properties,omitempty"`
	EntityOne  *EntityProxy                   `json:"entity_one"`
	EntityTwo  *EntityProxy                   `json:"entity_two"`
}

// Graph is a connected set of entities and relationships exchanged as a
// unit, for example during reference-copy federation or archive export.
type Graph struct {
	Entities      []EntityDetail `json:"entities,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Clone deep-copies a classification.
func (c Classification) Clone() Classification {
	cp := c
	cp.Properties = c.Properties.Clone()
	return cp
}

func cloneClassifications(in []Classification) []Classification {
	if in == nil {
		return nil
	}
	out := make([]Classification, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Clone deep-copies an entity summary.
func (e EntitySummary) Clone() EntitySummary {
	cp := e
	cp.Classifications = cloneClassifications(e.Classifications)
	return cp
}

// Clone deep-copies an entity detail.
func (e EntityDetail) Clone() EntityDetail {
	cp := e
	cp.EntitySummary = e.EntitySummary.Clone()
	cp.Properties = e.Properties.Clone()
	return cp
}

// Clone deep-copies an entity proxy.
func (e *EntityProxy) Clone() *EntityProxy {
	if e == nil {
		return nil
	}
	cp := *e
	cp.EntitySummary = e.EntitySummary.Clone()
	cp.UniqueProperties = e.UniqueProperties.Clone()
	return &cp
}

// Clone deep-copies a relationship.
func (r Relationship) Clone() Relationship {
	cp := r
	cp.Properties = r.Properties.Clone()
	cp.EntityOne = r.EntityOne.Clone()
	cp.EntityTwo = r.EntityTwo.Clone()
	return cp
}

// Proxy reduces an entity detail to its proxy form.
func (e EntityDetail) Proxy() *EntityProxy {
	return &EntityProxy{EntitySummary: e.EntitySummary.Clone()}
}

// ClassificationByName returns the named classification, if attached.
func (e EntitySummary) ClassificationByName(name string) (Classification, bool) {
	for _, c := range e.Classifications {
		if c.Name == name {
			return c, true
		}
	}
	return Classification{}, false
}

// ValidTransition reports whether an instance may move between two
// lifecycle states through updateStatus. Deletion and restore travel
// through their dedicated operations, not through status updates.
func ValidTransition(from, to Status) bool {
	if to == StatusDeleted {
		return false
	}
	switch from {
	case StatusProposed:
		return to == StatusDraft || to == StatusActive
	case StatusDraft:
		return to == StatusActive
	case StatusActive:
		return false
	case StatusDeleted:
		return false
	default:
		return false
	}
}
