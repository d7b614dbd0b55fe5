package typedef

import (
	"strconv"
	"time"

	"metarepo/pkg/ferr"
)

// Patch describes an incremental change to a type definition. A patch
// applies only to the exact version it names, so cohort members that
// receive the same patch more than once converge instead of diverging.
type Patch struct {
	TypeDefGUID     string    `json:"type_def_guid"`
	TypeName        string    `json:"type_name"`
	ApplyToVersion  int64     `json:"apply_to_version"`
	UpdateToVersion int64     `json:"update_to_version"`
	NewVersionName  string    `json:"new_version_name"`
	UpdatedBy       string    `json:"updated_by"`
	UpdateTime      time.Time `json:"update_time"`

	Status                   *Status                   `json:"status,omitempty"`
	Description              *string                   `json:"description,omitempty"`
	DescriptionGUID          *string                   `json:"description_guid,omitempty"`
	SuperType                *Link                     `json:"super_type,omitempty"`
	Attributes               []TypeDefAttribute        `json:"attributes,omitempty"`
	Options                  map[string]string         `json:"options,omitempty"`
	ExternalStandardMappings []ExternalStandardMapping `json:"external_standard_mappings,omitempty"`
	ValidInstanceStatuses    []InstanceStatus          `json:"valid_instance_statuses,omitempty"`
	InitialStatus            *InstanceStatus           `json:"initial_status,omitempty"`
	EndDef1                  *EndDef                   `json:"end_def_1,omitempty"`
	EndDef2                  *EndDef                   `json:"end_def_2,omitempty"`
	ValidEntityDefs          []Link                    `json:"valid_entity_defs,omitempty"`
}

// ValidatePatch checks the mandatory patch fields. It fails with an
// invalid-input fault for a nil patch and a patch fault for bad version
// ordering or missing mandatory fields.
func ValidatePatch(patch *Patch) error {
	if patch == nil {
		return ferr.New(ferr.NullPatch, "ValidatePatch")
	}
	if patch.UpdateToVersion <= patch.ApplyToVersion {
		return ferr.New(ferr.PatchVersionOrder, patch.TypeName,
			strconv.FormatInt(patch.UpdateToVersion, 10),
			strconv.FormatInt(patch.ApplyToVersion, 10))
	}
	if patch.NewVersionName == "" {
		return ferr.New(ferr.PatchMissingField, patch.TypeName, "newVersionName")
	}
	if patch.UpdatedBy == "" {
		return ferr.New(ferr.PatchMissingField, patch.TypeName, "updatedBy")
	}
	if patch.UpdateTime.IsZero() {
		return ferr.New(ferr.PatchMissingField, patch.TypeName, "updateTime")
	}
	return nil
}

// ApplyPatch produces the next version of a type definition. Patches
// delivered more than once (applyToVersion behind the current version)
// return the original unchanged; patches that target a future version fail
// because intermediate patches are missing. An existing attribute's
// declared type never changes across a patch.
func ApplyPatch(original *TypeDef, patch *Patch) (TypeDef, error) {
	if err := ValidatePatch(patch); err != nil {
		return TypeDef{}, err
	}
	if original == nil {
		return TypeDef{}, ferr.New(ferr.NullParameter, "originalTypeDef", "ApplyPatch", "typedef")
	}
	if patch.ApplyToVersion < original.Version {
		// Duplicate re-broadcast in the cohort; already applied.
		return original.Clone(), nil
	}
	if patch.ApplyToVersion > original.Version {
		return TypeDef{}, ferr.New(ferr.PatchFutureVersion,
			strconv.FormatInt(patch.ApplyToVersion, 10),
			original.Name,
			strconv.FormatInt(original.Version, 10))
	}

	updated := original.Clone()
	updated.Version = patch.UpdateToVersion
	updated.VersionName = patch.NewVersionName
	updated.UpdatedBy = patch.UpdatedBy
	updated.UpdateTime = patch.UpdateTime

	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.DescriptionGUID != nil {
		updated.DescriptionGUID = *patch.DescriptionGUID
	}
	if patch.SuperType != nil {
		st := *patch.SuperType
		updated.SuperType = &st
	}
	if patch.Options != nil {
		updated.Options = make(map[string]string, len(patch.Options))
		for k, v := range patch.Options {
			updated.Options[k] = v
		}
	}
	if patch.ExternalStandardMappings != nil {
		updated.ExternalStandardMappings = append([]ExternalStandardMapping(nil), patch.ExternalStandardMappings...)
	}
	if patch.ValidInstanceStatuses != nil {
		updated.ValidInstanceStatuses = append([]InstanceStatus(nil), patch.ValidInstanceStatuses...)
	}
	if patch.InitialStatus != nil {
		updated.InitialStatus = *patch.InitialStatus
	}

	if patch.Attributes != nil {
		merged, err := mergeAttributes(original, patch)
		if err != nil {
			return TypeDef{}, err
		}
		updated.Attributes = merged
	}

	if original.Category == CategoryRelationshipDef {
		if patch.EndDef1 != nil {
			e := *patch.EndDef1
			updated.EndDef1 = &e
		}
		if patch.EndDef2 != nil {
			e := *patch.EndDef2
			updated.EndDef2 = &e
		}
	}
	if original.Category == CategoryClassificationDef && patch.ValidEntityDefs != nil {
		updated.ValidEntityDefs = append([]Link(nil), patch.ValidEntityDefs...)
	}

	return updated, nil
}

// mergeAttributes overlays patched attributes onto the existing set by
// name, preserving the original declaration order and appending genuinely
// new attributes in patch order.
func mergeAttributes(original *TypeDef, patch *Patch) ([]TypeDefAttribute, error) {
	existing := make(map[string]TypeDefAttribute, len(original.Attributes))
	for _, attr := range original.Attributes {
		existing[attr.Name] = attr
	}

	overlay := make(map[string]TypeDefAttribute, len(patch.Attributes))
	var added []TypeDefAttribute
	for _, attr := range patch.Attributes {
		if current, ok := existing[attr.Name]; ok {
			if current.TypeGUID != attr.TypeGUID || current.TypeName != attr.TypeName {
				return nil, ferr.New(ferr.PatchAttributeTypeChange, attr.Name, original.Name)
			}
			overlay[attr.Name] = attr
			continue
		}
		if _, dup := overlay[attr.Name]; !dup {
			overlay[attr.Name] = attr
			added = append(added, attr)
		}
	}

	merged := make([]TypeDefAttribute, 0, len(original.Attributes)+len(added))
	for _, attr := range original.Attributes {
		if patched, ok := overlay[attr.Name]; ok {
			merged = append(merged, patched)
			continue
		}
		merged = append(merged, attr)
	}
	merged = append(merged, added...)
	return merged, nil
}
