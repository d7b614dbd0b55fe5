package typedef

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/pkg/ferr"
)

func baseEntityDef() TypeDef {
	return TypeDef{
		GUID:     "typedef-asset",
		Name:     "Asset",
		Category: CategoryEntityDef,
		Version:  2,
		Status:   StatusActive,
		Attributes: []TypeDefAttribute{
			{Name: "qualifiedName", TypeGUID: "attrdef-string", TypeName: "string"},
			{Name: "displayName", TypeGUID: "attrdef-string", TypeName: "string"},
		},
	}
}

func basePatch() *Patch {
	return &Patch{
		TypeDefGUID:     "typedef-asset",
		TypeName:        "Asset",
		ApplyToVersion:  2,
		UpdateToVersion: 3,
		NewVersionName:  "1.3",
		UpdatedBy:       "admin",
		UpdateTime:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestValidatePatchNil(t *testing.T) {
	err := ValidatePatch(nil)
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindInvalidInput, kind)
}

func TestValidatePatchVersionOrder(t *testing.T) {
	patch := basePatch()
	patch.UpdateToVersion = patch.ApplyToVersion
	err := ValidatePatch(patch)
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindPatchError, kind)
}

func TestValidatePatchMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Patch)
	}{
		{"newVersionName", func(p *Patch) { p.NewVersionName = "" }},
		{"updatedBy", func(p *Patch) { p.UpdatedBy = "" }},
		{"updateTime", func(p *Patch) { p.UpdateTime = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch := basePatch()
			tc.mutate(patch)
			err := ValidatePatch(patch)
			require.Error(t, err)
			fault := ferr.AsFault(err)
			require.NotNil(t, fault)
			assert.Equal(t, ferr.KindPatchError, fault.Kind)
			assert.Contains(t, fault.Message, tc.name)
		})
	}
}

func TestApplyPatchUpdatesHeaderAndFields(t *testing.T) {
	original := baseEntityDef()
	patch := basePatch()
	desc := "A managed asset"
	status := StatusDeprecated
	patch.Description = &desc
	patch.Status = &status

	updated, err := ApplyPatch(&original, patch)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Version)
	assert.Equal(t, "1.3", updated.VersionName)
	assert.Equal(t, "admin", updated.UpdatedBy)
	assert.Equal(t, patch.UpdateTime, updated.UpdateTime)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, StatusDeprecated, updated.Status)

	// Fields the patch never set stay as they were.
	assert.Equal(t, original.Attributes, updated.Attributes)
	assert.Equal(t, int64(2), original.Version)
}

func TestApplyPatchRedeliveredIsIdempotent(t *testing.T) {
	original := baseEntityDef()
	patch := basePatch()
	patch.ApplyToVersion = 1
	patch.UpdateToVersion = 2

	updated, err := ApplyPatch(&original, patch)
	require.NoError(t, err)
	assert.Equal(t, original, updated)
}

func TestApplyPatchFutureVersionFails(t *testing.T) {
	original := baseEntityDef()
	patch := basePatch()
	patch.ApplyToVersion = 5
	patch.UpdateToVersion = 6

	_, err := ApplyPatch(&original, patch)
	require.Error(t, err)
	fault := ferr.AsFault(err)
	require.NotNil(t, fault)
	assert.Equal(t, ferr.KindPatchError, fault.Kind)
	assert.Equal(t, "METAREPO-400-012", fault.MessageID)
}

func TestApplyPatchMergesAttributes(t *testing.T) {
	original := baseEntityDef()
	patch := basePatch()
	patch.Attributes = []TypeDefAttribute{
		{Name: "displayName", TypeGUID: "attrdef-string", TypeName: "string", Description: "shown in catalogs"},
		{Name: "zone", TypeGUID: "attrdef-string", TypeName: "string"},
	}

	updated, err := ApplyPatch(&original, patch)
	require.NoError(t, err)
	require.Len(t, updated.Attributes, 3)
	assert.Equal(t, "qualifiedName", updated.Attributes[0].Name)
	assert.Equal(t, "displayName", updated.Attributes[1].Name)
	assert.Equal(t, "shown in catalogs", updated.Attributes[1].Description)
	assert.Equal(t, "zone", updated.Attributes[2].Name)
}

func TestApplyPatchRejectsAttributeTypeChange(t *testing.T) {
	original := baseEntityDef()
	patch := basePatch()
	patch.Attributes = []TypeDefAttribute{
		{Name: "displayName", TypeGUID: "attrdef-int", TypeName: "int"},
	}

	_, err := ApplyPatch(&original, patch)
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindPatchError, kind)
}

func TestApplyPatchNilOriginal(t *testing.T) {
	_, err := ApplyPatch(nil, basePatch())
	require.Error(t, err)
	kind, ok := ferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ferr.KindInvalidInput, kind)
}

func TestApplyPatchRelationshipEnds(t *testing.T) {
	original := TypeDef{
		GUID:     "typedef-hosted-on",
		Name:     "HostedOn",
		Category: CategoryRelationshipDef,
		Version:  1,
		Status:   StatusActive,
		EndDef1:  &EndDef{EntityType: Link{GUID: "typedef-asset", Name: "Asset"}, AttributeName: "hosts"},
		EndDef2:  &EndDef{EntityType: Link{GUID: "typedef-asset", Name: "Asset"}, AttributeName: "hostedOn"},
	}
	patch := basePatch()
	patch.TypeDefGUID = original.GUID
	patch.TypeName = original.Name
	patch.ApplyToVersion = 1
	patch.UpdateToVersion = 2
	patch.EndDef2 = &EndDef{EntityType: Link{GUID: "typedef-server", Name: "Server"}, AttributeName: "hostedOn"}

	updated, err := ApplyPatch(&original, patch)
	require.NoError(t, err)
	assert.Equal(t, "hosts", updated.EndDef1.AttributeName)
	assert.Equal(t, "typedef-server", updated.EndDef2.EntityType.GUID)
	// The shared end definition is copied, not aliased.
	patch.EndDef2.AttributeName = "mutated"
	assert.Equal(t, "hostedOn", updated.EndDef2.AttributeName)
}
