package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/pkg/properties"
)

func sampleDetail() EntityDetail {
	return EntityDetail{
		EntitySummary: EntitySummary{
			Header: Header{
				GUID:                 "guid-1",
				Type:                 TypeRef{GUID: "typedef-asset", Name: "Asset", Version: 1},
				Status:               StatusActive,
				Version:              2,
				MetadataCollectionID: "collection-1",
			},
			Classifications: []Classification{{
				Name:       "Confidential",
				Type:       TypeRef{GUID: "typedef-tag", Name: "Confidential", Version: 1},
				Properties: properties.AddStringProperty(nil, "level", "high"),
			}},
		},
		Properties: properties.AddStringProperty(nil, "qualifiedName", "asset-1"),
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := sampleDetail()
	cp := original.Clone()

	cp.Properties.Set("qualifiedName", properties.PrimitiveValue{
		Kind: properties.PrimitiveString, Value: "mutated",
	})
	cp.Classifications[0].Properties.Set("level", properties.PrimitiveValue{
		Kind: properties.PrimitiveString, Value: "low",
	})
	cp.GUID = "guid-2"

	name, err := properties.GetStringProperty("test", original.Properties, "qualifiedName", "TestCloneIsDeep")
	require.NoError(t, err)
	assert.Equal(t, "asset-1", name)
	level, err := properties.GetStringProperty("test", original.Classifications[0].Properties, "level", "TestCloneIsDeep")
	require.NoError(t, err)
	assert.Equal(t, "high", level)
	assert.Equal(t, "guid-1", original.GUID)
}

func TestProxyDropsFullProperties(t *testing.T) {
	detail := sampleDetail()
	proxy := detail.Proxy()

	assert.Equal(t, detail.GUID, proxy.GUID)
	assert.Equal(t, detail.Type, proxy.Type)
	require.Len(t, proxy.Classifications, 1)
	assert.Nil(t, proxy.UniqueProperties)
}

func TestClassificationByName(t *testing.T) {
	summary := sampleDetail().EntitySummary

	c, ok := summary.ClassificationByName("Confidential")
	require.True(t, ok)
	assert.Equal(t, "Confidential", c.Name)

	_, ok = summary.ClassificationByName("Public")
	assert.False(t, ok)
}

func TestValidTransition(t *testing.T) {
	assert.True(t, ValidTransition(StatusProposed, StatusDraft))
	assert.True(t, ValidTransition(StatusProposed, StatusActive))
	assert.True(t, ValidTransition(StatusDraft, StatusActive))

	assert.False(t, ValidTransition(StatusDraft, StatusProposed), "no moving backwards")
	assert.False(t, ValidTransition(StatusActive, StatusDraft))
	assert.False(t, ValidTransition(StatusActive, StatusDeleted), "deletion has its own operation")
	assert.False(t, ValidTransition(StatusDeleted, StatusActive), "restore has its own operation")
	assert.False(t, ValidTransition(StatusUnknown, StatusActive))
}

func TestRelationshipCloneCopiesEnds(t *testing.T) {
	detailOne := sampleDetail()
	detailTwo := sampleDetail()
	detailTwo.GUID = "guid-2"

	rel := Relationship{
		Header:     Header{GUID: "rel-1", Type: TypeRef{GUID: "typedef-hosted-on", Name: "HostedOn"}},
		Properties: properties.AddStringProperty(nil, "since", "2024"),
		EntityOne:  detailOne.Proxy(),
		EntityTwo:  detailTwo.Proxy(),
	}

	cp := rel.Clone()
	cp.EntityOne.GUID = "mutated"
	assert.Equal(t, "guid-1", rel.EntityOne.GUID)
	assert.NotSame(t, rel.EntityTwo, cp.EntityTwo)
}
