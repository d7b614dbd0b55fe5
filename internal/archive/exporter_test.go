package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
)

func newTestExporter() (*Exporter, *MemoryStore) {
	store := NewMemoryStore()
	e := NewExporter(store, "collection-1")
	var seq int
	e.newID = func() string {
		seq++
		return fmt.Sprintf("archive-%03d", seq)
	}
	e.nowFn = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e, store
}

func sampleGraph() instance.Graph {
	return instance.Graph{
		Entities: []instance.EntityDetail{
			{
				EntitySummary: instance.EntitySummary{Header: instance.Header{
					GUID:                 "guid-1",
					Type:                 instance.TypeRef{GUID: "typedef-asset", Name: "Asset", Version: 1},
					Status:               instance.StatusActive,
					Version:              1,
					MetadataCollectionID: "collection-1",
				}},
				Properties: properties.AddStringProperty(nil, "qualifiedName", "asset-1"),
			},
		},
	}
}

func TestExportLoadRoundTrip(t *testing.T) {
	e, _ := newTestExporter()
	ctx := context.Background()

	info, err := e.Export(ctx, "alice", sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, "archives/collection-1/archive-001.json", info.Key)
	assert.Equal(t, "application/json", info.ContentType)
	assert.Equal(t, "archive-001", info.Metadata["archive-id"])
	assert.Equal(t, "1", info.Metadata["entity-count"])
	assert.Equal(t, "0", info.Metadata["relationship-count"])

	manifest, err := e.Load(ctx, "archive-001")
	require.NoError(t, err)
	assert.Equal(t, "archive-001", manifest.ArchiveID)
	assert.Equal(t, "collection-1", manifest.MetadataCollectionID)
	assert.Equal(t, "alice", manifest.CreatedBy)
	assert.Equal(t, 1, manifest.EntityCount)
	require.Len(t, manifest.Graph.Entities, 1)
	assert.Equal(t, "guid-1", manifest.Graph.Entities[0].GUID)

	name, err := properties.GetStringProperty("test", manifest.Graph.Entities[0].Properties,
		"qualifiedName", "TestExportLoadRoundTrip")
	require.NoError(t, err)
	assert.Equal(t, "asset-1", name)
}

func TestListScopedToCollection(t *testing.T) {
	e, store := newTestExporter()
	ctx := context.Background()

	_, err := e.Export(ctx, "alice", sampleGraph())
	require.NoError(t, err)
	_, err = e.Export(ctx, "alice", instance.Graph{})
	require.NoError(t, err)

	other := NewExporter(store, "collection-2")
	_, err = other.Export(ctx, "bob", instance.Graph{})
	require.NoError(t, err)

	infos, err := e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2, "archives of other collections are not listed")
}

func TestDeleteReportsExistence(t *testing.T) {
	e, _ := newTestExporter()
	ctx := context.Background()

	_, err := e.Export(ctx, "alice", sampleGraph())
	require.NoError(t, err)

	existed, err := e.Delete(ctx, "archive-001")
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = e.Load(ctx, "archive-001")
	assert.Error(t, err)

	existed, err = e.Delete(ctx, "archive-001")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestExportedArchivesAreImmutable(t *testing.T) {
	e, store := newTestExporter()
	ctx := context.Background()

	info, err := e.Export(ctx, "alice", sampleGraph())
	require.NoError(t, err)

	_, err = store.Put(ctx, info.Key, nil, PutOptions{})
	assert.Error(t, err)
}
