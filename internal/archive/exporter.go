package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"metarepo/pkg/instance"
)

const manifestContentType = "application/json"

// Manifest wraps an exported instance graph with provenance detail so an
// archive can be inspected or reloaded without the source repository.
type Manifest struct {
	ArchiveID            string         `json:"archiveID"`
	MetadataCollectionID string         `json:"metadataCollectionID"`
	CreatedBy            string         `json:"createdBy"`
	CreateTime           time.Time      `json:"createTime"`
	EntityCount          int            `json:"entityCount"`
	RelationshipCount    int            `json:"relationshipCount"`
	Graph                instance.Graph `json:"graph"`
}

// Exporter serialises instance graphs into an artifact store and reads
// them back.
type Exporter struct {
	store        Store
	collectionID string
	newID        func() string
	nowFn        func() time.Time
}

// NewExporter returns an Exporter writing archives for the given
// metadata collection.
func NewExporter(store Store, collectionID string) *Exporter {
	return &Exporter{
		store:        store,
		collectionID: collectionID,
		newID:        uuid.NewString,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

func (e *Exporter) keyFor(archiveID string) string {
	return fmt.Sprintf("archives/%s/%s.json", e.collectionID, archiveID)
}

// Export writes the graph as a new JSON artifact and returns its
// descriptor. Archive keys are namespaced by collection id.
func (e *Exporter) Export(ctx context.Context, userID string, graph instance.Graph) (Info, error) {
	manifest := Manifest{
		ArchiveID:            e.newID(),
		MetadataCollectionID: e.collectionID,
		CreatedBy:            userID,
		CreateTime:           e.nowFn(),
		EntityCount:          len(graph.Entities),
		RelationshipCount:    len(graph.Relationships),
		Graph:                graph,
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Info{}, err
	}
	opts := PutOptions{
		ContentType: manifestContentType,
		Metadata: map[string]string{
			"archive-id":         manifest.ArchiveID,
			"collection-id":      e.collectionID,
			"entity-count":       strconv.Itoa(manifest.EntityCount),
			"relationship-count": strconv.Itoa(manifest.RelationshipCount),
		},
	}
	return e.store.Put(ctx, e.keyFor(manifest.ArchiveID), bytes.NewReader(raw), opts)
}

// Load reads an archive back by id.
func (e *Exporter) Load(ctx context.Context, archiveID string) (Manifest, error) {
	_, rc, err := e.store.Get(ctx, e.keyFor(archiveID))
	if err != nil {
		return Manifest{}, err
	}
	defer rc.Close()
	var manifest Manifest
	if err := json.NewDecoder(rc).Decode(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode archive %s: %w", archiveID, err)
	}
	return manifest, nil
}

// List returns descriptors for every archive of this collection.
func (e *Exporter) List(ctx context.Context) ([]Info, error) {
	return e.store.List(ctx, fmt.Sprintf("archives/%s/", e.collectionID))
}

// Delete removes an archive, reporting whether it existed.
func (e *Exporter) Delete(ctx context.Context, archiveID string) (bool, error) {
	return e.store.Delete(ctx, e.keyFor(archiveID))
}
