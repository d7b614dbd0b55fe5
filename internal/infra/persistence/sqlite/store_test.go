package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"metarepo/pkg/properties"
	"metarepo/pkg/typedef"
)

const (
	testCollectionID = "collection-1"
	assetTypeGUID    = "typedef-asset"
	stringAttrGUID   = "attrdef-string"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, testCollectionID, "Test Collection")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedAssetType(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.AddAttributeTypeDef(ctx, "admin", typedef.AttributeTypeDef{
		GUID:     stringAttrGUID,
		Name:     "string",
		Category: typedef.AttributePrimitive,
	}); err != nil {
		t.Fatalf("add attribute typedef: %v", err)
	}
	if err := s.AddTypeDef(ctx, "admin", typedef.TypeDef{
		GUID:     assetTypeGUID,
		Name:     "Asset",
		Category: typedef.CategoryEntityDef,
		Version:  1,
		Status:   typedef.StatusActive,
		Attributes: []typedef.TypeDefAttribute{
			{Name: "qualifiedName", TypeGUID: stringAttrGUID, TypeName: "string"},
		},
	}); err != nil {
		t.Fatalf("add typedef: %v", err)
	}
}

func TestStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metarepo.db")
	ctx := context.Background()

	first := openTestStore(t, path)
	seedAssetType(t, first)
	props := properties.AddStringProperty(nil, "qualifiedName", "asset-1")
	created, err := first.AddEntity(ctx, "alice", assetTypeGUID, props, nil, "")
	if err != nil {
		t.Fatalf("add entity: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := openTestStore(t, path)
	def, err := second.TypeDefByGUID(ctx, "alice", assetTypeGUID)
	if err != nil {
		t.Fatalf("typedef after reload: %v", err)
	}
	if def.Name != "Asset" {
		t.Fatalf("reloaded typedef name = %q, want Asset", def.Name)
	}
	entity, err := second.EntityDetail(ctx, "alice", created.GUID)
	if err != nil {
		t.Fatalf("entity after reload: %v", err)
	}
	got, err := properties.GetStringProperty("test", entity.Properties, "qualifiedName", "TestStorePersistAndReload")
	if err != nil {
		t.Fatalf("read property: %v", err)
	}
	if got != "asset-1" {
		t.Fatalf("reloaded qualifiedName = %q, want asset-1", got)
	}
	if entity.Version != created.Version {
		t.Fatalf("reloaded version = %d, want %d", entity.Version, created.Version)
	}
	if second.MetadataCollectionID() != testCollectionID {
		t.Fatalf("collection id = %q, want %q", second.MetadataCollectionID(), testCollectionID)
	}
}

func TestStoreCreatesStateTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metarepo.db")
	s := openTestStore(t, path)

	var name string
	err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'state'`).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "state" {
		t.Fatalf("table name = %q, want state", name)
	}
}

func TestStoreSnapshotsEveryBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metarepo.db")
	s := openTestStore(t, path)
	seedAssetType(t, s)

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if count != len(buckets) {
		t.Fatalf("state rows = %d, want %d", count, len(buckets))
	}
}
