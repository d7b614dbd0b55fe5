package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"metarepo/pkg/collection"
	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/search"
	"metarepo/pkg/typedef"
)

const (
	testCollectionID = "collection-1"
	assetTypeGUID    = "typedef-asset"
	serverTypeGUID   = "typedef-server"
	linkTypeGUID     = "typedef-hosted-on"
	tagTypeGUID      = "typedef-tag"
	stringAttrGUID   = "attrdef-string"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testCollectionID, "Test Collection")
	var tick int64
	s.nowFn = func() time.Time {
		tick++
		return time.Unix(1_700_000_000, 0).Add(time.Duration(tick) * time.Second).UTC()
	}
	var seq int
	s.newGUID = func() string {
		seq++
		return fmt.Sprintf("guid-%03d", seq)
	}

	ctx := context.Background()
	if err := s.AddAttributeTypeDef(ctx, "admin", typedef.AttributeTypeDef{
		GUID:     stringAttrGUID,
		Name:     "string",
		Category: typedef.AttributePrimitive,
	}); err != nil {
		t.Fatalf("add attribute typedef: %v", err)
	}
	defs := []typedef.TypeDef{
		{
			GUID:     assetTypeGUID,
			Name:     "Asset",
			Category: typedef.CategoryEntityDef,
			Version:  1,
			Status:   typedef.StatusActive,
			Attributes: []typedef.TypeDefAttribute{
				{Name: "qualifiedName", TypeGUID: stringAttrGUID, TypeName: "string"},
				{Name: "displayName", TypeGUID: stringAttrGUID, TypeName: "string"},
			},
		},
		{
			GUID:      serverTypeGUID,
			Name:      "Server",
			Category:  typedef.CategoryEntityDef,
			Version:   1,
			Status:    typedef.StatusActive,
			SuperType: &typedef.Link{GUID: assetTypeGUID, Name: "Asset"},
			Attributes: []typedef.TypeDefAttribute{
				{Name: "hostname", TypeGUID: stringAttrGUID, TypeName: "string"},
			},
		},
		{
			GUID:     linkTypeGUID,
			Name:     "HostedOn",
			Category: typedef.CategoryRelationshipDef,
			Version:  1,
			Status:   typedef.StatusActive,
			EndDef1:  &typedef.EndDef{EntityType: typedef.Link{GUID: assetTypeGUID, Name: "Asset"}, AttributeName: "hosts"},
			EndDef2:  &typedef.EndDef{EntityType: typedef.Link{GUID: assetTypeGUID, Name: "Asset"}, AttributeName: "hostedOn"},
		},
		{
			GUID:            tagTypeGUID,
			Name:            "Confidential",
			Category:        typedef.CategoryClassificationDef,
			Version:         1,
			Status:          typedef.StatusActive,
			ValidEntityDefs: []typedef.Link{{GUID: assetTypeGUID, Name: "Asset"}},
			Attributes: []typedef.TypeDefAttribute{
				{Name: "level", TypeGUID: stringAttrGUID, TypeName: "string"},
			},
		},
	}
	for _, def := range defs {
		if err := s.AddTypeDef(ctx, "admin", def); err != nil {
			t.Fatalf("add typedef %s: %v", def.Name, err)
		}
	}
	return s
}

func mustAddEntity(t *testing.T, s *Store, typeGUID, name string) instance.EntityDetail {
	t.Helper()
	props := properties.AddStringProperty(nil, "qualifiedName", name)
	entity, err := s.AddEntity(context.Background(), "alice", typeGUID, props, nil, "")
	if err != nil {
		t.Fatalf("add entity %s: %v", name, err)
	}
	return entity
}

func kindOf(t *testing.T, err error) ferr.Kind {
	t.Helper()
	kind, ok := ferr.KindOf(err)
	if !ok {
		t.Fatalf("expected a classified fault, got %v", err)
	}
	return kind
}

func TestAddEntityDefaultsAndVersioning(t *testing.T) {
	s := newTestStore(t)
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")

	if entity.Status != instance.StatusActive {
		t.Fatalf("expected active status, got %s", entity.Status)
	}
	if entity.Version != 1 {
		t.Fatalf("expected version 1, got %d", entity.Version)
	}
	if entity.MetadataCollectionID != testCollectionID {
		t.Fatalf("expected home collection %s, got %s", testCollectionID, entity.MetadataCollectionID)
	}

	updated, err := s.UpdateEntityProperties(context.Background(), "bob", entity.GUID,
		properties.AddStringProperty(nil, "displayName", "Asset One"))
	if err != nil {
		t.Fatalf("update properties: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2 after update, got %d", updated.Version)
	}
	if updated.UpdatedBy != "bob" {
		t.Fatalf("expected updatedBy bob, got %s", updated.UpdatedBy)
	}
}

func TestAddEntityRejectsUndeclaredProperty(t *testing.T) {
	s := newTestStore(t)
	props := properties.AddStringProperty(nil, "notDeclared", "x")
	_, err := s.AddEntity(context.Background(), "alice", assetTypeGUID, props, nil, "")
	if kindOf(t, err) != ferr.KindPropertyError {
		t.Fatalf("expected property fault, got %v", err)
	}
}

func TestAddEntityRejectsDeletedInitialStatus(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddEntity(context.Background(), "alice", assetTypeGUID, nil, nil, instance.StatusDeleted)
	if kindOf(t, err) != ferr.KindStatusNotSupported {
		t.Fatalf("expected status fault, got %v", err)
	}
}

func TestEntityLifecycleDeleteRestorePurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")

	deleted, err := s.DeleteEntity(ctx, "alice", assetTypeGUID, "Asset", entity.GUID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Status != instance.StatusDeleted {
		t.Fatalf("expected deleted status, got %s", deleted.Status)
	}
	if deleted.StatusOnDelete != instance.StatusActive {
		t.Fatalf("expected statusOnDelete active, got %s", deleted.StatusOnDelete)
	}

	// Purge before restore requires the deleted state; restore first.
	restored, err := s.RestoreEntity(ctx, "alice", entity.GUID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status != instance.StatusActive {
		t.Fatalf("expected restored status active, got %s", restored.Status)
	}

	if err := s.PurgeEntity(ctx, "alice", assetTypeGUID, "Asset", entity.GUID); err == nil {
		t.Fatal("expected purge of a live entity to fail")
	} else if kindOf(t, err) != ferr.KindNotDeleted {
		t.Fatalf("expected not-deleted fault, got %v", err)
	}

	if _, err := s.DeleteEntity(ctx, "alice", assetTypeGUID, "Asset", entity.GUID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.PurgeEntity(ctx, "alice", assetTypeGUID, "Asset", entity.GUID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := s.EntityDetail(ctx, "alice", entity.GUID); err == nil {
		t.Fatal("expected purged entity to be unknown")
	} else if kindOf(t, err) != ferr.KindEntityNotKnown {
		t.Fatalf("expected entity-not-known fault, got %v", err)
	}
}

func TestDeleteEntityVerifiesType(t *testing.T) {
	s := newTestStore(t)
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")
	_, err := s.DeleteEntity(context.Background(), "alice", serverTypeGUID, "Server", entity.GUID)
	if kindOf(t, err) != ferr.KindInvalidInput {
		t.Fatalf("expected invalid-input fault on type mismatch, got %v", err)
	}
}

func TestUndoEntityUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")

	if _, err := s.UpdateEntityProperties(ctx, "bob", entity.GUID,
		properties.AddStringProperty(nil, "displayName", "changed")); err != nil {
		t.Fatalf("update: %v", err)
	}
	undone, err := s.UndoEntityUpdate(ctx, "carol", entity.GUID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone.Properties != nil {
		if _, ok := undone.Properties.Get("displayName"); ok {
			t.Fatal("expected displayName removed by undo")
		}
	}
	if undone.Version <= 2 {
		t.Fatalf("undo must advance the version, got %d", undone.Version)
	}

	// With no prior revision left the undo is a no-op.
	again, err := s.UndoEntityUpdate(ctx, "carol", entity.GUID)
	if err != nil {
		t.Fatalf("second undo: %v", err)
	}
	if again.Version != undone.Version {
		t.Fatalf("expected no-op undo to keep version %d, got %d", undone.Version, again.Version)
	}
}

func TestEntityDetailAsOfTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")
	created := entity.UpdateTime

	if _, err := s.UpdateEntityProperties(ctx, "bob", entity.GUID,
		properties.AddStringProperty(nil, "displayName", "later")); err != nil {
		t.Fatalf("update: %v", err)
	}

	old, err := s.EntityDetailAsOfTime(ctx, "alice", entity.GUID, created)
	if err != nil {
		t.Fatalf("as-of: %v", err)
	}
	if _, ok := old.Properties.Get("displayName"); ok {
		t.Fatal("expected historical revision without displayName")
	}

	if _, err := s.EntityDetailAsOfTime(ctx, "alice", entity.GUID, created.Add(-time.Hour)); err == nil {
		t.Fatal("expected not-known before creation")
	}
}

func TestClassifyDeclassifyEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entity := mustAddEntity(t, s, assetTypeGUID, "asset-1")

	classified, err := s.ClassifyEntity(ctx, "alice", entity.GUID, "Confidential",
		properties.AddStringProperty(nil, "level", "high"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if _, ok := classified.ClassificationByName("Confidential"); !ok {
		t.Fatal("expected classification attached")
	}

	if _, err := s.ClassifyEntity(ctx, "alice", entity.GUID, "NoSuchClassification", nil); err == nil {
		t.Fatal("expected unknown classification to fail")
	}

	updated, err := s.UpdateEntityClassification(ctx, "bob", entity.GUID, "Confidential",
		properties.AddStringProperty(nil, "level", "low"))
	if err != nil {
		t.Fatalf("update classification: %v", err)
	}
	c, _ := updated.ClassificationByName("Confidential")
	level, err := properties.GetStringProperty("test", c.Properties, "level", "TestClassify")
	if err != nil || level != "low" {
		t.Fatalf("expected level low, got %q err %v", level, err)
	}

	declassified, err := s.DeclassifyEntity(ctx, "alice", entity.GUID, "Confidential")
	if err != nil {
		t.Fatalf("declassify: %v", err)
	}
	if _, ok := declassified.ClassificationByName("Confidential"); ok {
		t.Fatal("expected classification removed")
	}
}

func TestClassificationOnSubtypeOfValidEntityDef(t *testing.T) {
	s := newTestStore(t)
	entity := mustAddEntity(t, s, serverTypeGUID, "server-1")
	// Server inherits Asset, which Confidential declares valid.
	if _, err := s.ClassifyEntity(context.Background(), "alice", entity.GUID, "Confidential", nil); err != nil {
		t.Fatalf("classify subtype: %v", err)
	}
}

func TestAddRelationshipResolvesEndsAsProxies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	one := mustAddEntity(t, s, assetTypeGUID, "asset-1")
	two := mustAddEntity(t, s, serverTypeGUID, "server-1")

	rel, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, one.GUID, two.GUID, "")
	if err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	if rel.EntityOne == nil || rel.EntityOne.GUID != one.GUID {
		t.Fatalf("expected end one %s", one.GUID)
	}
	if rel.EntityTwo == nil || rel.EntityTwo.GUID != two.GUID {
		t.Fatalf("expected end two %s", two.GUID)
	}

	if _, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, one.GUID, "missing", ""); err == nil {
		t.Fatal("expected unknown end to fail")
	}
}

func TestRelationshipLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	one := mustAddEntity(t, s, assetTypeGUID, "asset-1")
	two := mustAddEntity(t, s, assetTypeGUID, "asset-2")
	rel, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, one.GUID, two.GUID, "")
	if err != nil {
		t.Fatalf("add relationship: %v", err)
	}

	deleted, err := s.DeleteRelationship(ctx, "alice", linkTypeGUID, "HostedOn", rel.GUID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Status != instance.StatusDeleted {
		t.Fatalf("expected deleted, got %s", deleted.Status)
	}

	restored, err := s.RestoreRelationship(ctx, "alice", rel.GUID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status != instance.StatusActive {
		t.Fatalf("expected active after restore, got %s", restored.Status)
	}

	if _, err := s.DeleteRelationship(ctx, "alice", linkTypeGUID, "HostedOn", rel.GUID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.PurgeRelationship(ctx, "alice", linkTypeGUID, "HostedOn", rel.GUID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := s.Relationship(ctx, "alice", rel.GUID); err == nil {
		t.Fatal("expected purged relationship unknown")
	}
}

func TestFindEntitiesByPropertyValuePagingAndSubtypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mustAddEntity(t, s, assetTypeGUID, fmt.Sprintf("shared-%d", i))
	}
	mustAddEntity(t, s, serverTypeGUID, "shared-server")
	mustAddEntity(t, s, assetTypeGUID, "other")

	// The Asset type filter admits Server instances via the supertype walk.
	all, err := s.FindEntitiesByPropertyValue(ctx, "alice", assetTypeGUID, "shared",
		collection.PageRequest{SequencingOrder: collection.SequenceGUID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(all))
	}

	page, err := s.FindEntitiesByPropertyValue(ctx, "alice", assetTypeGUID, "shared",
		collection.PageRequest{Offset: 1, PageSize: 2, SequencingOrder: collection.SequenceGUID})
	if err != nil {
		t.Fatalf("paged find: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].GUID != all[1].GUID || page[1].GUID != all[2].GUID {
		t.Fatal("expected page to window the sequenced results")
	}

	empty, err := s.FindEntitiesByPropertyValue(ctx, "alice", assetTypeGUID, "shared",
		collection.PageRequest{Offset: 100, PageSize: 2})
	if err != nil {
		t.Fatalf("offset beyond end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestFindEntitiesByPropertyPredicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAddEntity(t, s, assetTypeGUID, "alpha")
	mustAddEntity(t, s, assetTypeGUID, "beta")

	pred := search.Build(properties.AddStringProperty(nil, "qualifiedName", "alp"), search.MatchAll)
	got, err := s.FindEntitiesByProperty(ctx, "alice", "", pred, collection.PageRequest{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}

	none := search.Build(properties.AddStringProperty(nil, "qualifiedName", "alp"), search.MatchNone)
	got, err = s.FindEntitiesByProperty(ctx, "alice", "", none, collection.PageRequest{})
	if err != nil {
		t.Fatalf("find none: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the non-matching entity, got %d", len(got))
	}
}

func TestStatusFilterExcludesDeletedByDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	keep := mustAddEntity(t, s, assetTypeGUID, "shared-live")
	gone := mustAddEntity(t, s, assetTypeGUID, "shared-dead")
	if _, err := s.DeleteEntity(ctx, "alice", assetTypeGUID, "Asset", gone.GUID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.FindEntitiesByPropertyValue(ctx, "alice", "", "shared", collection.PageRequest{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].GUID != keep.GUID {
		t.Fatalf("expected only the live entity, got %d", len(got))
	}

	withDeleted, err := s.FindEntitiesByPropertyValue(ctx, "alice", "", "shared",
		collection.PageRequest{StatusFilter: []instance.Status{instance.StatusActive, instance.StatusDeleted}})
	if err != nil {
		t.Fatalf("find with filter: %v", err)
	}
	if len(withDeleted) != 2 {
		t.Fatalf("expected both entities, got %d", len(withDeleted))
	}
}

func TestLinkingEntitiesFindsPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddEntity(t, s, assetTypeGUID, "a")
	b := mustAddEntity(t, s, assetTypeGUID, "b")
	c := mustAddEntity(t, s, assetTypeGUID, "c")
	d := mustAddEntity(t, s, assetTypeGUID, "d")
	if _, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, a.GUID, b.GUID, ""); err != nil {
		t.Fatalf("link a-b: %v", err)
	}
	if _, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, b.GUID, c.GUID, ""); err != nil {
		t.Fatalf("link b-c: %v", err)
	}

	graph, err := s.LinkingEntities(ctx, "alice", a.GUID, c.GUID, nil)
	if err != nil {
		t.Fatalf("linking: %v", err)
	}
	if len(graph.Entities) != 3 || len(graph.Relationships) != 2 {
		t.Fatalf("expected 3 entities and 2 relationships, got %d/%d",
			len(graph.Entities), len(graph.Relationships))
	}

	disconnected, err := s.LinkingEntities(ctx, "alice", a.GUID, d.GUID, nil)
	if err != nil {
		t.Fatalf("disconnected: %v", err)
	}
	if len(disconnected.Entities) != 0 {
		t.Fatalf("expected empty graph for unreachable end, got %d entities", len(disconnected.Entities))
	}
}

func TestEntityNeighborhoodBoundedByLevel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddEntity(t, s, assetTypeGUID, "a")
	b := mustAddEntity(t, s, assetTypeGUID, "b")
	c := mustAddEntity(t, s, assetTypeGUID, "c")
	if _, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, a.GUID, b.GUID, ""); err != nil {
		t.Fatalf("link a-b: %v", err)
	}
	if _, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, b.GUID, c.GUID, ""); err != nil {
		t.Fatalf("link b-c: %v", err)
	}

	graph, err := s.EntityNeighborhood(ctx, "alice", a.GUID, nil, nil, nil, 1)
	if err != nil {
		t.Fatalf("neighborhood: %v", err)
	}
	if len(graph.Entities) != 2 {
		t.Fatalf("expected 2 entities at level 1, got %d", len(graph.Entities))
	}

	full, err := s.EntityNeighborhood(ctx, "alice", a.GUID, nil, nil, nil, -1)
	if err != nil {
		t.Fatalf("unbounded neighborhood: %v", err)
	}
	if len(full.Entities) != 3 {
		t.Fatalf("expected 3 entities unbounded, got %d", len(full.Entities))
	}
}

func TestReIdentifyEntityRewritesRelationshipEnds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddEntity(t, s, assetTypeGUID, "a")
	b := mustAddEntity(t, s, assetTypeGUID, "b")
	rel, err := s.AddRelationship(ctx, "alice", linkTypeGUID, nil, a.GUID, b.GUID, "")
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	moved, err := s.ReIdentifyEntity(ctx, "alice", assetTypeGUID, "Asset", a.GUID, "guid-new")
	if err != nil {
		t.Fatalf("re-identify: %v", err)
	}
	if moved.GUID != "guid-new" {
		t.Fatalf("expected new guid, got %s", moved.GUID)
	}
	if _, err := s.EntityDetail(ctx, "alice", a.GUID); err == nil {
		t.Fatal("expected old guid unknown")
	}
	got, err := s.Relationship(ctx, "alice", rel.GUID)
	if err != nil {
		t.Fatalf("get relationship: %v", err)
	}
	if got.EntityOne.GUID != "guid-new" {
		t.Fatalf("expected relationship end rewritten, got %s", got.EntityOne.GUID)
	}
}

func TestSaveEntityReferenceCopyRejectsLocalHome(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	local := mustAddEntity(t, s, assetTypeGUID, "local")

	copyOfLocal := local.Clone()
	err := s.SaveEntityReferenceCopy(ctx, "alice", copyOfLocal)
	if kindOf(t, err) != ferr.KindHomeOwnership {
		t.Fatalf("expected home ownership fault, got %v", err)
	}
}

func TestSaveAndPurgeEntityReferenceCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	remote := instance.EntityDetail{
		EntitySummary: instance.EntitySummary{
			Header: instance.Header{
				GUID:                 "remote-1",
				Type:                 instance.TypeRef{GUID: assetTypeGUID, Name: "Asset", Version: 1},
				Status:               instance.StatusActive,
				Version:              4,
				MetadataCollectionID: "collection-remote",
				Provenance:           instance.ProvenanceLocalCohort,
			},
		},
		Properties: properties.AddStringProperty(nil, "qualifiedName", "remote"),
	}
	if err := s.SaveEntityReferenceCopy(ctx, "alice", remote); err != nil {
		t.Fatalf("save reference copy: %v", err)
	}
	got, err := s.EntityDetail(ctx, "alice", "remote-1")
	if err != nil {
		t.Fatalf("get reference copy: %v", err)
	}
	if got.MetadataCollectionID != "collection-remote" {
		t.Fatalf("expected remote home preserved, got %s", got.MetadataCollectionID)
	}

	// Purging with the wrong claimed home is a conflict.
	err = s.PurgeEntityReferenceCopy(ctx, "alice", "remote-1", assetTypeGUID, "Asset", "collection-other")
	if kindOf(t, err) != ferr.KindHomeOwnership {
		t.Fatalf("expected home ownership fault, got %v", err)
	}

	if err := s.PurgeEntityReferenceCopy(ctx, "alice", "remote-1", assetTypeGUID, "Asset", "collection-remote"); err != nil {
		t.Fatalf("purge reference copy: %v", err)
	}
	if _, err := s.EntityDetail(ctx, "alice", "remote-1"); err == nil {
		t.Fatal("expected reference copy gone")
	}
}

func TestPurgeReferenceCopyOfLocalEntityFails(t *testing.T) {
	s := newTestStore(t)
	local := mustAddEntity(t, s, assetTypeGUID, "local")
	err := s.PurgeEntityReferenceCopy(context.Background(), "alice", local.GUID, assetTypeGUID, "Asset", testCollectionID)
	if kindOf(t, err) != ferr.KindHomeOwnership {
		t.Fatalf("expected home ownership fault, got %v", err)
	}
}

func TestCommitHookReceivesSnapshot(t *testing.T) {
	s := newTestStore(t)
	var snapshots int
	s.SetCommitHook(func(snap Snapshot) error {
		snapshots++
		return nil
	})
	mustAddEntity(t, s, assetTypeGUID, "a")
	if snapshots != 1 {
		t.Fatalf("expected 1 snapshot, got %d", snapshots)
	}

	s.SetCommitHook(func(Snapshot) error { return errors.New("disk full") })
	if _, err := s.AddEntity(context.Background(), "alice", assetTypeGUID, nil, nil, ""); err == nil {
		t.Fatal("expected commit hook failure to surface")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	entity := mustAddEntity(t, s, assetTypeGUID, "a")

	snap := s.ExportState()
	fresh := NewStore(testCollectionID, "Test Collection")
	fresh.ImportState(snap)

	got, err := fresh.EntityDetail(context.Background(), "alice", entity.GUID)
	if err != nil {
		t.Fatalf("reloaded entity: %v", err)
	}
	if got.GUID != entity.GUID {
		t.Fatalf("expected %s, got %s", entity.GUID, got.GUID)
	}
	if _, err := fresh.TypeDefByGUID(context.Background(), "alice", assetTypeGUID); err != nil {
		t.Fatalf("reloaded typedef: %v", err)
	}
}
