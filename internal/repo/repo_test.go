package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/internal/audit"
	"metarepo/internal/infra/persistence/memory"
	"metarepo/pkg/collection"
	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/typedef"
)

const (
	testCollectionID = "collection-1"
	assetTypeGUID    = "typedef-asset"
	stringAttrGUID   = "attrdef-string"
)

type staticMembership struct {
	known map[string]string
}

func (m staticMembership) CollectionKnown(id string) (string, bool) {
	name, ok := m.known[id]
	return name, ok
}

func newTestRepository(t *testing.T, opts ...Option) *LocalRepository {
	t.Helper()
	store := memory.NewStore(testCollectionID, "Test Collection")
	r := NewLocalRepository("metarepo-test", store, opts...)

	ctx := context.Background()
	resp := r.AddAttributeTypeDef(ctx, "admin", typedef.AttributeTypeDef{
		GUID:     stringAttrGUID,
		Name:     "string",
		Category: typedef.AttributePrimitive,
	})
	require.False(t, resp.Failed(), "add attribute typedef: %s", resp.Message)
	resp = r.AddTypeDef(ctx, "admin", typedef.TypeDef{
		GUID:     assetTypeGUID,
		Name:     "Asset",
		Category: typedef.CategoryEntityDef,
		Version:  1,
		Status:   typedef.StatusActive,
		Attributes: []typedef.TypeDefAttribute{
			{Name: "qualifiedName", TypeGUID: stringAttrGUID, TypeName: "string"},
		},
	})
	require.False(t, resp.Failed(), "add typedef: %s", resp.Message)
	return r
}

func addAsset(t *testing.T, r *LocalRepository, name string) instance.EntityDetail {
	t.Helper()
	props := properties.AddStringProperty(nil, "qualifiedName", name)
	resp := r.AddEntity(context.Background(), "alice", assetTypeGUID, props, nil, "")
	require.False(t, resp.Failed(), "add entity %s: %s", name, resp.Message)
	return resp.Result
}

func TestGuardRejectsAnonymousCaller(t *testing.T) {
	r := newTestRepository(t)
	resp := r.GetAllTypes(context.Background(), "")

	require.True(t, resp.Failed())
	assert.Equal(t, ferr.KindUserNotAuthorized, resp.ErrorKind)
	assert.Equal(t, 401, resp.RelatedStatusCode)
}

func TestGuardRejectsMissingDelegate(t *testing.T) {
	r := NewLocalRepository("metarepo-test", nil)
	resp := r.GetEntityDetail(context.Background(), "alice", "guid-1")

	require.True(t, resp.Failed())
	assert.Equal(t, ferr.KindRepositoryError, resp.ErrorKind)
	assert.Equal(t, "METAREPO-500-001", resp.MessageID)
}

func TestMetadataCollectionIDPassthrough(t *testing.T) {
	r := newTestRepository(t)
	resp := r.MetadataCollectionID(context.Background(), "alice")

	require.False(t, resp.Failed())
	assert.Equal(t, testCollectionID, resp.Result)
	assert.Equal(t, "metarepo-test", r.ServerName())
}

func TestPagedRejectsNegativeOffset(t *testing.T) {
	r := newTestRepository(t)
	resp := r.FindEntitiesByPropertyValue(context.Background(), "alice", "", "asset",
		collection.PageRequest{Offset: -1, PageSize: 10})

	require.True(t, resp.Failed())
	assert.Equal(t, ferr.KindPagingError, resp.ErrorKind)
	assert.Equal(t, 400, resp.RelatedStatusCode)
	assert.Nil(t, resp.Results)
}

func TestNextPageURLOnExactlyFullPage(t *testing.T) {
	r := newTestRepository(t, WithPageURLBase("https://metarepo.example/api/v1"))
	for _, name := range []string{"asset-1", "asset-2", "asset-3"} {
		addAsset(t, r, name)
	}

	ctx := context.Background()
	first := r.FindEntitiesByPropertyValue(ctx, "alice", "", "asset",
		collection.PageRequest{Offset: 0, PageSize: 2})
	require.False(t, first.Failed())
	require.Len(t, first.Results, 2)
	assert.Contains(t, first.NextPageURL, "https://metarepo.example/api/v1/findEntitiesByPropertyValue")
	assert.Contains(t, first.NextPageURL, "offset=2")
	assert.Contains(t, first.NextPageURL, "pageSize=2")

	second := r.FindEntitiesByPropertyValue(ctx, "alice", "", "asset",
		collection.PageRequest{Offset: 2, PageSize: 2})
	require.False(t, second.Failed())
	require.Len(t, second.Results, 1)
	assert.Empty(t, second.NextPageURL, "a short page ends the traversal")
}

func TestNextPageURLRequiresBase(t *testing.T) {
	r := newTestRepository(t)
	addAsset(t, r, "asset-1")
	addAsset(t, r, "asset-2")

	resp := r.FindEntitiesByPropertyValue(context.Background(), "alice", "", "asset",
		collection.PageRequest{Offset: 0, PageSize: 2})
	require.False(t, resp.Failed())
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.NextPageURL)
}

func TestMutationsRecordAuditActions(t *testing.T) {
	sink := &audit.MemorySink{}
	r := newTestRepository(t, WithAuditSink(sink))
	entity := addAsset(t, r, "asset-1")

	resp := r.DeleteEntity(context.Background(), "alice", assetTypeGUID, "Asset", entity.GUID)
	require.False(t, resp.Failed())

	var actions []audit.Event
	for _, event := range sink.Events() {
		if event.Severity == audit.SeverityAction {
			actions = append(actions, event)
		}
	}
	require.NotEmpty(t, actions)
	last := actions[len(actions)-1]
	assert.Equal(t, "deleteEntity", last.Operation)
	assert.Equal(t, "alice", last.UserID)
	assert.Equal(t, entity.GUID, last.GUID)
	assert.False(t, last.Time.IsZero())
}

func TestFailuresRecordAuditErrors(t *testing.T) {
	sink := &audit.MemorySink{}
	r := newTestRepository(t, WithAuditSink(sink))

	resp := r.GetEntityDetail(context.Background(), "alice", "no-such-guid")
	require.True(t, resp.Failed())

	events := sink.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, audit.SeverityError, last.Severity)
	assert.Equal(t, "getEntityDetail", last.Operation)
	assert.Equal(t, resp.MessageID, last.MessageID)
}

func TestUnknownHomeReferenceCopyIsNoted(t *testing.T) {
	sink := &audit.MemorySink{}
	membership := staticMembership{known: map[string]string{"collection-remote": "production"}}
	r := newTestRepository(t, WithAuditSink(sink), WithMembershipView(membership))

	copyFrom := func(guid, home string) instance.EntityDetail {
		return instance.EntityDetail{
			EntitySummary: instance.EntitySummary{Header: instance.Header{
				GUID:                 guid,
				Type:                 instance.TypeRef{GUID: assetTypeGUID, Name: "Asset", Version: 1},
				Status:               instance.StatusActive,
				Version:              1,
				MetadataCollectionID: home,
				CreateTime:           time.Now().UTC(),
			}},
			Properties: properties.AddStringProperty(nil, "qualifiedName", guid),
		}
	}

	ctx := context.Background()
	resp := r.SaveEntityReferenceCopy(ctx, "alice", copyFrom("remote-1", "collection-remote"))
	require.False(t, resp.Failed())
	for _, event := range sink.Events() {
		assert.NotEqual(t, audit.SeverityInfo, event.Severity, "known home must not be flagged")
	}

	resp = r.SaveEntityReferenceCopy(ctx, "alice", copyFrom("stray-1", "collection-unregistered"))
	require.False(t, resp.Failed(), "unknown home is suspicious, not invalid")
	var noted bool
	for _, event := range sink.Events() {
		if event.Severity == audit.SeverityInfo && event.GUID == "stray-1" {
			noted = true
			assert.Contains(t, event.Detail, "collection-unregistered")
		}
	}
	assert.True(t, noted)
}

func TestUpdateTypeDefAppliesPatch(t *testing.T) {
	r := newTestRepository(t)
	desc := "A managed asset"
	resp := r.UpdateTypeDef(context.Background(), "admin", &typedef.Patch{
		TypeDefGUID:     assetTypeGUID,
		TypeName:        "Asset",
		ApplyToVersion:  1,
		UpdateToVersion: 2,
		NewVersionName:  "1.2",
		UpdatedBy:       "admin",
		UpdateTime:      time.Now().UTC(),
		Description:     &desc,
	})

	require.False(t, resp.Failed(), "update typedef: %s", resp.Message)
	assert.Equal(t, int64(2), resp.Result.Version)
	assert.Equal(t, desc, resp.Result.Description)

	fetched := r.GetTypeDefByGUID(context.Background(), "admin", assetTypeGUID)
	require.False(t, fetched.Failed())
	assert.Equal(t, int64(2), fetched.Result.Version)
}
