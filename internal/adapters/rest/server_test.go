package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metarepo/internal/archive"
	"metarepo/internal/cohort"
	"metarepo/internal/infra/persistence/memory"
	"metarepo/internal/observability"
	"metarepo/internal/repo"
	"metarepo/pkg/ferr"
	"metarepo/pkg/instance"
	"metarepo/pkg/properties"
	"metarepo/pkg/response"
	"metarepo/pkg/typedef"
)

const (
	testCollectionID = "collection-1"
	assetTypeGUID    = "typedef-asset"
	stringAttrGUID   = "attrdef-string"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore(testCollectionID, "Test Collection")
	registry := prometheus.NewRegistry()
	local := repo.NewLocalRepository("metarepo-test", store,
		repo.WithMetrics(observability.NewPrometheusMetricsRecorder(registry)))
	cohorts := cohort.NewManager(cohort.Registration{
		ServerName:           "metarepo-test",
		MetadataCollectionID: testCollectionID,
	})
	exporter := archive.NewExporter(archive.NewMemoryStore(), testCollectionID)

	srv := New(":0", local, cohorts, exporter, registry)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func registerAssetType(t *testing.T, base string) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, base+"/api/v1/users/admin/types/attribute-typedefs", typedef.AttributeTypeDef{
		GUID:     stringAttrGUID,
		Name:     "string",
		Category: typedef.AttributePrimitive,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/api/v1/users/admin/types/typedefs", typedef.TypeDef{
		GUID:     assetTypeGUID,
		Name:     "Asset",
		Category: typedef.CategoryEntityDef,
		Version:  1,
		Status:   typedef.StatusActive,
		Attributes: []typedef.TypeDefAttribute{
			{Name: "qualifiedName", TypeGUID: stringAttrGUID, TypeName: "string"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestAPI(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestEntityLifecycleOverHTTP(t *testing.T) {
	ts := newTestAPI(t)
	registerAssetType(t, ts.URL)
	base := ts.URL + "/api/v1/users/alice"

	resp, raw := doJSON(t, http.MethodPost, base+"/entities", addEntityRequest{
		TypeGUID:   assetTypeGUID,
		Properties: properties.AddStringProperty(nil, "qualifiedName", "asset-1"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var created response.Response[instance.EntityDetail]
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.Result.GUID)
	guid := created.Result.GUID

	resp, raw = doJSON(t, http.MethodGet, base+"/entities/"+guid, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched response.Response[instance.EntityDetail]
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, guid, fetched.Result.GUID)
	assert.Equal(t, testCollectionID, fetched.Result.MetadataCollectionID)

	url := fmt.Sprintf("%s/entities/%s?typeGUID=%s&typeName=Asset", base, guid, assetTypeGUID)
	resp, _ = doJSON(t, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, http.MethodGet, base+"/entities/"+guid, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var failed response.Response[instance.EntityDetail]
	require.NoError(t, json.Unmarshal(raw, &failed))
	assert.Equal(t, ferr.KindEntityNotKnown, failed.ErrorKind)
}

func TestSearchPaginationOverHTTP(t *testing.T) {
	ts := newTestAPI(t)
	registerAssetType(t, ts.URL)
	base := ts.URL + "/api/v1/users/alice"

	for i := 1; i <= 3; i++ {
		resp, raw := doJSON(t, http.MethodPost, base+"/entities", addEntityRequest{
			TypeGUID:   assetTypeGUID,
			Properties: properties.AddStringProperty(nil, "qualifiedName", fmt.Sprintf("asset-%d", i)),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	}

	resp, raw := doJSON(t, http.MethodGet, base+"/entities/by-property-value?searchCriteria=asset&pageSize=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page response.PagedResponse[instance.EntityDetail]
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 2, page.PageSize)

	resp, raw = doJSON(t, http.MethodGet, base+"/entities/by-property-value?searchCriteria=asset&offset=-1&pageSize=2", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var failed response.PagedResponse[instance.EntityDetail]
	require.NoError(t, json.Unmarshal(raw, &failed))
	assert.Equal(t, ferr.KindPagingError, failed.ErrorKind)

	resp, _ = doJSON(t, http.MethodGet, base+"/entities/by-property-value?searchCriteria=asset&offset=junk", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTypeDefEndpoints(t *testing.T) {
	ts := newTestAPI(t)
	registerAssetType(t, ts.URL)
	base := ts.URL + "/api/v1/users/admin"

	resp, raw := doJSON(t, http.MethodGet, base+"/types/typedefs/"+assetTypeGUID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched response.Response[typedef.TypeDef]
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, "Asset", fetched.Result.Name)

	resp, raw = doJSON(t, http.MethodGet, base+"/types/typedefs/name/Asset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, http.MethodGet, base+"/types/typedefs/no-such-guid", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var failed response.Response[typedef.TypeDef]
	require.NoError(t, json.Unmarshal(raw, &failed))
	assert.Equal(t, ferr.KindTypeNotKnown, failed.ErrorKind)

	resp, raw = doJSON(t, http.MethodPost, base+"/types/typedefs", typedef.TypeDef{
		GUID:     assetTypeGUID,
		Name:     "Asset",
		Category: typedef.CategoryEntityDef,
		Version:  1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
}

func TestCohortEndpoints(t *testing.T) {
	ts := newTestAPI(t)
	base := ts.URL + "/api/v1/users/admin"

	resp, raw := doJSON(t, http.MethodPost, base+"/cohorts/production/connect", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var connected response.Response[cohort.Description]
	require.NoError(t, json.Unmarshal(raw, &connected))
	assert.Equal(t, cohort.StatusConnected, connected.Result.ConnectionStatus)

	resp, raw = doJSON(t, http.MethodPost, base+"/cohorts/production/members", cohort.Registration{
		ServerName:           "remote-1",
		MetadataCollectionID: "collection-remote",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, http.MethodGet, base+"/cohorts/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed response.Response[[]cohort.Description]
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed.Result, 1)
	assert.Len(t, listed.Result[0].RemoteRegistrations, 1)
}

func TestArchiveEndpoints(t *testing.T) {
	ts := newTestAPI(t)
	base := ts.URL + "/api/v1/users/alice"

	resp, raw := doJSON(t, http.MethodPost, base+"/archives/", instance.Graph{
		Entities: []instance.EntityDetail{{
			EntitySummary: instance.EntitySummary{Header: instance.Header{
				GUID:   "guid-1",
				Type:   instance.TypeRef{GUID: assetTypeGUID, Name: "Asset"},
				Status: instance.StatusActive,
			}},
		}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var exported response.Response[archive.Info]
	require.NoError(t, json.Unmarshal(raw, &exported))
	archiveID := exported.Result.Metadata["archive-id"]
	require.NotEmpty(t, archiveID)

	resp, raw = doJSON(t, http.MethodGet, base+"/archives/"+archiveID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loaded response.Response[archive.Manifest]
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.Equal(t, 1, loaded.Result.EntityCount)
	assert.Equal(t, "alice", loaded.Result.CreatedBy)
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts := newTestAPI(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/users/alice/entities/no-such-guid", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "metarepo")
}
