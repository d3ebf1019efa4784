package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

type fakeQuerier struct {
	resources []models.Resource
	err       error
	got       catalog.Query
	ctx       context.Context
}

func (f *fakeQuerier) Query(ctx context.Context, q catalog.Query) ([]models.Resource, error) {
	f.got = q
	f.ctx = ctx
	return f.resources, f.err
}

func resourceRouter(q ResourceQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/resources", NewResourceHandler(q).ListResources)
	return router
}

func TestListResources_PassesQueryArguments(t *testing.T) {
	q := &fakeQuerier{resources: []models.Resource{}}
	w := httptest.NewRecorder()

	resourceRouter(q).ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/resources?id=r1&name=scratch&resourceType=STORAGE", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, catalog.Query{ID: "r1", Name: "scratch", ResourceType: "STORAGE"}, q.got)
	assert.NotNil(t, q.ctx)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestListResources_RendersResolvedVariantOnly(t *testing.T) {
	q := &fakeQuerier{resources: []models.Resource{
		{
			ID:           "r1",
			Name:         "scratch",
			ResourceType: models.ResourceTypeStorage,
			Resource: models.NewStoragePayload(&models.Storage{
				StorageType: "lustre",
				Capacity:    &models.Capacity{TotalBytes: 1000},
			}),
		},
		{
			ID:           "r2",
			Name:         "cluster",
			ResourceType: models.ResourceTypeCompute,
			Resource:     models.NewComputePayload(&models.Compute{SchedulerType: "slurm"}),
		},
	}}
	w := httptest.NewRecorder()

	resourceRouter(q).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID       string         `json:"id"`
			Resource map[string]any `json:"resource"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)

	assert.Equal(t, "lustre", body.Data[0].Resource["storageType"])
	assert.NotContains(t, body.Data[0].Resource, "schedulerType")
	assert.Equal(t, "slurm", body.Data[1].Resource["schedulerType"])
	assert.NotContains(t, body.Data[1].Resource, "storageType")
}

func TestListResources_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"store unavailable", fmt.Errorf("%w: context deadline exceeded", models.ErrStoreUnavailable), http.StatusServiceUnavailable, "service_unavailable"},
		{"schema violation", &models.RecordError{Index: 0, Err: models.ErrSchemaViolation}, http.StatusInternalServerError, "invalid_record"},
		{"type resolution", &models.RecordError{Index: 2, ID: "x", Err: models.ErrTypeResolution}, http.StatusInternalServerError, "invalid_record"},
		{"invalid request", models.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			resourceRouter(&fakeQuerier{err: tt.err}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil))

			assert.Equal(t, tt.wantStatus, w.Code)

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.NotEmpty(t, body.Message)
			assert.NotContains(t, w.Body.String(), "data")
		})
	}
}

func TestListResources_PassesValuesUnvalidated(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  catalog.Query
	}{
		{"long name", "name=" + strings.Repeat("x", 300), catalog.Query{Name: strings.Repeat("x", 300)}},
		{"tab in name", "name=lustre%09fs", catalog.Query{Name: "lustre\tfs"}},
		{"newline in id", "id=r1%0Ar2", catalog.Query{ID: "r1\nr2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{resources: []models.Resource{}}
			w := httptest.NewRecorder()

			resourceRouter(q).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/resources?"+tt.query, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, q.ctx, "service must be queried")
			assert.Equal(t, tt.want, q.got)
		})
	}
}
