package dataaccess

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recorded struct {
	path          string
	authorization string
	apiKey        string
	body          []byte
}

func newFakeServer(t *testing.T, status int, response string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, recorded{
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			apiKey:        r.Header.Get("x-api-key"),
			body:          body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func newTestClient(url string, opts ...ClientOption) *Client {
	return NewClient(url, append([]ClientOption{WithRateLimit(0)}, opts...)...)
}

func TestRelationshipModels_KeepsSchemaOrder(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"status": "success", "content": {"entityModels": [{
		"id": "product_entityCompositeModel",
		"data": {"relationships": {
			"ischildof": [{"properties": {"relationshipOwnership": "whereused"}}],
			"owns": [{"properties": {"relationshipOwnership": "owned", "externalName": "Owns"}}],
			"accessories": [{"properties": {"relationshipOwnership": "owned", "externalName": "Accessories"}}]
		}}
	}]}}}`)

	qc := common.QueryContext{
		ValueContexts:   []common.ValueContext{{Source: "internal", Locale: "en-US"}},
		DataContexts:    []common.DataContext{{"country": "US"}},
		CoalesceOptions: map[string]any{"enhancers": []any{}},
		Authorization:   "Bearer user-token",
	}
	models, err := newTestClient(srv.URL, WithAPIKey("service-key")).RelationshipModels(context.Background(), qc, "product")
	require.NoError(t, err)

	keys := []string{}
	for pair := models.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"ischildof", "owns", "accessories"}, keys)

	require.Len(t, calls(), 1)
	call := calls()[0]
	assert.Equal(t, PathCompositeModel, call.path)
	assert.Equal(t, "Bearer user-token", call.authorization)
	assert.Empty(t, call.apiKey)
	assert.Equal(t, "product", gjson.GetBytes(call.body, "params.query.name").String())
	assert.Equal(t, TypeCompositeModel, gjson.GetBytes(call.body, "params.query.filters.typesCriterion.0").String())
	assert.Equal(t, "US", gjson.GetBytes(call.body, "params.query.contexts.0.country").String())
	assert.Equal(t, "en-US", gjson.GetBytes(call.body, "params.query.valueContexts.0.locale").String())
	assert.Equal(t, FieldsAll, gjson.GetBytes(call.body, "params.fields.relationships.0").String())
	assert.True(t, gjson.GetBytes(call.body, "params.options.coalesceOptions").Exists())
}

func TestRelationshipModels_MissingIsEmpty(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"status": "success", "content": {"entityModels": []}}}`)

	models, err := newTestClient(srv.URL, WithAPIKey("service-key")).RelationshipModels(context.Background(), common.QueryContext{}, "product")
	require.NoError(t, err)
	require.NotNil(t, models)
	assert.Equal(t, 0, models.Len())

	require.Len(t, calls(), 1)
	assert.Equal(t, "service-key", calls()[0].apiKey)
	assert.False(t, gjson.GetBytes(calls()[0].body, "params.options").Exists())
}

func TestGetEntity_Success(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"status": "success", "content": {"entities": [{
		"id": "E1", "name": "Entity One", "type": "product",
		"data": {"relationships": {"owns": [{"relTo": {"id": "X1"}}]}}
	}]}}}`)

	fetch, err := newTestClient(srv.URL).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", []string{"owns"})
	require.NoError(t, err)
	assert.True(t, fetch.Success)
	require.NotNil(t, fetch.Entity)
	assert.Equal(t, "Entity One", fetch.Entity.Name)
	_, flat := fetch.Entity.Data.View().(common.FlatRelationships)
	assert.True(t, flat)

	body := calls()[0].body
	assert.Equal(t, PathEntity, calls()[0].path)
	assert.Equal(t, "E1", gjson.GetBytes(body, "params.query.id").String())
	assert.Equal(t, "product", gjson.GetBytes(body, "params.query.filters.typesCriterion.0").String())
	assert.Equal(t, "owns", gjson.GetBytes(body, "params.fields.relationships.0").String())
}

func TestGetEntity_EmptyRelationshipFilterIsSent(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"status": "success", "content": {"entities": []}}}`)

	fetch, err := newTestClient(srv.URL).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	require.NoError(t, err)
	assert.True(t, fetch.Success)
	assert.Nil(t, fetch.Entity)

	rels := gjson.GetBytes(calls()[0].body, "params.fields.relationships")
	assert.True(t, rels.IsArray())
	assert.Empty(t, rels.Array())
}

func TestGetEntity_NonSuccessIsNotAnError(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{"response": {"status": "error", "statusDetail": {"message": "boom"}}}`)

	fetch, err := newTestClient(srv.URL).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	require.NoError(t, err)
	assert.False(t, fetch.Success)
	assert.Nil(t, fetch.Entity)
}

func TestGetEntityContexts(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"entities": [{
		"id": "E1", "type": "product",
		"data": {"contexts": [{"context": {"country": "Germany"}}, {"context": {"channel": "web"}}]}
	}]}}`)

	entity, err := newTestClient(srv.URL).GetEntityContexts(context.Background(), common.QueryContext{}, "E1", "product")
	require.NoError(t, err)
	require.NotNil(t, entity)
	require.Len(t, entity.Data.Contexts, 2)
	country, ok := entity.Data.Contexts[0].Value("country")
	assert.True(t, ok)
	assert.Equal(t, "Germany", country)
	assert.Equal(t, PathEntityContext, calls()[0].path)
}

func TestGetEntityContexts_Unknown(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{"response": {"entities": []}}`)

	entity, err := newTestClient(srv.URL).GetEntityContexts(context.Background(), common.QueryContext{}, "E1", "product")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestGetEntityManageModel(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"content": {"entityModels": [{
		"id": "country_entityManageModel",
		"data": {"attributes": {"countryname": {"properties": {"isExternalName": true}}}}
	}]}}}`)

	model, err := newTestClient(srv.URL).GetEntityManageModel(context.Background(), common.QueryContext{}, "country")
	require.NoError(t, err)
	require.NotNil(t, model)
	name, ok := model.Data.ExternalNameAttribute()
	assert.True(t, ok)
	assert.Equal(t, "countryname", name)

	body := calls()[0].body
	assert.Equal(t, PathEntityModel, calls()[0].path)
	assert.Equal(t, "country_entityManageModel", gjson.GetBytes(body, "params.query.id").String())
	assert.Equal(t, TypeManageModel, gjson.GetBytes(body, "params.query.filters.typesCriterion.0").String())
}

func TestSearchEntities(t *testing.T) {
	srv, calls := newFakeServer(t, http.StatusOK, `{"response": {"status": "success", "content": {"entities": [
		{"id": "C1", "data": {"attributes": {"isoname": {"values": [{"value": "DE"}]}}}},
		{"id": "C2", "data": {"attributes": {"countryname": {"values": [{"value": "France"}]}}}}
	]}}}`)

	entities, err := newTestClient(srv.URL).SearchEntities(context.Background(), common.QueryContext{}, SearchRequest{
		EntityType:    "country",
		ValueContexts: []common.ValueContext{{Source: "internal", Locale: "en-US"}},
		Criteria:      map[string][]string{"countryname": {"Germany", "France"}},
		Attributes:    []string{"isoname", "countryname"},
	})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "C1", entities[0].ID)

	var sent Request
	require.NoError(t, json.Unmarshal(calls()[0].body, &sent))
	require.Len(t, sent.Params.Query.Filters.AttributesCriterion, 1)
	criterion := sent.Params.Query.Filters.AttributesCriterion[0]["countryname"]
	assert.Equal(t, []string{"Germany", "France"}, criterion.Exacts)
	assert.Equal(t, CriterionTypeString, criterion.Type)
	assert.Equal(t, []string{"isoname", "countryname"}, sent.Params.Fields["attributes"])
}

func TestClient_HTTPErrors(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusUnauthorized, `{}`)
	_, err := newTestClient(srv.URL).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	srv, _ = newFakeServer(t, http.StatusBadRequest, `{}`)
	_, err = newTestClient(srv.URL).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, PathEntity, apiErr.Path)
}

func TestClient_InvalidJSON(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `<html>gateway</html>`)
	_, err := newTestClient(srv.URL).RelationshipModels(context.Background(), common.QueryContext{}, "product")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"response": {"status": "success", "content": {"entities": [{"id": "E1", "data": {}}]}}}`))
	}))
	defer srv.Close()

	fetch, err := newTestClient(srv.URL, WithRetry(3, time.Millisecond)).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	require.NoError(t, err)
	assert.True(t, fetch.Success)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, WithRetry(3, time.Millisecond)).GetEntity(context.Background(), common.QueryContext{}, "E1", "product", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_ContextCanceled(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).GetEntity(ctx, common.QueryContext{}, "E1", "product", nil)
	assert.Error(t, err)
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv("DATA_ACCESS_URL", "http://data-access:8080/")
	t.Setenv("DATA_ACCESS_API_KEY", "svc-key")
	t.Setenv("DATA_ACCESS_TIMEOUT", "5s")
	t.Setenv("DATA_ACCESS_RETRIES", "3")

	c := NewClientFromEnv()
	assert.Equal(t, "http://data-access:8080", c.baseURL)
	assert.Equal(t, "svc-key", c.apiKey)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 3, c.maxTries)
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := NewClient("http://data-access", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}
