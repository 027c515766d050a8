package elasticsearch

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/apparelstore/internal/domain"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

// fakeCluster answers every request with the next queued reply and keeps
// what it received.
type fakeCluster struct {
	mu       sync.Mutex
	requests []recorded
	replies  []reply
}

type reply struct {
	status int
	body   string
}

const clusterInfo = `{"name":"fake","cluster_name":"test","version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	// The client's product check.
	if r.Method == http.MethodGet && r.URL.Path == "/" {
		_, _ = w.Write([]byte(clusterInfo))
		return
	}

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
	rep := reply{status: http.StatusOK, body: `{}`}
	if len(f.replies) > 0 {
		rep, f.replies = f.replies[0], f.replies[1:]
	}
	f.mu.Unlock()

	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

func newTestEngine(t *testing.T, replies ...reply) (*Engine, *fakeCluster) {
	t.Helper()
	fake := &fakeCluster{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	e, err := New(Config{Addresses: []string{srv.URL}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return e, fake
}

func sample(id, name string) domain.CatalogProduct {
	return domain.CatalogProduct{
		ID:         id,
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Category:   "shirts",
		Price:      decimal.RequireFromString("80"),
		FinalPrice: decimal.RequireFromString("60"),
		Images:     []string{"/m/1.jpg"},
		Sizes:      []string{"M"},
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// Index lifecycle
// =============================================================================

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	e, fake := newTestEngine(t,
		reply{status: http.StatusNotFound, body: ``},
		reply{status: http.StatusOK, body: `{"acknowledged":true}`},
	)

	require.NoError(t, e.EnsureIndex(context.Background()))
	require.Len(t, fake.requests, 2)
	assert.Equal(t, http.MethodHead, fake.requests[0].method)
	assert.Equal(t, "/"+DefaultIndexName, fake.requests[0].path)
	assert.Equal(t, http.MethodPut, fake.requests[1].method)
	assert.Contains(t, fake.requests[1].body, `"createdAt"`)
}

func TestEnsureIndex_SkipsExisting(t *testing.T) {
	e, fake := newTestEngine(t, reply{status: http.StatusOK, body: ``})

	require.NoError(t, e.EnsureIndex(context.Background()))
	assert.Len(t, fake.requests, 1)
}

func TestEnsureIndex_ReportsClusterError(t *testing.T) {
	e, _ := newTestEngine(t,
		reply{status: http.StatusNotFound, body: ``},
		reply{status: http.StatusBadRequest, body: `{"error":{"type":"mapper_parsing_exception","reason":"bad mapping"}}`},
	)

	err := e.EnsureIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

// =============================================================================
// Documents
// =============================================================================

func TestPut(t *testing.T) {
	e, fake := newTestEngine(t, reply{status: http.StatusCreated, body: `{"result":"created"}`})

	require.NoError(t, e.Put(context.Background(), sample("a1", "Linen Shirt")))
	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/"+DefaultIndexName+"/_doc/a1", req.path)
	assert.Contains(t, req.query, "refresh=true")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "Linen Shirt", doc["name"])
	assert.Equal(t, float64(60), doc["finalPrice"])
}

func TestDelete_MissingIsNotAnError(t *testing.T) {
	e, fake := newTestEngine(t, reply{status: http.StatusNotFound, body: `{"result":"not_found"}`})

	require.NoError(t, e.Delete(context.Background(), "gone"))
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/"+DefaultIndexName+"/_doc/gone", fake.requests[0].path)
}

func TestBulkPut(t *testing.T) {
	e, fake := newTestEngine(t, reply{status: http.StatusOK, body: `{"errors":false,"items":[]}`})

	products := []domain.CatalogProduct{sample("a1", "Linen Shirt"), sample("b2", "Denim")}
	require.NoError(t, e.BulkPut(context.Background(), products))

	req := fake.requests[0]
	assert.Equal(t, "/"+DefaultIndexName+"/_bulk", req.path)

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(req.body))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_id":"a1"}}`, lines[0])
	assert.Contains(t, lines[3], `"Denim"`)
}

func TestBulkPut_PartialFailure(t *testing.T) {
	e, _ := newTestEngine(t, reply{status: http.StatusOK, body: `{"errors":true,"items":[
		{"index":{"_id":"a1","status":201}},
		{"index":{"_id":"b2","status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse field [createdAt]"}}}
	]}`})

	err := e.BulkPut(context.Background(), []domain.CatalogProduct{sample("a1", "A"), sample("b2", "B")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 documents failed")
	assert.Contains(t, err.Error(), "b2: failed to parse field [createdAt]")
}

func TestBulkPut_EmptyIsNoop(t *testing.T) {
	e, fake := newTestEngine(t)
	require.NoError(t, e.BulkPut(context.Background(), nil))
	assert.Empty(t, fake.requests)
}

// =============================================================================
// Search
// =============================================================================

type searchBody struct {
	Size  int `json:"size"`
	Query struct {
		Bool struct {
			Filter []map[string]map[string]struct {
				Value           string `json:"value"`
				CaseInsensitive bool   `json:"case_insensitive"`
			} `json:"filter"`
		} `json:"bool"`
	} `json:"query"`
}

func TestSearch(t *testing.T) {
	hit, err := json.Marshal(sample("a1", "Linen Shirt"))
	require.NoError(t, err)
	e, fake := newTestEngine(t, reply{status: http.StatusOK, body: `{"hits":{"total":{"value":1},"hits":[{"_source":` + string(hit) + `}]}}`})

	got, err := e.Search(context.Background(), "lin*en", "", 8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "60", got[0].FinalPrice.String())

	req := fake.requests[0]
	assert.Equal(t, "/"+DefaultIndexName+"/_search", req.path)

	var body searchBody
	require.NoError(t, json.Unmarshal([]byte(req.body), &body))
	assert.Equal(t, 8, body.Size)
	require.Len(t, body.Query.Bool.Filter, 1, "name only; category is not searched")

	name := body.Query.Bool.Filter[0]["wildcard"]["name.keyword"]
	assert.Equal(t, `*lin\*en*`, name.Value)
	assert.True(t, name.CaseInsensitive)
}

func TestSearch_ScopedToCategory(t *testing.T) {
	e, fake := newTestEngine(t, reply{status: http.StatusOK, body: `{"hits":{"hits":[]}}`})

	got, err := e.Search(context.Background(), "t", "jackets", 8)
	require.NoError(t, err)
	assert.Empty(t, got)

	var body searchBody
	require.NoError(t, json.Unmarshal([]byte(fake.requests[0].body), &body))
	require.Len(t, body.Query.Bool.Filter, 2)
	assert.Equal(t, "*t*", body.Query.Bool.Filter[0]["wildcard"]["name.keyword"].Value)

	cat := body.Query.Bool.Filter[1]["term"]["category"]
	assert.Equal(t, "jackets", cat.Value)
	assert.True(t, cat.CaseInsensitive)
}

func TestSearch_ClusterError(t *testing.T) {
	e, _ := newTestEngine(t, reply{status: http.StatusNotFound, body: `{"error":{"type":"index_not_found_exception","reason":"no such index"}}`})

	_, err := e.Search(context.Background(), "shirt", "", 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index_not_found_exception")
}
