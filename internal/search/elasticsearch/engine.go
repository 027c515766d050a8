// Package elasticsearch keeps a copy of the active catalog in an
// Elasticsearch index and answers storefront searches from it.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/apparelstore/internal/domain"
)

// DefaultIndexName is used when Config.Index is empty.
const DefaultIndexName = "apparel_products"

// Config configures the index client.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string

	// Transport overrides the HTTP transport; tests point it at a fake cluster.
	Transport http.RoundTripper
}

// Engine indexes catalog products and runs storefront searches.
type Engine struct {
	client *elasticsearch.Client
	index  string
	logger *slog.Logger
}

// New builds the client. It does not contact the cluster; call EnsureIndex
// before the first write.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	index := cfg.Index
	if index == "" {
		index = DefaultIndexName
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}
	return &Engine{client: client, index: index, logger: logger}, nil
}

// Index returns the name of the backing index.
func (e *Engine) Index() string { return e.index }

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// check turns an error response into a Go error naming op. The body is
// consumed only on failure.
func check(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	var body errorBody
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error.Type != "" {
		return fmt.Errorf("elasticsearch %s: %s: %s", op, body.Error.Type, body.Error.Reason)
	}
	return fmt.Errorf("elasticsearch %s: unexpected status %s", op, res.Status())
}

func closeBody(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

// Ping checks that the cluster answers.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer closeBody(res)
	return check("ping", res)
}

// EnsureIndex creates the index with the catalog mapping unless it exists.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch check index: %w", err)
	}
	closeBody(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer closeBody(res)
	if err := check("create index", res); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "search index created", slog.String("index", e.index))
	return nil
}

// Put adds or replaces one product document.
func (e *Engine) Put(ctx context.Context, p domain.CatalogProduct) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal %s: %w", p.ID, err)
	}

	res, err := e.client.Index(e.index, bytes.NewReader(doc),
		e.client.Index.WithDocumentID(p.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer closeBody(res)
	return check("index", res)
}

// Delete removes a product document. A missing document is not an error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.index, id,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return check("delete", res)
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID    string `json:"_id"`
		Error *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkPut indexes products with one bulk request. Per-document failures are
// collected into the returned error.
func (e *Engine) BulkPut(ctx context.Context, products []domain.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range products {
		action := map[string]any{"index": map[string]string{"_id": products[i].ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode action: %w", err)
		}
		if err := enc.Encode(products[i]); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode %s: %w", products[i].ID, err)
		}
	}

	res, err := e.client.Bulk(&buf,
		e.client.Bulk.WithIndex(e.index),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer closeBody(res)
	if err := check("bulk", res); err != nil {
		return err
	}

	var body bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}
	if !body.Errors {
		return nil
	}
	var failed []string
	for _, item := range body.Items {
		for _, r := range item {
			if r.Error != nil {
				failed = append(failed, fmt.Sprintf("%s: %s", r.ID, r.Error.Reason))
			}
		}
	}
	return fmt.Errorf("elasticsearch bulk: %d documents failed: %s", len(failed), strings.Join(failed, "; "))
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns up to limit products whose name contains query, newest
// first. A non-empty category must equal the product's category. Both
// comparisons ignore case.
func (e *Engine) Search(ctx context.Context, query, category string, limit int) ([]domain.CatalogProduct, error) {
	body, err := json.Marshal(searchQuery(query, category, limit))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer closeBody(res)
	if err := check("search", res); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	out := make([]domain.CatalogProduct, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		var p domain.CatalogProduct
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			return nil, fmt.Errorf("elasticsearch search: decode hit: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// searchQuery mirrors the SQL search: the name contains the term and the
// category, when given, matches exactly.
func searchQuery(query, category string, limit int) map[string]any {
	filters := []any{map[string]any{"wildcard": map[string]any{
		"name.keyword": map[string]any{
			"value":            "*" + wildcardEscaper.Replace(query) + "*",
			"case_insensitive": true,
		},
	}}}
	if category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{
			"category": map[string]any{"value": category, "case_insensitive": true},
		}})
	}
	return map[string]any{
		"size":  limit,
		"query": map[string]any{"bool": map[string]any{"filter": filters}},
		"sort":  []any{map[string]any{"createdAt": "desc"}},
	}
}
