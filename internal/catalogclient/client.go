// Package catalogclient fetches the storefront catalog from a running server.
package catalogclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/apparelstore/internal/domain"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	"github.com/utafrali/apparelstore/pkg/httpclient"
)

const (
	remoteName = "storefront"
	listPath   = "/api/v1/products"

	// maxBody caps the catalog response.
	maxBody = 32 << 20
)

// Query narrows the catalog fetch. The zero value fetches everything.
type Query struct {
	Category string
	Search   string
	Sort     string
	Limit    int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Client reads the public catalog endpoint.
type Client struct {
	http    httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

// New creates a Client for the server at baseURL.
func New(doer httpclient.Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{http: doer, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

type listEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

// Fetch performs one GET against the list endpoint and normalizes every
// record. A record that cannot be decoded fails the whole fetch.
func (c *Client) Fetch(ctx context.Context, q Query) ([]domain.CatalogProduct, error) {
	u := c.baseURL + listPath
	if params := q.values().Encode(); params != "" {
		u += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if httpclient.IsRejected(err) {
			return nil, apperrors.ServiceUnavailable("storefront is temporarily unavailable")
		}
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, remoteName)
	}
	defer resp.Body.Close()

	var env listEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%s: catalog request unsuccessful: %s", remoteName, env.Message)
	}

	products := make([]domain.CatalogProduct, 0, len(env.Data))
	for i, raw := range env.Data {
		p, err := domain.NormalizeCatalogProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", i, err)
		}
		products = append(products, p)
	}

	c.logger.InfoContext(ctx, "catalog fetched",
		slog.String("url", u),
		slog.Int("count", len(products)),
	)
	return products, nil
}
