package catalogclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	"github.com/utafrali/apparelstore/pkg/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	doer := httpclient.NewCircuitBreakerClient(httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("catalog-"+t.Name()), discardLogger())

	return New(doer, srv.URL+"/", discardLogger())
}

func TestFetch_NormalizesBothShapes(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":"a1","name":"Linen Shirt","slug":"linen-shirt","price":80,"original_price":100,
			 "discount_type":"percentage","discount_value":25,"category":"shirts",
			 "images":["/m/1.jpg","/m/2.jpg"],"sizes":["S"],"is_new_arrival":true,"stock":4,
			 "created_at":"2026-03-01T12:00:00Z"},
			{"id":7,"name":"Denim","slug":"denim","price":"59.90","originalPrice":null,"finalPrice":59.9,
			 "category":"pants","image":"/m/d.jpg","image2":"/m/d2.jpg","images":[],"sizes":[],
			 "isNewArrival":false,"stock":0,"createdAt":"2026-02-01T12:00:00Z"}
		]}`))
	})

	products, err := c.Fetch(context.Background(), Query{Category: "shirts", Sort: "price-low", Limit: 8})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/products", gotPath)
	assert.Equal(t, "category=shirts&limit=8&sort=price-low", gotQuery)

	require.Len(t, products, 2)
	assert.Equal(t, "a1", products[0].ID)
	assert.Equal(t, "60", products[0].FinalPrice.String())
	assert.Equal(t, "/m/1.jpg", products[0].Image)
	assert.Equal(t, "/m/2.jpg", products[0].Image2)
	require.True(t, products[0].OriginalPrice.Valid)
	assert.Equal(t, "100", products[0].OriginalPrice.Decimal.String())
	require.NotNil(t, products[0].Discount)
	assert.Equal(t, "25%", products[0].Discount.Label())
	assert.True(t, products[0].IsNewArrival)

	assert.Equal(t, "7", products[1].ID)
	assert.Equal(t, "59.9", products[1].FinalPrice.String())
	assert.Equal(t, "/m/d.jpg", products[1].Image)
	assert.Equal(t, "/m/d2.jpg", products[1].Image2)
	assert.False(t, products[1].OriginalPrice.Valid)
	assert.Nil(t, products[1].Discount)
	assert.False(t, products[1].IsNewArrival)
}

func TestFetch_NoQueryString(t *testing.T) {
	var gotURI string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	products, err := c.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, "/api/v1/products", gotURI)
}

func TestFetch_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"sort must be one of: latest, price-low, price-high",
			"error":{"code":"INVALID_INPUT","message":"sort must be one of: latest, price-low, price-high"}}`))
	})

	_, err := c.Fetch(context.Background(), Query{Sort: "random"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "sort must be one of")
}

func TestFetch_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := c.Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestFetch_UnsuccessfulBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"maintenance"}`))
	})

	_, err := c.Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")
}

func TestFetch_MalformedRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"ok","price":1},{"id":{"bad":true}}]}`))
	})

	_, err := c.Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog record 1")
}
