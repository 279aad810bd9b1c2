package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/pkg/transport"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"i1","name":"Ciorbă de burtă","price":24.5,"is_available":true}}]}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{"acknowledged":true,"result":"created"}`)
	}
}

func newTestIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return New(es, "menu_items"), fake
}

func TestIndex_Search_DecodesHits(t *testing.T) {
	idx, fake := newTestIndex(t)

	total, items, err := idx.Search(context.Background(), "ciorba", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Ciorbă de burtă", items[0].Name)
	assert.True(t, decimal.RequireFromString("24.5").Equal(items[0].Price))

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[len(fake.bodies)-1]), &q))
	assert.EqualValues(t, 10, q["size"])
}

func TestIndex_EnsureIndex_CreatesWhenMissing(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Contains(t, fake.requests, "HEAD /menu_items")
	assert.Contains(t, fake.requests, "PUT /menu_items")
}

func TestIndex_IndexAndDelete(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.IndexItem(context.Background(), transport.MenuItem{ID: "i1", Name: "Sarmale"}))
	require.NoError(t, idx.DeleteItem(context.Background(), "i1"))

	assert.Contains(t, fake.requests, "PUT /menu_items/_doc/i1")
	assert.Contains(t, fake.requests, "DELETE /menu_items/_doc/i1")
}
