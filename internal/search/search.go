package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/panaghia/restaurant/internal/config"
	"github.com/panaghia/restaurant/pkg/transport"
)

func NewClient(cfg config.ESConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

// Index keeps menu items searchable by name and description.
type Index struct {
	es    *elasticsearch.Client
	index string
}

func New(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "category_id":  {"type": "keyword"},
      "name":         {"type": "text"},
      "description":  {"type": "text"},
      "price":        {"type": "scaled_float", "scaling_factor": 100},
      "is_popular":   {"type": "boolean"},
      "is_available": {"type": "boolean"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when missing.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

func (i *Index) IndexItem(ctx context.Context, item transport.MenuItem) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(item); err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	res, err := i.es.Index(i.index, &buf,
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(item.ID),
	)
	if err != nil {
		return fmt.Errorf("index item: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index item", res.Status(), res.Body)
	}
	return nil
}

func (i *Index) DeleteItem(ctx context.Context, id string) error {
	res, err := i.es.Delete(i.index, id, i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete item", res.Status(), res.Body)
	}
	return nil
}

// Search runs a fuzzy multi_match over available items.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []transport.MenuItem, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_available": true},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source transport.MenuItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	items := make([]transport.MenuItem, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		items[n] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}

func responseError(op, status string, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 4<<10))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, status, bytes.TrimSpace(raw))
}
