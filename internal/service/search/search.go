package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/encontrar/shopping-api/internal/models"
)

// queryBody builds the search request. Unprivileged callers get a filter
// clause pinning visible=true so hidden products never surface through the
// index.
func queryBody(query string, from, size int, onlyVisible bool) map[string]interface{} {
	match := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":     query,
			"fields":    []string{"name^2", "description"},
			"fuzziness": "AUTO",
		},
	}

	q := match
	if onlyVisible {
		q = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": match,
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"visible": true},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": q,
		"from":  from,
		"size":  size,
	}
}

// Search runs a fuzzy multi-match over the product index, name weighted
// above description.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int, onlyVisible bool) (int64, []models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(queryBody(query, from, size, onlyVisible)); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		products = append(products, h.Source)
	}
	return parsed.Hits.Total.Value, products, nil
}
