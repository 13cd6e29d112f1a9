package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"
)

const stubResponse = `{
	"hits": {
		"total": {"value": 2},
		"hits": [
			{"_source": {"id": 1, "name": "Visible Lamp", "price": 30, "visible": true}},
			{"_source": {"id": 2, "name": "Second Lamp", "price": 35, "visible": true}}
		]
	}
}`

func newStubES(t *testing.T, captured *[]byte) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			if len(body) > 0 {
				*captured = body
			}
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stubResponse))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestQueryBodyFiltersHiddenForUnprivileged(t *testing.T) {
	body := queryBody("lamp", 0, 10, true)

	q, ok := body["query"].(map[string]interface{})
	require.True(t, ok)
	b, ok := q["bool"].(map[string]interface{})
	require.True(t, ok)
	filter, ok := b["filter"].(map[string]interface{})
	require.True(t, ok)
	term, ok := filter["term"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, true, term["visible"])
	require.Contains(t, b, "must")
}

func TestQueryBodyUnfilteredForStaff(t *testing.T) {
	body := queryBody("lamp", 0, 10, false)

	q, ok := body["query"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, q, "multi_match")
	require.NotContains(t, q, "bool")
}

func TestSearchSendsVisibilityFilter(t *testing.T) {
	var captured []byte
	es := newStubES(t, &captured)

	total, products, err := Search(context.Background(), es, "product", "lamp", 0, 10, true)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	require.Equal(t, "Visible Lamp", products[0].Name)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &sent))
	q := sent["query"].(map[string]interface{})
	b, ok := q["bool"].(map[string]interface{})
	require.True(t, ok)
	filter := b["filter"].(map[string]interface{})
	term := filter["term"].(map[string]interface{})
	require.Equal(t, true, term["visible"])
}

func TestSearchOmitsFilterForPrivileged(t *testing.T) {
	var captured []byte
	es := newStubES(t, &captured)

	_, _, err := Search(context.Background(), es, "product", "lamp", 0, 10, false)
	require.NoError(t, err)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &sent))
	q := sent["query"].(map[string]interface{})
	require.Contains(t, q, "multi_match")
	require.NotContains(t, q, "bool")
}
