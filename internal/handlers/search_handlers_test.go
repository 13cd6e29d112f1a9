package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/encontrar/shopping-api/internal/models"
)

func searchQuery(t *testing.T, env *testEnv) map[string]any {
	t.Helper()
	require.NotEmpty(t, *env.ESQuery)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(*env.ESQuery, &sent))
	q, ok := sent["query"].(map[string]any)
	require.True(t, ok)
	return q
}

func TestSearchFiltersHiddenForAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/search?q=lamp", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	q := searchQuery(t, env)
	b, ok := q["bool"].(map[string]any)
	require.True(t, ok)
	filter := b["filter"].(map[string]any)
	term := filter["term"].(map[string]any)
	require.Equal(t, true, term["visible"])
}

func TestSearchFiltersHiddenForCustomer(t *testing.T) {
	env := newTestEnv(t)
	ck := env.loginAs(t, models.RoleCustomer)

	rec := env.doJSON(http.MethodGet, "/search?q=lamp", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)

	q := searchQuery(t, env)
	require.Contains(t, q, "bool")
}

func TestSearchUnfilteredForStaff(t *testing.T) {
	env := newTestEnv(t)
	ck := env.loginAs(t, models.RoleSales)

	rec := env.doJSON(http.MethodGet, "/search?q=lamp", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)

	q := searchQuery(t, env)
	require.Contains(t, q, "multi_match")
	require.NotContains(t, q, "bool")
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
