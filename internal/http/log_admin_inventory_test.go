package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/repos"
)

func TestAdminInventoryIsAudited(t *testing.T) {
	app, _ := newTestApp(t, nil)
	admin := login(t, app, repos.DemoAdminEmail)
	alice := login(t, app, repos.DemoUserEmail)

	entries := captureLogs(t, func() {
		resp, raw := doJSON(t, app, http.MethodPut, "/api/admin/versions/v-compass-std/stock", admin,
			map[string]int{"stock_quantity": 7})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		resp, _ = doJSON(t, app, http.MethodPut, "/api/admin/versions/v-compass-std/stock", alice,
			map[string]int{"stock_quantity": 0})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPut, "/api/admin/versions/v-compass-std/stock", admin,
			map[string]int{"stock_quantity": -1})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPut, "/api/admin/versions/v-nope/stock", admin,
			map[string]int{"stock_quantity": 1})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	saved, ok := findLog(entries, "admin.inventory.save")
	require.True(t, ok)
	assert.Equal(t, "audit", saved.Level)
	assert.Equal(t, "u-admin", saved.UserID)
	assert.Equal(t, "v-compass-std", saved.Fields["version_id"])
	assert.EqualValues(t, 7, saved.Fields["qty"])

	denied, ok := findLog(entries, "access.denied.admin")
	require.True(t, ok)
	assert.Equal(t, "security", denied.Kind)
	assert.Equal(t, "u-alice", denied.UserID)

	invalid, ok := findLog(entries, "validation.fail")
	require.True(t, ok)
	assert.Equal(t, "security", invalid.Kind)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/versions/v-compass-std/availability", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"qty":7`)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/admin/inventory", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, raw), 6)
}
