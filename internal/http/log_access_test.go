package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/repos"
)

func lastAccess(entries []logEntry, path string) (logEntry, bool) {
	var out logEntry
	found := false
	for _, e := range entries {
		if e.Action == "http.access" && e.Path == path {
			out, found = e, true
		}
	}
	return out, found
}

func TestAccessLogCarriesRequestAndUser(t *testing.T) {
	app, _ := newTestApp(t, nil)
	alice := login(t, app, repos.DemoUserEmail)

	entries := captureLogs(t, func() {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/cart", alice, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = doJSON(t, app, http.MethodGet, "/api/orders/nope", alice, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = doJSON(t, app, http.MethodGet, "/api/albums", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	cart, ok := lastAccess(entries, "/api/cart")
	require.True(t, ok)
	assert.Equal(t, "info", cart.Level)
	assert.Equal(t, http.MethodGet, cart.Method)
	assert.Equal(t, http.StatusOK, cart.Status)
	assert.NotEmpty(t, cart.ReqID)
	assert.Equal(t, "u-alice", cart.UserID)

	miss, ok := lastAccess(entries, "/api/orders/nope")
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, miss.Status, "access line reports the rendered error status")
	assert.NotEqual(t, cart.ReqID, miss.ReqID)

	denied, ok := findLog(entries, "access.denied.order")
	require.True(t, ok)
	assert.Equal(t, "security", denied.Kind)
	assert.Equal(t, "u-alice", denied.UserID)

	anon, ok := lastAccess(entries, "/api/albums")
	require.True(t, ok)
	assert.Empty(t, anon.UserID)
}
