package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/repos"
)

func TestAuthEventsAreLogged(t *testing.T) {
	app, _ := newTestApp(t, nil)

	entries := captureLogs(t, func() {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/login", "", map[string]string{
			"email": repos.DemoUserEmail, "password": "Wrong0!pass",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		login(t, app, repos.DemoUserEmail)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/me", "garbage-token", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	fail, ok := findLog(entries, "auth.login.fail")
	require.True(t, ok)
	assert.Equal(t, "security", fail.Kind)
	assert.Equal(t, "warn", fail.Level)
	assert.Equal(t, repos.DemoUserEmail, fail.Fields["email"])
	assert.NotContains(t, fail.Fields, "password")

	ok2, found := findLog(entries, "auth.login.success")
	require.True(t, found)
	assert.Equal(t, "audit", ok2.Level)
	assert.Equal(t, "u-alice", ok2.UserID)

	rejected, found := findLog(entries, "auth.token.reject")
	require.True(t, found)
	assert.Equal(t, "security", rejected.Kind)
}
