package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/repos"
)

func TestRegisterValidation(t *testing.T) {
	app, db := newTestApp(t, nil)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]string{
		"email": "not-an-email", "password": "short", "first_name": "", "last_name": "ThisLastNameIsWayTooLong",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env := decode[envelope](t, raw)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	for _, field := range []string{"email", "password", "first_name", "last_name"} {
		assert.Contains(t, env.Error.Details, field)
	}

	resp, raw = doJSON(t, app, http.MethodPost, "/api/register", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))

	var users int
	require.NoError(t, db.Get(&users, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 2, users)
}

func TestCartInputValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)
	alice := login(t, app, repos.DemoUserEmail)

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"quantity too large", map[string]any{"version_id": "v-compass-std", "quantity": 100}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"version_id": "v-compass-std", "quantity": -1}, http.StatusBadRequest},
		{"missing version", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"bad version id", map[string]any{"version_id": "v'; DROP TABLE carts;--"}, http.StatusBadRequest},
		{"unknown version", map[string]any{"version_id": "v-unknown"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doJSON(t, app, http.MethodPost, "/api/cart", alice, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
		})
	}

	resp, raw := doJSON(t, app, http.MethodDelete, "/api/cart/does-not-exist", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(raw))
}

func TestCatalogQueryValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/search?q="+url.QueryEscape("<script>"), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/search?q=compass", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, raw), 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/artists/category/orchestra", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/albums/bad$id", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/versions/v-compass-collector/availability", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	av := decode[struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}](t, raw)
	assert.Equal(t, "LOW_STOCK", av.Status)
	assert.Equal(t, 3, av.Qty)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/artist_categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"female_group", "male_group", "solo"}, decode[[]string](t, raw))
}

func TestWishlistAndAddressesOverHTTP(t *testing.T) {
	app, _ := newTestApp(t, nil)
	alice := login(t, app, repos.DemoUserEmail)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/wishlist", alice, map[string]string{"album_id": "album-compass"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/wishlist", alice, map[string]string{"album_id": "album-compass"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/wishlist/album-compass", alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/wishlist/album-compass", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/addresses", alice, map[string]any{
		"line1": "1 Main St", "city": "Seoul", "postal_code": "04524", "country": "KR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	resp, raw = doJSON(t, app, http.MethodPost, "/api/addresses", alice, map[string]any{
		"line1": "1 Main St", "city": "Seoul", "postal_code": "!!", "country": "Korea",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env := decode[envelope](t, raw)
	assert.Contains(t, env.Error.Details, "postal_code")
	assert.Contains(t, env.Error.Details, "country")
}
