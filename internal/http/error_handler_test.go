package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumshop/internal/apperr"
	"albumshop/internal/http/handlers"
)

func TestErrorHandlerEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/stock", func(c *fiber.Ctx) error {
		return apperr.New(apperr.KindOutOfStock, "insufficient stock").
			WithDetails(map[string]any{"version_id": "v-1"})
	})
	app.Get("/db", func(c *fiber.Ctx) error {
		return apperr.Transient(errors.New("pq: relation \"orders\" does not exist"), "load orders")
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return errors.New("SELECT * FROM users failed")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return apperr.NotFound("album not found").WithDetails(map[string]any{"secret": "x"})
	})

	var entries []logEntry
	type result struct {
		status int
		env    envelope
		body   string
	}
	results := map[string]result{}
	entries = captureLogs(t, func() {
		for _, p := range []string{"/stock", "/db", "/raw", "/gone", "/missing"} {
			resp, raw := doJSON(t, app, http.MethodGet, p, "", nil)
			results[p] = result{resp.StatusCode, decode[envelope](t, raw), string(raw)}
		}
	})

	stock := results["/stock"]
	assert.Equal(t, http.StatusConflict, stock.status)
	assert.Equal(t, "OUT_OF_STOCK", stock.env.Error.Code)
	assert.Equal(t, "v-1", stock.env.Error.Details["version_id"])

	db := results["/db"]
	assert.Equal(t, http.StatusServiceUnavailable, db.status)
	assert.Equal(t, "TRANSIENT", db.env.Error.Code)
	assert.Equal(t, "temporary failure, please retry", db.env.Error.Message)
	assert.NotContains(t, db.body, "relation")

	raw := results["/raw"]
	assert.Equal(t, http.StatusServiceUnavailable, raw.status)
	assert.NotContains(t, raw.body, "SELECT")

	gone := results["/gone"]
	assert.Equal(t, http.StatusNotFound, gone.status)
	assert.Equal(t, "album not found", gone.env.Error.Message)
	assert.Nil(t, gone.env.Error.Details, "details are only rendered for kinds that allow them")

	missing := results["/missing"]
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "NOT_FOUND", missing.env.Error.Code)

	e, ok := findLog(entries, "server.error")
	require.True(t, ok, "transient errors are logged")
	assert.Contains(t, e.Error, "relation")
}

func TestUnknownRouteOnApp(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, raw := doJSON(t, app, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decode[envelope](t, raw)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "route not found", env.Error.Message)
}
