package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestHelpersWriteActionAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info(nil, "seed.done", map[string]any{"albums": 3})
	Audit(nil, "order.status", nil)
	Security(nil, "auth.login.fail", map[string]any{"reason": "bad_password"})
	Error(nil, "checkout.fail", errors.New("boom"), nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "seed.done", lines[0]["action"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, float64(3), lines[0]["fields"].(map[string]any)["albums"])

	assert.Equal(t, "audit", lines[1]["level"])
	assert.Equal(t, "security", lines[2]["kind"])
	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "boom", lines[3]["error"])
	assert.NotEmpty(t, lines[3]["ts"])
}

func TestAccessMiddlewareLogsStatusAndUser(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	app := fiber.New()
	app.Use(Access())
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, "u-1")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "http.access", lines[0]["action"])
	assert.Equal(t, float64(204), lines[0]["status"])
	assert.Equal(t, "u-1", lines[0]["user_id"])
	assert.Equal(t, "/missing", lines[1]["path"])
	assert.Equal(t, float64(404), lines[1]["status"])
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumshop.log")
	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "info", Output: &buf, File: path})
	require.NoError(t, err)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info(nil, "startup", nil)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"startup"`)
	assert.Contains(t, buf.String(), `"action":"startup"`)
}
