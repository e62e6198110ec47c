package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"albumshop/internal/config"
	"albumshop/internal/http/routes"
	applog "albumshop/internal/log"
	"albumshop/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		Port:            "0",
		DBDriver:        "sqlite",
		DBDSN:           ":memory:",
		JWTSecret:       "test-secret",
		JWTIssuer:       "albumshop-test",
		JWTTTL:          time.Hour,
		BcryptCost:      bcrypt.MinCost,
		CORSOrigins:     []string{"http://localhost:3000"},
		BodyLimit:       1 << 20,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		LoginRateMax:    100,
	}
}

// newTestApp builds the real app over a seeded in-memory database.
func newTestApp(t *testing.T, mutate func(*config.Config)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedDemo(t.Context(), db, cfg.BcryptCost))
	return routes.NewApp(db, cfg, nil), db
}

type envelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": repos.DemoPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	out := decode[struct {
		Token string `json:"token"`
	}](t, raw)
	require.NotEmpty(t, out.Token)
	return out.Token
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Status int            `json:"status"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Error  string         `json:"error"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

// captureLogs redirects the process logger while fn runs and returns the
// decoded entries.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e logEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		entries = append(entries, e)
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
