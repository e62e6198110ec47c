package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "user_id"

// Options configures the process logger.
type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // json|console
	Output io.Writer
	File   string // optional path; lines are written to Output and File
}

var current atomic.Pointer[zerolog.Logger]

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	current.Store(&l)
}

// Setup installs the process logger. The returned closer releases the log
// file, if any.
func Setup(opts Options) (io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f
	}

	l := zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(opts.Level))
	current.Store(&l)
	return closer, nil
}

// SetOutput swaps the destination while keeping JSON format. Tests use it to
// capture entries.
func SetOutput(w io.Writer) {
	l := zerolog.New(w).With().Timestamp().Logger()
	current.Store(&l)
}

// Base returns the process logger for code that has no request context.
func Base() *zerolog.Logger { return current.Load() }

func ParseLevel(value string) zerolog.Level {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(v); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func withRequest(ev *zerolog.Event, c *fiber.Ctx) *zerolog.Event {
	if c == nil {
		return ev
	}
	ev = ev.Str("ip", c.IP()).
		Str("method", c.Method()).
		Str("path", c.Path())
	if st := c.Response().StatusCode(); st != 0 {
		ev = ev.Int("status", st)
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		ev = ev.Str("req_id", rid)
	}
	if uid, ok := c.Locals(LocalUserID).(string); ok && uid != "" {
		ev = ev.Str("user_id", uid)
	}
	return ev
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, fields map[string]any) {
	ev = withRequest(ev, c).Str("action", action)
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(Base().Info(), c, action, fields)
}

// Audit records a state change made by a user or admin. Audit lines bypass
// the level filter.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(Base().Log().Str("level", "audit"), c, action, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(Base().Warn().Str("kind", "security"), c, action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(Base().Error().Err(err), c, action, fields)
}

// Access logs one line per request after the handler chain (and the app
// error handler) has produced the response.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		ev := Base().Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = Base().Error()
		}
		ev = ev.Int64("latency_ms", time.Since(start).Milliseconds())
		write(ev, c, "http.access", nil)
		return nil
	}
}
