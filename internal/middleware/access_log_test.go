package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp(t *testing.T) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(AccessLog(zap.New(core)))
	app.Use(recover.New())

	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/fail", func(c fiber.Ctx) error { return errors.New("boom") })
	app.Get("/panic", func(c fiber.Ctx) error { panic("boom") })
	return app, logs
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		path       string
		wantStatus int
		wantLevel  zapcore.Level
	}{
		{"/ok", http.StatusOK, zapcore.InfoLevel},
		{"/missing", http.StatusNotFound, zapcore.WarnLevel},
		{"/fail", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"/panic", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			app, logs := newTestApp(t)

			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			entries := logs.FilterMessage("request").All()
			if len(entries) != 1 {
				t.Fatalf("access log entries = %d, want 1", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry.Level, tt.wantLevel)
			}

			fields := entry.ContextMap()
			if got, _ := fields["status"].(int64); int(got) != tt.wantStatus {
				t.Errorf("status field = %v, want %d", fields["status"], tt.wantStatus)
			}
			if fields["path"] != tt.path || fields["method"] != http.MethodGet {
				t.Errorf("fields = %v", fields)
			}
			if id, _ := fields["request_id"].(string); id == "" || id != resp.Header.Get(fiber.HeaderXRequestID) {
				t.Errorf("request_id = %q, header = %q", id, resp.Header.Get(fiber.HeaderXRequestID))
			}
		})
	}
}
