package core

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db/mock"
)

// newTestApp wires an App around a mock store with default configuration and
// a discarded log stream.
func newTestApp(t *testing.T, mockDb *mock.Db) *App {
	t.Helper()

	app, err := NewApp(
		WithDbApp(mockDb),
		WithConfigProvider(config.NewProvider(config.NewDefaultConfig())),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

// newJsonRequest builds a POST request with a JSON body and content type.
func newJsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", MimeTypeJSON)
	return req
}
