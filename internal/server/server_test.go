package server

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"qbwc-sync-be/internal/bootstrap"
	"qbwc-sync-be/internal/config"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.OpenGormQuiet(database.DriverSQLite, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			BaseURL:            "https://sync.example.com",
			LogFilePath:        filepath.Join(t.TempDir(), "app.log.json"),
			CorsAllowedOrigins: "*",
			JWTSecret:          "jwt-secret",
		},
		WebConnector: config.WebConnectorConfig{
			SharedSecret:  "s3cret",
			ServerVersion: "9.9.9",
			EndpointPath:  "/qbwc",
			AppName:       "QB Sync",
		},
	}
	return New(cfg, bootstrap.NewContainer(db, cfg))
}

func TestServerRoutes(t *testing.T) {
	app := newTestServer(t).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/qbwc?wsdl", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "https://sync.example.com/qbwc")

	envelope := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		`<serverVersion xmlns="http://developer.intuit.com/" /></soap:Body></soap:Envelope>`
	req := httptest.NewRequest("POST", "/qbwc", strings.NewReader(envelope))
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<serverVersionResult>9.9.9</serverVersionResult>")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/sync/v1/sessions/abc/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
