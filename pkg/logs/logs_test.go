package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("service", "mindbook")

	logger.Info("booked")
	logger.Warn("overlap rejected")

	assert.Equal(t, 2, bytes.Count(debugBuf.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(warnBuf.Bytes(), []byte("\n")))
	assert.Contains(t, warnBuf.String(), `"service":"mindbook"`)
}

func TestLokiWriter(t *testing.T) {
	var got lokiPush
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "grafana", user)
		assert.Equal(t, "secret", pass)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Logging.Output.Loki = config.LokiConfig{Enabled: true, Endpoint: srv.URL, Username: "grafana", Password: "secret"}
	cfg.Observability.ServiceName = "mindbook"
	cfg.Server.Environment = "test"

	logger := slog.New(newLokiHandler(cfg, slog.LevelInfo))
	logger.InfoContext(context.Background(), "session approved", "sid", "abc")

	require.Len(t, got.Streams, 1)
	assert.Equal(t, "mindbook", got.Streams[0].Stream["service"])
	require.Len(t, got.Streams[0].Values, 1)
	assert.Contains(t, got.Streams[0].Values[0][1], "session approved")
}
