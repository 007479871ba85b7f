package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoring-api/internal/api"
	"scoring-api/internal/config"
	"scoring-api/internal/logging"
	"scoring-api/internal/middleware"
	"scoring-api/internal/store"
)

func TestOpenStoreMemoryWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"i:1": ["cars"]}`), 0o644))

	cfg := config.Default()
	cfg.StoreSeed = seed
	st, err := openStore(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	defer st.Close()

	require.IsType(t, &store.MemoryStore{}, st)
	v, err := st.Get(context.Background(), "i:1")
	require.NoError(t, err)
	assert.Equal(t, `["cars"]`, v)
}

func TestOpenStoreBadSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{`), 0o644))

	cfg := config.Default()
	cfg.StoreSeed = seed
	_, err := openStore(context.Background(), cfg, logging.Nop())
	assert.Error(t, err)
}

func TestChiWithMiddleware(t *testing.T) {
	d := api.NewDispatcher(api.NewAuthenticator(api.AuthConfig{Salt: "s", AdminSalt: "a"}), nil)
	h := chiWithMiddleware(api.NewHandler(d, api.HandlerConfig{}).Router(), logging.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nowhere", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 32)
	assert.JSONEq(t, `{"error": "Not Found", "code": 404}`, rec.Body.String())
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"port", "log", "config", "redis-addr", "metrics-addr"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "p", cmd.Flags().Lookup("port").Shorthand)
	assert.Equal(t, "l", cmd.Flags().Lookup("log").Shorthand)
}
