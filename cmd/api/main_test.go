package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/taxy/internal/config"
	"github.com/noah-isme/taxy/internal/health"
)

func TestProtectPprofRequiresCredentials(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := protectPprof(inner, "ops", "secret")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestProtectPprofWithoutUserIsOpen(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rr := httptest.NewRecorder()
	protectPprof(inner, "", "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestLoadRegistryMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regimes.yaml")
	doc := "regimes:\n  - name: new\n    slabs:\n      - rate: 0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	registry, err := loadRegistry(&config.Config{RegimesFile: path})
	require.NoError(t, err)
	require.Equal(t, []string{"new", "old"}, registry.Names())

	regime, err := registry.Lookup("new")
	require.NoError(t, err)
	require.Len(t, regime.Slabs(), 1)
}

func TestLoadRegistryDefaults(t *testing.T) {
	registry, err := loadRegistry(&config.Config{})
	require.NoError(t, err)
	require.Equal(t, []string{"new", "old"}, registry.Names())

	_, err = loadRegistry(&config.Config{RegimesFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestReadinessCheckerWithoutRedis(t *testing.T) {
	err := readinessChecker{}.PingRedis(context.Background(), time.Second)
	require.True(t, errors.Is(err, health.ErrNotConfigured))
}

func TestAllowedOrigins(t *testing.T) {
	require.Equal(t, []string{"*"}, allowedOrigins(&config.Config{}))
	require.Equal(t, []string{"https://a.example"}, allowedOrigins(&config.Config{CORSAllowedOrigins: []string{"https://a.example"}}))
}

func TestPprofRoutesThroughRouter(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/debug/pprof", protectPprof(newPprofMux(), "", ""))

	for _, path := range []string{
		"/debug/pprof/",
		"/debug/pprof/cmdline",
		"/debug/pprof/symbol",
		"/debug/pprof/heap?debug=1",
		"/debug/pprof/goroutine?debug=1",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.NotContains(t, rr.Body.String(), "Unknown profile", path)
	}
}
