package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/covers"
	"github.com/shishobooks/catalog/pkg/database"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := config.NewForTest()
	cfg.CoverImageDir = t.TempDir()
	cfg.ServerPort = 4000

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	srv, err := New(cfg, db, covers.NewStore(cfg.CoverImageDir))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", srv.Addr)

	t.Run("health", func(tt *testing.T) {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(tt, http.StatusOK, rr.Code)
	})

	t.Run("root page", func(tt *testing.T) {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(tt, http.StatusOK, rr.Code)
		assert.Contains(tt, rr.Body.String(), "Recently Added")
	})

	t.Run("unknown pages render the error view", func(tt *testing.T) {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(tt, http.StatusNotFound, rr.Code)
		assert.Contains(tt, rr.Body.String(), "Page not found.")
	})

	t.Run("method override routes deletes", func(tt *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books/42", strings.NewReader("_method=DELETE"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(tt, http.StatusFound, rr.Code)
		assert.Equal(tt, "/", rr.Header().Get("Location"))
	})

	t.Run("oversized bodies are rejected", func(tt *testing.T) {
		small := config.NewForTest()
		small.MaxUploadSizeBytes = 1024
		srv, err := New(small, db, covers.NewStore(cfg.CoverImageDir))
		require.NoError(tt, err)

		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("title="+strings.Repeat("a", 4096)))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(tt, http.StatusRequestEntityTooLarge, rr.Code)
	})
}
