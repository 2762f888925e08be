package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/features/draw/engine"
	"lucky-draw-backend/internal/features/draw/models"
	drawservice "lucky-draw-backend/internal/features/draw/service"
	"lucky-draw-backend/internal/features/ledger/repository"
	"lucky-draw-backend/internal/features/ledger/repository/memory"
	ledgerservice "lucky-draw-backend/internal/features/ledger/service"
	"lucky-draw-backend/internal/features/proof"
)

type downRepo struct {
	repository.EntryRepository
}

func (downRepo) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

func newTestRouter(t *testing.T, repo repository.EntryRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{ServiceName: "lucky-draw-test"}
	cfg.Store.Driver = config.StoreDriverMemory
	cfg.Proof.MaxBytes = 1024
	cfg.Ledger.AllLimit = 100

	eng, err := engine.New(models.DefaultPrizeTable(), nil)
	require.NoError(t, err)
	ledger := ledgerservice.NewLedgerService(repo, ledgerservice.Options{Location: time.UTC, Tiers: models.TierNames()})
	draws := drawservice.NewDrawService(eng, ledger, proof.NewInlineStore(), drawservice.Options{})

	r := gin.New()
	setupRoutes(r, cfg, draws, ledger, nil)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProbes(t *testing.T) {
	r := newTestRouter(t, memory.NewMemoryRepository())

	assert.Equal(t, http.StatusOK, get(r, "/live").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health").Code)

	w := get(r, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestReadyReportsStoreOutage(t *testing.T) {
	r := newTestRouter(t, downRepo{memory.NewMemoryRepository()})

	w := get(r, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ledger store unavailable")
}

func TestAPIRoutesAreMounted(t *testing.T) {
	r := newTestRouter(t, memory.NewMemoryRepository())

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/tiers").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/entries/today").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/admin/entries").Code, "admin disabled without a token")
}

func TestOpenRepositoryDrivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Driver = config.StoreDriverMemory
	repo, err := openRepository(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, repo.Ping(context.Background()))

	cfg.Store.Driver = config.StoreDriverSQLite
	cfg.Store.SQLitePath = t.TempDir() + "/ledger.db"
	repo, err = openRepository(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, repo.Ping(context.Background()))
	require.NoError(t, repo.Close())

	cfg.Store.Driver = "cassandra"
	_, err = openRepository(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenProofStoreInline(t *testing.T) {
	cfg := &config.Config{}
	cfg.Proof.Driver = config.ProofDriverInline
	store, err := openProofStore(context.Background(), cfg)
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", ref)
}
