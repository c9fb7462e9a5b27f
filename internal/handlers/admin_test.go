package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"
	"property-catalog/internal/ratelimit"
	"property-catalog/internal/repository"
	"property-catalog/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAdminRouter wires the real stack on SQLite, as cmd/api does for GORM backends.
func newAdminRouter(t *testing.T) (*gin.Engine, *database.GormDB, repository.PropertyRepo) {
	t.Helper()
	gdb, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "admin.db"), "silent")
	require.NoError(t, err)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { _ = gdb.Close() })

	log := logger.NewNop()
	repo := repository.NewPropertyRepo(database.NewGormStore(gdb, log), log)
	svc := cleanup.NewService(gdb.DB(), log)
	sched := scheduler.NewScheduler(svc, config.CleanupConfig{RetentionDays: 30, MaxDeletionCount: 10}, log)

	r := NewRouter(RouterConfig{
		Repo:    repo,
		Limiter: ratelimit.NewRateLimiter(config.RateLimitConfig{Enabled: false}),
		Admin:   NewAdminHandler(svc, sched, log),
		Log:     log,
	})
	return r, gdb, repo
}

func TestAdminCleanupFlow(t *testing.T) {
	r, gdb, repo := newAdminRouter(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Property{
		Title: "Old", Description: "d", Address: "a", City: "Springfield", District: "North",
		Price: 1, Area: 1, Bedrooms: 1, Bathrooms: 1,
		Type: models.PropertyTypeStudio, Status: models.ListingStatusRented,
	})
	require.NoError(t, err)

	// soft delete through the API, then age the row past retention
	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/properties/"+strconv.FormatInt(created.ID, 10), nil).Code)
	old := time.Now().UTC().AddDate(0, 0, -60)
	require.NoError(t, gdb.DB().Model(&models.Property{}).Where("id = ?", created.ID).Update("updated_at", old).Error)

	w := do(r, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats cleanup.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.SoftDeleted)
	assert.Equal(t, 1, stats.ExpiredReady)

	t.Run("dry run first", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/admin/cleanup/run", map[string]interface{}{"dry_run": true})
		require.Equal(t, http.StatusOK, w.Code)
		var result cleanup.PurgeResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.DryRun)
		assert.Equal(t, 1, result.PurgedCount)
	})

	t.Run("real run without a body", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/admin/cleanup/run", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var result cleanup.PurgeResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.DryRun)
		assert.Equal(t, []int64{created.ID}, result.PurgedProperties)
	})

	t.Run("logs", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/admin/cleanup/logs?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Logs  []models.PurgeLog `json:"logs"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, 1, body.Count)
		assert.Equal(t, models.PurgeReasonManual, body.Logs[0].Reason)
	})
}

// expiredProperty creates a property, soft-deletes it and ages it past any retention.
func expiredProperty(t *testing.T, gdb *database.GormDB, repo repository.PropertyRepo, title string) int64 {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Property{
		Title: title, Description: "d", Address: "a", City: "Springfield", District: "North",
		Price: 1, Area: 1, Bedrooms: 1, Bathrooms: 1,
		Type: models.PropertyTypeStudio, Status: models.ListingStatusRented,
	})
	require.NoError(t, err)
	ok, err := repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	old := time.Now().UTC().AddDate(0, 0, -365)
	require.NoError(t, gdb.DB().Model(&models.Property{}).Where("id = ?", created.ID).Update("updated_at", old).Error)
	return created.ID
}

func TestAdminCleanupErrors(t *testing.T) {
	t.Run("safety limit is a conflict", func(t *testing.T) {
		r, gdb, repo := newAdminRouter(t)
		expiredProperty(t, gdb, repo, "A")
		expiredProperty(t, gdb, repo, "B")

		w := do(r, http.MethodPost, "/api/admin/cleanup/run", map[string]interface{}{"max_deletion_count": 1})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "max deletion limit of 1")

		var remaining int64
		require.NoError(t, gdb.DB().Model(&models.Property{}).Count(&remaining).Error)
		assert.Equal(t, int64(2), remaining)
	})

	t.Run("store failure hides details", func(t *testing.T) {
		r, gdb, _ := newAdminRouter(t)
		require.NoError(t, gdb.Close())

		w := do(r, http.MethodPost, "/api/admin/cleanup/run", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	})
}

func TestAdminRoutesAbsentWithoutHandler(t *testing.T) {
	r := newTestRouter(newFakeRepo(), noLimit())
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/admin/stats", nil).Code)
}
