package services_test

import (
	"testing"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedTaskService_ReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := cache.DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()

	db := setupTestDB(t)
	paths := setupTestPaths(t)
	svc := services.NewCachedTaskService(services.NewTaskService(paths), redisCache)

	created, err := svc.CreateTask(db, models.Task{OwnerID: 7, Title: "cached"}, nil)
	require.NoError(t, err)

	// First read populates the cache, second read is served from it.
	first, err := svc.GetTaskByID(db, created.ID)
	require.NoError(t, err)

	require.NoError(t, db.Exec("UPDATE tasks SET title = ? WHERE id = ?", "changed behind cache", created.ID).Error)

	second, err := svc.GetTaskByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title, "second read should come from cache")
}

func TestCachedTaskService_DeleteInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := cache.DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()

	db := setupTestDB(t)
	paths := setupTestPaths(t)
	svc := services.NewCachedTaskService(services.NewTaskService(paths), redisCache)

	created, err := svc.CreateTask(db, models.Task{OwnerID: 7, Title: "doomed"}, nil)
	require.NoError(t, err)

	_, err = svc.GetTaskByID(db, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(db, created.ID))

	_, err = svc.GetTaskByID(db, created.ID)
	assert.Error(t, err, "deleted task must not be served from cache")
}
