package worker_test

import (
	"os"
	"testing"
	"time"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/storage"
	"taskboard/backend/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJanitorTest(t *testing.T) (*gorm.DB, storage.Paths) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repositories.Migrate(db))

	paths, err := storage.NewPaths(t.TempDir(), "/uploads")
	require.NoError(t, err)
	require.NoError(t, paths.EnsureRoot())

	return db, paths
}

func createAttachment(t *testing.T, db *gorm.DB, paths storage.Paths, storedName string, taskID *uint, age time.Duration) models.Attachment {
	t.Helper()

	require.NoError(t, os.WriteFile(paths.StoredPath(storedName), []byte("data"), 0o644))

	attachment := models.Attachment{
		Filename:   storedName,
		FilePath:   paths.PublicURL(storedName),
		UploaderID: 1,
		TaskID:     taskID,
	}
	require.NoError(t, db.Create(&attachment).Error)

	createdAt := time.Now().Add(-age)
	require.NoError(t, db.Model(&models.Attachment{}).Where("id = ?", attachment.ID).Update("created_at", createdAt).Error)

	return attachment
}

func TestJanitorSweepReapsStaleOrphans(t *testing.T) {
	db, paths := setupJanitorTest(t)

	stale := createAttachment(t, db, paths, "stale.txt", nil, 48*time.Hour)
	staleDiskPath, err := paths.DiskPath(stale.FilePath)
	require.NoError(t, err)

	janitor := worker.NewJanitor(db, paths, 24*time.Hour, time.Hour)
	reaped, err := janitor.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	_, statErr := os.Stat(staleDiskPath)
	assert.True(t, os.IsNotExist(statErr), "stale orphan file should be removed")

	var count int64
	db.Model(&models.Attachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestJanitorSweepSparesLinkedAndFreshAttachments(t *testing.T) {
	db, paths := setupJanitorTest(t)

	task := models.Task{OwnerID: 1, Title: "keeper"}
	require.NoError(t, db.Create(&task).Error)

	linked := createAttachment(t, db, paths, "linked.txt", &task.ID, 48*time.Hour)
	fresh := createAttachment(t, db, paths, "fresh.txt", nil, time.Minute)

	janitor := worker.NewJanitor(db, paths, 24*time.Hour, time.Hour)
	reaped, err := janitor.Sweep()
	require.NoError(t, err)
	assert.Zero(t, reaped)

	for _, a := range []models.Attachment{linked, fresh} {
		diskPath, err := paths.DiskPath(a.FilePath)
		require.NoError(t, err)
		_, statErr := os.Stat(diskPath)
		assert.NoError(t, statErr, "attachment %d should keep its file", a.ID)
	}

	var count int64
	db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestJanitorSweepSkipsCorruptReferences(t *testing.T) {
	db, paths := setupJanitorTest(t)

	attachment := models.Attachment{
		Filename:   "evil.txt",
		FilePath:   "/uploads/../outside.txt",
		UploaderID: 1,
	}
	require.NoError(t, db.Create(&attachment).Error)
	createdAt := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.Attachment{}).Where("id = ?", attachment.ID).Update("created_at", createdAt).Error)

	janitor := worker.NewJanitor(db, paths, 24*time.Hour, time.Hour)
	reaped, err := janitor.Sweep()
	require.NoError(t, err)

	// The row is still reaped; only the file removal is skipped.
	assert.Equal(t, 1, reaped)
	var count int64
	db.Model(&models.Attachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestJanitorStartStop(t *testing.T) {
	db, paths := setupJanitorTest(t)

	janitor := worker.NewJanitor(db, paths, 24*time.Hour, 10*time.Millisecond)
	janitor.Start()
	time.Sleep(30 * time.Millisecond)
	janitor.Stop()
}
