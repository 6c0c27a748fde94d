package worker

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/storage"

	"gorm.io/gorm"
)

// Janitor periodically removes orphan attachments: uploads that were never
// linked to a task within the configured TTL. Files go first, rows second,
// the same ordering the request path uses.
type Janitor struct {
	db       *gorm.DB
	paths    storage.Paths
	ttl      time.Duration
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJanitor(db *gorm.DB, paths storage.Paths, ttl, interval time.Duration) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		db:       db,
		paths:    paths,
		ttl:      ttl,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.ctx.Done():
				return
			case <-ticker.C:
				if reaped, err := j.Sweep(); err != nil {
					log.Printf("orphan sweep failed: %v", err)
				} else if reaped > 0 {
					log.Printf("orphan sweep removed %d stale attachments", reaped)
				}
			}
		}
	}()
}

func (j *Janitor) Stop() {
	j.cancel()
	j.wg.Wait()
}

// Sweep deletes attachments that have stayed unlinked longer than the TTL.
// Returns how many rows were removed.
func (j *Janitor) Sweep() (int, error) {
	cutoff := time.Now().Add(-j.ttl)

	var orphans []models.Attachment
	err := j.db.Where("task_id IS NULL AND created_at < ?", cutoff).Find(&orphans).Error
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, orphan := range orphans {
		diskPath, err := j.paths.DiskPath(orphan.FilePath)
		if err != nil {
			log.Printf("orphan attachment %d has corrupt stored reference %q, skipping file", orphan.ID, orphan.FilePath)
		} else if err := os.Remove(diskPath); err != nil && !os.IsNotExist(err) {
			log.Printf("orphan attachment %d: failed to remove file: %v", orphan.ID, err)
			continue
		}

		if err := j.db.Delete(&models.Attachment{}, "id = ?", orphan.ID).Error; err != nil {
			log.Printf("orphan attachment %d: failed to remove row: %v", orphan.ID, err)
			continue
		}
		reaped++
	}
	return reaped, nil
}
