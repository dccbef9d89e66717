package logging

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than 30 days
// and processed digest entries older than digestRetention. db may be nil when
// running on the in-memory store.
func StartCleanup(db *gorm.DB, digests repository.DigestRepository, digestRetention time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				RunCleanup(context.Background(), db, digests, digestRetention, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func RunCleanup(ctx context.Context, db *gorm.DB, digests repository.DigestRepository, digestRetention time.Duration, now time.Time) {
	if db != nil {
		cutoff := now.AddDate(0, 0, -30)
		result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
		if result.Error != nil {
			slog.Error("log cleanup failed", "action", "system_log_cleanup", "error", result.Error.Error())
		} else if result.RowsAffected > 0 {
			slog.Info("log cleanup completed", "deleted", result.RowsAffected)
		}
	}

	if digests != nil && digestRetention > 0 {
		n, err := digests.PurgeProcessed(ctx, now.Add(-digestRetention))
		if err != nil {
			slog.Error("digest queue cleanup failed", "action", "digest_cleanup", "error", err.Error())
		} else if n > 0 {
			slog.Info("digest queue cleanup completed", "deleted", n)
		}
	}
}
