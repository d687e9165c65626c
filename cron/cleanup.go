package cron

import (
	"context"
	"time"

	"renthaven/services/scheduling"
	"renthaven/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// staleRequestAge is how long a pending or proposed request may sit past
// its requested time before the sweep closes it.
const staleRequestAge = 24 * time.Hour

// InitCleanupScheduler starts the hourly sweep that closes viewing
// requests nobody acted on. Returns the scheduler so callers can Stop it.
func InitCleanupScheduler(requests scheduling.ViewingRequestService) *cron.Cron {
	logger := utils.GetLogger()

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		closed, err := requests.CloseStale(ctx, staleRequestAge)
		if err != nil {
			logger.Error("stale viewing sweep failed", zap.Error(err))
			return
		}
		if closed > 0 {
			logger.Info("closed stale viewing requests", zap.Int("count", closed))
		}
	}); err != nil {
		logger.Error("failed to register stale viewing sweep", zap.Error(err))
		return c
	}

	c.Start()
	logger.Info("stale viewing sweep scheduled", zap.String("cadence", "@hourly"))
	return c
}
