package jobs

import (
	"context"
	"fmt"
	"time"

	"PeteSystem/api/master"
	"PeteSystem/internal/config"
	"PeteSystem/internal/logger"

	"github.com/robfig/cron/v3"
)

// MasterRefreshConfig controls the periodic vocabulary cache rebuild.
type MasterRefreshConfig struct {
	Schedule string
	TimeZone string
	Timeout  time.Duration
}

func NewDefaultMasterRefreshConfig() MasterRefreshConfig {
	return MasterRefreshConfig{
		Schedule: config.DefaultMasterRefreshSchedule,
		TimeZone: config.DefaultTimeZone,
		Timeout:  30 * time.Second,
	}
}

// RunMasterRefreshScheduler keeps the dropdown vocabularies warm so the form
// endpoints never wait on the sheet. The job is skipped quietly until the
// master service has published its cache.
func RunMasterRefreshScheduler(cfg MasterRefreshConfig) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %v", cfg.TimeZone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		cache := master.GlobalCache()
		if cache == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := cache.Refresh(ctx); err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Master cache refresh failed: %v", err))
			}
			return
		}
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("Master cache refreshed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule master cache refresh: %v", err)
	}

	c.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Master refresh scheduler started with schedule: %s (timezone: %s)", cfg.Schedule, cfg.TimeZone))
	}
	return c, nil
}
