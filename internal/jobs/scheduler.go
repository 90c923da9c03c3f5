package jobs

import (
	"fmt"
	"log"

	"PeteSystem/internal/serviceiface"

	"github.com/robfig/cron/v3"
)

type CronService struct {
	config map[string]interface{}
	crons  []*cron.Cron
}

func NewCronService(cfg map[string]interface{}) serviceiface.Service {
	return &CronService{config: cfg}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	refreshCfg := NewDefaultMasterRefreshConfig()
	if s.config != nil {
		if schedule, ok := s.config["master_refresh_schedule"].(string); ok && schedule != "" {
			refreshCfg.Schedule = schedule
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			refreshCfg.TimeZone = tz
		}
	}

	c, err := RunMasterRefreshScheduler(refreshCfg)
	if err != nil {
		return fmt.Errorf("failed to start master refresh scheduler: %v", err)
	}
	s.crons = append(s.crons, c)

	log.Println("Cron service started, master refresh scheduled")
	return nil
}

func (s *CronService) Stop() error {
	for _, c := range s.crons {
		c.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
