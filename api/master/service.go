package master

import (
	"context"
	"log"

	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"
)

type MasterService struct {
	config map[string]interface{}
	cache  *MasterCache
}

func NewMasterService(cfg map[string]interface{}, store *sheetstore.Client) serviceiface.Service {
	return &MasterService{config: cfg, cache: NewMasterCache(store)}
}

func (s *MasterService) Name() string {
	return "master"
}

func (s *MasterService) Start() error {
	if err := s.cache.Refresh(context.Background()); err != nil {
		log.Printf("initial master cache load failed, serving empty vocabularies: %v", err)
	}
	SetGlobalCache(s.cache)
	go StartMasterService(s.cache)
	return nil
}

func (s *MasterService) Stop() error {
	return nil
}

var globalCache *MasterCache

// SetGlobalCache publishes the cache for the cron refresh job.
func SetGlobalCache(c *MasterCache) {
	globalCache = c
}

// GlobalCache returns the published cache, or nil before the master service
// has started.
func GlobalCache() *MasterCache {
	return globalCache
}
