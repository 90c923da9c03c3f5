package receiving

import (
	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"
)

type ReceivingService struct {
	config map[string]interface{}
	store  *sheetstore.Client
}

func NewReceivingService(cfg map[string]interface{}, store *sheetstore.Client) serviceiface.Service {
	return &ReceivingService{config: cfg, store: store}
}

func (s *ReceivingService) Name() string {
	return "receiving"
}

func (s *ReceivingService) Start() error {
	go StartReceivingService(s.store)
	return nil
}

func (s *ReceivingService) Stop() error {
	return nil
}
