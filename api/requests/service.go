package requests

import (
	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"
)

type RequestService struct {
	config map[string]interface{}
	store  *sheetstore.Client
}

func NewRequestService(cfg map[string]interface{}, store *sheetstore.Client) serviceiface.Service {
	return &RequestService{config: cfg, store: store}
}

func (s *RequestService) Name() string {
	return "requests"
}

func (s *RequestService) Start() error {
	go StartRequestService(s.store)
	return nil
}

func (s *RequestService) Stop() error {
	return nil
}
