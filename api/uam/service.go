package uam

import (
	"PeteSystem/api/auth"
	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"
)

type UAMService struct {
	config  map[string]interface{}
	authSvc *auth.AuthService
	store   *sheetstore.Client
}

func NewUAMService(cfg map[string]interface{}, authSvc *auth.AuthService, store *sheetstore.Client) serviceiface.Service {
	return &UAMService{config: cfg, authSvc: authSvc, store: store}
}

func (s *UAMService) Name() string {
	return "uam"
}

func (s *UAMService) Start() error {
	go StartUAMService(s.authSvc, s.store)
	return nil
}

func (s *UAMService) Stop() error {
	return nil
}
