package transactions

import (
	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"
)

type TransactionService struct {
	config map[string]interface{}
	store  *sheetstore.Client
}

func NewTransactionService(cfg map[string]interface{}, store *sheetstore.Client) serviceiface.Service {
	return &TransactionService{config: cfg, store: store}
}

func (s *TransactionService) Name() string {
	return "transactions"
}

func (s *TransactionService) Start() error {
	go StartTransactionService(s.store)
	return nil
}

func (s *TransactionService) Stop() error {
	return nil
}
