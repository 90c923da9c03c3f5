package transactions

import (
	"log"
	"net/http"
	"os"

	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/sheetstore"
)

func StartTransactionService(store *sheetstore.Client) {
	folderID := os.Getenv("TRANSACTION_FOLDER_ID")

	mux := http.NewServeMux()
	mux.Handle("/transactions/dashboard", middlewares.PreValidationMiddleware()(DashboardHandler(store)))
	mux.Handle("/transactions/reports", middlewares.PreValidationMiddleware()(ReportsHandler(store)))
	mux.Handle("/transactions/reports/detail", middlewares.PreValidationMiddleware()(ReportDetailHandler(store)))
	mux.Handle("/transactions/add", middlewares.PreValidationMiddleware()(AddTransactionHandler(store, folderID)))
	mux.Handle("/transactions/import", middlewares.PreValidationMiddleware()(ImportTransactionsHandler(store)))
	mux.Handle("/transactions/export", middlewares.PreValidationMiddleware()(ExportTransactionsHandler(store)))

	log.Println("Transaction Service started on :6121")
	err := http.ListenAndServe(":6121", mux)
	if err != nil {
		log.Fatalf("Transaction Service failed: %v", err)
	}
}
