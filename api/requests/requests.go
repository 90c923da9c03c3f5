package requests

import (
	"log"
	"net/http"
	"os"

	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/sheetstore"
)

func StartRequestService(store *sheetstore.Client) {
	folderID := os.Getenv("REQUEST_FOLDER_ID")

	mux := http.NewServeMux()
	mux.Handle("/requests/list", middlewares.PreValidationMiddleware()(ListRequestsHandler(store)))
	mux.Handle("/requests/create", middlewares.PreValidationMiddleware()(CreateRequestHandler(store, folderID)))
	mux.Handle("/requests/bulk-approve", middlewares.PreValidationMiddleware()(BulkApproveHandler(store)))
	mux.Handle("/requests/bulk-reject", middlewares.PreValidationMiddleware()(BulkRejectHandler(store)))

	log.Println("Request Service started on :6122")
	err := http.ListenAndServe(":6122", mux)
	if err != nil {
		log.Fatalf("Request Service failed: %v", err)
	}
}
