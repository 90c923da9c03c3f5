package master

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"PeteSystem/api"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
)

// GetOptionsHandler serves the cached dropdown vocabularies. It never hits the
// sheet on the request path.
func GetOptionsHandler(cache *MasterCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"options":              cache.All(),
			"fetched_at":           cache.FetchedAt().Format(time.RFC3339),
		})
	}
}

// RefreshOptionsHandler forces an immediate cache rebuild.
func RefreshOptionsHandler(cache *MasterCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if err := cache.Refresh(r.Context()); err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", cache.All())
	}
}

// AddOptionHandler adds one value to a vocabulary column. Any logged-in user
// may add options; the transaction form offers inline "add new" for group
// heads and reasons to every user.
func AddOptionHandler(cache *MasterCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID     string `json:"user_id"`
			Vocabulary string `json:"vocabulary"`
			Value      string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if err := cache.AddOption(r.Context(), req.Vocabulary, req.Value); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}
		api.LogInfo("master option added to %s by %s", req.Vocabulary, session.UserID)
		api.RespondWithResult(w, true, "")
	}
}

func StartMasterService(cache *MasterCache) {
	mux := http.NewServeMux()
	mux.Handle("/master/options", middlewares.PreValidationMiddleware()(GetOptionsHandler(cache)))
	mux.Handle("/master/options/refresh", middlewares.PreValidationMiddleware()(RefreshOptionsHandler(cache)))
	mux.Handle("/master/options/add", middlewares.PreValidationMiddleware()(AddOptionHandler(cache)))

	log.Println("Master Service started on :6123")
	err := http.ListenAndServe(":6123", mux)
	if err != nil {
		log.Fatalf("Master Service failed: %v", err)
	}
}
