package uam

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"PeteSystem/api"
	"PeteSystem/api/auth"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"
)

const loginRowWidth = 6

func requireAdmin(w http.ResponseWriter, r *http.Request) *auth.UserSession {
	session := middlewares.GetSessionFromContext(r.Context())
	if session == nil {
		api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
		return nil
	}
	if !session.IsAdmin() {
		api.RespondWithError(w, http.StatusForbidden, constants.ErrAdminOnly)
		return nil
	}
	return session
}

// ListUsersHandler returns every account row, soft-deleted ones flagged.
func ListUsersHandler(authSvc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(w, r) == nil {
			return
		}
		users, err := authSvc.Users(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", users)
	}
}

// SaveUserRequest creates a new account or updates an existing row.
type SaveUserRequest struct {
	UserID   string   `json:"user_id"`
	RowIndex int      `json:"row_index,omitempty"` // 0 means create
	FullName string   `json:"full_name"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     string   `json:"role"`
	Pages    []string `json:"pages"`
}

// SaveUserHandler writes one Login row. Creation appends; updates overwrite
// the identified row in place. The stored page list is the internal page keys
// joined by commas, which the login path resolves back.
func SaveUserHandler(authSvc *auth.AuthService, store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := requireAdmin(w, r)
		if session == nil {
			return
		}

		req.FullName = strings.TrimSpace(req.FullName)
		req.Username = strings.TrimSpace(req.Username)
		req.Password = strings.TrimSpace(req.Password)
		if req.FullName == "" {
			api.RespondWithResult(w, false, constants.FormatMissingFieldError("Full name"))
			return
		}
		if req.Username == "" {
			api.RespondWithResult(w, false, constants.FormatMissingFieldError("Username"))
			return
		}
		if req.Password == "" {
			api.RespondWithResult(w, false, constants.FormatMissingFieldError("Password"))
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if role != "admin" {
			role = "user"
		}

		users, err := authSvc.Users(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		for _, u := range users {
			if u.Deleted || u.RowIndex == req.RowIndex {
				continue
			}
			if strings.EqualFold(u.Username, req.Username) {
				api.RespondWithResult(w, false, constants.FormatFieldError("Username", "already exists"))
				return
			}
		}

		row := sheetstore.Row{
			req.FullName,
			req.Username,
			req.Password,
			role,
			strings.Join(req.Pages, ","),
			" ", // keeps update from skipping the deleted cell
		}
		if req.RowIndex > config.LoginHeaderRows {
			err = store.Update(r.Context(), config.LoginSheet, req.RowIndex, row)
		} else {
			row[loginRowWidth-1] = ""
			err = store.Insert(r.Context(), config.LoginSheet, row)
		}
		if err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}

		// A changed username or password must not leave a stale session alive.
		authSvc.DropUserSession(req.Username)
		api.LogInfo("user %s saved by %s", req.Username, session.UserID)
		api.RespondWithResult(w, true, "")
	}
}

// DeleteUserHandler soft-deletes an account by writing the deleted sentinel
// into its row. The row itself stays so historical rows keep their author.
func DeleteUserHandler(authSvc *auth.AuthService, store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			RowIndex int    `json:"row_index"`
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := requireAdmin(w, r)
		if session == nil {
			return
		}
		if req.RowIndex <= config.LoginHeaderRows {
			api.RespondWithResult(w, false, constants.FormatFieldError("row_index", "is not a data row"))
			return
		}
		if strings.EqualFold(req.Username, session.UserID) {
			api.RespondWithResult(w, false, "You cannot delete your own account")
			return
		}

		row := make(sheetstore.Row, loginRowWidth)
		row[loginRowWidth-1] = auth.DeletedSentinel
		if err := store.Update(r.Context(), config.LoginSheet, req.RowIndex, row); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}
		authSvc.DropUserSession(req.Username)
		api.LogInfo("user %s deleted by %s", req.Username, session.UserID)
		api.RespondWithResult(w, true, "")
	}
}

func StartUAMService(authSvc *auth.AuthService, store *sheetstore.Client) {
	mux := http.NewServeMux()
	mux.Handle("/uam/users", middlewares.PreValidationMiddleware()(ListUsersHandler(authSvc)))
	mux.Handle("/uam/users/save", middlewares.PreValidationMiddleware()(SaveUserHandler(authSvc, store)))
	mux.Handle("/uam/users/delete", middlewares.PreValidationMiddleware()(DeleteUserHandler(authSvc, store)))

	log.Println("UAM Service started on :6125")
	err := http.ListenAndServe(":6125", mux)
	if err != nil {
		log.Fatalf("UAM Service failed: %v", err)
	}
}
