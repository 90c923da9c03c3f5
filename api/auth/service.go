package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"PeteSystem/api/constants"
	"PeteSystem/internal/config"
	"PeteSystem/internal/logger"
	"PeteSystem/internal/serviceiface"
	"PeteSystem/internal/sheetstore"

	"github.com/google/uuid"
)

// Login sheet column layout (one header row).
const (
	colFullName = 0
	colUsername = 1
	colPassword = 2
	colRole     = 3
	colPages    = 4
	colDeleted  = 5
)

// AllPages are every page key the application knows. Admin accounts get all of
// them regardless of what the sheet stores.
var AllPages = []string{"dashboard", "request", "approval", "form", "reports", "users"}

// pageNameMapping maps the display names stored in the Pages column to internal
// page keys. Unknown names are dropped. "repots" is a long-standing typo in the
// sheet data.
var pageNameMapping = map[string]string{
	"dashboard":           "dashboard",
	"request":             "request",
	"approval":            "approval",
	"add new transaction": "form",
	"form":                "form",
	"reports":             "reports",
	"repots":              "reports",
}

type UserSession struct {
	SessionID     string   `json:"session_id"`
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Pages         []string `json:"pages"`
	LastLoginTime string   `json:"last_login_time"`
	ClientIP      string   `json:"client_ip"`
	IsLoggedIn    bool     `json:"is_logged_in"`
}

// IsAdmin reports whether the session's role grants full access.
func (s *UserSession) IsAdmin() bool {
	return s.Role == "admin"
}

// sheetUser is one parsed Login row.
type sheetUser struct {
	rowIndex int // absolute 1-based row in the sheet
	fullName string
	username string
	password string
	role     string
	pages    []string
	deleted  bool
}

type AuthService struct {
	store        *sheetstore.Client
	maxUsers     int
	sessions     map[string]*UserSession
	userPointers map[string]*UserSession
	mu           sync.Mutex
	stopCh       chan struct{}
}

func NewAuthService(store *sheetstore.Client, maxUsers int) *AuthService {
	if maxUsers <= 0 {
		maxUsers = 100
	}
	return &AuthService{
		store:        store,
		maxUsers:     maxUsers,
		sessions:     make(map[string]*UserSession),
		userPointers: make(map[string]*UserSession),
		stopCh:       make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

var _ serviceiface.Service = (*AuthService)(nil)

// Login matches the submitted credentials against the Login sheet. The match is
// exact and case-sensitive on the trimmed username and password; soft-deleted
// rows never match. A second login for an already active user returns the
// existing session.
func (a *AuthService) Login(ctx context.Context, username, password, clientIP string) (*UserSession, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, errors.New(constants.ErrInvalidCredentials)
	}

	users, err := a.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}

	var matched *sheetUser
	for i := range users {
		u := &users[i]
		if u.deleted {
			continue
		}
		if u.username == username && u.password == password {
			matched = u
			break
		}
	}
	if matched == nil {
		return nil, errors.New(constants.ErrInvalidCredentials)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.userPointers[matched.username]; ok && existing.IsLoggedIn {
		existing.LastLoginTime = time.Now().Format(time.RFC3339)
		existing.ClientIP = clientIP
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("User %s re-logged in, returning existing session", username))
		}
		return existing, nil
	}

	if len(a.sessions) >= a.maxUsers {
		return nil, errors.New(constants.ErrMaxUsers)
	}

	name := matched.fullName
	if name == "" {
		name = matched.username
	}
	session := &UserSession{
		SessionID:     uuid.New().String(),
		UserID:        matched.username,
		Name:          name,
		Role:          matched.role,
		Pages:         matched.pages,
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
		IsLoggedIn:    true,
	}
	a.sessions[session.SessionID] = session
	a.userPointers[session.UserID] = session

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged in: " + username)
	}
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.sessions, sessionID)
	delete(a.userPointers, session.UserID)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged out: " + session.UserID)
	}
	return nil
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// SessionByUserID returns the active session for userID, or nil.
func (a *AuthService) SessionByUserID(userID string) *UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userPointers[userID]
}

func (a *AuthService) fetchUsers(ctx context.Context) ([]sheetUser, error) {
	rows, err := a.store.Fetch(ctx, config.LoginSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= config.LoginHeaderRows {
		return nil, nil
	}
	users := make([]sheetUser, 0, len(rows)-config.LoginHeaderRows)
	for i, row := range rows[config.LoginHeaderRows:] {
		u := parseLoginRow(row, i+config.LoginHeaderRows+1)
		if u.username == "" {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func parseLoginRow(row sheetstore.Row, rowIndex int) sheetUser {
	role := strings.ToLower(strings.TrimSpace(row.Cell(colRole)))
	if role != "admin" {
		role = "user"
	}
	return sheetUser{
		rowIndex: rowIndex,
		fullName: strings.TrimSpace(row.Cell(colFullName)),
		username: strings.TrimSpace(row.Cell(colUsername)),
		password: strings.TrimSpace(row.Cell(colPassword)),
		role:     role,
		pages:    ResolvePages(role, row.Cell(colPages)),
		deleted:  strings.TrimSpace(row.Cell(colDeleted)) != "",
	}
}

// ResolvePages turns the stored role and comma-separated page list into the set
// of page keys the user may open. Admin gets every page; for users, names are
// matched case-insensitively against the display-name dictionary, unknown names
// dropped and duplicates removed, preserving first occurrence order.
func ResolvePages(role, pagesCSV string) []string {
	if strings.EqualFold(strings.TrimSpace(role), "admin") {
		out := make([]string, len(AllPages))
		copy(out, AllPages)
		return out
	}
	seen := make(map[string]bool)
	var pages []string
	for _, part := range strings.Split(pagesCSV, ",") {
		key, ok := pageNameMapping[strings.ToLower(strings.TrimSpace(part))]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		pages = append(pages, key)
	}
	return pages
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// session expiry logic can be added here
		}
	}
}

var globalAuthService *AuthService

// SetGlobalAuthService sets the global AuthService instance
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}
