package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"PeteSystem/internal/sheetstore"
)

func newLoginProxy(t *testing.T, rows [][]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := append([][]interface{}{
			{"name", "username", "password", "role", "pages", "deleted"},
		}, rows...)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
	}))
}

func TestLoginMatchesCaseSensitively(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"Ravi Kumar", "Ravi", "Secret", "user", "dashboard", ""},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 10)

	if _, err := svc.Login(context.Background(), "ravi", "Secret", ""); err == nil {
		t.Error("lowercased username should not match")
	}
	if _, err := svc.Login(context.Background(), "Ravi", "secret", ""); err == nil {
		t.Error("lowercased password should not match")
	}
	session, err := svc.Login(context.Background(), "Ravi", "Secret", "10.0.0.1")
	if err != nil {
		t.Fatalf("exact credentials rejected: %v", err)
	}
	if session.Name != "Ravi Kumar" {
		t.Errorf("session name = %q, want the full name", session.Name)
	}
	if session.Role != "user" || session.IsAdmin() {
		t.Errorf("role = %q", session.Role)
	}
}

func TestLoginTrimsWhitespace(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"Ravi", "ravi", "pw", "user", "", ""},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 10)

	if _, err := svc.Login(context.Background(), "  ravi  ", " pw ", ""); err != nil {
		t.Fatalf("trimmed credentials rejected: %v", err)
	}
}

func TestLoginSkipsDeletedRows(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"Old", "old", "pw", "user", "", "deleted"},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 10)

	if _, err := svc.Login(context.Background(), "old", "pw", ""); err == nil {
		t.Error("soft-deleted account should not log in")
	}
}

func TestReLoginReturnsExistingSession(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"Ravi", "ravi", "pw", "user", "", ""},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 10)

	first, err := svc.Login(context.Background(), "ravi", "pw", "")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(context.Background(), "ravi", "pw", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.SessionID != second.SessionID {
		t.Errorf("re-login minted a new session: %s vs %s", first.SessionID, second.SessionID)
	}
	if got := len(svc.GetActiveSessions()); got != 1 {
		t.Errorf("%d active sessions, want 1", got)
	}
}

func TestLoginEnforcesMaxUsers(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"A", "a", "pw", "user", "", ""},
		{"B", "b", "pw", "user", "", ""},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 1)

	if _, err := svc.Login(context.Background(), "a", "pw", ""); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "b", "pw", ""); err == nil {
		t.Error("second login should hit the concurrent user cap")
	}
}

func TestLogoutDropsSession(t *testing.T) {
	srv := newLoginProxy(t, [][]interface{}{
		{"Ravi", "ravi", "pw", "user", "", ""},
	})
	defer srv.Close()
	svc := NewAuthService(sheetstore.NewClient(srv.URL), 10)

	session, err := svc.Login(context.Background(), "ravi", "pw", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(session.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.SessionByUserID("ravi") != nil {
		t.Error("session survived logout")
	}
	if err := svc.Logout(session.SessionID); err == nil {
		t.Error("double logout should fail")
	}
}

func TestResolvePages(t *testing.T) {
	got := ResolvePages("admin", "")
	if !reflect.DeepEqual(got, AllPages) {
		t.Errorf("admin pages = %v", got)
	}

	got = ResolvePages("user", "Dashboard, Add New Transaction, Repots, dashboard, bogus")
	want := []string{"dashboard", "form", "reports"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("user pages = %v, want %v", got, want)
	}

	if got := ResolvePages("user", ""); len(got) != 0 {
		t.Errorf("empty csv gave %v", got)
	}
}
