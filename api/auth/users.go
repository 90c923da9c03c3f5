package auth

import (
	"context"
)

// ManagedUser is one Login row as exposed to the user-management screen.
// Passwords are stored and returned in cleartext; that is how the sheet works.
type ManagedUser struct {
	RowIndex int      `json:"row_index"`
	FullName string   `json:"full_name"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     string   `json:"role"`
	Pages    []string `json:"pages"`
	Deleted  bool     `json:"deleted"`
}

// DeletedSentinel marks a soft-deleted Login row. The row is never removed.
const DeletedSentinel = "deleted"

// Users returns every Login row, soft-deleted ones included; callers filter.
func (a *AuthService) Users(ctx context.Context) ([]ManagedUser, error) {
	users, err := a.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ManagedUser, 0, len(users))
	for _, u := range users {
		out = append(out, ManagedUser{
			RowIndex: u.rowIndex,
			FullName: u.fullName,
			Username: u.username,
			Password: u.password,
			Role:     u.role,
			Pages:    u.pages,
			Deleted:  u.deleted,
		})
	}
	return out, nil
}

// DropUserSession removes the live session of username, if any.
func (a *AuthService) DropUserSession(username string) {
	if s := a.SessionByUserID(username); s != nil {
		_ = a.Logout(s.SessionID)
	}
}
