package schoolapi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/session"
)

var loginPaths = map[session.Role]string{
	session.RoleAdmin:   "/auth/login",
	session.RoleFaculty: "/auth/faculty/login",
	session.RoleStudent: "/auth/student/login",
}

// AuthAPI implements session.AuthAPI.
type AuthAPI struct {
	c *Client
}

var _ session.AuthAPI = (*AuthAPI)(nil)

// LoginPath returns the authentication endpoint of role.
func LoginPath(role session.Role) (string, bool) {
	path, ok := loginPaths[role]
	return path, ok
}

func (api *AuthAPI) Login(ctx context.Context, role session.Role, creds session.Credentials) (session.AuthResult, error) {
	var res session.AuthResult
	path, ok := LoginPath(role)
	if !ok {
		return res, errors.Errorf("no login endpoint for role %d", role)
	}
	err := api.c.WithSession(nil).doJSON(ctx, http.MethodPost, path, creds, &res)
	return res, err
}

func (api *AuthAPI) Signup(ctx context.Context, reg session.Registration) (session.AuthResult, error) {
	var res session.AuthResult
	err := api.c.WithSession(nil).doJSON(ctx, http.MethodPost, "/auth/signup", reg, &res)
	return res, err
}

// ChangePassword uses the faculty endpoint for faculty sessions.
func (api *AuthAPI) ChangePassword(ctx context.Context, token string, role session.Role, data session.ChangePassword) error {
	path := "/api/auth/change-password"
	if role == session.RoleFaculty {
		path = "/api/auth/faculty/change-password"
	}
	body := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{data.CurrentPassword, data.NewPassword}
	return api.c.WithSession(staticToken(token)).doJSON(ctx, http.MethodPost, path, body, nil)
}
