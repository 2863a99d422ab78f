package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/storage/memstore"
)

type apiErr struct{ msg string }

func (e apiErr) Error() string       { return e.msg }
func (e apiErr) UserMessage() string { return e.msg }

type fakeAuth struct {
	res        session.AuthResult
	err        error
	gotRole    session.Role
	gotToken   string
	pwdChanges int
}

func (f *fakeAuth) Login(_ context.Context, role session.Role, _ session.Credentials) (session.AuthResult, error) {
	f.gotRole = role
	return f.res, f.err
}

func (f *fakeAuth) Signup(context.Context, session.Registration) (session.AuthResult, error) {
	return f.res, f.err
}

func (f *fakeAuth) ChangePassword(_ context.Context, token string, role session.Role, _ session.ChangePassword) error {
	f.gotToken = token
	f.gotRole = role
	f.pwdChanges++
	return f.err
}

func newStore(auth session.AuthAPI) (session.Store, *memstore.Storage) {
	storage := memstore.New()
	return session.NewStore(storage, auth, core.NopLogger{}), storage
}

func TestStore_Login(t *testing.T) {
	tests := []struct {
		name     string
		res      session.AuthResult
		role     session.Role
		wantRole session.Role
		wantErr  bool
	}{
		{
			name:     "admin",
			res:      session.AuthResult{Token: "t1", User: session.Account{ID: "u1", Email: "a@x.io", Name: "Ada", Role: "admin"}},
			role:     session.RoleAdmin,
			wantRole: session.RoleAdmin,
		},
		{
			name:     "role is forced to the requested one",
			res:      session.AuthResult{Token: "t2", User: session.Account{ID: "f1", Email: "f@x.io", Role: "teacher"}},
			role:     session.RoleFaculty,
			wantRole: session.RoleFaculty,
		},
		{
			name:     "role missing in response",
			res:      session.AuthResult{Token: "t3", User: session.Account{ID: "s1", Email: "s@x.io"}},
			role:     session.RoleStudent,
			wantRole: session.RoleStudent,
		},
		{
			name:    "no token",
			res:     session.AuthResult{User: session.Account{ID: "s1"}},
			role:    session.RoleStudent,
			wantErr: true,
		},
		{
			name:    "invalid role",
			res:     session.AuthResult{Token: "t4"},
			role:    session.RoleNone,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{res: tt.res}
			store, _ := newStore(auth)

			usr, err := store.Login(context.Background(), session.Credentials{Email: "x@x.io", Password: "secret"}, tt.role)
			if tt.wantErr {
				assert.True(t, errors.Is(err, session.ErrAuthenticationFailed))
				assert.False(t, store.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, auth.gotRole)
			assert.Equal(t, tt.wantRole, usr.Role)
			assert.Equal(t, tt.res.Token, store.Token())

			cur, ok := store.CurrentUser()
			require.True(t, ok)
			assert.Equal(t, usr, cur)
		})
	}
}

func TestStore_LoginFailureKeepsPriorSession(t *testing.T) {
	auth := &fakeAuth{res: session.AuthResult{Token: "old", User: session.Account{ID: "u1", Email: "a@x.io"}}}
	store, _ := newStore(auth)
	prev, err := store.Login(context.Background(), session.Credentials{Email: "a@x.io", Password: "secret"}, session.RoleAdmin)
	require.NoError(t, err)

	auth.err = apiErr{"Invalid credentials"}
	_, err = store.Login(context.Background(), session.Credentials{Email: "b@x.io", Password: "wrong!"}, session.RoleFaculty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrAuthenticationFailed))
	assert.Equal(t, "Invalid credentials", core.ErrorMessage(err, "Login failed"))

	assert.Equal(t, "old", store.Token())
	cur, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, prev, cur)
}

func TestStore_Register(t *testing.T) {
	tests := []struct {
		name     string
		acc      session.Account
		wantRole session.Role
	}{
		{name: "defaults to student", acc: session.Account{ID: "s1"}, wantRole: session.RoleStudent},
		{name: "server role wins", acc: session.Account{ID: "f1", Role: "faculty"}, wantRole: session.RoleFaculty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(&fakeAuth{res: session.AuthResult{Token: "tok", User: tt.acc}})
			usr, err := store.Register(context.Background(), session.Registration{Name: "Sam", Email: "sam@x.io", Password: "secret"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, usr.Role)
			assert.Equal(t, "Sam", usr.Name)
			assert.Equal(t, "sam@x.io", usr.Email)
			assert.True(t, store.IsAuthenticated())
		})
	}
}

func TestStore_Logout(t *testing.T) {
	store, storage := newStore(&fakeAuth{res: session.AuthResult{Token: "tok", User: session.Account{ID: "u1"}}})
	_, err := store.Login(context.Background(), session.Credentials{}, session.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, store.Logout())
	require.NoError(t, store.Logout()) // idempotent

	assert.False(t, store.IsAuthenticated())
	_, ok := store.CurrentUser()
	assert.False(t, ok)
	assert.Zero(t, storage.Len())
}

func TestStore_CurrentUser(t *testing.T) {
	valid, _ := json.Marshal(session.User{ID: "u1", Email: "a@x.io", Role: session.RoleFaculty})
	tests := []struct {
		name    string
		raw     string
		wantOk  bool
		removed bool
	}{
		{name: "valid", raw: string(valid), wantOk: true},
		{name: "not json", raw: "{oops", removed: true},
		{name: "unknown role", raw: `{"id":"u1","role":"janitor"}`, removed: true},
		{name: "no role", raw: `{"id":"u1"}`, removed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage := newStore(&fakeAuth{})
			require.NoError(t, storage.Set(session.UserKey, tt.raw))

			_, ok := store.CurrentUser()
			assert.Equal(t, tt.wantOk, ok)
			_, stored, _ := storage.Get(session.UserKey)
			assert.Equal(t, !tt.removed, stored)
		})
	}
}

func TestStore_ChangePassword(t *testing.T) {
	data := session.ChangePassword{CurrentPassword: "secret", NewPassword: "secret2", ConfirmPassword: "secret2"}

	auth := &fakeAuth{}
	store, _ := newStore(auth)
	assert.Equal(t, session.ErrNotAuthenticated, store.ChangePassword(context.Background(), data))
	assert.Zero(t, auth.pwdChanges)

	auth.res = session.AuthResult{Token: "tok", User: session.Account{ID: "f1"}}
	_, err := store.Login(context.Background(), session.Credentials{}, session.RoleFaculty)
	require.NoError(t, err)

	require.NoError(t, store.ChangePassword(context.Background(), data))
	assert.Equal(t, "tok", auth.gotToken)
	assert.Equal(t, session.RoleFaculty, auth.gotRole)
}

func TestStore_HandleUnauthorized(t *testing.T) {
	store, _ := newStore(&fakeAuth{res: session.AuthResult{Token: "tok", User: session.Account{ID: "u1"}}})
	_, err := store.Login(context.Background(), session.Credentials{}, session.RoleStudent)
	require.NoError(t, err)

	store.HandleUnauthorized()
	assert.False(t, store.IsAuthenticated())
	_, ok := store.CurrentUser()
	assert.False(t, ok)
}

func TestRole_Text(t *testing.T) {
	for _, role := range session.Roles {
		text, err := role.MarshalText()
		require.NoError(t, err)
		var got session.Role
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, role, got)
	}
	var r session.Role
	assert.Error(t, r.UnmarshalText([]byte("superuser")))
	_, err := session.RoleNone.MarshalText()
	assert.Error(t, err)
}
