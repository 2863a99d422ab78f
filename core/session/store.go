package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
)

var (
	// errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAuthenticated     = errors.New("not authenticated")

	errMissingToken = errors.New("no token in response")
)

// AuthError is returned by Login and Register when the backend refuses the credentials
// or answers something unusable. It matches ErrAuthenticationFailed and its Cause is the backend error.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return ErrAuthenticationFailed.Error() + ": " + e.Err.Error()
}

func (e *AuthError) Cause() error  { return e.Err }
func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}

type (
	// AuthAPI is the part of the school API the Store talks to.
	AuthAPI interface {
		Login(ctx context.Context, role Role, creds Credentials) (AuthResult, error)
		Signup(ctx context.Context, reg Registration) (AuthResult, error)
		ChangePassword(ctx context.Context, token string, role Role, data ChangePassword) error
	}

	// Store is the single source of truth about who is signed in.
	Store interface {
		Login(ctx context.Context, creds Credentials, role Role) (User, error)
		Register(ctx context.Context, reg Registration) (User, error)
		Logout() error
		CurrentUser() (User, bool)
		Token() string
		IsAuthenticated() bool
		ChangePassword(ctx context.Context, data ChangePassword) error
		// HandleUnauthorized is called when the backend rejects the token.
		HandleUnauthorized()
	}

	store struct {
		mu      sync.RWMutex
		storage Storage
		auth    AuthAPI
		log     core.Logger
	}
)

var _ Store = (*store)(nil)

func NewStore(storage Storage, auth AuthAPI, log core.Logger) Store {
	if log == nil {
		log = core.NopLogger{}
	}
	return &store{storage: storage, auth: auth, log: log}
}

// Login authenticates against the endpoint of role. The stored user always carries role,
// whatever the backend answered.
func (s *store) Login(ctx context.Context, creds Credentials, role Role) (User, error) {
	if !role.Valid() {
		return User{}, &AuthError{Err: errors.Errorf("unknown role %d", role)}
	}
	res, err := s.auth.Login(ctx, role, creds)
	if err != nil {
		return User{}, &AuthError{Err: err}
	}
	if res.Token == "" {
		return User{}, &AuthError{Err: errMissingToken}
	}

	usr := userFromAccount(res.User, role)
	if err := s.persist(res.Token, usr); err != nil {
		return User{}, err
	}
	s.log.Info("logged in", map[string]interface{}{"email": usr.Email, "role": usr.Role.String()})
	return usr, nil
}

// Register creates a student account, unless the backend says otherwise, and signs it in.
func (s *store) Register(ctx context.Context, reg Registration) (User, error) {
	res, err := s.auth.Signup(ctx, reg)
	if err != nil {
		return User{}, &AuthError{Err: err}
	}
	if res.Token == "" {
		return User{}, &AuthError{Err: errMissingToken}
	}

	role, ok := ParseRole(res.User.Role)
	if !ok {
		role = RoleStudent
	}
	usr := userFromAccount(res.User, role)
	if usr.Name == "" {
		usr.Name = reg.Name
	}
	if usr.Email == "" {
		usr.Email = reg.Email
	}
	if err := s.persist(res.Token, usr); err != nil {
		return User{}, err
	}
	s.log.Info("registered", map[string]interface{}{"email": usr.Email, "role": usr.Role.String()})
	return usr, nil
}

func (s *store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.storage.Remove(TokenKey, UserKey), "clearing session")
}

// CurrentUser reads the persisted user. Records that do not decode into a user with a
// valid role are discarded.
func (s *store) CurrentUser() (User, bool) {
	s.mu.RLock()
	raw, ok, err := s.storage.Get(UserKey)
	s.mu.RUnlock()
	if err != nil {
		s.log.Error("reading session user", err)
		return User{}, false
	}
	if !ok {
		return User{}, false
	}

	var usr User
	if err := json.Unmarshal([]byte(raw), &usr); err != nil || !usr.Role.Valid() {
		s.log.Warn("discarding malformed session user", map[string]interface{}{"user": raw})
		s.mu.Lock()
		if err := s.storage.Remove(UserKey); err != nil {
			s.log.Error("removing session user", err)
		}
		s.mu.Unlock()
		return User{}, false
	}
	return usr, true
}

func (s *store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, _, err := s.storage.Get(TokenKey)
	if err != nil {
		s.log.Error("reading session token", err)
		return ""
	}
	return token
}

// IsAuthenticated reports whether a token is present. The token itself is only checked
// by the backend.
func (s *store) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *store) ChangePassword(ctx context.Context, data ChangePassword) error {
	token := s.Token()
	usr, ok := s.CurrentUser()
	if token == "" || !ok {
		return ErrNotAuthenticated
	}
	return s.auth.ChangePassword(ctx, token, usr.Role, data)
}

func (s *store) HandleUnauthorized() {
	s.log.Warn("token rejected by backend, signing out")
	if err := s.Logout(); err != nil {
		s.log.Error("clearing rejected session", err)
	}
}

func (s *store) persist(token string, usr User) error {
	data, err := json.Marshal(usr)
	if err != nil {
		return errors.Wrap(err, "encoding session user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(TokenKey, token); err != nil {
		return errors.Wrap(err, "saving session token")
	}
	if err := s.storage.Set(UserKey, string(data)); err != nil {
		_ = s.storage.Remove(TokenKey, UserKey)
		return errors.Wrap(err, "saving session user")
	}
	return nil
}

func userFromAccount(acc Account, role Role) User {
	return User{
		ID:        acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		Role:      role,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
	}
}
