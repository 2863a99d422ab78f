package session

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SaurabhAlex/school-management-web/core"
)

// Role is the portal a session belongs to.
// The zero value is not a role: a session without a valid Role is unauthenticated.
type Role uint8

const (
	RoleNone Role = iota
	RoleAdmin
	RoleFaculty
	RoleStudent
)

var (
	Roles = []Role{RoleAdmin, RoleFaculty, RoleStudent}

	roleNames = map[Role]string{
		RoleAdmin:   "admin",
		RoleFaculty: "faculty",
		RoleStudent: "student",
	}
)

// ParseRole returns the Role named s.
func ParseRole(s string) (Role, bool) {
	for role, name := range roleNames {
		if name == core.CleanString(s, true /* lower */) {
			return role, true
		}
	}
	return RoleNone, false
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return ""
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, ok := ParseRole(string(text))
	if !ok {
		return fmt.Errorf("unknown role %q", string(text))
	}
	*r = role
	return nil
}

// User is the identity held by a session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns the best name available for greetings.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if full := core.CleanString(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

// Account is a user as returned by the authentication endpoints.
// Its role is free text; the Store decides what it means.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	type alias Account
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = aux.MongoID
	}
	return nil
}

// AuthResult is the payload of a successful login or signup.
type AuthResult struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

// ChangePassword is the change-password form.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error { return validate.Struct(cp) }
