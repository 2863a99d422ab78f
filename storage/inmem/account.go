package inmemdb

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/SaurabhAlex/school-management-web/core/session"
)

// Account is a login of the school API.
type Account struct {
	ID           string
	Name         string
	Email        string
	Role         session.Role
	PasswordHash []byte
	// ProfileID links a faculty account to its Faculty row.
	ProfileID string
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// CreateAccount stores a new account. Emails are unique per role.
func (db *DB) CreateAccount(name, email, pwd string, role session.Role, profileID ...string) (Account, error) {
	acc := Account{Name: name, Email: strings.ToLower(strings.TrimSpace(email)), Role: role}
	if len(profileID) > 0 {
		acc.ProfileID = profileID[0]
	}
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, err
	}
	return db.Accounts.Insert(acc, func(existing Account) bool {
		return existing.Email == acc.Email && existing.Role == acc.Role
	})
}

// AccountByEmail returns the account of role with email.
func (db *DB) AccountByEmail(email string, role session.Role) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return db.Accounts.Find(func(a Account) bool { return a.Email == email && a.Role == role })
}
