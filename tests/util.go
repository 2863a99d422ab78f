package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	echoapi "github.com/SaurabhAlex/school-management-web/apps/mockapi/echo"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

const (
	AdminEmail    = "admin@school.test"
	AdminPassword = "admin123"
)

// NewAPI returns a school API backed by a fresh database holding the admin account.
func NewAPI(t *testing.T) (echoapi.Server, *inmemdb.DB) {
	db := inmemdb.Open()
	if err := echoapi.SeedAdmin(db, AdminEmail, AdminPassword); err != nil {
		t.Fatalf("NewAPI() failed: %v", err)
	}
	return echoapi.NewServer(&echoapi.Options{
		DisableReqLogs:     true,
		SecretKey:          "test-secret",
		JWTExpirationDelta: time.Hour,
		DB:                 db,
	}), db
}

// StartAPI serves NewAPI over HTTP until the test ends.
func StartAPI(t *testing.T) (*httptest.Server, *inmemdb.DB) {
	api, db := NewAPI(t)
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)
	return ts, db
}

func CreateAccount(t *testing.T, db *inmemdb.DB, name, email, pwd string, role session.Role) inmemdb.Account {
	acc, err := db.CreateAccount(name, email, pwd, role)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateRole(t *testing.T, db *inmemdb.DB, name string) school.Role {
	role, err := db.Roles.Insert(school.Role{Name: name, Description: name + " role"})
	if err != nil {
		t.Fatalf("CreateRole() failed: %v", err)
	}
	return role
}

func CreateStudent(t *testing.T, db *inmemdb.DB, first, last, mobile string) school.Student {
	stud, err := db.Students.Insert(school.Student{FirstName: first, LastName: last, MobileNumber: mobile})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stud
}

// CreateFaculty stores a faculty member and their login, whose password is the mobile number.
func CreateFaculty(t *testing.T, db *inmemdb.DB, role school.Role, first, last, email, mobile string) school.Faculty {
	fac, err := db.Faculty.Insert(school.Faculty{
		EmployeeID:   "EMP900",
		FirstName:    first,
		LastName:     last,
		Email:        email,
		MobileNumber: mobile,
		Gender:       "Female",
		Department:   "Science",
		Role:         school.RoleRef{ID: role.ID, Name: role.Name},
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("CreateFaculty() failed: %v", err)
	}
	if _, err = db.CreateAccount(fac.FullName(), email, mobile, session.RoleFaculty, fac.ID); err != nil {
		t.Fatalf("CreateFaculty() failed: %v", err)
	}
	return fac
}
