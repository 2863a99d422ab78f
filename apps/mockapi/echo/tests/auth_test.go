package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaurabhAlex/school-management-web/core/session"
	testutil "github.com/SaurabhAlex/school-management-web/tests"
)

func Test_accountApi_login(t *testing.T) {
	server, db := setup(t)
	role := testutil.CreateRole(t, db, "Teacher")
	testutil.CreateFaculty(t, db, role, "Jane", "Doe", "jane@school.test", "9876543210")
	testutil.CreateAccount(t, db, "Sam", "sam@school.test", "secret1", session.RoleStudent)

	creds := func(email, pwd string) []byte {
		return marshalObj(t, session.Credentials{Email: email, Password: pwd})
	}
	invalid := msg(t, "Invalid credentials")

	tests := []httpTest{
		{name: "admin", path: "/auth/login", body: creds("admin@school.test", "admin123"), wantCode: http.StatusOK},
		{name: "admin email is case insensitive", path: "/auth/login", body: creds(" Admin@School.test", "admin123"), wantCode: http.StatusOK},
		{name: "wrong password", path: "/auth/login", body: creds("admin@school.test", "nope123"), wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "faculty", path: "/auth/faculty/login", body: creds("jane@school.test", "9876543210"), wantCode: http.StatusOK},
		{name: "faculty on admin endpoint", path: "/auth/login", body: creds("jane@school.test", "9876543210"), wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "student", path: "/auth/student/login", body: creds("sam@school.test", "secret1"), wantCode: http.StatusOK},
		{name: "admin on student endpoint", path: "/auth/student/login", body: creds("admin@school.test", "admin123"), wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "invalid form", path: "/auth/login", body: creds("admin", ""), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			checkCodeAndData(t, tt, run(server, tt))
		})
	}
}

func Test_accountApi_loginAnswersUser(t *testing.T) {
	server, db := setup(t)
	role := testutil.CreateRole(t, db, "Teacher")
	fac := testutil.CreateFaculty(t, db, role, "Jane", "Doe", "jane@school.test", "9876543210")

	req, rec := newRequest(http.MethodPost, "/auth/faculty/login",
		marshalObj(t, session.Credentials{Email: "jane@school.test", Password: "9876543210"}))
	server.ServeHTTP(rec, req)

	var res session.AuthResult
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "faculty", res.User.Role)
	assert.Equal(t, "Jane", res.User.FirstName)
	assert.Equal(t, fac.FullName(), res.User.Name)
}

func Test_accountApi_signup(t *testing.T) {
	server, _ := setup(t)
	reg := marshalObj(t, session.Registration{Name: "Sam Student", Email: "sam@school.test", Password: "secret1"})

	req, rec := newRequest(http.MethodPost, "/auth/signup", reg)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var res session.AuthResult
	decode(t, rec, &res)
	assert.Equal(t, "student", res.User.Role)
	assert.Equal(t, "Sam Student", res.User.Name)

	checkCodeAndData(t, httpTest{wantCode: http.StatusConflict, wantData: msg(t, "User already exists")},
		run(server, httpTest{method: http.MethodPost, path: "/auth/signup", body: reg}))

	login(t, server, "/auth/student/login", "sam@school.test", "secret1")
}

func Test_accountApi_changePassword(t *testing.T) {
	server, db := setup(t)
	role := testutil.CreateRole(t, db, "Teacher")
	testutil.CreateFaculty(t, db, role, "Jane", "Doe", "jane@school.test", "9876543210")
	admin := adminToken(t, server)
	faculty := login(t, server, "/auth/faculty/login", "jane@school.test", "9876543210")

	body := func(current, next string) []byte {
		return marshalObj(t, map[string]string{"currentPassword": current, "newPassword": next})
	}

	tests := []httpTest{
		{name: "anonymous", path: "/api/auth/change-password", body: body("admin123", "admin456"), wantCode: http.StatusUnauthorized},
		{name: "wrong current password", path: "/api/auth/change-password", token: admin, body: body("nope", "admin456"), wantCode: http.StatusBadRequest},
		{name: "admin on faculty endpoint", path: "/api/auth/faculty/change-password", token: admin, body: body("admin123", "admin456"), wantCode: http.StatusForbidden},
		{name: "admin", path: "/api/auth/change-password", token: admin, body: body("admin123", "admin456"), wantCode: http.StatusOK},
		{name: "faculty", path: "/api/auth/faculty/change-password", token: faculty, body: body("9876543210", "newpass1"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			checkCodeAndData(t, tt, run(server, tt))
		})
	}

	login(t, server, "/auth/login", testutil.AdminEmail, "admin456")
	login(t, server, "/auth/faculty/login", "jane@school.test", "newpass1")
}
