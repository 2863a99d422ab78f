package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
	"github.com/SaurabhAlex/school-management-web/storage/filestore"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
	testutil "github.com/SaurabhAlex/school-management-web/tests"
)

type env struct {
	db      *inmemdb.DB
	api     *schoolapi.Client
	storage *filestore.Storage
}

func setup(t *testing.T) env {
	ts, db := testutil.StartAPI(t)
	storage, err := filestore.New(t.TempDir(), "schoolctl")
	require.NoError(t, err)
	return env{db: db, api: schoolapi.New(ts.URL), storage: storage}
}

// cli starts a command line over the session kept by e, as a new run of the binary would.
func (e env) cli() (*commandLine, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cli := newCommandLine(out, e.storage, e.api, nil, resource.WithRetryDelay(0))
	cli.today = func() string { return "2024-05-02" }
	return cli, out
}

// passwords makes the prompts answer pwds, in order.
func passwords(pwds ...string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwds       []string
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func runTests(t *testing.T, e env, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"schoolctl"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			passwords(tt.pwds...)
			cli, out := e.cli()
			err := cli.run(args)

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr) || errors.Cause(err) == tt.wantErr,
					"cli.run() error = %v, wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, describe(err), tt.wantErrStr)
				}
			default:
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_admin(t *testing.T) {
	e := setup(t)
	bob := testutil.CreateStudent(t, e.db, "Bob", "Ray", "9123456789")

	runTests(t, e, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "not signed in", args: []string{"list", "students"}, wantErr: errSignInFirst},
		{name: "whoami, not signed in", args: []string{"whoami"}, wantErr: errSignInFirst},
		{name: "login: no args", args: []string{"login"}, wantErr: errHelp},
		{name: "login: unknown role", args: []string{"login", "-email", testutil.AdminEmail, "-role", "janitor"}, wantErrStr: `"janitor": no such role`},
		{name: "login: invalid email", args: []string{"login", "-email", "admin", "-role", "admin"}, pwds: []string{"admin123"}, wantErrStr: "email"},
		{name: "login: wrong password", args: []string{"login", "-email", testutil.AdminEmail, "-role", "admin"}, pwds: []string{"nope-nope"}, wantErr: session.ErrAuthenticationFailed},
		{
			name:    "login",
			args:    []string{"login", "-email", testutil.AdminEmail, "-role", "admin"},
			pwds:    []string{testutil.AdminPassword},
			wantOut: []string{"(admin). Start at /students"},
		},
		{name: "whoami", args: []string{"whoami"}, wantOut: []string{"<" + testutil.AdminEmail + ">", "role: admin"}},
		{name: "list: no entity", args: []string{"list"}, wantErr: errHelp},
		{name: "list: unknown entity", args: []string{"list", "teachers"}, wantErrStr: `"teachers": no such entity`},
		{name: "list students", args: []string{"list", "students"}, wantOut: []string{"MOBILE", bob.ID, "Bob Ray"}},
		{name: "list roles", args: []string{"list", "roles"}, wantOut: []string{"DESCRIPTION"}},
		{name: "add-student: invalid mobile", args: []string{"add-student", "-first", "Ann", "-last", "Lee", "-mobile", "1234567890"}, wantErrStr: "mobileNumber"},
		{name: "add-student: taken mobile", args: []string{"add-student", "-first", "Ann", "-last", "Lee", "-mobile", bob.MobileNumber}, wantErrStr: "Student with this mobile number already exists"},
		{name: "add-student", args: []string{"add-student", "-first", "Ann", "-last", "Lee", "-mobile", "9876543210"}, wantOut: []string{"Student added:", "Ann Lee"}},
		{name: "add-role", args: []string{"add-role", "-name", "Teacher", "-description", "Teaches"}, wantOut: []string{"Role added:", "Teacher"}},
		{name: "add-role: duplicate", args: []string{"add-role", "-name", "teacher", "-description", "Again"}, wantErrStr: "Role already exists"},
		{name: "mark-attendance: bad status", args: []string{"mark-attendance", "-student", bob.ID, "-status", "late"}, wantErrStr: "status"},
		{name: "mark-attendance", args: []string{"mark-attendance", "-student", bob.ID, "-status", "Present"}, wantOut: []string{"2024-05-02 " + bob.ID + " present"}},
		{name: "list attendance", args: []string{"list", "attendance"}, wantOut: []string{"(2024-05-02)", "Bob Ray", "present"}},
		{name: "list attendance: bad date", args: []string{"list", "attendance", "-date", "02/05/2024"}, wantErrStr: "YYYY-MM-DD"},
		{name: "delete: no id", args: []string{"delete", "students"}, wantErr: errHelp},
		{name: "delete attendance", args: []string{"delete", "attendance", "-id", "x"}, wantErr: resource.ErrUnsupported},
		{name: "delete unknown student", args: []string{"delete", "students", "-id", "nope"}, wantErrStr: "Student not found"},
		{name: "delete student", args: []string{"delete", "students", "-id", bob.ID}, wantOut: []string{"Deleted students " + bob.ID}},
		{name: "logout", args: []string{"logout"}, wantOut: []string{"Signed out"}},
		{name: "logout again", args: []string{"logout"}, wantOut: []string{"Signed out"}},
		{name: "signed out", args: []string{"list", "students"}, wantErr: errSignInFirst},
	})

	_, err := e.db.Students.Get(bob.ID)
	assert.Error(t, err)
	assert.Len(t, e.db.Students.All(), 1)
}

func Test_commandLine_faculty(t *testing.T) {
	e := setup(t)
	role := testutil.CreateRole(t, e.db, "Teacher")
	testutil.CreateFaculty(t, e.db, role, "Jane", "Doe", "jane@school.test", "9876543210")
	ann := testutil.CreateStudent(t, e.db, "Ann", "Lee", "9123456789")

	runTests(t, e, []cliTest{
		{
			name:    "login",
			args:    []string{"login", "-email", "jane@school.test", "-role", "faculty"},
			pwds:    []string{"9876543210"},
			wantOut: []string{"Signed in as Jane Doe (faculty). Start at /faculty-dashboard"},
		},
		{name: "list roles", args: []string{"list", "roles"}, wantErr: errForbidden},
		{name: "add-role", args: []string{"add-role", "-name", "Hacker", "-description", "nope"}, wantErr: errForbidden},
		{name: "add-student", args: []string{"add-student", "-first", "Sam", "-last", "Fox", "-mobile", "9000000000"}, wantOut: []string{"Student added"}},
		{name: "list students", args: []string{"list", "students"}, wantOut: []string{"Ann Lee", "Sam Fox"}},
		{name: "delete classes", args: []string{"delete", "classes", "-id", "c1"}, wantErr: errForbidden},
		{name: "mark-attendance", args: []string{"mark-attendance", "-student", ann.ID, "-status", "absent", "-notes", "sick"}, wantOut: []string{"absent"}},
		{name: "mark-attendance twice", args: []string{"mark-attendance", "-student", ann.ID, "-status", "present"}, wantErrStr: "Attendance already marked for this date"},
		{name: "list attendance", args: []string{"list", "attendance", "-date", "2024-05-02"}, wantOut: []string{"Ann Lee", "absent", "sick"}},
		{name: "passwd: mismatch", args: []string{"passwd"}, pwds: []string{"9876543210", "secret2", "secret3"}, wantErrStr: "confirmPassword"},
		{name: "passwd", args: []string{"passwd"}, pwds: []string{"9876543210", "secret2", "secret2"}, wantOut: []string{"Password changed"}},
		{name: "logout", args: []string{"logout"}},
		{name: "old password", args: []string{"login", "-email", "jane@school.test", "-role", "faculty"}, pwds: []string{"9876543210"}, wantErr: session.ErrAuthenticationFailed},
		{name: "new password", args: []string{"login", "-email", "jane@school.test", "-role", "faculty"}, pwds: []string{"secret2"}},
	})
	assert.Equal(t, 1, e.db.Roles.Len())
	assert.Equal(t, 2, e.db.Students.Len())
}

func Test_commandLine_register(t *testing.T) {
	e := setup(t)

	runTests(t, e, []cliTest{
		{name: "no args", args: []string{"register"}, wantErr: errHelp},
		{name: "short password", args: []string{"register", "-name", "Sam Student", "-email", "sam@school.test"}, pwds: []string{"abc"}, wantErrStr: "password"},
		{name: "register", args: []string{"register", "-name", "Sam Student", "-email", "sam@school.test"}, pwds: []string{"secret1"}, wantOut: []string{"Welcome, Sam Student. Signed in as student"}},
		{name: "whoami", args: []string{"whoami"}, wantOut: []string{"dashboard: /student-dashboard"}},
		{name: "students", args: []string{"list", "students"}, wantErr: errForbidden},
		{name: "add-student", args: []string{"add-student", "-first", "Sam", "-last", "Fox", "-mobile", "9000000000"}, wantErr: errForbidden},
		{name: "attendance", args: []string{"list", "attendance"}, wantErr: errForbidden},
	})
}

func Test_commandLine_rejectedToken(t *testing.T) {
	e := setup(t)
	runTests(t, e, []cliTest{
		{name: "login", args: []string{"login", "-email", testutil.AdminEmail, "-role", "admin"}, pwds: []string{testutil.AdminPassword}},
	})

	acc, err := e.db.AccountByEmail(testutil.AdminEmail, session.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, e.db.Accounts.Delete(acc.ID))

	cli, _ := e.cli()
	err = cli.run([]string{"schoolctl", "list", "students"})
	assert.True(t, schoolapi.IsStatus(err, 401), "got %v", err)

	// the session is gone from disk
	cli, _ = e.cli()
	assert.Equal(t, errSignInFirst, cli.run([]string{"schoolctl", "whoami"}))
}

func Test_describe(t *testing.T) {
	err := core.NewValidationError(nil,
		core.FieldError{Field: "firstName", Error: "firstName is required"},
		core.FieldError{Field: "mobileNumber", Error: "mobileNumber is invalid"},
	)
	lines := strings.Split(describe(errors.Wrap(err, "adding student")), "\n")
	assert.Equal(t, []string{
		"firstName: firstName is required",
		"  firstName: firstName is required",
		"  mobileNumber: mobileNumber is invalid",
	}, lines)

	assert.Equal(t, "boom", describe(errors.New("boom")))
	assert.Equal(t, "Student not found", describe(errors.Wrap(&schoolapi.Error{StatusCode: 404, Message: "Student not found"}, "x")))
}
