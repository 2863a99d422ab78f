package schoolapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/storage/memstore"
	testutil "github.com/SaurabhAlex/school-management-web/tests"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []school.Role
		wantErr bool
	}{
		{name: "array", data: `[{"_id":"r1","name":"Teacher"}]`, want: []school.Role{{ID: "r1", Name: "Teacher"}}},
		{name: "wrapped", data: `{"success":true,"roles":[{"id":"r1"},{"id":"r2"}]}`, want: []school.Role{{ID: "r1"}, {ID: "r2"}}},
		{name: "wrapped twice", data: `{"roles":{"roles":[{"id":"r1"}]}}`, want: []school.Role{{ID: "r1"}}},
		{name: "single entity", data: `{"_id":"r1","name":"Teacher"}`, want: []school.Role{{ID: "r1", Name: "Teacher"}}},
		{name: "wrapper without list", data: `{"success":true,"message":"nothing here"}`, want: []school.Role{}},
		{name: "null", data: `null`, want: []school.Role{}},
		{name: "empty", data: ``, want: []school.Role{}},
		{name: "empty array", data: ` [] `, want: []school.Role{}},
		{name: "wrapped null", data: `{"roles":null}`, want: []school.Role{}},
		{name: "scalar", data: `42`, wantErr: true},
		{name: "broken", data: `[{"id":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[school.Role]([]byte(tt.data), "roles")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeOne(t *testing.T) {
	tests := map[string]string{
		"bare":      `{"_id":"c1","name":"05"}`,
		"enveloped": `{"success":true,"class":{"_id":"c1","name":"05"}}`,
	}
	for name, data := range tests {
		got, err := decodeOne[school.Class]([]byte(data), "class")
		require.NoError(t, err, name)
		assert.Equal(t, "c1", got.ID, name)
		assert.Equal(t, "05", got.Name, name)
	}
}

func TestClient_Error(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantMsg string
	}{
		{name: "message", code: http.StatusConflict, body: `{"message":"Role already exists"}`, wantMsg: "Role already exists"},
		{name: "error", code: http.StatusInternalServerError, body: `{"error":"boom"}`, wantMsg: "boom"},
		{name: "no body", code: http.StatusBadGateway, wantMsg: "Bad Gateway"},
		{name: "html", code: http.StatusNotFound, body: `<html></html>`, wantMsg: "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := New(ts.URL).Roles().List(context.Background())
			require.Error(t, err)
			assert.True(t, IsStatus(err, tt.code))
			assert.Equal(t, tt.wantMsg, core.ErrorMessage(err, "fallback"))
		})
	}
}

type fakeSession struct {
	token        string
	unauthorized int32
}

func (s *fakeSession) Token() string       { return s.token }
func (s *fakeSession) HandleUnauthorized() { atomic.AddInt32(&s.unauthorized, 1) }

func TestClient_Unauthorized(t *testing.T) {
	var gotAuth atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid or expired jwt"}`))
	}))
	defer ts.Close()

	sess := &fakeSession{token: "t0k"}
	_, err := New(ts.URL).WithSession(sess).Students().List(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Bearer t0k", gotAuth.Load())
	assert.Equal(t, int32(1), atomic.LoadInt32(&sess.unauthorized))

	// without a token a 401 is a plain failure
	anon := &fakeSession{}
	_, err = New(ts.URL).WithSession(anon).Students().List(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "", gotAuth.Load())
	assert.Equal(t, int32(0), atomic.LoadInt32(&anon.unauthorized))
}

func TestClient_MissingID(t *testing.T) {
	c := New("http://localhost:0")
	_, err := c.Roles().Update(context.Background(), "", school.UpdateRole{})
	assert.Equal(t, errMissingID, err)
	assert.Equal(t, errMissingID, c.Faculty().Delete(context.Background(), ""))
}

func TestLoginPath(t *testing.T) {
	for role, want := range map[session.Role]string{
		session.RoleAdmin:   "/auth/login",
		session.RoleFaculty: "/auth/faculty/login",
		session.RoleStudent: "/auth/student/login",
	} {
		got, ok := LoginPath(role)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := LoginPath(session.RoleNone)
	assert.False(t, ok)
}

// newSignedInClient signs the admin in against a live API and returns the session and client.
func newSignedInClient(t *testing.T, ts *httptest.Server) (session.Store, *Client) {
	base := New(ts.URL)
	store := session.NewStore(memstore.New(), base.Auth(), nil)
	_, err := store.Login(context.Background(),
		session.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword}, session.RoleAdmin)
	require.NoError(t, err)
	return store, base.WithSession(store)
}

func TestClient_AgainstAPI(t *testing.T) {
	ts, db := testutil.StartAPI(t)
	ctx := context.Background()
	store, c := newSignedInClient(t, ts)

	role, err := c.Roles().Create(ctx, school.NewRole{Name: "Teacher", Description: "Teaches"})
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)

	fac, err := c.Faculty().Create(ctx, school.NewFaculty{
		FirstName: "Jane", LastName: "Doe", Email: "jane@school.test", MobileNumber: "9876543210",
		Gender: "Female", Department: "Science", Role: role.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Teacher", fac.Role.Name)

	cls, err := c.Classes().Create(ctx, school.NewClass{
		Name: "5", Section: "B", AcademicYear: "2024-25", ClassTeacher: fac.ID, Capacity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "05", cls.Name)
	stored, err := db.Classes.Get(cls.ID)
	require.NoError(t, err)
	assert.Equal(t, "05", stored.Name)

	classes, err := c.Classes().List(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "5 B", classes[0].Label())
	assert.Equal(t, "Jane Doe", classes[0].ClassTeacher.Name)

	roles, err := c.Roles().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []school.Role{role}, roles)

	_, err = c.Roles().Create(ctx, school.NewRole{Name: "teacher", Description: "dup"})
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "Role already exists", core.ErrorMessage(err, ""))

	stud, err := c.Students().Create(ctx, school.NewStudent{FirstName: "Ann", LastName: "Lee", MobileNumber: "9123456789"})
	require.NoError(t, err)
	rec, err := c.Attendance().Create(ctx, school.NewAttendance{StudentID: stud.ID, Date: "2024-05-02", Status: school.Present})
	require.NoError(t, err)
	_, err = c.Attendance().Update(ctx, rec.ID, school.UpdateAttendance{Status: school.Absent})
	require.NoError(t, err)

	day, err := c.Attendance().List(ctx, "2024-05-02")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, school.Absent, day[0].Status)

	report, err := c.Attendance().Report(ctx, stud.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Present)
	assert.Equal(t, 1, report.Absent)
	assert.Equal(t, 0.0, report.Rate())

	// a faculty member changes their password on the faculty endpoint
	facStore := session.NewStore(memstore.New(), New(ts.URL).Auth(), nil)
	_, err = facStore.Login(ctx, session.Credentials{Email: "jane@school.test", Password: "9876543210"}, session.RoleFaculty)
	require.NoError(t, err)
	require.NoError(t, facStore.ChangePassword(ctx, session.ChangePassword{
		CurrentPassword: "9876543210", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	}))
	_, err = facStore.Login(ctx, session.Credentials{Email: "jane@school.test", Password: "newpass1"}, session.RoleFaculty)
	assert.NoError(t, err)

	// losing the account on the server ends the session
	acc, err := db.AccountByEmail(testutil.AdminEmail, session.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, db.Accounts.Delete(acc.ID))
	_, err = c.Students().List(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, store.IsAuthenticated())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unauthorized", err: &Error{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "forbidden", err: &Error{StatusCode: http.StatusForbidden}, want: false},
		{name: "wrapped unauthorized", err: errors.Wrap(&Error{StatusCode: http.StatusUnauthorized}, "list"), want: false},
		{name: "server error", err: &Error{StatusCode: http.StatusInternalServerError}, want: true},
		{name: "transport", err: errors.New("connection refused"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestClient_ExpiredSessionIsNotRetried(t *testing.T) {
	ts, db := testutil.StartAPI(t)
	ctx := context.Background()
	_, c := newSignedInClient(t, ts)

	obs := &attempts{}
	set := resource.NewSet(c.SetFuncs(), resource.WithRetryDelay(0),
		resource.WithRetryable(Retryable), resource.WithObserver(obs))
	acc, err := db.AccountByEmail(testutil.AdminEmail, session.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, db.Accounts.Delete(acc.ID))

	_, err = set.Students.Fetch(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, resource.Error, set.Students.Snapshot().State)
	assert.Equal(t, []int{1}, obs.n)
}

type attempts struct {
	resource.NopObserver
	n []int
}

func (a *attempts) FetchDone(_ string, n int, _ error, _ time.Duration) { a.n = append(a.n, n) }

func TestClient_SetFuncs(t *testing.T) {
	ts, _ := testutil.StartAPI(t)
	ctx := context.Background()
	_, c := newSignedInClient(t, ts)

	set := resource.NewSet(c.SetFuncs(), resource.WithRetryDelay(0))
	items, err := set.Students.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = set.Students.Create(ctx, school.NewStudent{FirstName: "Ann", LastName: "Lee", MobileNumber: "9876543210"})
	require.NoError(t, err)
	snap := set.Students.Snapshot()
	assert.Equal(t, resource.Ready, snap.State)
	require.Len(t, snap.Items, 1)

	require.NoError(t, set.Students.Delete(ctx, snap.Items[0].ID))
	assert.Empty(t, set.Students.Snapshot().Items)

	att := set.Attendance("2024-05-02")
	_, err = att.Create(ctx, school.NewAttendance{StudentID: "nope", Date: "2024-05-02", Status: school.Present})
	assert.True(t, IsStatus(err, http.StatusNotFound))
}
