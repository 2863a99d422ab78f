package nav

import (
	"net/url"
	"path"
	"strings"

	"github.com/SaurabhAlex/school-management-web/core/session"
)

// routes
const (
	Home                = "/"
	Login               = "/login"
	Register            = "/register"
	Profile             = "/profile"
	ChangePassword      = "/change-password"
	Students            = "/students"
	Faculty             = "/faculty"
	Classes             = "/class"
	Roles               = "/role"
	Attendance          = "/attendance"
	FacultyDashboard    = "/faculty-dashboard"
	StudentDashboard    = "/student-dashboard"
	NewStudentDashboard = "/new-student-dashboard"
	// FacultyStudents is where the faculty dashboard manages students.
	FacultyStudents     = FacultyDashboard + "/students"
)

// FromParam is the query parameter holding the route to return to after login.
const FromParam = "from"

// Landing returns the route a user of role starts on.
func Landing(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return Students
	case session.RoleFaculty:
		return FacultyDashboard
	case session.RoleStudent:
		return StudentDashboard
	}
	return Login
}

// Rule is the requirement to enter a route.
type Rule struct {
	Public bool
	// Roles allowed in. Empty means any signed-in user.
	Roles []session.Role
}

func (r Rule) allows(role session.Role) bool {
	if len(r.Roles) == 0 {
		return role.Valid()
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	public        = Rule{Public: true}
	authenticated = Rule{}
	adminOnly     = Rule{Roles: []session.Role{session.RoleAdmin}}
	staff         = Rule{Roles: []session.Role{session.RoleAdmin, session.RoleFaculty}}
)

// Policy maps a route to its Rule. A rule covers the routes below it unless one of them has its own.
type Policy map[string]Rule

// DefaultPolicy is the route table of the portal.
var DefaultPolicy = Policy{
	Home:     public,
	Login:    public,
	Register: public,

	FacultyDashboard:    authenticated,
	StudentDashboard:    authenticated,
	NewStudentDashboard: authenticated,
	ChangePassword:      authenticated,
	Profile:             authenticated,

	FacultyStudents: staff,

	Roles:    adminOnly,
	Faculty:  adminOnly,
	Students: adminOnly,
	Classes:  adminOnly,

	Attendance: staff,
}

// Lookup returns the rule of the nearest route of p at or above route: "/students/42" follows
// "/students", "/faculty-dashboard/students/42" follows "/faculty-dashboard/students".
// Home only covers itself.
func (p Policy) Lookup(route string) (Rule, bool) {
	route = path.Clean("/" + route)
	for {
		if rule, ok := p[route]; ok {
			return rule, true
		}
		parent := path.Dir(route)
		if parent == route || parent == Home {
			return Rule{}, false
		}
		route = parent
	}
}

type Outcome uint8

const (
	Allow Outcome = iota
	Redirect
)

// Decision is the verdict of the Guard on a route.
type Decision struct {
	Outcome Outcome
	To      string // redirect target
	From    string // route to return to after login, if any
	User    session.User
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Location is the redirect URL, carrying From as query parameter.
func (d Decision) Location() string {
	if d.From == "" {
		return d.To
	}
	return d.To + "?" + url.Values{FromParam: {d.From}}.Encode()
}

// UserSource is what the Guard needs from the session.
type UserSource interface {
	CurrentUser() (session.User, bool)
}

// Guard decides who enters which route: authentication is checked first, then the role.
// Users who may not enter a route are sent to their own landing route, never to an error.
type Guard struct {
	users  UserSource
	policy Policy
}

func NewGuard(users UserSource, policy ...Policy) *Guard {
	pol := DefaultPolicy
	if len(policy) > 0 && policy[0] != nil {
		pol = policy[0]
	}
	return &Guard{users: users, policy: pol}
}

func (g *Guard) Check(route string) Decision {
	rule, ok := g.policy.Lookup(route)
	if !ok {
		return Decision{Outcome: Redirect, To: Home}
	}
	usr, signedIn := g.users.CurrentUser()
	if rule.Public {
		return Decision{Outcome: Allow, User: usr}
	}
	if !signedIn {
		return toLogin(route)
	}
	return authorize(route, rule, usr, signedIn)
}

func toLogin(from string) Decision {
	return Decision{Outcome: Redirect, To: Login, From: from}
}

func authorize(route string, rule Rule, usr session.User, signedIn bool) Decision {
	// an absent user is never an error, only unauthenticated
	if !signedIn || !usr.Role.Valid() {
		return toLogin(route)
	}
	if !rule.allows(usr.Role) {
		return Decision{Outcome: Redirect, To: Landing(usr.Role), User: usr}
	}
	return Decision{Outcome: Allow, User: usr}
}

// Dashboard is the route "/" sends the current user to.
func (g *Guard) Dashboard() string {
	usr, ok := g.users.CurrentUser()
	if !ok {
		return Login
	}
	return Landing(usr.Role)
}

// AfterLogin returns where to go once signed in: from, when the user may enter it,
// else the user's landing route.
func (g *Guard) AfterLogin(from string) string {
	usr, ok := g.users.CurrentUser()
	if !ok {
		return Login
	}
	if from != "" && strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") {
		if rule, ok := g.policy.Lookup(from); ok && !rule.Public && rule.allows(usr.Role) {
			return from
		}
	}
	return Landing(usr.Role)
}
