package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/school"
	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

type (
	Options struct {
		Address            string
		Debug              bool
		DisableReqLogs     bool
		SecretKey          string
		JWTExpirationDelta time.Duration
		DB                 *inmemdb.DB
		Logger             core.Logger
	}

	// Server is an in-memory implementation of the school REST API.
	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		tokens     *tokenIssuer
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger{}
	}
	if opts.DB == nil {
		opts.DB = inmemdb.Open()
	}
	validate, translator := school.NewValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		tokens:     newTokenIssuer(opts.SecretKey, opts.JWTExpirationDelta),
		validate:   validate,
		translator: translator,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	db := s.opts.DB
	jwt := s.tokens.middleware(db)
	v := formValidator{s.validate, s.translator}

	registerAuthAPI(s.app.Group("/auth"), s.app.Group("/api/auth", jwt), db, s.tokens, v)

	api := s.app.Group("/api", jwt)
	registerStudentAPI(api.Group("/student"), db, v)
	registerFacultyAPI(api.Group("/faculty"), db, v)
	registerClassAPI(api.Group("/class"), db, v)
	registerRoleAPI(api.Group("/role"), db, v)
	registerAttendanceAPI(s.app.Group("/attendance", jwt), db, v)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "School API is running"})
}

// formValidator validates bound request bodies.
type formValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

type validatable interface {
	Validate(*validator.Validate) error
}

func (v formValidator) check(form validatable) error {
	return core.ValidationFromValidator(form.Validate(v.validate), v.translator)
}

// SeedAdmin creates the admin account the portal signs in with.
func SeedAdmin(db *inmemdb.DB, email, pwd string) error {
	_, err := db.CreateAccount("Administrator", email, pwd, session.RoleAdmin)
	if err == inmemdb.ErrConflict {
		return nil
	}
	return err
}
