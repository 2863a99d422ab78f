package echoportal

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/school"
)

const sweepInterval = time.Minute

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		CookieSecure   bool
		Workspaces     *Workspaces
		Metrics        prometheus.Gatherer
		// Health reports the state of each dependency, e.g. {"api": true, "redis": false}.
		Health func(ctx context.Context) map[string]bool
		Logger core.Logger
	}

	// Server is the web portal: role-gated JSON pages over the school API.
	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
		done       chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = prometheus.DefaultGatherer
	}
	validate, translator := school.NewValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		validate:   validate,
		translator: translator,
		done:       make(chan struct{}),
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

	s.app.GET("/healthz", s.health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Metrics, promhttp.HandlerOpts{})))

	v := formValidator{s.validate, s.translator}
	ws := workspaceMiddleware(s.opts.Workspaces, s.opts.CookieSecure)

	// logging out is always possible
	s.app.POST("/logout", logout, ws)

	pages := s.app.Group("", ws, guardMiddleware())
	registerAuthPages(pages, v)
	registerDashboardPages(pages)
	registerStudentPages(pages, v)
	registerFacultyPages(pages, v)
	registerClassPages(pages, v)
	registerRolePages(pages, v)
	registerAttendancePages(pages, v)
}

func (s *server) Start() error {
	go s.sweep()
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	close(s.done)
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.opts.Workspaces.Sweep(); n > 0 {
				s.opts.Logger.Debug("idle workspaces dropped", map[string]interface{}{"count": n})
			}
		}
	}
}

func (s *server) health(ctx echo.Context) error {
	checks := map[string]bool{}
	if s.opts.Health != nil {
		checks = s.opts.Health(ctx.Request().Context())
	}
	code, status := http.StatusOK, "ok"
	for _, ok := range checks {
		if !ok {
			code, status = http.StatusServiceUnavailable, "degraded"
		}
	}
	return ctx.JSON(code, echo.Map{"status": status, "checks": checks})
}

// formValidator validates forms before anything reaches the backend.
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
