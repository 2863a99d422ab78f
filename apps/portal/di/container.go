package di

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoportal "github.com/SaurabhAlex/school-management-web/apps/portal/echo"
	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/session"
	logsvc "github.com/SaurabhAlex/school-management-web/services/logger"
	"github.com/SaurabhAlex/school-management-web/services/metrics"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
	"github.com/SaurabhAlex/school-management-web/storage/filestore"
	"github.com/SaurabhAlex/school-management-web/storage/memstore"
	"github.com/SaurabhAlex/school-management-web/storage/redisstore"
)

type APILoggerParam struct {
	dig.In
	Logger core.Logger `name:"apiLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "portal", conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newAPILogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "schoolapi", conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func newObserver(reg *prometheus.Registry) (*metrics.Observer, error) {
	return metrics.NewObserver(reg)
}

func newAPIClient(conf *core.Config, loggerParam APILoggerParam) *schoolapi.Client {
	return schoolapi.New(conf.APIBaseURL,
		schoolapi.WithTimeout(conf.Client.Timeout),
		schoolapi.WithLogger(loggerParam.Logger),
	)
}

// newRedis returns nil unless sessions are kept in redis.
func newRedis(conf *core.Config) *redis.Client {
	if conf.Session.Storage != "redis" {
		return nil
	}
	return redisstore.Client(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
}

func newStorageFactory(conf *core.Config, rdb *redis.Client, logger core.Logger) (echoportal.StorageFactory, error) {
	switch conf.Session.Storage {
	case "", "memory":
		return func(string) session.Storage { return memstore.New() }, nil
	case "file":
		dir := filepath.Join(conf.Session.Dir, "portal")
		return func(sid string) session.Storage {
			s, err := filestore.New(dir, sid+".json", filestore.WithLogger(logger))
			if err != nil {
				logger.Error("opening session file, falling back to memory", err)
				return memstore.New()
			}
			return s
		}, nil
	case "redis":
		return func(sid string) session.Storage {
			return redisstore.New(rdb, conf.Redis.Prefix, sid, conf.Portal.IdleTimeout)
		}, nil
	}
	return nil, errors.Errorf("unknown session storage %q", conf.Session.Storage)
}

func newWorkspaces(
	conf *core.Config,
	api *schoolapi.Client,
	storage echoportal.StorageFactory,
	observer *metrics.Observer,
	logger core.Logger,
) *echoportal.Workspaces {
	return echoportal.NewWorkspaces(echoportal.WorkspacesOptions{
		API:         api,
		Storage:     storage,
		IdleTimeout: conf.Portal.IdleTimeout,
		Resource: []resource.Option{
			resource.WithRetryDelay(conf.Client.RetryDelay),
			resource.WithRetryable(schoolapi.Retryable),
			resource.WithLogger(logger),
			resource.WithObserver(observer),
		},
		Logger: logger,
	})
}

func newServer(
	conf *core.Config,
	ws *echoportal.Workspaces,
	reg *prometheus.Registry,
	api *schoolapi.Client,
	rdb *redis.Client,
	logger core.Logger,
) echoportal.Server {
	return echoportal.NewServer(&echoportal.Options{
		Address:      conf.Portal.Address,
		Debug:        conf.Debug,
		CookieSecure: conf.Portal.CookieSecure,
		Workspaces:   ws,
		Metrics:      reg,
		Health: func(ctx context.Context) map[string]bool {
			checks := map[string]bool{"api": api.Ping(ctx) == nil}
			if rdb != nil {
				checks["redis"] = redisstore.Healthy(ctx, rdb)
			}
			return checks
		},
		Logger: logger,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newAPILogger, dig.Name("apiLogger")))
	must(c.Provide(newRegistry))
	must(c.Provide(newObserver))
	must(c.Provide(newAPIClient))
	must(c.Provide(newRedis))
	must(c.Provide(newStorageFactory))
	must(c.Provide(newWorkspaces))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
