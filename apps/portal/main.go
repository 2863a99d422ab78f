// Command portal serves the school management portal.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaurabhAlex/school-management-web/apps/portal/di"
	echoportal "github.com/SaurabhAlex/school-management-web/apps/portal/echo"
	"github.com/SaurabhAlex/school-management-web/core"
)

func main() {
	c := di.New()

	must(c.Invoke(func(conf *core.Config, logger core.Logger, server echoportal.Server) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{
			"api":     conf.APIBaseURL,
			"storage": conf.Session.Storage,
		})
		defer logger.Info("Application stopped")

		// =========================================================================
		// Start Portal

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("portal listening on " + conf.Portal.Address)
			serverErrors <- server.Start()
		}()

		// =========================================================================
		// Shutdown

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if err != http.ErrServerClosed {
				logger.Fatal(fmt.Sprintf("server error: %v", err), err)
			}

		case sig := <-shutdown:
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Portal.ShutdownTimeout)
			defer cancel()

			if err := server.Stop(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
