// Command mockapi serves the school REST API from memory, for local development of the portal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/SaurabhAlex/school-management-web/apps/mockapi/echo"
	"github.com/SaurabhAlex/school-management-web/core"
	logsvc "github.com/SaurabhAlex/school-management-web/services/logger"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stdout, "mockapi", conf)
	logger.Enable(!conf.Debug)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	db := inmemdb.Open()
	if err := echoapi.SeedAdmin(db, conf.MockAPI.AdminEmail, conf.MockAPI.AdminPassword); err != nil {
		logger.Fatal(fmt.Sprintf("seeding admin: %v", err), err)
	}

	server := echoapi.NewServer(&echoapi.Options{
		Address:            conf.MockAPI.Address,
		Debug:              conf.Debug,
		SecretKey:          conf.MockAPI.SecretKey,
		JWTExpirationDelta: conf.MockAPI.JWTExpirationDelta,
		DB:                 db,
		Logger:             logger,
	})

	// =========================================================================
	// Start API Service

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + conf.MockAPI.Address)
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
}
