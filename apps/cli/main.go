// Command schoolctl is a terminal client of the school API. Its session is kept on disk
// between runs.
package main

import (
	"fmt"
	"os"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	logsvc "github.com/SaurabhAlex/school-management-web/services/logger"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
	"github.com/SaurabhAlex/school-management-web/storage/filestore"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stderr, "schoolctl", conf)
	logger.Enable(!conf.Debug)

	storage, err := filestore.New(conf.Session.Dir, "schoolctl", filestore.WithLogger(logger))
	if err != nil {
		logger.Fatal("opening session storage", err)
	}

	api := schoolapi.New(conf.APIBaseURL, schoolapi.WithTimeout(conf.Client.Timeout), schoolapi.WithLogger(logger))
	cli := newCommandLine(os.Stdout, storage, api, logger,
		resource.WithRetryDelay(conf.Client.RetryDelay),
		resource.WithRetryable(schoolapi.Retryable),
		resource.WithLogger(logger))

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", describe(err))
		}
		os.Exit(1)
	}
}
