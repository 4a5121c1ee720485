package main

import (
	"context"
	"fmt"

	"github.com/mkarev/tzkeeper/internal/config"
	myHTTP "github.com/mkarev/tzkeeper/internal/handler/http"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/server"
	"github.com/mkarev/tzkeeper/internal/service"
	"github.com/mkarev/tzkeeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("tzkeeper-server")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log.GetChildLogger())
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services := service.NewServices(storages, cfg.Auth, log.GetChildLogger())

	handler := myHTTP.NewHandler(services, storages, cfg.Server, log.GetChildLogger())
	router, err := handler.Init()
	if err != nil {
		log.Fatal().Err(err).Msg("error registering routes")
	}

	srv := server.NewServer(router, cfg.Server, log.GetChildLogger())
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
