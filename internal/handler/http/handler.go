package http

import (
	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/service"
	"github.com/mkarev/tzkeeper/internal/store"
)

type Handler struct {
	services *service.Services
	storages *store.Storages
	cfg      config.Server

	logger *logger.Logger
}

func NewHandler(services *service.Services, storages *store.Storages, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		storages: storages,
		cfg:      cfg,
		logger:   logger,
	}
}
