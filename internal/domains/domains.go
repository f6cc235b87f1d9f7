package domains

import (
	"log/slog"

	"zorgsites/internal/domains/handler"
	"zorgsites/internal/domains/service"
)

// Service exposes the domain acquisition and binding pipeline.
type Service = service.Service

// Handler wires HTTP endpoints to the domains service.
type Handler = handler.Handler

// NewService constructs the domains service with required dependencies.
func NewService(records service.RecordStore, sites service.SiteStore, reg service.Registrar, host service.HostingPlatform, targets service.DNSTargets, opts ...service.Option) *Service {
	return service.New(records, sites, reg, host, targets, opts...)
}

// NewHandler constructs an HTTP handler for the domain routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
