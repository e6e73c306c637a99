package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/crisphub/internal/http/health"
	analyticshandler "github.com/janisto/crisphub/internal/http/v1/analytics"
	analyticssvc "github.com/janisto/crisphub/internal/service/analytics"
)

// Register wires all huma operations into the provided API router.
func Register(api huma.API, analyticsService analyticssvc.Service) {
	health.Register(api)
	analyticshandler.Register(api, analyticsService)
}
