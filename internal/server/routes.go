package server

import (
	"github.com/JayKakadiya/ui-plugin-samples/internal/server/middleware"
	"github.com/JayKakadiya/ui-plugin-samples/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Connections viewer
	apiRoutes.POST("/connections", routes.PostConnectionsHandler)
	apiRoutes.GET("/entities/:type/:id/connections", routes.GetEntityConnectionsHandler)

	// Geography viewer
	apiRoutes.POST("/geography", routes.PostGeographyHandler)

	// Graph snapshot exports
	apiRoutes.POST("/exports", routes.PostExportHandler, middleware.RequireExports)
	apiRoutes.GET("/exports/:id", routes.GetExportHandler, middleware.RequireExports)
}
