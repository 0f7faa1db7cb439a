package middleware

import (
	"context"

	"github.com/JayKakadiya/ui-plugin-samples/internal/exports"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/geography"

	"github.com/labstack/echo/v4"
)

type GraphService interface {
	Derive(ctx context.Context, focus common.Focus) (*common.Graph, error)
}

type GeographyService interface {
	Derive(ctx context.Context, req geography.Request) (*common.GeoChart, error)
}

type ExportService interface {
	Enqueue(ctx context.Context, data common.ContextData) (*exports.Job, error)
	Get(ctx context.Context, id string) (*exports.Job, error)
}

type App struct {
	Graph     GraphService
	Geography GeographyService
	// Exports is nil when the export pipeline is disabled.
	Exports ExportService
	// RequireAuth rejects API requests without an Authorization header.
	RequireAuth bool
}

type AppContext struct {
	echo.Context
	App *App
	// Authorization is the caller's header, forwarded to the data-access layer.
	Authorization string
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{Context: c, App: app}
			return next(cc)
		}
	}
}
