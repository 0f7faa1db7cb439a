package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/internal/exports"
	"github.com/JayKakadiya/ui-plugin-samples/internal/queue"
	mid "github.com/JayKakadiya/ui-plugin-samples/internal/server/middleware"
	"github.com/JayKakadiya/ui-plugin-samples/internal/storage"
	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/dataaccess"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/geography"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/graph"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the echo instance serving app.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("[HTTP] Request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
				return nil
			}
			logger.Info("[HTTP] Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := dataaccess.NewClientFromEnv()

	graphDeriver, err := graph.NewGraphDeriver(graph.NewGraphDeriverParams{
		Schema:   client,
		Entities: client,
		Timeout:  util.GetEnvDuration("DERIVE_TIMEOUT", graph.DefaultTimeout),
	})
	if err != nil {
		logger.Fatal("Failed to create graph deriver", "err", err)
	}
	geoDeriver, err := geography.NewDeriver(client)
	if err != nil {
		logger.Fatal("Failed to create geography deriver", "err", err)
	}

	app := &mid.App{
		Graph:       graphDeriver,
		Geography:   geoDeriver,
		RequireAuth: util.GetEnvBool("REQUIRE_AUTH", false),
	}

	if util.GetEnvBool("EXPORTS_ENABLED", false) {
		databaseURL := util.GetEnv("DATABASE_URL")
		if err := exports.Migrate(databaseURL, util.GetEnvString("MIGRATIONS_PATH", "migrations")); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}

		conn, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()

		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, []string{exports.Queue}); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}

		s3, err := storage.NewStore(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}

		app.Exports = exports.NewService(exports.NewStore(conn), queue.NewPublisher(ch), s3)
		logger.Info("Exports enabled", "queue", exports.Queue)
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
