package routes

import (
	"errors"
	"net/http"

	"github.com/JayKakadiya/ui-plugin-samples/internal/exports"
	"github.com/JayKakadiya/ui-plugin-samples/internal/server/middleware"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/labstack/echo/v4"
)

func PostExportHandler(c echo.Context) error {
	type postExportBody struct {
		ContextData common.ContextData `json:"contextData"`
	}

	body := new(postExportBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	job, err := app.Exports.Enqueue(c.Request().Context(), body.ContextData)
	if errors.Is(err, exports.ErrNoFocus) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		logger.Error("[Export] Failed to queue export", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"id":     job.ID,
		"status": string(job.Status),
	})
}

func GetExportHandler(c echo.Context) error {
	type getExportParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getExportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	job, err := app.Exports.Get(c.Request().Context(), params.ID)
	if errors.Is(err, exports.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Export not found"})
	}
	if err != nil {
		logger.Error("[Export] Failed to load export", "job_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, job)
}
