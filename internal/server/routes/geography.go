package routes

import (
	"net/http"

	"github.com/JayKakadiya/ui-plugin-samples/internal/server/middleware"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/geography"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/labstack/echo/v4"
)

func PostGeographyHandler(c echo.Context) error {
	type postGeographyBody struct {
		ContextData             common.ContextData `json:"contextData"`
		CountryEntityType       string             `json:"countryEntityType"`
		IsoCountryNameAttribute string             `json:"isoCountryNameAttribute"`
	}

	body := new(postGeographyBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	cc := c.(*middleware.AppContext)
	req := geography.Request{
		Focus:                   common.NewFocus(body.ContextData, cc.Authorization),
		CountryEntityType:       body.CountryEntityType,
		IsoCountryNameAttribute: body.IsoCountryNameAttribute,
	}

	chart, err := cc.App.Geography.Derive(c.Request().Context(), req)
	if err != nil {
		logger.Warn("[Geography] Derivation degraded", "entity_id", req.Focus.EntityID, "err", err)
	}
	return c.JSON(http.StatusOK, chart)
}
