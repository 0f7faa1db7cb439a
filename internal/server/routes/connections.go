package routes

import (
	"net/http"

	"github.com/JayKakadiya/ui-plugin-samples/internal/server/middleware"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PostConnectionsHandler derives the connections graph for the entity the
// host context points at. Derivation problems are reported in the graph
// message, never as an error status.
func PostConnectionsHandler(c echo.Context) error {
	type postConnectionsBody struct {
		ContextData     common.ContextData `json:"contextData"`
		CoalesceOptions map[string]any     `json:"coalesceOptions"`
	}

	body := new(postConnectionsBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	cc := c.(*middleware.AppContext)
	focus := common.NewFocus(body.ContextData, cc.Authorization)
	focus.Query.CoalesceOptions = body.CoalesceOptions

	return respondGraph(c, cc, focus)
}

// GetEntityConnectionsHandler is the same derivation with the focus taken
// from the path.
func GetEntityConnectionsHandler(c echo.Context) error {
	type getEntityConnectionsParams struct {
		EntityType string `param:"type" validate:"required"`
		EntityID   string `param:"id" validate:"required"`
		Locale     string `query:"locale"`
		Source     string `query:"source"`
	}

	params := new(getEntityConnectionsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	data := common.ContextData{
		ItemContexts: []common.ItemContext{{ID: params.EntityID, Type: params.EntityType}},
	}
	if params.Locale != "" || params.Source != "" {
		data.ValContexts = []common.ValueContext{{Source: params.Source, Locale: params.Locale}}
	}

	cc := c.(*middleware.AppContext)
	return respondGraph(c, cc, common.NewFocus(data, cc.Authorization))
}

func respondGraph(c echo.Context, cc *middleware.AppContext, focus common.Focus) error {
	graph, err := cc.App.Graph.Derive(c.Request().Context(), focus)
	if err != nil {
		logger.Warn("[Graph] Derivation degraded",
			"entity_id", focus.EntityID,
			"entity_type", focus.EntityType,
			"err", err,
		)
	}
	return c.JSON(http.StatusOK, graph)
}
