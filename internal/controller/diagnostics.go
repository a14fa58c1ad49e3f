package controller

import (
	"net/http"
	"waseet-api/internal/entity"
	"waseet-api/internal/service"

	"github.com/labstack/echo"
)

type diagnosticRoutesHandler struct {
	diagnosticService service.Diagnostics
}

func newDiagnosticRoutesHandler(outer *echo.Group, services *service.Services) *diagnosticRoutesHandler {
	h := &diagnosticRoutesHandler{services.Diagnostics}
	outer.GET("/ping", h.Ping)

	return h
}

type pingResponse struct {
	Status string `json:"status"`
	entity.DiagnosticsOutputModel
}

func (h *diagnosticRoutesHandler) Ping(c echo.Context) error {
	ctx := c.Request().Context()
	err := h.diagnosticService.Ping(ctx)
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "Database is not reachable", err)
	}
	if e := c.JSON(http.StatusOK, pingResponse{"ok", h.diagnosticService.Stats(ctx)}); e != nil {
		return e
	}

	return nil
}
