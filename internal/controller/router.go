package controller

import (
	"io"
	"waseet-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	AdminToken string
	Logger     *logrus.Entry
}

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, opts RouterOptions) {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = logrus.NewEntry(l)
	}

	handler.HideBanner = true
	handler.Use(middleware.Recover())
	handler.Use(requestLogger(opts.Logger.WithField("component", "http")))

	handler.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newRequestRoutesHandler(api, services, validate)
	newListingRoutesHandler(api, services, validate)
	newOrderRoutesHandler(api, services, validate)

	admin := api.Group("/admin", requireAdmin(opts.AdminToken))
	newAdminRoutesHandler(admin, services, validate)
}
