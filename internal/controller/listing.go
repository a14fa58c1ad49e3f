package controller

import (
	"net/http"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type listingRoutesHandler struct {
	requestService service.Request
	validate       *validator.Validate
}

func newListingRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *listingRoutesHandler {
	h := &listingRoutesHandler{requestService: services.Request, validate: v}

	outer.GET("/medicine", h.SearchMedicine)
	outer.GET("/medicine/:id", h.GetMedicine)

	return h
}

type searchInput struct {
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
	Term   string `query:"q" validate:"max=200"`
	Wilaya string `query:"wilaya" validate:"max=100"`
	Urgent string `query:"urgent" validate:"omitempty,oneof=true false"`
}

func newSearchInput() searchInput {
	return searchInput{Limit: defaultLimit, Offset: defaultOffset}
}

func (i searchInput) filter() entity.PublicFilter {
	f := entity.PublicFilter{Term: i.Term, Wilaya: i.Wilaya}
	if i.Urgent != "" {
		urgent := i.Urgent == "true"
		f.Urgent = &urgent
	}

	return f
}

// /medicine
func (h *listingRoutesHandler) SearchMedicine(c echo.Context) error {
	var input = newSearchInput()
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	pg := entity.NewPaginationInput(input.Limit, input.Offset)
	requests, err := h.requestService.SearchPublic(c.Request().Context(), lifecycle.Medicine, input.filter(), pg)
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, requests); e != nil {
		return e
	}

	return nil
}

// /medicine/:id
func (h *listingRoutesHandler) GetMedicine(c echo.Context) error {
	request, err := h.requestService.GetPublic(c.Request().Context(), lifecycle.Medicine, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, request); e != nil {
		return e
	}

	return nil
}
