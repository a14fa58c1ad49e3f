package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type adminRoutesHandler struct {
	requestService service.Request
	orderService   service.Order
	validate       *validator.Validate
}

func newAdminRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *adminRoutesHandler {
	h := &adminRoutesHandler{requestService: services.Request, orderService: services.Order, validate: v}

	outer.GET("/requests/:domain", h.ListRequests)
	outer.GET("/requests/:domain/export", h.ExportRequests)
	outer.GET("/requests/:domain/:id", h.GetRequest)
	outer.PUT("/requests/:domain/:id/review", h.ReviewRequest)
	outer.GET("/orders", h.ListOrders)
	outer.PUT("/orders/:id/status", h.UpdateOrderStatus)

	return h
}

type listRequestsInput struct {
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
	Status string `query:"status" validate:"max=50"`
	Search string `query:"search" validate:"max=200"`
}

func newListRequestsInput() listRequestsInput {
	return listRequestsInput{Limit: defaultLimit, Offset: defaultOffset}
}

func (i listRequestsInput) filter() entity.RequestFilter {
	return entity.RequestFilter{Status: lifecycle.Status(i.Status), Search: i.Search}
}

// /admin/requests/:domain
func (h *adminRoutesHandler) ListRequests(c echo.Context) error {
	domain, err := domainParam(c)
	if err != nil {
		return serviceError(c, err)
	}

	var input = newListRequestsInput()
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	pg := entity.NewPaginationInput(input.Limit, input.Offset)
	requests, err := h.requestService.ListForAdmin(c.Request().Context(), domain, input.filter(), pg)
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, requests); e != nil {
		return e
	}

	return nil
}

// /admin/requests/:domain/export
func (h *adminRoutesHandler) ExportRequests(c echo.Context) error {
	domain, err := domainParam(c)
	if err != nil {
		return serviceError(c, err)
	}

	var input = newListRequestsInput()
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = h.requestService.Export(c.Request().Context(), domain, input.filter(), &buf); err != nil {
		return serviceError(c, err)
	}

	filename := fmt.Sprintf("%s-%s.xlsx", domain, time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// /admin/requests/:domain/:id
func (h *adminRoutesHandler) GetRequest(c echo.Context) error {
	domain, err := domainParam(c)
	if err != nil {
		return serviceError(c, err)
	}

	request, err := h.requestService.GetForAdmin(c.Request().Context(), domain, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, request); e != nil {
		return e
	}

	return nil
}

type agentAssignmentInput struct {
	Name  string          `json:"name" validate:"required,max=100"`
	Phone string          `json:"phone" validate:"required,max=20"`
	Fee   decimal.Decimal `json:"fee"`
}

type reviewInput struct {
	Status          *string                  `json:"status" validate:"omitempty,max=50"`
	Curated         *lifecycle.CuratedFields `json:"curated"`
	AdminNotes      *string                  `json:"adminNotes" validate:"omitempty,max=5000"`
	AgentAssignment *agentAssignmentInput    `json:"agentAssignment"`
}

func (i reviewInput) model(actor string) *entity.ReviewInput {
	out := &entity.ReviewInput{Curated: i.Curated, AdminNotes: i.AdminNotes, Actor: actor}
	if i.Status != nil {
		status := lifecycle.Status(*i.Status)
		out.Status = &status
	}
	if i.AgentAssignment != nil {
		out.AgentAssignment = &entity.AgentAssignment{
			Name:  i.AgentAssignment.Name,
			Phone: i.AgentAssignment.Phone,
			Fee:   i.AgentAssignment.Fee,
		}
	}

	return out
}

// /admin/requests/:domain/:id/review
func (h *adminRoutesHandler) ReviewRequest(c echo.Context) error {
	domain, err := domainParam(c)
	if err != nil {
		return serviceError(c, err)
	}

	var input reviewInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}
	if input.AgentAssignment != nil && input.AgentAssignment.Fee.IsNegative() {
		return fail(c, http.StatusBadRequest, "'Fee': should be greater or equal than 0\n", nil)
	}

	request, err := h.requestService.Review(c.Request().Context(), domain, c.Param("id"), input.model(actorOf(c)))
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, request); e != nil {
		return e
	}

	return nil
}

type listOrdersInput struct {
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
	Status string `query:"status" validate:"omitempty,oneof=new processing done cancelled"`
}

// /admin/orders
func (h *adminRoutesHandler) ListOrders(c echo.Context) error {
	var input = listOrdersInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	pg := entity.NewPaginationInput(input.Limit, input.Offset)
	orders, err := h.orderService.ListOrders(c.Request().Context(), lifecycle.Status(input.Status), pg)
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, orders); e != nil {
		return e
	}

	return nil
}

type orderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new processing done cancelled"`
}

// /admin/orders/:id/status
func (h *adminRoutesHandler) UpdateOrderStatus(c echo.Context) error {
	var input orderStatusInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), c.Param("id"), lifecycle.Status(input.Status), actorOf(c))
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusOK, order); e != nil {
		return e
	}

	return nil
}
