package controller

import (
	"net/http"
	"waseet-api/internal/entity"
	"waseet-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type orderRoutesHandler struct {
	orderService service.Order
	validate     *validator.Validate
}

func newOrderRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *orderRoutesHandler {
	h := &orderRoutesHandler{orderService: services.Order, validate: v}

	outer.POST("/orders/checkout", h.Checkout)
	outer.GET("/shipping/rates", h.GetShippingRates)

	return h
}

type contactPayloadInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,min=9,max=20"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"required,max=300"`
	Wilaya       string `json:"wilaya" validate:"required,max=100"`
	DeliveryType string `json:"deliveryType" validate:"required,oneof=home desk"`
	PublicNote   string `json:"publicNote" validate:"max=1000"`
}

type cartItemInput struct {
	ProductId     string          `json:"productId" validate:"max=100"`
	Name          string          `json:"name" validate:"required,max=200"`
	Quantity      int             `json:"quantity" validate:"gte=1,lte=1000"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	ProductUrl    string          `json:"productUrl" validate:"omitempty,url"`
}

type checkoutInput struct {
	Contact contactPayloadInput `json:"contact"`
	Items   []cartItemInput     `json:"items" validate:"required,min=1,max=100,dive"`
}

func (i checkoutInput) cart() entity.Cart {
	items := make([]entity.CartItem, 0, len(i.Items))
	for _, item := range i.Items {
		items = append(items, entity.CartItem{
			ProductId:     item.ProductId,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			ShippingPrice: item.ShippingPrice,
			ProductUrl:    item.ProductUrl,
		})
	}

	return entity.Cart{
		Contact: entity.OrderContact{
			Name:         i.Contact.Name,
			Phone:        i.Contact.Phone,
			Email:        i.Contact.Email,
			Address:      i.Contact.Address,
			Wilaya:       i.Contact.Wilaya,
			DeliveryType: entity.DeliveryType(i.Contact.DeliveryType),
		},
		PublicNote: i.Contact.PublicNote,
		Items:      items,
	}
}

// /orders/checkout
func (h *orderRoutesHandler) Checkout(c echo.Context) error {
	var input checkoutInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	out, err := h.orderService.Checkout(c.Request().Context(), input.cart())
	if err != nil {
		return serviceError(c, err)
	}
	if e := c.JSON(http.StatusCreated, out); e != nil {
		return e
	}

	return nil
}

// /shipping/rates
func (h *orderRoutesHandler) GetShippingRates(c echo.Context) error {
	if e := c.JSON(http.StatusOK, h.orderService.ShippingRates()); e != nil {
		return e
	}

	return nil
}
