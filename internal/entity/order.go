package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"waseet-api/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	StoreOrder  OrderType = "store"
	CustomOrder OrderType = "custom"
)

type DeliveryType string

const (
	HomeDelivery DeliveryType = "home"
	DeskDelivery DeliveryType = "desk"
)

type OrderContact struct {
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email,omitempty"`
	Address      string       `json:"address"`
	Wilaya       string       `json:"wilaya"`
	DeliveryType DeliveryType `json:"deliveryType"`
}

type CartItem struct {
	ProductId     string
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	ShippingPrice decimal.Decimal
	ProductUrl    string
}

// IsCustom reports whether the line is a free-text product request rather
// than a store item.
func (i CartItem) IsCustom() bool {
	return i.ProductUrl != ""
}

type Cart struct {
	Contact    OrderContact
	PublicNote string
	Items      []CartItem
}

type OrderItemMetadata struct {
	ProductId     string          `json:"productId,omitempty"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	ProductUrl    string          `json:"productUrl,omitempty"`
}

// OrderNotes is the jsonb notes column of an order.
type OrderNotes struct {
	Internal      OrderContact        `json:"internal"`
	Public        string              `json:"public"`
	OrderType     OrderType           `json:"orderType"`
	ItemsMetadata []OrderItemMetadata `json:"itemsMetadata"`
}

var ErrInvalidOrderNotes = errors.New("invalid order notes")

func (n OrderNotes) Validate() error {
	if n.OrderType != StoreOrder && n.OrderType != CustomOrder {
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidOrderNotes, n.OrderType)
	}
	if n.Internal.Name == "" || n.Internal.Phone == "" {
		return fmt.Errorf("%w: contact name and phone are required", ErrInvalidOrderNotes)
	}
	if len(n.ItemsMetadata) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrderNotes)
	}
	for _, item := range n.ItemsMetadata {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %q has quantity %d", ErrInvalidOrderNotes, item.Name, item.Quantity)
		}
		if (item.ProductUrl != "") != (n.OrderType == CustomOrder) {
			return fmt.Errorf("%w: item %q does not belong to a %s order", ErrInvalidOrderNotes, item.Name, n.OrderType)
		}
	}

	return nil
}

func (n OrderNotes) Value() (driver.Value, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	return json.Marshal(n)
}

func (n *OrderNotes) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	case nil:
		*n = OrderNotes{}
		return nil
	}

	return errors.New("order notes: unsupported column type")
}

// db model
type Order struct {
	Id           uuid.UUID        `db:"id"`
	GroupId      uuid.UUID        `db:"group_id"`
	CreatedAt    time.Time        `db:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"`
	OrderType    OrderType        `db:"order_type"`
	Status       lifecycle.Status `db:"status"`
	Total        decimal.Decimal  `db:"total"`
	ShippingCost decimal.Decimal  `db:"shipping_cost"`
	Notes        OrderNotes       `db:"notes"`
}

// repo input model
type CreateOrderInput struct {
	Id           uuid.UUID
	GroupId      uuid.UUID
	OrderType    OrderType
	Status       lifecycle.Status
	Total        decimal.Decimal
	ShippingCost decimal.Decimal
	Notes        OrderNotes
}

type OrderStatusUpdate struct {
	Id           uuid.UUID
	Status       lifecycle.Status
	Notification Notification
}

// controller model
type OrderOutputModel struct {
	Id           string              `json:"id"`
	GroupId      string              `json:"groupId"`
	OrderType    string              `json:"orderType"`
	Status       string              `json:"status"`
	Total        decimal.Decimal     `json:"total"`
	ShippingCost decimal.Decimal     `json:"shippingCost"`
	CreatedAt    string              `json:"createdAt"`
	Contact      *OrderContact       `json:"contact,omitempty"`
	PublicNote   string              `json:"publicNote,omitempty"`
	Items        []OrderItemMetadata `json:"items"`
}

type CheckoutOutputModel struct {
	GroupId string             `json:"groupId"`
	Orders  []OrderOutputModel `json:"orders"`
}
