// Package checkout turns a cart into the orders persisted at checkout time.
package checkout

import (
	"errors"
	"fmt"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidItem = errors.New("invalid cart item")
)

// Split separates store items from custom items. Each non-empty group becomes
// one order carrying the shared contact payload. The delivery cost is charged
// once: on the store order, or on the custom order when the cart holds no
// store items.
func Split(cart entity.Cart, shippingCost decimal.Decimal, groupId uuid.UUID) ([]entity.CreateOrderInput, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var store, custom []entity.CartItem
	for _, item := range cart.Items {
		if err := checkItem(item); err != nil {
			return nil, err
		}
		if item.IsCustom() {
			custom = append(custom, item)
		} else {
			store = append(store, item)
		}
	}

	orders := make([]entity.CreateOrderInput, 0, 2)
	if len(store) > 0 {
		orders = append(orders, newOrder(cart, entity.StoreOrder, store, shippingCost, groupId))
	}
	if len(custom) > 0 {
		shipping := decimal.Zero
		if len(store) == 0 {
			shipping = shippingCost
		}
		orders = append(orders, newOrder(cart, entity.CustomOrder, custom, shipping, groupId))
	}

	return orders, nil
}

func checkItem(item entity.CartItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if item.Quantity < 1 {
		return fmt.Errorf("%w: %q quantity %d", ErrInvalidItem, item.Name, item.Quantity)
	}
	if item.UnitPrice.IsNegative() || item.ShippingPrice.IsNegative() {
		return fmt.Errorf("%w: %q has a negative price", ErrInvalidItem, item.Name)
	}

	return nil
}

func newOrder(cart entity.Cart, orderType entity.OrderType, items []entity.CartItem, shipping decimal.Decimal, groupId uuid.UUID) entity.CreateOrderInput {
	total := shipping
	metadata := make([]entity.OrderItemMetadata, 0, len(items))
	for _, item := range items {
		total = total.Add(Subtotal(item))
		metadata = append(metadata, entity.OrderItemMetadata{
			ProductId:     item.ProductId,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			ShippingPrice: item.ShippingPrice,
			ProductUrl:    item.ProductUrl,
		})
	}

	return entity.CreateOrderInput{
		GroupId:      groupId,
		OrderType:    orderType,
		Status:       lifecycle.Order.Initial(),
		Total:        total,
		ShippingCost: shipping,
		Notes: entity.OrderNotes{
			Internal:      cart.Contact,
			Public:        cart.PublicNote,
			OrderType:     orderType,
			ItemsMetadata: metadata,
		},
	}
}

// Subtotal is quantity times unit price plus the line's own shipping price.
func Subtotal(item entity.CartItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Add(item.ShippingPrice)
}
