package service

import (
	"context"
	"errors"
	"fmt"
	"waseet-api/internal/checkout"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/repo"
	"waseet-api/internal/repo/repo_errors"
	"waseet-api/internal/shipping"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	orderRepo repo.Order
	policy    lifecycle.Policy
	rates     *shipping.Table
	log       *logrus.Entry
}

func NewOrderService(deps Dependencies) *OrderService {
	deps.setDefaults()

	return &OrderService{
		orderRepo: deps.Repos.Order,
		policy:    deps.Policy,
		rates:     deps.Rates,
		log:       deps.Logger.WithField("component", "orders"),
	}
}

// Checkout prices the cart, splits it into store and custom orders and
// stores all of them at once.
func (s *OrderService) Checkout(ctx context.Context, cart entity.Cart) (*entity.CheckoutOutputModel, error) {
	shippingCost, err := s.rates.Cost(cart.Contact.Wilaya, cart.Contact.DeliveryType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCart, err)
	}

	groupId := uuid.New()
	inputs, err := checkout.Split(cart, shippingCost, groupId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCart, err)
	}

	notifications := make([]entity.Notification, 0, len(inputs))
	for i := range inputs {
		inputs[i].Id = uuid.New()
		input := inputs[i]
		order := entity.Order{
			Id:        input.Id,
			GroupId:   input.GroupId,
			OrderType: input.OrderType,
			Status:    input.Status,
			Total:     input.Total,
			Notes:     input.Notes,
		}
		notifications = append(notifications, entity.Notification{
			Type:   "order_created",
			Record: mapOrderRecord(&order, ""),
		})
	}

	if _, err = s.orderRepo.CreateOrders(ctx, inputs, notifications); err != nil {
		if errors.Is(err, entity.ErrInvalidOrderNotes) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCart, err)
		}

		return nil, err
	}

	orders, err := s.orderRepo.GetOrdersByGroupId(ctx, groupId)
	if err != nil {
		return nil, err
	}

	s.log.WithField("group", groupId).WithField("orders", len(orders)).Info("checkout completed")

	return &entity.CheckoutOutputModel{
		GroupId: groupId.String(),
		Orders:  mapOrders(orders),
	}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, status lifecycle.Status, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error) {
	if status != "" && !lifecycle.Order.Has(status) {
		return nil, lifecycle.ErrUnknownStatus
	}

	orders, err := s.orderRepo.ListOrders(ctx, status, pg)
	if err != nil {
		return nil, err
	}

	return mapOrders(orders), nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status lifecycle.Status, actor string) (*entity.OrderOutputModel, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = s.policy.ValidateTransition(lifecycle.Order, order.Status, status, lifecycle.CuratedFields{}); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = status

	err = s.orderRepo.UpdateOrderStatus(ctx, &entity.OrderStatusUpdate{
		Id:     order.Id,
		Status: status,
		Notification: entity.Notification{
			Type:   notificationType(lifecycle.Order.String(), previous != status),
			Record: mapOrderRecord(order, previous.String()),
		},
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": order.Id, "from": previous, "to": status, "actor": actor}).Info("order status changed")

	order, err = s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapOrder(order), nil
}

// notificationType names the outbox event of an edit: a status move, or an
// update that left the status where it was.
func notificationType(domain string, statusChanged bool) string {
	if statusChanged {
		return domain + "_status_changed"
	}

	return domain + "_updated"
}

func (s *OrderService) ShippingRates() []shipping.Rate {
	return s.rates.Rates()
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	return order, nil
}
