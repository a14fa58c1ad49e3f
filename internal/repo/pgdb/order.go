package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/repo/repo_errors"
	"waseet-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const orderColumns = "id, group_id, created_at, updated_at, order_type, status, total, shipping_cost, notes"

type OrderRepo struct {
	*postgres.Postgres
}

func NewOrderRepo(pgdb *postgres.Postgres) *OrderRepo {
	return &OrderRepo{pgdb}
}

// CreateOrders inserts every order of a checkout and their notifications
// atomically: either the whole cart is persisted or nothing is.
func (r *OrderRepo) CreateOrders(ctx context.Context, inputs []entity.CreateOrderInput, notifications []entity.Notification) ([]uuid.UUID, error) {
	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		if err = input.Notes.Validate(); err != nil {
			return nil, rollback(tx, err)
		}

		createOrderSql, args, _ := r.SqlBuilder.
			Insert("orders").
			Columns("id", "group_id", "order_type", "status", "total", "shipping_cost", "notes").
			Values(input.Id, input.GroupId, input.OrderType, input.Status, input.Total, input.ShippingCost, input.Notes).
			ToSql()

		if _, err = tx.ExecContext(ctx, createOrderSql, args...); err != nil {
			return nil, rollback(tx, err)
		}
		ids = append(ids, input.Id)
	}

	if err = enqueueNotifications(ctx, tx, r.SqlBuilder, notifications...); err != nil {
		return nil, rollback(tx, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *OrderRepo) GetOrderById(ctx context.Context, id string) (*entity.Order, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getOrderSql, args, _ := r.SqlBuilder.
		Select(orderColumns).
		From("orders").
		Where("id = ?", uuidForm).
		ToSql()

	var order entity.Order
	if err = r.Database.GetContext(ctx, &order, getOrderSql, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &order, nil
}

func (r *OrderRepo) GetOrdersByGroupId(ctx context.Context, groupId uuid.UUID) ([]entity.Order, error) {
	listSql, args, _ := r.SqlBuilder.
		Select(orderColumns).
		From("orders").
		Where("group_id = ?", groupId).
		OrderBy("order_type DESC").
		ToSql()

	orders := make([]entity.Order, 0)
	if err := r.Database.SelectContext(ctx, &orders, listSql, args...); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepo) ListOrders(ctx context.Context, status lifecycle.Status, pg *entity.PaginationInput) ([]entity.Order, error) {
	builder := r.SqlBuilder.
		Select(orderColumns).
		From("orders")

	if status != "" {
		builder = builder.Where(squirrel.Eq{"status": status.String()})
	}

	listSql, args, _ := builder.
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	orders := make([]entity.Order, 0)
	if err := r.Database.SelectContext(ctx, &orders, listSql, args...); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, update *entity.OrderStatusUpdate) error {
	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	updateStatusSql, args, _ := r.SqlBuilder.
		Update("orders").
		Set("status", update.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", update.Id).
		ToSql()

	res, err := tx.ExecContext(ctx, updateStatusSql, args...)
	if err != nil {
		return rollback(tx, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return rollback(tx, repo_errors.ErrNotFound)
	}

	if err = enqueueNotifications(ctx, tx, r.SqlBuilder, update.Notification); err != nil {
		return rollback(tx, err)
	}

	return tx.Commit()
}
