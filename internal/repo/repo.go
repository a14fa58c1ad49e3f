package repo

import (
	"context"
	"database/sql"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/outbox"
	"waseet-api/internal/repo/pgdb"
	"waseet-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

type Request interface {
	CreateRequest(ctx context.Context, input *entity.CreateRequestInput, n entity.Notification) error
	GetRequestById(ctx context.Context, domain lifecycle.Domain, id string) (*entity.Request, error)
	ListRequests(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, pg *entity.PaginationInput) ([]entity.Request, error)
	ListRequestsByStatuses(ctx context.Context, domain lifecycle.Domain, statuses []lifecycle.Status) ([]entity.Request, error)
	UpdateRequest(ctx context.Context, update *entity.RequestUpdate) error
	UpdateLastDonationDate(ctx context.Context, id string, phone string, date string, n entity.Notification) error
	GetStatusHistory(ctx context.Context, domain lifecycle.Domain, id uuid.UUID) ([]entity.StatusChange, error)
}

type Order interface {
	CreateOrders(ctx context.Context, inputs []entity.CreateOrderInput, notifications []entity.Notification) ([]uuid.UUID, error)
	GetOrderById(ctx context.Context, id string) (*entity.Order, error)
	GetOrdersByGroupId(ctx context.Context, groupId uuid.UUID) ([]entity.Order, error)
	ListOrders(ctx context.Context, status lifecycle.Status, pg *entity.PaginationInput) ([]entity.Order, error)
	UpdateOrderStatus(ctx context.Context, update *entity.OrderStatusUpdate) error
}

type Repositories struct {
	Diagnostics
	Request
	Order
	Outbox outbox.Store
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		Request:     pgdb.NewRequestRepo(p),
		Order:       pgdb.NewOrderRepo(p),
		Outbox:      pgdb.NewOutboxRepo(p),
	}
}
