package service

import (
	"context"
	"io"
	"time"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/repo"
	"waseet-api/internal/shipping"

	"github.com/sirupsen/logrus"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) entity.DiagnosticsOutputModel
}

type Request interface {
	Submit(ctx context.Context, domain lifecycle.Domain, fields entity.Fields) (*entity.SubmissionOutputModel, error)
	UpdateLastDonationDate(ctx context.Context, id string, phone string, date string) error

	SearchPublic(ctx context.Context, domain lifecycle.Domain, filter entity.PublicFilter, pg *entity.PaginationInput) ([]entity.RequestPublicOutputModel, error)
	GetPublic(ctx context.Context, domain lifecycle.Domain, id string) (*entity.RequestPublicOutputModel, error)

	ListForAdmin(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, pg *entity.PaginationInput) ([]entity.RequestAdminOutputModel, error)
	GetForAdmin(ctx context.Context, domain lifecycle.Domain, id string) (*entity.RequestAdminOutputModel, error)
	Review(ctx context.Context, domain lifecycle.Domain, id string, input *entity.ReviewInput) (*entity.RequestAdminOutputModel, error)
	Export(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, w io.Writer) error
}

type Order interface {
	Checkout(ctx context.Context, cart entity.Cart) (*entity.CheckoutOutputModel, error)
	ListOrders(ctx context.Context, status lifecycle.Status, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error)
	UpdateOrderStatus(ctx context.Context, id string, status lifecycle.Status, actor string) (*entity.OrderOutputModel, error)
	ShippingRates() []shipping.Rate
}

type Services struct {
	Diagnostics Diagnostics
	Request     Request
	Order       Order
}

type Dependencies struct {
	Repos  *repo.Repositories
	Policy lifecycle.Policy
	Rates  *shipping.Table
	Logger *logrus.Entry
	Now    func() time.Time
}

func (d *Dependencies) setDefaults() {
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Logger = logrus.NewEntry(l)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

func NewServices(deps Dependencies) *Services {
	deps.setDefaults()

	return &Services{
		Diagnostics: NewDiagnosticsService(deps),
		Request:     NewRequestService(deps),
		Order:       NewOrderService(deps),
	}
}
