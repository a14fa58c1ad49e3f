package service

import (
	"context"
	"database/sql"
	"time"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/outbox"
	"waseet-api/internal/repo"
	"waseet-api/internal/repo/repo_errors"
	"waseet-api/internal/shipping"

	"github.com/google/uuid"
)

type fakeRequestRepo struct {
	rows          map[uuid.UUID]*entity.Request
	history       []entity.StatusChange
	notifications []entity.Notification
	updates       int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: make(map[uuid.UUID]*entity.Request)}
}

func (f *fakeRequestRepo) CreateRequest(_ context.Context, input *entity.CreateRequestInput, n entity.Notification) error {
	now := time.Now()
	f.rows[input.Id] = &entity.Request{
		Id:        input.Id,
		Domain:    input.Domain,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    input.Status,
		RawFields: input.RawFields,
	}
	f.notifications = append(f.notifications, n)

	return nil
}

func (f *fakeRequestRepo) GetRequestById(_ context.Context, domain lifecycle.Domain, id string) (*entity.Request, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	r, ok := f.rows[parsed]
	if !ok || r.Domain != domain {
		return nil, repo_errors.ErrNotFound
	}
	cp := *r

	return &cp, nil
}

func (f *fakeRequestRepo) ListRequests(_ context.Context, domain lifecycle.Domain, filter entity.RequestFilter, pg *entity.PaginationInput) ([]entity.Request, error) {
	out := make([]entity.Request, 0)
	for _, r := range f.rows {
		if r.Domain == domain && (filter.Status == "" || r.Status == filter.Status) {
			out = append(out, *r)
		}
	}
	from, to := pg.Window(len(out))

	return out[from:to], nil
}

func (f *fakeRequestRepo) ListRequestsByStatuses(_ context.Context, domain lifecycle.Domain, statuses []lifecycle.Status) ([]entity.Request, error) {
	out := make([]entity.Request, 0)
	for _, r := range f.rows {
		if r.Domain != domain {
			continue
		}
		for _, s := range statuses {
			if r.Status == s {
				out = append(out, *r)
			}
		}
	}

	return out, nil
}

func (f *fakeRequestRepo) UpdateRequest(_ context.Context, update *entity.RequestUpdate) error {
	r, ok := f.rows[update.Id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	f.updates++
	r.Status = update.State.Status
	r.Curated = update.State.Curated
	r.AdminNotes = update.State.AdminNotes
	if update.Assignment != nil {
		r.AgentAssignment = *update.Assignment
	}
	if update.Transition != nil && update.Transition.Changed() {
		f.history = append(f.history, entity.StatusChange{
			Id:         uuid.New(),
			RequestId:  update.Id,
			FromStatus: update.Transition.From,
			ToStatus:   update.Transition.To,
			Actor:      update.Transition.Actor,
			CreatedAt:  update.Transition.At,
		})
	}
	f.notifications = append(f.notifications, update.Notification)

	return nil
}

func (f *fakeRequestRepo) UpdateLastDonationDate(_ context.Context, id string, phone string, date string, n entity.Notification) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}
	r, ok := f.rows[parsed]
	if !ok || r.Domain != lifecycle.BloodDonor || r.RawFields.String("phone") != phone {
		return repo_errors.ErrNotFound
	}
	r.RawFields["lastDonationDate"] = date
	f.notifications = append(f.notifications, n)

	return nil
}

func (f *fakeRequestRepo) GetStatusHistory(_ context.Context, _ lifecycle.Domain, id uuid.UUID) ([]entity.StatusChange, error) {
	out := make([]entity.StatusChange, 0)
	for _, h := range f.history {
		if h.RequestId == id {
			out = append(out, h)
		}
	}

	return out, nil
}

type fakeOrderRepo struct {
	orders        []entity.Order
	notifications []entity.Notification
	failCreate    error
}

func (f *fakeOrderRepo) CreateOrders(_ context.Context, inputs []entity.CreateOrderInput, notifications []entity.Notification) ([]uuid.UUID, error) {
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		id := in.Id
		f.orders = append(f.orders, entity.Order{
			Id:           id,
			GroupId:      in.GroupId,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
			OrderType:    in.OrderType,
			Status:       in.Status,
			Total:        in.Total,
			ShippingCost: in.ShippingCost,
			Notes:        in.Notes,
		})
		ids = append(ids, id)
	}
	f.notifications = append(f.notifications, notifications...)

	return ids, nil
}

func (f *fakeOrderRepo) GetOrderById(_ context.Context, id string) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.Id.String() == id {
			cp := o
			return &cp, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (f *fakeOrderRepo) GetOrdersByGroupId(_ context.Context, groupId uuid.UUID) ([]entity.Order, error) {
	out := make([]entity.Order, 0)
	for _, o := range f.orders {
		if o.GroupId == groupId {
			out = append(out, o)
		}
	}

	return out, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, status lifecycle.Status, _ *entity.PaginationInput) ([]entity.Order, error) {
	out := make([]entity.Order, 0)
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}

	return out, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, update *entity.OrderStatusUpdate) error {
	for i := range f.orders {
		if f.orders[i].Id == update.Id {
			f.orders[i].Status = update.Status
			f.notifications = append(f.notifications, update.Notification)
			return nil
		}
	}

	return repo_errors.ErrNotFound
}

type fakeDiagnosticsRepo struct {
	pingErr error
}

func (f *fakeDiagnosticsRepo) Ping(context.Context) error { return f.pingErr }

func (f *fakeDiagnosticsRepo) Stats() sql.DBStats {
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2}
}

type fakeOutboxStore struct {
	pending int
}

func (f *fakeOutboxStore) Claim(context.Context, time.Time, time.Time, int) ([]outbox.Message, error) {
	return nil, nil
}

func (f *fakeOutboxStore) Ack(context.Context, uuid.UUID, time.Time) error { return nil }

func (f *fakeOutboxStore) Retry(context.Context, uuid.UUID, int, time.Time, string) error { return nil }

func (f *fakeOutboxStore) Bury(context.Context, uuid.UUID, int, string) error { return nil }

func (f *fakeOutboxStore) Pending(context.Context) (int, error) { return f.pending, nil }

func testRates() *shipping.Table {
	return shipping.NewTable([]shipping.Rate{
		{Code: 16, Name: "Alger", Home: 400, Desk: 250},
		{Code: 19, Name: "Sétif", Home: 750, Desk: 450},
	})
}

func newTestDeps(requests *fakeRequestRepo, orders *fakeOrderRepo) Dependencies {
	return Dependencies{
		Repos: &repo.Repositories{
			Diagnostics: &fakeDiagnosticsRepo{},
			Request:     requests,
			Order:       orders,
		},
		Policy: lifecycle.NewPolicy(false),
		Rates:  testRates(),
	}
}
