package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/repo/repo_errors"
	"waseet-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var requestTables = map[lifecycle.Domain]string{
	lifecycle.Medicine:          "medicine_requests",
	lifecycle.BloodDonor:        "blood_donors",
	lifecycle.DiasporaVolunteer: "diaspora_volunteers",
	lifecycle.Exchange:          "exchange_requests",
	lifecycle.Import:            "import_requests",
	lifecycle.Agent:             "agents",
}

const requestColumns = "id, created_at, updated_at, status, raw_fields, curated, admin_notes, agent_assignment"

func tableFor(domain lifecycle.Domain) (string, error) {
	table, ok := requestTables[domain]
	if !ok {
		return "", fmt.Errorf("no request table for domain %q", domain)
	}

	return table, nil
}

type RequestRepo struct {
	*postgres.Postgres
}

func NewRequestRepo(pgdb *postgres.Postgres) *RequestRepo {
	return &RequestRepo{pgdb}
}

func (r *RequestRepo) CreateRequest(ctx context.Context, input *entity.CreateRequestInput, n entity.Notification) error {
	table, err := tableFor(input.Domain)
	if err != nil {
		return err
	}

	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	createRequestSql, args, _ := r.SqlBuilder.
		Insert(table).
		Columns("id", "status", "raw_fields").
		Values(input.Id, input.Status, input.RawFields).
		ToSql()

	if _, err = tx.ExecContext(ctx, createRequestSql, args...); err != nil {
		return rollback(tx, err)
	}

	if err = enqueueNotifications(ctx, tx, r.SqlBuilder, n); err != nil {
		return rollback(tx, err)
	}

	return tx.Commit()
}

func (r *RequestRepo) GetRequestById(ctx context.Context, domain lifecycle.Domain, id string) (*entity.Request, error) {
	table, err := tableFor(domain)
	if err != nil {
		return nil, err
	}

	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getRequestSql, args, _ := r.SqlBuilder.
		Select(requestColumns).
		From(table).
		Where("id = ?", uuidForm).
		ToSql()

	var request entity.Request
	if err = r.Database.GetContext(ctx, &request, getRequestSql, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	request.Domain = domain

	return &request, nil
}

// likeEscaper makes LIKE wildcards in user input match literally, using
// the default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *RequestRepo) ListRequests(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, pg *entity.PaginationInput) ([]entity.Request, error) {
	table, err := tableFor(domain)
	if err != nil {
		return nil, err
	}

	builder := r.SqlBuilder.
		Select(requestColumns).
		From(table)

	if filter.Status != "" {
		builder = builder.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		builder = builder.Where(squirrel.ILike{"raw_fields::text": "%" + likeEscaper.Replace(filter.Search) + "%"})
	}

	listSql, args, _ := builder.
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.selectRequests(ctx, domain, listSql, args)
}

// ListRequestsByStatuses reads the whole set of rows in the given statuses,
// newest first.
func (r *RequestRepo) ListRequestsByStatuses(ctx context.Context, domain lifecycle.Domain, statuses []lifecycle.Status) ([]entity.Request, error) {
	table, err := tableFor(domain)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return make([]entity.Request, 0), nil
	}

	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, s.String())
	}

	listSql, args, _ := r.SqlBuilder.
		Select(requestColumns).
		From(table).
		Where(squirrel.Eq{"status": values}).
		OrderBy("created_at DESC").
		ToSql()

	return r.selectRequests(ctx, domain, listSql, args)
}

func (r *RequestRepo) selectRequests(ctx context.Context, domain lifecycle.Domain, query string, args []any) ([]entity.Request, error) {
	requests := make([]entity.Request, 0)
	if err := r.Database.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Domain = domain
	}

	return requests, nil
}

// UpdateRequest writes the reviewed state, the status history row and the
// notification in a single transaction. Raw fields are never part of the update.
func (r *RequestRepo) UpdateRequest(ctx context.Context, update *entity.RequestUpdate) error {
	table, err := tableFor(update.Domain)
	if err != nil {
		return err
	}

	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	builder := r.SqlBuilder.
		Update(table).
		Set("status", update.State.Status).
		Set("curated", update.State.Curated).
		Set("admin_notes", update.State.AdminNotes).
		Set("updated_at", squirrel.Expr("now()"))

	if update.Assignment != nil {
		builder = builder.Set("agent_assignment", *update.Assignment)
	}

	updateSql, args, _ := builder.
		Where("id = ?", update.Id).
		ToSql()

	res, err := tx.ExecContext(ctx, updateSql, args...)
	if err != nil {
		return rollback(tx, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return rollback(tx, repo_errors.ErrNotFound)
	}

	if update.Transition != nil && update.Transition.Changed() {
		historySql, args, _ := r.SqlBuilder.
			Insert("request_status_history").
			Columns("domain", "request_id", "from_status", "to_status", "actor", "created_at").
			Values(update.Domain, update.Id, update.Transition.From, update.Transition.To, update.Transition.Actor, update.Transition.At).
			ToSql()

		if _, err = tx.ExecContext(ctx, historySql, args...); err != nil {
			return rollback(tx, err)
		}
	}

	if err = enqueueNotifications(ctx, tx, r.SqlBuilder, update.Notification); err != nil {
		return rollback(tx, err)
	}

	return tx.Commit()
}

// UpdateLastDonationDate is the donor self-service update. It only touches
// the record whose stored phone matches.
func (r *RequestRepo) UpdateLastDonationDate(ctx context.Context, id string, phone string, date string, n entity.Notification) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	updateSql, args, _ := r.SqlBuilder.
		Update(requestTables[lifecycle.BloodDonor]).
		Set("raw_fields", squirrel.Expr("jsonb_set(raw_fields, '{lastDonationDate}', to_jsonb(?::text))", date)).
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", uuidForm).
		Where("raw_fields->>'phone' = ?", phone).
		ToSql()

	res, err := tx.ExecContext(ctx, updateSql, args...)
	if err != nil {
		return rollback(tx, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return rollback(tx, repo_errors.ErrNotFound)
	}

	if err = enqueueNotifications(ctx, tx, r.SqlBuilder, n); err != nil {
		return rollback(tx, err)
	}

	return tx.Commit()
}

func (r *RequestRepo) GetStatusHistory(ctx context.Context, domain lifecycle.Domain, id uuid.UUID) ([]entity.StatusChange, error) {
	historySql, args, _ := r.SqlBuilder.
		Select("id, request_id, from_status, to_status, actor, created_at").
		From("request_status_history").
		Where("domain = ?", domain).
		Where("request_id = ?", id).
		OrderBy("created_at ASC").
		ToSql()

	history := make([]entity.StatusChange, 0)
	if err := r.Database.SelectContext(ctx, &history, historySql, args...); err != nil {
		return nil, err
	}

	return history, nil
}
