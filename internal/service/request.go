package service

import (
	"context"
	"errors"
	"slices"
	"time"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/repo"
	"waseet-api/internal/repo/repo_errors"
	"waseet-api/pkg/textfold"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RequestService struct {
	requestRepo repo.Request
	policy      lifecycle.Policy
	log         *logrus.Entry
	now         func() time.Time
}

func NewRequestService(deps Dependencies) *RequestService {
	deps.setDefaults()

	return &RequestService{
		requestRepo: deps.Repos.Request,
		policy:      deps.Policy,
		log:         deps.Logger.WithField("component", "requests"),
		now:         deps.Now,
	}
}

func checkRequestDomain(domain lifecycle.Domain) error {
	if !slices.Contains(lifecycle.RequestDomains(), domain) {
		return ErrNotRequestDomain
	}

	return nil
}

// Submit stores a validated form as raw fields with the domain's initial
// status and queues the submission notification with it.
func (s *RequestService) Submit(ctx context.Context, domain lifecycle.Domain, fields entity.Fields) (*entity.SubmissionOutputModel, error) {
	if err := checkRequestDomain(domain); err != nil {
		return nil, err
	}

	now := s.now()
	request := entity.Request{
		Id:        uuid.New(),
		Domain:    domain,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    domain.Initial(),
		RawFields: fields,
	}

	err := s.requestRepo.CreateRequest(ctx, &entity.CreateRequestInput{
		Id:        request.Id,
		Domain:    domain,
		RawFields: fields,
		Status:    request.Status,
	}, entity.Notification{
		Type:   domain.String() + "_submitted",
		Record: mapRequestRecord(&request, "", ""),
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"domain": domain, "id": request.Id}).Info("request submitted")

	return &entity.SubmissionOutputModel{
		Id:        request.Id.String(),
		Status:    request.Status.String(),
		CreatedAt: formatTime(now),
	}, nil
}

func (s *RequestService) UpdateLastDonationDate(ctx context.Context, id string, phone string, date string) error {
	record := entity.RequestRecord{
		Id:     id,
		Domain: lifecycle.BloodDonor.String(),
		Phone:  phone,
		Fields: entity.Fields{"lastDonationDate": date},
	}

	err := s.requestRepo.UpdateLastDonationDate(ctx, id, phone, date, entity.Notification{
		Type:   lifecycle.BloodDonor.String() + "_updated",
		Record: record,
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrDonorNotFound
		}

		return err
	}

	return nil
}

// SearchPublic reads every record in a public status and filters it in
// memory on the curated projection.
func (s *RequestService) SearchPublic(ctx context.Context, domain lifecycle.Domain, filter entity.PublicFilter, pg *entity.PaginationInput) ([]entity.RequestPublicOutputModel, error) {
	if !domain.HasPublicListing() {
		return nil, ErrNoPublicListing
	}

	requests, err := s.requestRepo.ListRequestsByStatuses(ctx, domain, domain.PublicStatuses())
	if err != nil {
		return nil, err
	}

	matched := make([]entity.Request, 0, len(requests))
	for _, r := range requests {
		if matchesPublicFilter(&r, filter) {
			matched = append(matched, r)
		}
	}

	from, to := pg.Window(len(matched))

	return mapPublicRequests(matched[from:to]), nil
}

func matchesPublicFilter(r *entity.Request, filter entity.PublicFilter) bool {
	c := r.Curated
	if filter.Urgent != nil && c.Urgent != *filter.Urgent {
		return false
	}
	if filter.Wilaya != "" {
		sameWilaya := textfold.Fold(r.RawFields.String("wilaya")) == textfold.Fold(filter.Wilaya)
		if !sameWilaya && !textfold.Contains(c.Location, filter.Wilaya) {
			return false
		}
	}
	if filter.Term == "" {
		return true
	}

	for _, text := range []string{c.Title, c.Summary, c.Description, c.Location} {
		if textfold.Contains(text, filter.Term) {
			return true
		}
	}

	return false
}

// GetPublic hides records outside the public statuses as if they did not exist.
func (s *RequestService) GetPublic(ctx context.Context, domain lifecycle.Domain, id string) (*entity.RequestPublicOutputModel, error) {
	if !domain.HasPublicListing() {
		return nil, ErrNoPublicListing
	}

	request, err := s.getRequest(ctx, domain, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsPublic(request.Status) {
		return nil, ErrRequestNotFound
	}

	return mapPublicRequest(request), nil
}

func (s *RequestService) ListForAdmin(ctx context.Context, domain lifecycle.Domain, filter entity.RequestFilter, pg *entity.PaginationInput) ([]entity.RequestAdminOutputModel, error) {
	if err := checkRequestDomain(domain); err != nil {
		return nil, err
	}
	if filter.Status != "" && !domain.Has(filter.Status) {
		return nil, lifecycle.ErrUnknownStatus
	}

	requests, err := s.requestRepo.ListRequests(ctx, domain, filter, pg)
	if err != nil {
		return nil, err
	}

	return mapAdminRequests(requests), nil
}

func (s *RequestService) GetForAdmin(ctx context.Context, domain lifecycle.Domain, id string) (*entity.RequestAdminOutputModel, error) {
	request, err := s.getRequest(ctx, domain, id)
	if err != nil {
		return nil, err
	}

	history, err := s.requestRepo.GetStatusHistory(ctx, domain, request.Id)
	if err != nil {
		return nil, err
	}

	return mapAdminRequest(request, history), nil
}

// Review applies status, curated fields, admin notes and agent assignment
// as one change. A rejected change leaves the stored record untouched.
func (s *RequestService) Review(ctx context.Context, domain lifecycle.Domain, id string, input *entity.ReviewInput) (*entity.RequestAdminOutputModel, error) {
	request, err := s.getRequest(ctx, domain, id)
	if err != nil {
		return nil, err
	}

	if input.AgentAssignment != nil && domain != lifecycle.Import {
		return nil, ErrAssignmentNotAllowed
	}

	next, transition, err := s.policy.ApplyTransition(domain, request.State(), lifecycle.Change{
		Status:     input.Status,
		Curated:    input.Curated,
		AdminNotes: input.AdminNotes,
	}, input.Actor, s.now())
	if err != nil {
		s.log.WithFields(logrus.Fields{"domain": domain, "id": id}).WithError(err).Info("review rejected")

		return nil, err
	}

	previous := request.Status
	request.Status = next.Status
	request.Curated = next.Curated
	request.AdminNotes = next.AdminNotes
	if input.AgentAssignment != nil {
		request.AgentAssignment = *input.AgentAssignment
	}

	err = s.requestRepo.UpdateRequest(ctx, &entity.RequestUpdate{
		Domain:     domain,
		Id:         request.Id,
		State:      next,
		Assignment: input.AgentAssignment,
		Transition: &transition,
		Notification: entity.Notification{
			Type:   notificationType(domain.String(), transition.Changed()),
			Record: mapRequestRecord(request, previous.String(), input.Actor),
		},
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRequestNotFound
		}

		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"domain": domain,
		"id":     request.Id,
		"from":   transition.From,
		"to":     transition.To,
		"actor":  input.Actor,
	}).Info("request reviewed")

	return s.GetForAdmin(ctx, domain, id)
}

func (s *RequestService) getRequest(ctx context.Context, domain lifecycle.Domain, id string) (*entity.Request, error) {
	if err := checkRequestDomain(domain); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetRequestById(ctx, domain, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRequestNotFound
		}

		return nil, err
	}

	return request, nil
}
