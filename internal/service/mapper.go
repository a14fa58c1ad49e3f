package service

import (
	"time"
	"waseet-api/internal/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapAdminRequest(r *entity.Request, history []entity.StatusChange) *entity.RequestAdminOutputModel {
	out := &entity.RequestAdminOutputModel{
		Id:         r.Id.String(),
		Domain:     r.Domain.String(),
		Status:     r.Status.String(),
		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
		RawFields:  r.RawFields,
		Curated:    r.Curated,
		AdminNotes: r.AdminNotes,
	}
	if !r.AgentAssignment.IsZero() {
		assignment := r.AgentAssignment
		out.AgentAssignment = &assignment
	}
	if len(history) > 0 {
		out.History = mapHistory(history)
	}

	return out
}

func mapAdminRequests(r []entity.Request) []entity.RequestAdminOutputModel {
	s := make([]entity.RequestAdminOutputModel, 0)
	for _, request := range r {
		s = append(s, *mapAdminRequest(&request, nil))
	}

	return s
}

func mapHistory(h []entity.StatusChange) []entity.StatusChangeOutput {
	s := make([]entity.StatusChangeOutput, 0)
	for _, c := range h {
		s = append(s, entity.StatusChangeOutput{
			From:      c.FromStatus.String(),
			To:        c.ToStatus.String(),
			Actor:     c.Actor,
			CreatedAt: formatTime(c.CreatedAt),
		})
	}

	return s
}

// mapPublicRequest exposes the curated projection only.
func mapPublicRequest(r *entity.Request) *entity.RequestPublicOutputModel {
	return &entity.RequestPublicOutputModel{
		Id:           r.Id.String(),
		Status:       r.Status.String(),
		CreatedAt:    formatTime(r.CreatedAt),
		Title:        r.Curated.Title,
		Summary:      r.Curated.Summary,
		Description:  r.Curated.Description,
		PrimaryImage: r.Curated.PrimaryImage,
		Gallery:      r.Curated.Gallery,
		Urgent:       r.Curated.Urgent,
		Location:     r.Curated.Location,
	}
}

func mapPublicRequests(r []entity.Request) []entity.RequestPublicOutputModel {
	s := make([]entity.RequestPublicOutputModel, 0)
	for _, request := range r {
		s = append(s, *mapPublicRequest(&request))
	}

	return s
}

func mapRequestRecord(r *entity.Request, previous string, actor string) entity.RequestRecord {
	return entity.RequestRecord{
		Id:             r.Id.String(),
		Domain:         r.Domain.String(),
		Status:         r.Status.String(),
		PreviousStatus: previous,
		Actor:          actor,
		Name:           r.RawFields.String("name"),
		Email:          r.RawFields.String("email"),
		Phone:          r.RawFields.String("phone"),
		Fields:         r.RawFields,
	}
}

func mapOrder(o *entity.Order) *entity.OrderOutputModel {
	contact := o.Notes.Internal
	items := o.Notes.ItemsMetadata
	if items == nil {
		items = make([]entity.OrderItemMetadata, 0)
	}

	return &entity.OrderOutputModel{
		Id:           o.Id.String(),
		GroupId:      o.GroupId.String(),
		OrderType:    string(o.OrderType),
		Status:       o.Status.String(),
		Total:        o.Total,
		ShippingCost: o.ShippingCost,
		CreatedAt:    formatTime(o.CreatedAt),
		Contact:      &contact,
		PublicNote:   o.Notes.Public,
		Items:        items,
	}
}

func mapOrders(o []entity.Order) []entity.OrderOutputModel {
	s := make([]entity.OrderOutputModel, 0)
	for _, order := range o {
		s = append(s, *mapOrder(&order))
	}

	return s
}

func mapOrderRecord(o *entity.Order, previous string) entity.OrderRecord {
	return entity.OrderRecord{
		Id:             o.Id.String(),
		GroupId:        o.GroupId.String(),
		OrderType:      string(o.OrderType),
		Status:         o.Status.String(),
		PreviousStatus: previous,
		Total:          o.Total.StringFixed(2),
		Contact:        o.Notes.Internal,
	}
}
