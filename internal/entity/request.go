package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
	"waseet-api/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model, shared by every request table
type Request struct {
	Id              uuid.UUID               `db:"id"`
	Domain          lifecycle.Domain        `db:"-"`
	CreatedAt       time.Time               `db:"created_at"`
	UpdatedAt       time.Time               `db:"updated_at"`
	Status          lifecycle.Status        `db:"status"`
	RawFields       Fields                  `db:"raw_fields"`
	Curated         lifecycle.CuratedFields `db:"curated"`
	AdminNotes      string                  `db:"admin_notes"`
	AgentAssignment AgentAssignment         `db:"agent_assignment"`
}

func (r *Request) State() lifecycle.State {
	return lifecycle.State{Status: r.Status, Curated: r.Curated, AdminNotes: r.AdminNotes}
}

// AgentAssignment is attached by an administrator to import requests once a
// broker agent takes the order.
type AgentAssignment struct {
	Name  string          `json:"name"`
	Phone string          `json:"phone"`
	Fee   decimal.Decimal `json:"fee"`
}

func (a AgentAssignment) IsZero() bool {
	return a.Name == "" && a.Phone == "" && a.Fee.IsZero()
}

func (a AgentAssignment) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}

	return json.Marshal(a)
}

func (a *AgentAssignment) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = AgentAssignment{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}

	return errors.New("agent assignment: unsupported column type")
}

type StatusChange struct {
	Id         uuid.UUID        `db:"id"`
	RequestId  uuid.UUID        `db:"request_id"`
	FromStatus lifecycle.Status `db:"from_status"`
	ToStatus   lifecycle.Status `db:"to_status"`
	Actor      string           `db:"actor"`
	CreatedAt  time.Time        `db:"created_at"`
}

// service + repo input model
type CreateRequestInput struct {
	Id        uuid.UUID        // should be set: new uuid, also sent in the notification
	Domain    lifecycle.Domain // given
	RawFields Fields           // given
	Status    lifecycle.Status // should be set: domain initial status
	// CreatedAt sets automatically
}

type ReviewInput struct {
	Status          *lifecycle.Status
	Curated         *lifecycle.CuratedFields
	AdminNotes      *string
	AgentAssignment *AgentAssignment
	Actor           string
}

// repo update model, written in one transaction with its history and notification
type RequestUpdate struct {
	Domain       lifecycle.Domain
	Id           uuid.UUID
	State        lifecycle.State
	Assignment   *AgentAssignment
	Transition   *lifecycle.Transition
	Notification Notification
}

type RequestFilter struct {
	Status lifecycle.Status
	Search string
}

type PublicFilter struct {
	Term   string
	Wilaya string
	Urgent *bool
}

// controller model: admin dashboard
type RequestAdminOutputModel struct {
	Id              string                  `json:"id"`
	Domain          string                  `json:"domain"`
	Status          string                  `json:"status"`
	CreatedAt       string                  `json:"createdAt"`
	UpdatedAt       string                  `json:"updatedAt"`
	RawFields       Fields                  `json:"rawFields"`
	Curated         lifecycle.CuratedFields `json:"curated"`
	AdminNotes      string                  `json:"adminNotes"`
	AgentAssignment *AgentAssignment        `json:"agentAssignment,omitempty"`
	History         []StatusChangeOutput    `json:"history,omitempty"`
}

type StatusChangeOutput struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Actor     string `json:"actor"`
	CreatedAt string `json:"createdAt"`
}

// controller model: public listing, curated fields only
type RequestPublicOutputModel struct {
	Id           string   `json:"id"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description,omitempty"`
	PrimaryImage string   `json:"primaryImage"`
	Gallery      []string `json:"gallery,omitempty"`
	Urgent       bool     `json:"urgent"`
	Location     string   `json:"location,omitempty"`
}

type SubmissionOutputModel struct {
	Id        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}
