package entity

// Notification is a send-email call persisted in the outbox next to the
// write that triggered it.
type Notification struct {
	Type   string `json:"type"`
	Record any    `json:"record"`
}

// RequestRecord is the record sent with request notifications.
type RequestRecord struct {
	Id             string `json:"id"`
	Domain         string `json:"domain"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	Actor          string `json:"actor,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Fields         Fields `json:"fields,omitempty"`
}

// OrderRecord is the record sent with order notifications.
type OrderRecord struct {
	Id             string       `json:"id"`
	GroupId        string       `json:"groupId"`
	OrderType      string       `json:"orderType"`
	Status         string       `json:"status"`
	PreviousStatus string       `json:"previousStatus,omitempty"`
	Total          string       `json:"total"`
	Contact        OrderContact `json:"contact"`
}
