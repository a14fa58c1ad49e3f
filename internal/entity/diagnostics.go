package entity

type DiagnosticsOutputModel struct {
	OpenConnections      int `json:"openConnections"`
	InUse                int `json:"inUse"`
	Idle                 int `json:"idle"`
	PendingNotifications int `json:"pendingNotifications"`
}
