package models

import "time"

// Report target kinds.
const (
	ReportTargetPin  = "PIN"
	ReportTargetUser = "USER"
)

// Block is a one-directional user block.
type Block struct {
	ID        int64     `json:"id"`
	BlockerID string    `json:"blockerId"`
	BlockedID string    `json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report is a content/user report filed by a user.
type Report struct {
	ID         int64     `json:"id"`
	ReporterID string    `json:"reporterId"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
