package model

import "time"

const (
	QueryStatusSuccess = "success"
	QueryStatusError   = "error"
)

// QueryRecord is the audit entry of one question. It never holds document
// text, the question or the answer.
type QueryRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   string    `gorm:"size:36;not null;uniqueIndex" json:"request_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	Status      string    `gorm:"size:16;not null;index" json:"status"`
	FailedStage string    `gorm:"size:32" json:"failed_stage,omitempty"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	PageCount   int       `json:"page_count"`
	ChunkCount  int       `json:"chunk_count"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
