package model

import (
	"time"

	"gorm.io/datatypes"
)

type Feedback string

const (
	FeedbackPassed Feedback = "passed"
	FeedbackFailed Feedback = "failed"
)

// Result 测验完成后的评分结果，每个 attempt 仅写入一次
// swagger:model Result
type Result struct {
	BaseModel

	ReviewerAttemptID uint                         `gorm:"not null;uniqueIndex" json:"reviewer_attempt_id"`
	UserID            uint                         `gorm:"index;not null" json:"user_id"`
	Marks             int                          `gorm:"not null" json:"marks"`
	MaxPoints         int                          `gorm:"not null" json:"max_points"`
	TotalQuestions    int                          `gorm:"not null" json:"total_questions"`
	Grade             int                          `gorm:"not null" json:"grade"`
	Scope             datatypes.JSONType[ScopeMap] `json:"scope"`
	Feedback          Feedback                     `gorm:"size:10;not null" json:"feedback"`
	FinishedAt        time.Time                    `gorm:"not null" json:"finished_at"`
}

func (Result) TableName() string {
	return "results"
}
