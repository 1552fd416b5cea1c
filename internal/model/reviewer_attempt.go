package model

import "time"

type AttemptStatus string

const (
	AttemptCreated    AttemptStatus = "created"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
)

// OpenAttemptStatuses 可以继续作答、提交的状态
var OpenAttemptStatuses = []AttemptStatus{AttemptCreated, AttemptInProgress}

func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptExpired
}

// ReviewerAttempt 一次随机抽题的限时测验
// swagger:model ReviewerAttempt
type ReviewerAttempt struct {
	BaseModel

	UserID        uint          `gorm:"index;not null" json:"user_id"`
	ReviewerID    uint          `gorm:"index;not null" json:"reviewer_id"`
	Status        AttemptStatus `gorm:"size:20;index;not null" json:"status"`
	Score         int           `gorm:"not null;default:0" json:"score"`
	TimeRemaining int           `gorm:"not null" json:"time_remaining"` // 分钟
	ExpireTime    time.Time     `gorm:"not null" json:"expire_time"`
	LockVersion   int           `gorm:"not null;default:0" json:"-"` // 作答与提交在事务内递增以串行化

	Questions     []ReviewerAttemptQuestion     `json:"questions,omitempty"`
	Specification *ReviewerAttemptSpecification `json:"specification,omitempty"`
	Result        *Result                       `json:"result,omitempty"`
}

func (ReviewerAttempt) TableName() string {
	return "reviewer_attempts"
}

// IsPastDeadline 截止时间之后（严格大于）才算过期
func (a *ReviewerAttempt) IsPastDeadline(now time.Time) bool {
	return now.After(a.ExpireTime)
}
