package model

type AttemptQuestionStatus string

const (
	QuestionUnanswered AttemptQuestionStatus = "unanswered"
	QuestionAnswered   AttemptQuestionStatus = "answered"
)

// ReviewerAttemptQuestion 绑定到某次测验的题目槽位，(attempt, question) 唯一
// swagger:model ReviewerAttemptQuestion
type ReviewerAttemptQuestion struct {
	BaseModel

	ReviewerAttemptID uint                  `gorm:"not null;uniqueIndex:idx_attempt_question" json:"reviewer_attempt_id"`
	QuestionID        uint                  `gorm:"not null;uniqueIndex:idx_attempt_question;index" json:"question_id"`
	IsFlagged         bool                  `gorm:"not null;default:false" json:"is_flagged"`
	Status            AttemptQuestionStatus `gorm:"size:20;not null" json:"status"`

	Question *Question              `json:"question,omitempty"`
	Answer   *ReviewerAttemptAnswer `json:"answer,omitempty"`
}

func (ReviewerAttemptQuestion) TableName() string {
	return "reviewer_attempt_questions"
}

// AnswerText 未作答时返回 nil
func (q *ReviewerAttemptQuestion) AnswerText() *string {
	if q.Answer == nil {
		return nil
	}
	text := q.Answer.Answer
	return &text
}
