package model

// ReviewerAttemptAnswer 每个题目槽位至多一条答案，存在与否决定槽位是否 answered
// swagger:model ReviewerAttemptAnswer
type ReviewerAttemptAnswer struct {
	Timestamps

	ReviewerAttemptQuestionID uint   `gorm:"not null;uniqueIndex" json:"reviewer_attempt_question_id"`
	Answer                    string `gorm:"type:text;not null" json:"answer"`
}

func (ReviewerAttemptAnswer) TableName() string {
	return "reviewer_attempt_answers"
}
