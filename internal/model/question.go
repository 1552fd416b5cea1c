package model

type QuestionStatus string

const (
	QuestionActive QuestionStatus = "active"
	QuestionLocked QuestionStatus = "locked"
)

// Question 题库中的题目，在本模块中只读（抽题与评分时读取快照）
// swagger:model Question
type Question struct {
	BaseModel
	ReviewerID      uint             `gorm:"index;not null" json:"reviewer_id"`
	TopicID         *uint            `gorm:"index" json:"topic_id"`
	SubtopicID      *uint            `gorm:"index" json:"subtopic_id"`
	QuestionContent string           `gorm:"type:text;not null" json:"question_content"`
	CorrectAnswer   string           `gorm:"size:255;not null" json:"correct_answer"`
	QuestionPoint   int              `gorm:"default:1" json:"question_point"`
	Status          QuestionStatus   `gorm:"size:20;default:'active'" json:"status"`
	Topic           *Topic           `json:"topic,omitempty"`
	Subtopic        *Subtopic        `json:"subtopic,omitempty"`
	Choices         []QuestionChoice `json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model QuestionChoice
type QuestionChoice struct {
	BaseModel
	QuestionID    uint   `gorm:"index;not null" json:"question_id"`
	ChoiceIndex   string `gorm:"size:10" json:"choice_index"`
	ChoiceContent string `gorm:"type:text" json:"choice_content"`
}

func (QuestionChoice) TableName() string {
	return "question_choices"
}
