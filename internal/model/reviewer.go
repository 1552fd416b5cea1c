package model

// Reviewer 题库（一个 reviewer 对应一组题目）
// swagger:model Reviewer
type Reviewer struct {
	BaseModel
	ReviewerName        string `gorm:"size:255;not null" json:"reviewer_name"`
	ReviewerDescription string `gorm:"type:text" json:"reviewer_description"`
	SchoolYear          string `gorm:"size:20" json:"school_year"`
}

func (Reviewer) TableName() string {
	return "reviewers"
}

// swagger:model Topic
type Topic struct {
	BaseModel
	ReviewerID       *uint  `gorm:"index" json:"reviewer_id"`
	TopicName        string `gorm:"size:255;not null" json:"topic_name"`
	TopicDescription string `gorm:"type:text" json:"topic_description"`
}

func (Topic) TableName() string {
	return "topics"
}

// swagger:model Subtopic
type Subtopic struct {
	BaseModel
	TopicID             uint   `gorm:"index;not null" json:"topic_id"`
	SubtopicName        string `gorm:"size:255;not null" json:"subtopic_name"`
	SubtopicDescription string `gorm:"type:text" json:"subtopic_description"`
}

func (Subtopic) TableName() string {
	return "subtopics"
}
