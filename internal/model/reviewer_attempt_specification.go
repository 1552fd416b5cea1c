package model

// ReviewerAttemptSpecification 生成测验时的范围与配置快照，创建后不可修改
// swagger:model ReviewerAttemptSpecification
type ReviewerAttemptSpecification struct {
	BaseModel

	ReviewerAttemptID uint `gorm:"uniqueIndex;not null" json:"reviewer_attempt_id"`
	QuestionAmount    int  `gorm:"not null" json:"question_amount"`
	TimeLimit         int  `gorm:"not null" json:"time_limit"` // 分钟

	Topics    []Topic    `gorm:"many2many:reviewer_attempt_specification_topics;joinForeignKey:ReviewerAttemptSpecificationID;joinReferences:TopicID" json:"topics"`
	Subtopics []Subtopic `gorm:"many2many:reviewer_attempt_specification_subtopics;joinForeignKey:ReviewerAttemptSpecificationID;joinReferences:SubtopicID" json:"subtopics"`
}

func (ReviewerAttemptSpecification) TableName() string {
	return "reviewer_attempt_specifications"
}
