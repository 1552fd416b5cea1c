package repository

import (
	"exam_reviewer_backend/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository 题库只读访问
type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// FindEligible 按题库、topic、subtopic 过滤，空集合表示不限制
func (r *QuestionRepository) FindEligible(reviewerID uint, topicIDs, subtopicIDs []uint) ([]model.Question, error) {
	query := r.DB.Model(&model.Question{}).Where("reviewer_id = ?", reviewerID)
	if len(topicIDs) > 0 {
		query = query.Where("topic_id IN ?", topicIDs)
	}
	if len(subtopicIDs) > 0 {
		query = query.Where("subtopic_id IN ?", subtopicIDs)
	}

	var questions []model.Question
	err := query.Order("id").Find(&questions).Error
	return questions, err
}
