package repository

import (
	"exam_reviewer_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 校验外部引用（用户、题库、topic、subtopic）是否存在
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) UserExists(id uint) (bool, error) {
	return r.exists(&model.User{}, id)
}

func (r *CatalogRepository) ReviewerExists(id uint) (bool, error) {
	return r.exists(&model.Reviewer{}, id)
}

func (r *CatalogRepository) MissingTopics(ids []uint) ([]uint, error) {
	return r.missing(&model.Topic{}, ids)
}

func (r *CatalogRepository) MissingSubtopics(ids []uint) ([]uint, error) {
	return r.missing(&model.Subtopic{}, ids)
}

func (r *CatalogRepository) exists(m interface{}, id uint) (bool, error) {
	var count int64
	err := r.DB.Model(m).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository) missing(m interface{}, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.DB.Model(m).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
