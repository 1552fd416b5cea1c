package repository

import (
	"errors"
	"exam_reviewer_backend/internal/model"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptFilter 列表查询条件，零值表示不过滤
type AttemptFilter struct {
	UserID     uint
	ReviewerID uint
	AttemptID  uint
}

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// WithTx 返回绑定到事务的仓储
func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Transaction(fn func(repo *AttemptRepository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *AttemptRepository) Create(attempt *model.ReviewerAttempt) error {
	return r.DB.Omit(clause.Associations).Create(attempt).Error
}

// CreateSpecification 写入规格和 topic/subtopic 关联行，不回写题库表
func (r *AttemptRepository) CreateSpecification(spec *model.ReviewerAttemptSpecification) error {
	return r.DB.Omit("Topics.*", "Subtopics.*").Create(spec).Error
}

func (r *AttemptRepository) CreateQuestions(questions []model.ReviewerAttemptQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Omit(clause.Associations).Create(&questions).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.ReviewerAttempt, error) {
	var a model.ReviewerAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindDetail 加载规格、题目（含选项与答案）和结果
func (r *AttemptRepository) FindDetail(id uint) (*model.ReviewerAttempt, error) {
	var a model.ReviewerAttempt
	err := r.DB.
		Preload("Specification").
		Preload("Specification.Topics", orderByID("topics")).
		Preload("Specification.Subtopics", orderByID("subtopics")).
		Preload("Questions", orderByID("reviewer_attempt_questions")).
		Preload("Questions.Question").
		Preload("Questions.Question.Choices", orderByID("question_choices")).
		Preload("Questions.Answer").
		Preload("Result").
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) List(filter AttemptFilter) ([]model.ReviewerAttempt, error) {
	query := r.DB.Model(&model.ReviewerAttempt{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ReviewerID != 0 {
		query = query.Where("reviewer_id = ?", filter.ReviewerID)
	}
	if filter.AttemptID != 0 {
		query = query.Where("id = ?", filter.AttemptID)
	}

	var attempts []model.ReviewerAttempt
	err := query.Order("id DESC").Find(&attempts).Error
	return attempts, err
}

// MarkExpired 仅对未结束的测验生效，返回受影响行数
func (r *AttemptRepository) MarkExpired(id uint) (int64, error) {
	res := r.DB.Model(&model.ReviewerAttempt{}).
		Where("id = ? AND status IN ?", id, model.OpenAttemptStatuses).
		Updates(map[string]interface{}{
			"status":         model.AttemptExpired,
			"time_remaining": 0,
		})
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) MarkInProgress(id uint) error {
	return r.DB.Model(&model.ReviewerAttempt{}).
		Where("id = ? AND status = ?", id, model.AttemptCreated).
		Update("status", model.AttemptInProgress).Error
}

// LockOpen 对仍可作答的测验行做条件写入，持有行锁直到事务结束；返回 0 表示测验已结束。
// 事务内应先调用它再读取数据。
func (r *AttemptRepository) LockOpen(id uint) (int64, error) {
	res := r.DB.Model(&model.ReviewerAttempt{}).
		Where("id = ? AND status IN ?", id, model.OpenAttemptStatuses).
		UpdateColumn("lock_version", gorm.Expr("lock_version + ?", 1))
	return res.RowsAffected, res.Error
}

// Complete 条件更新，并发提交时只有一个请求能命中
func (r *AttemptRepository) Complete(id uint, score, timeRemaining int) (int64, error) {
	res := r.DB.Model(&model.ReviewerAttempt{}).
		Where("id = ? AND status IN ?", id, model.OpenAttemptStatuses).
		Updates(map[string]interface{}{
			"status":         model.AttemptCompleted,
			"score":          score,
			"time_remaining": timeRemaining,
		})
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) FindSpecification(attemptID uint) (*model.ReviewerAttemptSpecification, error) {
	var spec model.ReviewerAttemptSpecification
	err := r.DB.
		Preload("Topics", orderByID("topics")).
		Preload("Subtopics", orderByID("subtopics")).
		Where("reviewer_attempt_id = ?", attemptID).
		First(&spec).Error
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *AttemptRepository) ListQuestions(attemptID uint) ([]model.ReviewerAttemptQuestion, error) {
	var questions []model.ReviewerAttemptQuestion
	err := r.DB.
		Preload("Question").
		Preload("Question.Topic").
		Preload("Question.Subtopic").
		Preload("Question.Choices", orderByID("question_choices")).
		Preload("Answer").
		Where("reviewer_attempt_id = ?", attemptID).
		Order("id").
		Find(&questions).Error
	return questions, err
}

func (r *AttemptRepository) FindQuestionByID(id uint) (*model.ReviewerAttemptQuestion, error) {
	var q model.ReviewerAttemptQuestion
	if err := r.DB.Preload("Answer").First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// UpsertAnswer 单条 INSERT .. ON CONFLICT，后写覆盖先写
func (r *AttemptRepository) UpsertAnswer(attemptQuestionID uint, text string) (*model.ReviewerAttemptAnswer, error) {
	answer := model.ReviewerAttemptAnswer{
		ReviewerAttemptQuestionID: attemptQuestionID,
		Answer:                    text,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reviewer_attempt_question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer", "updated_at"}),
	}).Create(&answer).Error
	if err != nil {
		return nil, err
	}

	// 冲突更新时部分驱动不回填主键
	var stored model.ReviewerAttemptAnswer
	if err := r.DB.Where("reviewer_attempt_question_id = ?", attemptQuestionID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *AttemptRepository) DeleteAnswer(attemptQuestionID uint) error {
	return r.DB.Where("reviewer_attempt_question_id = ?", attemptQuestionID).
		Delete(&model.ReviewerAttemptAnswer{}).Error
}

func (r *AttemptRepository) UpdateQuestionStatus(id uint, status model.AttemptQuestionStatus) error {
	return r.DB.Model(&model.ReviewerAttemptQuestion{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *AttemptRepository) SetFlag(id uint, flagged bool) error {
	return r.DB.Model(&model.ReviewerAttemptQuestion{}).Where("id = ?", id).
		Update("is_flagged", flagged).Error
}

func (r *AttemptRepository) CreateResult(result *model.Result) error {
	return r.DB.Create(result).Error
}

func (r *AttemptRepository) FindResult(attemptID uint) (*model.Result, error) {
	var result model.Result
	if err := r.DB.Where("reviewer_attempt_id = ?", attemptID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// IsDuplicateKey 兼容 TranslateError 和未翻译的 MySQL 1062
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id")
	}
}

