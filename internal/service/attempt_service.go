package service

import (
	"context"
	"exam_reviewer_backend/internal/config"
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/internal/util"
	"exam_reviewer_backend/pkg/clock"
	"exam_reviewer_backend/pkg/logger"
	"exam_reviewer_backend/pkg/monitoring"
	"exam_reviewer_backend/pkg/tracing"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type GenerateAttemptRequest struct {
	UserID         uint   `json:"user_id"`
	ReviewerID     uint   `json:"reviewer_id" binding:"required"`
	QuestionAmount int    `json:"question_amount" binding:"required,min=1,max=70"`
	TimeLimit      int    `json:"time_limit" binding:"required,min=1,max=120"`
	TopicIDs       []uint `json:"topic_ids"`
	SubtopicIDs    []uint `json:"subtopic_ids"`
}

// AttemptService 负责生成测验与维护测验状态（含惰性过期）
type AttemptService struct {
	Repo         *repository.AttemptRepository
	QuestionRepo *repository.QuestionRepository
	CatalogRepo  *repository.CatalogRepository
	Selector     *QuestionSelector
	Clock        clock.Clock
	Checker      *permission.Checker
	Config       config.AttemptConfig

	location *time.Location
	validate *validator.Validate
}

func NewAttemptService(
	repo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	catalogRepo *repository.CatalogRepository,
	selector *QuestionSelector,
	clk clock.Clock,
	checker *permission.Checker,
	cfg config.AttemptConfig,
) *AttemptService {
	if clk == nil {
		clk = clock.Real{}
	}
	if selector == nil {
		selector = NewQuestionSelector(nil)
	}
	if checker == nil {
		checker = permission.NewChecker(nil)
	}
	return &AttemptService{
		Repo:         repo,
		QuestionRepo: questionRepo,
		CatalogRepo:  catalogRepo,
		Selector:     selector,
		Clock:        clk,
		Checker:      checker,
		Config:       cfg,
		location:     cfg.Location(),
		validate:     util.NewValidator(),
	}
}

func (s *AttemptService) formatExpireTime(t time.Time) string {
	return FormatExpireTime(t, s.location, s.Config.ExpireTimeFormat)
}

func (s *AttemptService) summary(a *model.ReviewerAttempt) AttemptSummary {
	var out AttemptSummary
	_ = copier.Copy(&out, a)
	out.FormattedExpireTime = s.formatExpireTime(a.ExpireTime)
	return out
}

func (s *AttemptService) GenerateAttempt(ctx context.Context, actor Actor, req GenerateAttemptRequest) (*GeneratedAttempt, error) {
	_, span := tracing.Tracer.Start(ctx, "AttemptService.GenerateAttempt")
	defer span.End()

	if req.UserID == 0 {
		req.UserID = actor.UserID
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, util.BindingError(err)
	}
	if req.UserID == 0 {
		return nil, util.NewValidationError("user_id", "is required")
	}
	if req.UserID != actor.UserID && !s.Checker.Allowed(actor.Role, permission.GenerateAttemptForOthers) {
		return nil, util.Forbiddenf("role %s may not generate attempts for other users", actor.Role)
	}
	req.TopicIDs = dedupeIDs(req.TopicIDs)
	req.SubtopicIDs = dedupeIDs(req.SubtopicIDs)

	if err := s.checkReferences(req); err != nil {
		return nil, err
	}

	pool, err := s.QuestionRepo.FindEligible(req.ReviewerID, req.TopicIDs, req.SubtopicIDs)
	if err != nil {
		return nil, err
	}
	selected := s.Selector.Select(pool, req.QuestionAmount)

	now := s.Clock.Now()
	attempt := &model.ReviewerAttempt{
		UserID:        req.UserID,
		ReviewerID:    req.ReviewerID,
		Status:        model.AttemptCreated,
		Score:         0,
		TimeRemaining: req.TimeLimit,
		ExpireTime:    now.Add(time.Duration(req.TimeLimit) * time.Minute),
	}

	err = s.Repo.Transaction(func(repo *repository.AttemptRepository) error {
		if err := repo.Create(attempt); err != nil {
			return err
		}

		spec := &model.ReviewerAttemptSpecification{
			ReviewerAttemptID: attempt.ID,
			QuestionAmount:    req.QuestionAmount,
			TimeLimit:         req.TimeLimit,
		}
		for _, id := range req.TopicIDs {
			t := model.Topic{}
			t.ID = id
			spec.Topics = append(spec.Topics, t)
		}
		for _, id := range req.SubtopicIDs {
			st := model.Subtopic{}
			st.ID = id
			spec.Subtopics = append(spec.Subtopics, st)
		}
		if err := repo.CreateSpecification(spec); err != nil {
			return err
		}

		slots := make([]model.ReviewerAttemptQuestion, 0, len(selected))
		for _, q := range selected {
			slots = append(slots, model.ReviewerAttemptQuestion{
				ReviewerAttemptID: attempt.ID,
				QuestionID:        q.ID,
				Status:            model.QuestionUnanswered,
			})
		}
		return repo.CreateQuestions(slots)
	})
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	detail, err := s.Repo.FindDetail(attempt.ID)
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsGenerated.Inc()
	monitoring.QuestionsSelected.Observe(float64(len(selected)))
	span.SetAttributes(
		attribute.Int64("attempt.id", int64(attempt.ID)),
		attribute.Int("attempt.questions", len(selected)),
	)
	logger.Log.Info("attempt generated",
		zap.Uint("attempt_id", attempt.ID),
		zap.Uint("user_id", attempt.UserID),
		zap.Uint("reviewer_id", attempt.ReviewerID),
		zap.Int("pool_size", len(pool)),
		zap.Int("selected", len(selected)))

	questions := make([]AttemptQuestionItem, 0, len(detail.Questions))
	for i := range detail.Questions {
		questions = append(questions, questionItem(&detail.Questions[i], false))
	}
	summary := s.summary(detail)
	return &GeneratedAttempt{
		ReviewerAttempt:     summary,
		Specification:       detail.Specification,
		Questions:           questions,
		FormattedExpireTime: summary.FormattedExpireTime,
	}, nil
}

func (s *AttemptService) checkReferences(req GenerateAttemptRequest) error {
	ok, err := s.CatalogRepo.UserExists(req.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return util.NotFoundf("user %d", req.UserID)
	}

	ok, err = s.CatalogRepo.ReviewerExists(req.ReviewerID)
	if err != nil {
		return err
	}
	if !ok {
		return util.NotFoundf("reviewer %d", req.ReviewerID)
	}

	missing, err := s.CatalogRepo.MissingTopics(req.TopicIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return util.NotFoundf("topics %v", missing)
	}

	missing, err = s.CatalogRepo.MissingSubtopics(req.SubtopicIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return util.NotFoundf("subtopics %v", missing)
	}
	return nil
}

// loadAttempt 读取测验并做惰性过期处理
func (s *AttemptService) loadAttempt(attemptID uint) (*model.ReviewerAttempt, error) {
	attempt, err := s.Repo.FindByID(attemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.NotFoundf("attempt %d", attemptID)
		}
		return nil, err
	}
	if err := reconcileExpiry(s.Repo, attempt, s.Clock.Now()); err != nil {
		return nil, err
	}
	return attempt, nil
}

// reconcileExpiry 过了截止时间但状态未结束时落库为 expired，并同步内存中的值
func reconcileExpiry(repo *repository.AttemptRepository, attempt *model.ReviewerAttempt, now time.Time) error {
	if !needsExpiry(attempt, now) {
		return nil
	}
	rows, err := repo.MarkExpired(attempt.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// 并发请求已先一步改变状态，以库中为准
		fresh, err := repo.FindByID(attempt.ID)
		if err != nil {
			return err
		}
		*attempt = *fresh
		return nil
	}
	attempt.Status = model.AttemptExpired
	attempt.TimeRemaining = 0
	logger.Log.Info("attempt expired", zap.Uint("attempt_id", attempt.ID), zap.Uint("user_id", attempt.UserID))
	return nil
}

// GetTimeRemaining 只读计算，不修改状态；已结束的测验返回冻结值
func (s *AttemptService) GetTimeRemaining(ctx context.Context, actor Actor, attemptID uint) (int, error) {
	attempt, err := s.Repo.FindByID(attemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, util.NotFoundf("attempt %d", attemptID)
		}
		return 0, err
	}
	if err := authorizeOwner(s.Checker, actor, attempt.UserID, permission.ViewAnyAttempt); err != nil {
		return 0, err
	}
	if attempt.Status.IsTerminal() {
		return attempt.TimeRemaining, nil
	}
	return TimeRemaining(attempt.ExpireTime, s.Clock.Now()), nil
}

func (s *AttemptService) GetAttempt(ctx context.Context, actor Actor, attemptID uint) (*AttemptDetail, error) {
	attempt, err := s.loadAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(s.Checker, actor, attempt.UserID, permission.ViewAnyAttempt); err != nil {
		return nil, err
	}

	spec, err := s.Repo.FindSpecification(attemptID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	result, err := s.Repo.FindResult(attemptID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	return &AttemptDetail{
		AttemptSummary: s.summary(attempt),
		Specification:  spec,
		Result:         result,
	}, nil
}

// ListAttempts 无 view-any 能力时只能看到自己的测验
func (s *AttemptService) ListAttempts(ctx context.Context, actor Actor, filter repository.AttemptFilter) ([]AttemptSummary, error) {
	if !s.Checker.Allowed(actor.Role, permission.ViewAnyAttempt) {
		filter.UserID = actor.UserID
	}

	attempts, err := s.Repo.List(filter)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	out := make([]AttemptSummary, 0, len(attempts))
	for i := range attempts {
		if err := reconcileExpiry(s.Repo, &attempts[i], now); err != nil {
			return nil, err
		}
		out = append(out, s.summary(&attempts[i]))
	}
	return out, nil
}

// AttemptQuestions 按 topic/subtopic 分组的作答视图，完成后附带正确答案
func (s *AttemptService) AttemptQuestions(ctx context.Context, actor Actor, attemptID uint) (*AttemptQuestionsView, error) {
	attempt, err := s.loadAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(s.Checker, actor, attempt.UserID, permission.ViewAnyAttempt); err != nil {
		return nil, err
	}

	questions, err := s.Repo.ListQuestions(attemptID)
	if err != nil {
		return nil, err
	}

	result, err := s.Repo.FindResult(attemptID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if result == nil && attempt.Status == model.AttemptCompleted {
		return nil, fmt.Errorf("completed attempt %d has no result", attemptID)
	}

	view := &AttemptQuestionsView{
		Topics:         groupQuestions(questions, result != nil),
		TotalQuestions: len(questions),
	}
	if result != nil {
		summary := s.summary(attempt)
		view.ReviewerAttempt = &summary
		view.Result = result
	}
	return view, nil
}

// ensureOpen 已完成返回冲突，已过期（或刚被判定过期）返回 ErrExpired
func ensureOpen(repo *repository.AttemptRepository, attempt *model.ReviewerAttempt, now time.Time) error {
	if err := reconcileExpiry(repo, attempt, now); err != nil {
		return err
	}
	switch attempt.Status {
	case model.AttemptCompleted:
		return util.Conflictf("attempt %d is already completed", attempt.ID)
	case model.AttemptExpired:
		return fmt.Errorf("%w: attempt %d passed its deadline", util.ErrExpired, attempt.ID)
	}
	return nil
}


// lockOpen 在写事务内锁住测验行并复核状态，与 Submit 的完成写入互斥
func lockOpen(repo *repository.AttemptRepository, attemptID uint, now time.Time) error {
	rows, err := repo.LockOpen(attemptID)
	if err != nil {
		return err
	}
	attempt, err := repo.FindByID(attemptID)
	if err != nil {
		return err
	}
	if rows == 0 {
		if attempt.Status == model.AttemptCompleted {
			return util.Conflictf("attempt %d is already completed", attemptID)
		}
		return fmt.Errorf("%w: attempt %d passed its deadline", util.ErrExpired, attemptID)
	}
	if attempt.IsPastDeadline(now) {
		return fmt.Errorf("%w: attempt %d passed its deadline", util.ErrExpired, attemptID)
	}
	return nil
}
