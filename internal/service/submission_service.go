package service

import (
	"context"
	"errors"
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

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const archiveTimeout = 10 * time.Second

// errPastDeadline 事务内发现已过期，回滚后在事务外落库
var errPastDeadline = errors.New("past deadline")

// SubmissionService 提交测验：评分、生成范围报告并写入唯一的 Result
type SubmissionService struct {
	Repo         *repository.AttemptRepository
	Clock        clock.Clock
	Checker      *permission.Checker
	Cache        ResultCache
	Archive      *ResultArchive
	PassingGrade int
}

func NewSubmissionService(
	repo *repository.AttemptRepository,
	clk clock.Clock,
	checker *permission.Checker,
	cache ResultCache,
	archive *ResultArchive,
	cfg config.AttemptConfig,
) *SubmissionService {
	if clk == nil {
		clk = clock.Real{}
	}
	if checker == nil {
		checker = permission.NewChecker(nil)
	}
	if cache == nil {
		cache = noopResultCache{}
	}
	passing := cfg.PassingGrade
	if passing == 0 {
		passing = DefaultPassingGrade
	}
	return &SubmissionService{
		Repo:         repo,
		Clock:        clk,
		Checker:      checker,
		Cache:        cache,
		Archive:      archive,
		PassingGrade: passing,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, actor Actor, attemptID uint) (*SubmissionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SubmissionService.Submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("attempt.id", int64(attemptID)))

	var out *SubmissionResult
	err := s.Repo.Transaction(func(repo *repository.AttemptRepository) error {
		// 先锁行再读取，已结束的测验由下面的状态判断处理
		if _, err := repo.LockOpen(attemptID); err != nil {
			return err
		}
		attempt, err := repo.FindByID(attemptID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.NotFoundf("attempt %d", attemptID)
			}
			return err
		}
		if err := authorizeOwner(s.Checker, actor, attempt.UserID, permission.ViewAnyAttempt); err != nil {
			return err
		}

		now := s.Clock.Now()
		switch {
		case attempt.Status == model.AttemptCompleted:
			return util.Conflictf("attempt %d is already completed", attemptID)
		case attempt.Status == model.AttemptExpired:
			return fmt.Errorf("%w: attempt %d passed its deadline", util.ErrExpired, attemptID)
		case attempt.IsPastDeadline(now):
			return errPastDeadline
		}

		questions, err := repo.ListQuestions(attemptID)
		if err != nil {
			return err
		}
		spec, err := repo.FindSpecification(attemptID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}

		summary := GradeAttempt(questions, s.PassingGrade)
		remaining := TimeRemaining(attempt.ExpireTime, now)

		rows, err := repo.Complete(attemptID, summary.Score, remaining)
		if err != nil {
			return err
		}
		if rows == 0 {
			return util.Conflictf("attempt %d was submitted concurrently", attemptID)
		}

		result := &model.Result{
			ReviewerAttemptID: attemptID,
			UserID:            attempt.UserID,
			Marks:             summary.Score,
			MaxPoints:         summary.MaxPoints,
			TotalQuestions:    summary.TotalQuestions,
			Grade:             summary.Grade,
			Scope:             datatypes.NewJSONType(BuildScope(spec, questions)),
			Feedback:          summary.Feedback,
			FinishedAt:        now,
		}
		if err := repo.CreateResult(result); err != nil {
			if repository.IsDuplicateKey(err) {
				return util.Conflictf("result for attempt %d already exists", attemptID)
			}
			return err
		}

		out = &SubmissionResult{
			TotalScore: summary.Score,
			MaxPoints:  summary.MaxPoints,
			Questions:  questionOutcomes(questions, summary),
			Result:     result,
		}
		return nil
	})

	switch {
	case errors.Is(err, errPastDeadline):
		err = s.expire(attemptID)
		tracing.Fail(span, err)
		return nil, err
	case errors.Is(err, util.ErrExpired):
		monitoring.AttemptSubmissions.WithLabelValues(monitoring.OutcomeExpired).Inc()
		return nil, err
	case errors.Is(err, util.ErrConflict):
		monitoring.AttemptSubmissions.WithLabelValues(monitoring.OutcomeConflict).Inc()
		logger.Log.Warn("conflicting submission", zap.Uint("attempt_id", attemptID), zap.Error(err))
		return nil, err
	case err != nil:
		tracing.Fail(span, err)
		return nil, err
	}

	monitoring.AttemptSubmissions.WithLabelValues(monitoring.OutcomeCompleted).Inc()
	monitoring.AttemptGrade.Observe(float64(out.Result.Grade))
	span.SetAttributes(attribute.Int("attempt.grade", out.Result.Grade))
	logger.Log.Info("attempt completed",
		zap.Uint("attempt_id", attemptID),
		zap.Uint("user_id", out.Result.UserID),
		zap.Int("marks", out.Result.Marks),
		zap.Int("max_points", out.Result.MaxPoints),
		zap.Int("grade", out.Result.Grade),
		zap.String("feedback", string(out.Result.Feedback)))

	s.Cache.Set(ctx, out.Result)
	s.archive(out.Result)
	return out, nil
}

// expire 失败的提交仍需把测验落库为 expired
func (s *SubmissionService) expire(attemptID uint) error {
	rows, err := s.Repo.MarkExpired(attemptID)
	if err != nil {
		return err
	}
	monitoring.AttemptSubmissions.WithLabelValues(monitoring.OutcomeExpired).Inc()
	if rows > 0 {
		logger.Log.Info("attempt expired on submission", zap.Uint("attempt_id", attemptID))
	}
	return fmt.Errorf("%w: attempt %d passed its deadline", util.ErrExpired, attemptID)
}

func (s *SubmissionService) archive(result *model.Result) {
	if s.Archive == nil {
		return
	}
	snapshot := *result
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if _, err := s.Archive.Archive(ctx, &snapshot); err != nil {
			logger.Log.Warn("result archive failed", zap.Uint("attempt_id", snapshot.ReviewerAttemptID), zap.Error(err))
		}
	}()
}

func questionOutcomes(questions []model.ReviewerAttemptQuestion, summary GradeSummary) []QuestionOutcome {
	out := make([]QuestionOutcome, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		o := QuestionOutcome{
			ReviewerAttemptQuestionID: q.ID,
			QuestionID:                q.QuestionID,
			Answer:                    q.AnswerText(),
			IsCorrect:                 summary.Correct[q.ID],
		}
		if q.Question != nil {
			o.CorrectAnswer = q.Question.CorrectAnswer
			o.Point = q.Question.QuestionPoint
		}
		out = append(out, o)
	}
	return out
}

// ViewResult 读取冻结的结果，优先走缓存
func (s *SubmissionService) ViewResult(ctx context.Context, actor Actor, attemptID uint) (*model.Result, error) {
	result, ok := s.Cache.Get(ctx, attemptID)
	if !ok {
		var err error
		result, err = s.Repo.FindResult(attemptID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, util.NotFoundf("result for attempt %d", attemptID)
			}
			return nil, err
		}
		s.Cache.Set(ctx, result)
	}

	if err := authorizeOwner(s.Checker, actor, result.UserID, permission.ViewAnyResult); err != nil {
		return nil, err
	}
	return result, nil
}
