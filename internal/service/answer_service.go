package service

import (
	"context"
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/internal/util"
	"exam_reviewer_backend/pkg/clock"
	"exam_reviewer_backend/pkg/logger"

	"go.uber.org/zap"
)

type SubmitAnswerRequest struct {
	ReviewerAttemptQuestionID uint    `json:"reviewer_attempt_question_id" binding:"required"`
	Answer                    *string `json:"answer"`
}

type SetFlagRequest struct {
	ReviewerAttemptQuestionID uint  `json:"reviewer_attempt_question_id" binding:"required"`
	IsFlagged                 *bool `json:"is_flagged" binding:"required"`
}

// AnswerService 维护每个题目槽位至多一条答案，答案存在与否决定槽位状态
type AnswerService struct {
	Repo    *repository.AttemptRepository
	Clock   clock.Clock
	Checker *permission.Checker
}

func NewAnswerService(repo *repository.AttemptRepository, clk clock.Clock, checker *permission.Checker) *AnswerService {
	if clk == nil {
		clk = clock.Real{}
	}
	if checker == nil {
		checker = permission.NewChecker(nil)
	}
	return &AnswerService{Repo: repo, Clock: clk, Checker: checker}
}

// loadSlot 读取槽位与所属测验并校验归属
func (s *AnswerService) loadSlot(actor Actor, slotID uint) (*model.ReviewerAttemptQuestion, *model.ReviewerAttempt, error) {
	if slotID == 0 {
		return nil, nil, util.NewValidationError("reviewer_attempt_question_id", "is required")
	}
	slot, err := s.Repo.FindQuestionByID(slotID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, util.NotFoundf("attempt question %d", slotID)
		}
		return nil, nil, err
	}
	attempt, err := s.Repo.FindByID(slot.ReviewerAttemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, util.NotFoundf("attempt %d", slot.ReviewerAttemptID)
		}
		return nil, nil, err
	}
	if err := authorizeOwner(s.Checker, actor, attempt.UserID, permission.ViewAnyAttempt); err != nil {
		return nil, nil, err
	}
	return slot, attempt, nil
}

// SubmitAnswer 空答案等同于重置
func (s *AnswerService) SubmitAnswer(ctx context.Context, actor Actor, req SubmitAnswerRequest) (*AnswerOutcome, error) {
	slot, attempt, err := s.loadSlot(actor, req.ReviewerAttemptQuestionID)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(s.Repo, attempt, s.Clock.Now()); err != nil {
		return nil, err
	}

	if req.Answer == nil || *req.Answer == "" {
		return s.clear(slot)
	}

	var stored *model.ReviewerAttemptAnswer
	err = s.Repo.Transaction(func(repo *repository.AttemptRepository) error {
		if err := lockOpen(repo, attempt.ID, s.Clock.Now()); err != nil {
			return err
		}
		var err error
		if stored, err = repo.UpsertAnswer(slot.ID, *req.Answer); err != nil {
			return err
		}
		if err := repo.UpdateQuestionStatus(slot.ID, model.QuestionAnswered); err != nil {
			return err
		}
		return repo.MarkInProgress(attempt.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("answer stored",
		zap.Uint("attempt_id", attempt.ID),
		zap.Uint("reviewer_attempt_question_id", slot.ID))

	return &AnswerOutcome{
		ReviewerAttemptQuestionID: slot.ID,
		Status:                    model.QuestionAnswered,
		Answer:                    stored,
	}, nil
}

func (s *AnswerService) ResetAnswer(ctx context.Context, actor Actor, slotID uint) (*AnswerOutcome, error) {
	slot, attempt, err := s.loadSlot(actor, slotID)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(s.Repo, attempt, s.Clock.Now()); err != nil {
		return nil, err
	}
	return s.clear(slot)
}

func (s *AnswerService) clear(slot *model.ReviewerAttemptQuestion) (*AnswerOutcome, error) {
	err := s.Repo.Transaction(func(repo *repository.AttemptRepository) error {
		if err := lockOpen(repo, slot.ReviewerAttemptID, s.Clock.Now()); err != nil {
			return err
		}
		if err := repo.DeleteAnswer(slot.ID); err != nil {
			return err
		}
		return repo.UpdateQuestionStatus(slot.ID, model.QuestionUnanswered)
	})
	if err != nil {
		return nil, err
	}
	return &AnswerOutcome{
		ReviewerAttemptQuestionID: slot.ID,
		Status:                    model.QuestionUnanswered,
		Cleared:                   true,
	}, nil
}

// SetFlag 只修改复查标记，与答案和测验状态无关
func (s *AnswerService) SetFlag(ctx context.Context, actor Actor, req SetFlagRequest) (*FlagOutcome, error) {
	if req.IsFlagged == nil {
		return nil, util.NewValidationError("is_flagged", "is required")
	}
	slot, _, err := s.loadSlot(actor, req.ReviewerAttemptQuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetFlag(slot.ID, *req.IsFlagged); err != nil {
		return nil, err
	}
	return &FlagOutcome{ReviewerAttemptQuestionID: slot.ID, IsFlagged: *req.IsFlagged}, nil
}
