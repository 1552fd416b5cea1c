package service

import (
	"exam_reviewer_backend/internal/model"
	"math"
)

const DefaultPassingGrade = 70

// GradeSummary 一次提交的评分汇总
type GradeSummary struct {
	Score          int
	MaxPoints      int
	TotalQuestions int
	Grade          int
	Feedback       model.Feedback
	Correct        map[uint]bool // attempt question id -> 是否答对
}

// IsCorrect 严格字符串相等，区分大小写且不做裁剪
func IsCorrect(q *model.ReviewerAttemptQuestion) bool {
	if q.Answer == nil || q.Question == nil {
		return false
	}
	return q.Answer.Answer == q.Question.CorrectAnswer
}

func GradeAttempt(questions []model.ReviewerAttemptQuestion, passingGrade int) GradeSummary {
	summary := GradeSummary{
		TotalQuestions: len(questions),
		Correct:        make(map[uint]bool, len(questions)),
	}
	for i := range questions {
		q := &questions[i]
		if q.Question != nil {
			summary.MaxPoints += q.Question.QuestionPoint
		}
		correct := IsCorrect(q)
		summary.Correct[q.ID] = correct
		if correct {
			summary.Score += q.Question.QuestionPoint
		}
	}
	summary.Grade = Percentage(summary.Score, summary.MaxPoints)
	summary.Feedback = FeedbackFor(summary.Grade, passingGrade)
	return summary
}

// Percentage 满分为 0 时记 0 分
func Percentage(score, maxPoints int) int {
	if maxPoints <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxPoints) * 100))
}

func FeedbackFor(grade, passingGrade int) model.Feedback {
	if grade >= passingGrade {
		return model.FeedbackPassed
	}
	return model.FeedbackFailed
}
