package service

import (
	"context"
	"errors"
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/internal/util"
	"testing"
	"time"
)

func TestGenerateAttemptDrawsPerTopicGroup(t *testing.T) {
	f := newFixture(t)

	got := f.generate(t, 5, 30, f.topics[0].ID, f.topics[1].ID)

	if len(got.Questions) != 8 {
		t.Fatalf("questions = %d, want min(3,5)+min(10,5) = 8", len(got.Questions))
	}
	a := got.ReviewerAttempt
	if a.Status != model.AttemptCreated || a.Score != 0 || a.TimeRemaining != 30 {
		t.Fatalf("unexpected attempt %+v", a)
	}
	if !a.ExpireTime.Equal(testStart.Add(30 * time.Minute)) {
		t.Fatalf("expire_time = %v", a.ExpireTime)
	}
	// 08:30 UTC = 16:30 Asia/Manila
	if got.FormattedExpireTime != "02/03/2026 4:30" {
		t.Fatalf("formatted expire time = %q", got.FormattedExpireTime)
	}
	if got.Specification == nil || got.Specification.QuestionAmount != 5 || len(got.Specification.Topics) != 2 {
		t.Fatalf("unexpected specification %+v", got.Specification)
	}
	for _, q := range got.Questions {
		if q.CorrectAnswer != nil {
			t.Fatal("correct answer must not be exposed before completion")
		}
		if q.Status != model.QuestionUnanswered {
			t.Fatalf("slot status = %s", q.Status)
		}
	}
}

func TestGenerateAttemptWithoutScopeUsesWholePool(t *testing.T) {
	f := newFixture(t)
	got := f.generate(t, 70, 10)
	if len(got.Questions) != 13 {
		t.Fatalf("questions = %d, want 13", len(got.Questions))
	}
}

func TestGenerateAttemptDeduplicatesScope(t *testing.T) {
	f := newFixture(t)
	got := f.generate(t, 2, 10, f.topics[0].ID, f.topics[0].ID)
	if len(got.Specification.Topics) != 1 {
		t.Fatalf("topics = %d, want 1", len(got.Specification.Topics))
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
}

func TestGenerateAttemptEmptyPoolIsNotAnError(t *testing.T) {
	f := newFixture(t)
	got, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.student), GenerateAttemptRequest{
		ReviewerID:     f.reviewer.ID,
		QuestionAmount: 5,
		TimeLimit:      10,
		TopicIDs:       []uint{f.topics[0].ID},
		SubtopicIDs:    []uint{f.subs[1].ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Questions) != 0 {
		t.Fatalf("questions = %d, want 0", len(got.Questions))
	}
}

func TestGenerateAttemptValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name  string
		req   GenerateAttemptRequest
		field string
	}{
		{"amount too large", GenerateAttemptRequest{ReviewerID: f.reviewer.ID, QuestionAmount: 71, TimeLimit: 10}, "question_amount"},
		{"amount missing", GenerateAttemptRequest{ReviewerID: f.reviewer.ID, TimeLimit: 10}, "question_amount"},
		{"time limit too large", GenerateAttemptRequest{ReviewerID: f.reviewer.ID, QuestionAmount: 5, TimeLimit: 121}, "time_limit"},
		{"reviewer missing", GenerateAttemptRequest{QuestionAmount: 5, TimeLimit: 10}, "reviewer_id"},
	}
	for _, tc := range cases {
		_, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.student), tc.req)
		var ve *util.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if _, ok := ve.Fields[tc.field]; !ok {
			t.Errorf("%s: missing field %s in %v", tc.name, tc.field, ve.Fields)
		}
	}

	var count int64
	f.db.Model(&model.ReviewerAttempt{}).Count(&count)
	if count != 0 {
		t.Fatalf("validation failure must not write, found %d attempts", count)
	}
}

func TestGenerateAttemptUnknownReferences(t *testing.T) {
	f := newFixture(t)
	cases := []GenerateAttemptRequest{
		{ReviewerID: 999, QuestionAmount: 5, TimeLimit: 10},
		{ReviewerID: f.reviewer.ID, QuestionAmount: 5, TimeLimit: 10, TopicIDs: []uint{999}},
		{ReviewerID: f.reviewer.ID, QuestionAmount: 5, TimeLimit: 10, SubtopicIDs: []uint{999}},
	}
	for _, req := range cases {
		if _, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.student), req); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("request %+v: expected not found, got %v", req, err)
		}
	}
}

func TestGenerateAttemptForOtherUserRequiresCapability(t *testing.T) {
	f := newFixture(t)
	req := GenerateAttemptRequest{UserID: f.other.ID, ReviewerID: f.reviewer.ID, QuestionAmount: 1, TimeLimit: 5}

	if _, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.student), req); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("student generating for others: got %v", err)
	}
	got, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.faculty), req)
	if err != nil {
		t.Fatal(err)
	}
	if got.ReviewerAttempt.UserID != f.other.ID {
		t.Fatalf("attempt owner = %d, want %d", got.ReviewerAttempt.UserID, f.other.ID)
	}
}

func TestTimeRemainingIsMonotonicAndReadOnly(t *testing.T) {
	f := newFixture(t)
	got := f.generate(t, 1, 10)
	id := got.ReviewerAttempt.ID

	prev := 11
	for i := 0; i < 14; i++ {
		remaining, err := f.attempts.GetTimeRemaining(context.Background(), f.actor(f.student), id)
		if err != nil {
			t.Fatal(err)
		}
		if remaining < 0 || remaining > prev {
			t.Fatalf("step %d: remaining %d after %d", i, remaining, prev)
		}
		prev = remaining
		f.clock.Advance(50 * time.Second)
	}
	if prev != 0 {
		t.Fatalf("remaining after deadline = %d, want 0", prev)
	}
	if a := f.reload(t, id); a.Status != model.AttemptCreated {
		t.Fatalf("time query mutated status to %s", a.Status)
	}
}

func TestTimeRemainingNotFoundAndForbidden(t *testing.T) {
	f := newFixture(t)
	if _, err := f.attempts.GetTimeRemaining(context.Background(), f.actor(f.student), 404); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got := f.generate(t, 1, 10)
	if _, err := f.attempts.GetTimeRemaining(context.Background(), f.actor(f.other), got.ReviewerAttempt.ID); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestReadsReconcileExpiry(t *testing.T) {
	f := newFixture(t)
	got := f.generate(t, 1, 10)
	id := got.ReviewerAttempt.ID

	f.clock.Advance(11 * time.Minute)

	detail, err := f.attempts.GetAttempt(context.Background(), f.actor(f.student), id)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Status != model.AttemptExpired || detail.TimeRemaining != 0 {
		t.Fatalf("detail not reconciled: %+v", detail.AttemptSummary)
	}
	if a := f.reload(t, id); a.Status != model.AttemptExpired {
		t.Fatalf("stored status = %s, want expired", a.Status)
	}
}

func TestListAttemptsScopesToOwnUser(t *testing.T) {
	f := newFixture(t)
	f.generate(t, 1, 10)
	f.generate(t, 1, 10)
	if _, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.other), GenerateAttemptRequest{
		ReviewerID: f.reviewer.ID, QuestionAmount: 1, TimeLimit: 10,
	}); err != nil {
		t.Fatal(err)
	}

	own, err := f.attempts.ListAttempts(context.Background(), f.actor(f.student), repository.AttemptFilter{UserID: f.other.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 2 {
		t.Fatalf("student sees %d attempts, want 2", len(own))
	}
	for _, a := range own {
		if a.UserID != f.student.ID || a.FormattedExpireTime == "" {
			t.Fatalf("unexpected summary %+v", a)
		}
	}

	all, err := f.attempts.ListAttempts(context.Background(), f.actor(f.faculty), repository.AttemptFilter{ReviewerID: f.reviewer.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("faculty sees %d attempts, want 3", len(all))
	}
}

func TestAttemptQuestionsGroupsAndRevealsAfterCompletion(t *testing.T) {
	f := newFixture(t)
	got := f.generate(t, 2, 10, f.topics[0].ID, f.topics[1].ID)
	id := got.ReviewerAttempt.ID

	view, err := f.attempts.AttemptQuestions(context.Background(), f.actor(f.student), id)
	if err != nil {
		t.Fatal(err)
	}
	if view.TotalQuestions != 4 || len(view.Topics) != 2 || view.Completed() {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Topics[0].Name != "Algebra" || view.Topics[0].Subtopics[0].Name != "Algebra basics" {
		t.Fatalf("unexpected grouping %+v", view.Topics[0])
	}
	if len(view.Topics[0].Subtopics[0].Questions[0].Choices) != 2 {
		t.Fatal("choices missing")
	}

	if _, err := f.submission.Submit(context.Background(), f.actor(f.student), id); err != nil {
		t.Fatal(err)
	}
	view, err = f.attempts.AttemptQuestions(context.Background(), f.actor(f.student), id)
	if err != nil {
		t.Fatal(err)
	}
	if !view.Completed() || view.ReviewerAttempt == nil {
		t.Fatal("completed view must include attempt and result")
	}
	item := view.Topics[1].Subtopics[0].Questions[0]
	if item.CorrectAnswer == nil || *item.CorrectAnswer != "A" || item.IsCorrect == nil || *item.IsCorrect {
		t.Fatalf("unexpected review item %+v", item)
	}
}
