package repository

import (
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/pkg/database"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) (*AttemptRepository, *model.ReviewerAttempt) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user := model.User{Name: "Stu", Email: "stu@example.edu", Role: model.Student}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	reviewer := model.Reviewer{ReviewerName: "Board Review"}
	if err := db.Create(&reviewer).Error; err != nil {
		t.Fatal(err)
	}

	repo := NewAttemptRepository(db)
	attempt := &model.ReviewerAttempt{
		UserID:        user.ID,
		ReviewerID:    reviewer.ID,
		Status:        model.AttemptCreated,
		TimeRemaining: 10,
		ExpireTime:    time.Date(2026, 3, 2, 8, 10, 0, 0, time.UTC),
	}
	if err := repo.Create(attempt); err != nil {
		t.Fatal(err)
	}
	return repo, attempt
}

func TestCreateResultTwiceIsDuplicateKey(t *testing.T) {
	repo, attempt := newTestRepo(t)

	newResult := func() *model.Result {
		return &model.Result{
			ReviewerAttemptID: attempt.ID,
			UserID:            attempt.UserID,
			Feedback:          model.FeedbackFailed,
			FinishedAt:        time.Date(2026, 3, 2, 8, 5, 0, 0, time.UTC),
		}
	}

	if err := repo.CreateResult(newResult()); err != nil {
		t.Fatalf("first result: %v", err)
	}
	err := repo.CreateResult(newResult())
	if err == nil {
		t.Fatal("second result for the same attempt was accepted")
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey(%v) = false", err)
	}
}

func TestLockOpenOnlyMatchesOpenAttempts(t *testing.T) {
	repo, attempt := newTestRepo(t)

	rows, err := repo.LockOpen(attempt.ID)
	if err != nil || rows != 1 {
		t.Fatalf("lock created attempt: rows=%d err=%v", rows, err)
	}
	// 同一行反复加锁也必须命中
	if rows, _ = repo.LockOpen(attempt.ID); rows != 1 {
		t.Fatalf("second lock rows = %d", rows)
	}

	if rows, err = repo.Complete(attempt.ID, 0, 5); err != nil || rows != 1 {
		t.Fatalf("complete: rows=%d err=%v", rows, err)
	}
	if rows, err = repo.LockOpen(attempt.ID); err != nil || rows != 0 {
		t.Fatalf("lock completed attempt: rows=%d err=%v", rows, err)
	}
}
