package service

import (
	"context"
	"exam_reviewer_backend/internal/config"
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/pkg/clock"
	"exam_reviewer_backend/pkg/database"
	"fmt"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"gorm.io/gorm"
)

var testStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	clock      *clock.Mock
	repo       *repository.AttemptRepository
	attempts   *AttemptService
	answers    *AnswerService
	submission *SubmissionService

	student  model.User
	other    model.User
	faculty  model.User
	reviewer model.Reviewer
	topics   []model.Topic
	subs     []model.Subtopic
}

func (f *fixture) actor(u model.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

// newFixture 题库：T1 含 3 题（subtopic S1），T2 含 10 题（subtopic S2），每题 1 分，正确答案 "A"
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	f := &fixture{db: db, clock: clock.NewMock(testStart)}

	f.student = model.User{Name: "Stu", Email: "stu@example.edu", Role: model.Student}
	f.other = model.User{Name: "Oth", Email: "oth@example.edu", Role: model.Student}
	f.faculty = model.User{Name: "Fac", Email: "fac@example.edu", Role: model.Faculty}
	for _, u := range []*model.User{&f.student, &f.other, &f.faculty} {
		mustCreate(t, db, u)
	}

	f.reviewer = model.Reviewer{ReviewerName: "Board Review 2026"}
	mustCreate(t, db, &f.reviewer)

	for i, name := range []string{"Algebra", "Geometry"} {
		rid := f.reviewer.ID
		topic := model.Topic{ReviewerID: &rid, TopicName: name}
		mustCreate(t, db, &topic)
		sub := model.Subtopic{TopicID: topic.ID, SubtopicName: fmt.Sprintf("%s basics", name)}
		mustCreate(t, db, &sub)
		f.topics = append(f.topics, topic)
		f.subs = append(f.subs, sub)

		count := []int{3, 10}[i]
		for n := 0; n < count; n++ {
			tid, sid := topic.ID, sub.ID
			q := model.Question{
				ReviewerID:      f.reviewer.ID,
				TopicID:         &tid,
				SubtopicID:      &sid,
				QuestionContent: fmt.Sprintf("%s question %d", name, n+1),
				CorrectAnswer:   "A",
				QuestionPoint:   1,
				Status:          model.QuestionActive,
				Choices: []model.QuestionChoice{
					{ChoiceIndex: "A", ChoiceContent: "right"},
					{ChoiceIndex: "B", ChoiceContent: "wrong"},
				},
			}
			mustCreate(t, db, &q)
		}
	}

	checker := permission.NewChecker(nil)
	cfg := config.AttemptConfig{PassingGrade: 70, Timezone: "Asia/Manila", ExpireTimeFormat: "02/01/2006 3:04"}

	f.repo = repository.NewAttemptRepository(db)
	f.attempts = NewAttemptService(
		f.repo,
		repository.NewQuestionRepository(db),
		repository.NewCatalogRepository(db),
		NewQuestionSelector(nil),
		f.clock,
		checker,
		cfg,
	)
	f.answers = NewAnswerService(f.repo, f.clock, checker)
	f.submission = NewSubmissionService(f.repo, f.clock, checker, nil, nil, cfg)
	return f
}

func (f *fixture) generate(t *testing.T, amount, limit int, topicIDs ...uint) *GeneratedAttempt {
	t.Helper()
	got, err := f.attempts.GenerateAttempt(context.Background(), f.actor(f.student), GenerateAttemptRequest{
		ReviewerID:     f.reviewer.ID,
		QuestionAmount: amount,
		TimeLimit:      limit,
		TopicIDs:       topicIDs,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return got
}

func (f *fixture) reload(t *testing.T, id uint) *model.ReviewerAttempt {
	t.Helper()
	a, err := f.repo.FindByID(id)
	if err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	return a
}

func (f *fixture) resultCount(t *testing.T, attemptID uint) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Result{}).Where("reviewer_attempt_id = ?", attemptID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
