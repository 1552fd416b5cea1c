package service

import (
	"encoding/json"
	"exam_reviewer_backend/internal/model"
	"testing"
)

func TestBuildScopeRequestedThenCovered(t *testing.T) {
	algebra := model.Topic{TopicName: "Algebra"}
	algebra.ID = 1
	geometry := model.Topic{TopicName: "Geometry"}
	geometry.ID = 2
	linear := model.Subtopic{TopicID: 1, SubtopicName: "Linear"}
	linear.ID = 10
	angles := model.Subtopic{TopicID: 2, SubtopicName: "Angles"}
	angles.ID = 20

	spec := &model.ReviewerAttemptSpecification{
		Topics:    []model.Topic{algebra, geometry},
		Subtopics: []model.Subtopic{linear},
	}
	questions := []model.ReviewerAttemptQuestion{
		{Question: &model.Question{Topic: &algebra, Subtopic: &linear}},
		{Question: &model.Question{Topic: &geometry, Subtopic: &angles}},
		{Question: &model.Question{}},
		{Question: &model.Question{Topic: &algebra, Subtopic: &linear}},
	}

	scope := BuildScope(spec, questions)
	data, err := json.Marshal(scope)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Algebra":["Linear"],"Geometry":["Angles"],"No Topic":["No Subtopic"]}`
	if string(data) != want {
		t.Fatalf("scope = %s, want %s", data, want)
	}
}

func TestBuildScopeRequestedTopicWithoutQuestions(t *testing.T) {
	topic := model.Topic{TopicName: "Calculus"}
	topic.ID = 3
	scope := BuildScope(&model.ReviewerAttemptSpecification{Topics: []model.Topic{topic}}, nil)
	subs, ok := scope.Subtopics("Calculus")
	if !ok || len(subs) != 0 {
		t.Fatalf("unexpected scope %+v", scope)
	}
}
