package service

import (
	"exam_reviewer_backend/internal/model"
	"math/rand"
	"testing"
)

func pool(counts map[uint]int, untagged int) []model.Question {
	var qs []model.Question
	var id uint
	for topic := uint(1); topic <= uint(len(counts)); topic++ {
		for i := 0; i < counts[topic]; i++ {
			id++
			tid := topic
			q := model.Question{TopicID: &tid}
			q.ID = id
			qs = append(qs, q)
		}
	}
	for i := 0; i < untagged; i++ {
		id++
		q := model.Question{}
		q.ID = id
		qs = append(qs, q)
	}
	return qs
}

func TestSelectDrawsPerTopicWithoutReplacement(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := NewQuestionSelector(r.Intn)

	questions := pool(map[uint]int{1: 3, 2: 10}, 4)
	for _, n := range []int{1, 5, 70} {
		got := s.Select(questions, n)

		want := min(3, n) + min(10, n) + min(4, n)
		if len(got) != want {
			t.Fatalf("n=%d: selected %d, want %d", n, len(got), want)
		}
		seen := map[uint]bool{}
		perTopic := map[uint]int{}
		for _, q := range got {
			if seen[q.ID] {
				t.Fatalf("n=%d: question %d drawn twice", n, q.ID)
			}
			seen[q.ID] = true
			var key uint
			if q.TopicID != nil {
				key = *q.TopicID
			}
			perTopic[key]++
		}
		for topic, c := range perTopic {
			if c > n {
				t.Fatalf("n=%d: topic %d got %d questions", n, topic, c)
			}
		}
	}
}

func TestSelectEdgeCases(t *testing.T) {
	s := NewQuestionSelector(nil)
	if got := s.Select(nil, 5); len(got) != 0 {
		t.Fatalf("empty pool returned %d", len(got))
	}
	if got := s.Select(pool(map[uint]int{1: 2}, 0), 0); len(got) != 0 {
		t.Fatalf("n=0 returned %d", len(got))
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	questions := pool(map[uint]int{1: 6}, 0)
	before := make([]uint, len(questions))
	for i, q := range questions {
		before[i] = q.ID
	}
	NewQuestionSelector(func(n int) int { return n - 1 }).Select(questions, 3)
	for i, q := range questions {
		if q.ID != before[i] {
			t.Fatal("pool order changed")
		}
	}
}
