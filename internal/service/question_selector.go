package service

import (
	"exam_reviewer_backend/internal/model"
	"math/rand"
)

// QuestionSelector 按 topic 分组，每组无放回地随机抽取至多 n 道题
type QuestionSelector struct {
	intn func(n int) int
}

// NewQuestionSelector intn 为 nil 时使用 math/rand 的全局源
func NewQuestionSelector(intn func(n int) int) *QuestionSelector {
	if intn == nil {
		intn = rand.Intn
	}
	return &QuestionSelector{intn: intn}
}

type topicGroup struct {
	key       uint
	questions []model.Question
}

// groupByTopic 保持首次出现顺序，未分配 topic 的题目归为一组
func groupByTopic(pool []model.Question) []topicGroup {
	var groups []topicGroup
	index := make(map[uint]int)
	for _, q := range pool {
		var key uint
		if q.TopicID != nil {
			key = *q.TopicID
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, topicGroup{key: key})
		}
		groups[i].questions = append(groups[i].questions, q)
	}
	return groups
}

// Select 总数为各组 min(组大小, n) 之和
func (s *QuestionSelector) Select(pool []model.Question, n int) []model.Question {
	if n <= 0 || len(pool) == 0 {
		return []model.Question{}
	}

	selected := make([]model.Question, 0, len(pool))
	for _, g := range groupByTopic(pool) {
		selected = append(selected, s.sample(g.questions, n)...)
	}
	return selected
}

// sample 部分 Fisher-Yates 洗牌，不修改入参
func (s *QuestionSelector) sample(questions []model.Question, n int) []model.Question {
	k := n
	if len(questions) < k {
		k = len(questions)
	}
	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)
	for i := 0; i < k; i++ {
		j := i + s.intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k]
}
