package service

import (
	"exam_reviewer_backend/internal/model"
	"time"
)

// AttemptSummary 测验概要，列表与生成接口共用
type AttemptSummary struct {
	ID                  uint                `json:"id"`
	UserID              uint                `json:"user_id"`
	ReviewerID          uint                `json:"reviewer_id"`
	Status              model.AttemptStatus `json:"status"`
	Score               int                 `json:"score"`
	TimeRemaining       int                 `json:"time_remaining"`
	ExpireTime          time.Time           `json:"expire_time"`
	FormattedExpireTime string              `json:"formatted_expire_time"`
	CreatedAt           time.Time           `json:"created_at"`
}

// AttemptDetail 单个测验，含规格与结果
type AttemptDetail struct {
	AttemptSummary
	Specification *model.ReviewerAttemptSpecification `json:"specification,omitempty"`
	Result        *model.Result                       `json:"result,omitempty"`
}

type GeneratedAttempt struct {
	ReviewerAttempt     AttemptSummary                      `json:"reviewer_attempt"`
	Specification       *model.ReviewerAttemptSpecification `json:"specification"`
	Questions           []AttemptQuestionItem               `json:"questions"`
	FormattedExpireTime string                              `json:"formatted_expire_time"`
}

type ChoiceView struct {
	ID      uint   `json:"id"`
	Index   string `json:"index"`
	Content string `json:"content"`
}

// AttemptQuestionItem 作答视图，正确答案仅在测验完成后填充
type AttemptQuestionItem struct {
	ReviewerAttemptQuestionID uint                        `json:"reviewer_attempt_question_id"`
	QuestionID                uint                        `json:"question_id"`
	Content                   string                      `json:"content"`
	Point                     int                         `json:"point"`
	Status                    model.AttemptQuestionStatus `json:"status"`
	IsFlagged                 bool                        `json:"is_flagged"`
	Choices                   []ChoiceView                `json:"choices"`
	Answer                    *string                     `json:"answer"`
	CorrectAnswer             *string                     `json:"correct_answer,omitempty"`
	IsCorrect                 *bool                       `json:"is_correct,omitempty"`
}

type SubtopicGroup struct {
	ID          *uint                 `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Questions   []AttemptQuestionItem `json:"questions"`
}

type TopicGroup struct {
	ID          *uint           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Subtopics   []SubtopicGroup `json:"subtopics"`
}

type AttemptQuestionsView struct {
	Topics          []TopicGroup    `json:"topics"`
	TotalQuestions  int             `json:"total_questions"`
	ReviewerAttempt *AttemptSummary `json:"reviewer_attempt,omitempty"`
	Result          *model.Result   `json:"result,omitempty"`
}

// Completed 结果存在即视为已完成
func (v *AttemptQuestionsView) Completed() bool {
	return v.Result != nil
}

type AnswerOutcome struct {
	ReviewerAttemptQuestionID uint                         `json:"reviewer_attempt_question_id"`
	Status                    model.AttemptQuestionStatus  `json:"status"`
	Answer                    *model.ReviewerAttemptAnswer `json:"answer,omitempty"`
	Cleared                   bool                         `json:"cleared"`
}

type FlagOutcome struct {
	ReviewerAttemptQuestionID uint `json:"reviewer_attempt_question_id"`
	IsFlagged                 bool `json:"is_flagged"`
}

type QuestionOutcome struct {
	ReviewerAttemptQuestionID uint    `json:"reviewer_attempt_question_id"`
	QuestionID                uint    `json:"question_id"`
	Answer                    *string `json:"answer"`
	CorrectAnswer             string  `json:"correct_answer"`
	IsCorrect                 bool    `json:"is_correct"`
	Point                     int     `json:"point"`
}

type SubmissionResult struct {
	TotalScore int               `json:"total_score"`
	MaxPoints  int               `json:"max_points"`
	Questions  []QuestionOutcome `json:"questions"`
	Result     *model.Result     `json:"result"`
}

const (
	noSubtopicDescription = "Questions not assigned to a subtopic"
	noTopicDescription    = "Questions not assigned to a topic"
)

func choiceViews(choices []model.QuestionChoice) []ChoiceView {
	views := make([]ChoiceView, 0, len(choices))
	for _, c := range choices {
		views = append(views, ChoiceView{ID: c.ID, Index: c.ChoiceIndex, Content: c.ChoiceContent})
	}
	return views
}

// questionItem reveal 为 true 时附带正确答案与判定
func questionItem(q *model.ReviewerAttemptQuestion, reveal bool) AttemptQuestionItem {
	item := AttemptQuestionItem{
		ReviewerAttemptQuestionID: q.ID,
		QuestionID:                q.QuestionID,
		Status:                    q.Status,
		IsFlagged:                 q.IsFlagged,
		Answer:                    q.AnswerText(),
		Choices:                   []ChoiceView{},
	}
	if q.Question != nil {
		item.Content = q.Question.QuestionContent
		item.Point = q.Question.QuestionPoint
		item.Choices = choiceViews(q.Question.Choices)
		if reveal {
			correct := q.Question.CorrectAnswer
			isCorrect := IsCorrect(q)
			item.CorrectAnswer = &correct
			item.IsCorrect = &isCorrect
		}
	}
	return item
}

// groupQuestions 按 topic -> subtopic 首次出现顺序分组
func groupQuestions(questions []model.ReviewerAttemptQuestion, reveal bool) []TopicGroup {
	topics := []TopicGroup{}
	topicIndex := map[uint]int{}
	subIndex := map[[2]uint]int{}

	for i := range questions {
		q := &questions[i]

		var topicKey, subKey uint
		topic := TopicGroup{Name: model.NoTopic, Description: noTopicDescription}
		sub := SubtopicGroup{Name: model.NoSubtopic, Description: noSubtopicDescription}
		if q.Question != nil && q.Question.Topic != nil {
			t := q.Question.Topic
			topicKey = t.ID
			id := t.ID
			topic = TopicGroup{ID: &id, Name: t.TopicName, Description: t.TopicDescription}
		}
		if q.Question != nil && q.Question.Subtopic != nil {
			s := q.Question.Subtopic
			subKey = s.ID
			id := s.ID
			sub = SubtopicGroup{ID: &id, Name: s.SubtopicName, Description: s.SubtopicDescription}
		}

		ti, ok := topicIndex[topicKey]
		if !ok {
			ti = len(topics)
			topicIndex[topicKey] = ti
			topic.Subtopics = []SubtopicGroup{}
			topics = append(topics, topic)
		}

		key := [2]uint{topicKey, subKey}
		si, ok := subIndex[key]
		if !ok {
			si = len(topics[ti].Subtopics)
			subIndex[key] = si
			sub.Questions = []AttemptQuestionItem{}
			topics[ti].Subtopics = append(topics[ti].Subtopics, sub)
		}

		topics[ti].Subtopics[si].Questions = append(topics[ti].Subtopics[si].Questions, questionItem(q, reveal))
	}
	return topics
}
