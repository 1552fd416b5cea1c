package service

import "exam_reviewer_backend/internal/model"

// BuildScope 先写入请求范围（规格中的 topic 及其下被请求的 subtopic），
// 再合并各题目实际覆盖的 topic/subtopic，重复项只保留一次
func BuildScope(spec *model.ReviewerAttemptSpecification, questions []model.ReviewerAttemptQuestion) model.ScopeMap {
	scope := model.ScopeMap{}

	if spec != nil {
		for _, topic := range spec.Topics {
			scope = scope.Add(topic.TopicName, "")
			for _, sub := range spec.Subtopics {
				if sub.TopicID == topic.ID {
					scope = scope.Add(topic.TopicName, sub.SubtopicName)
				}
			}
		}
	}

	for _, q := range questions {
		topicName, subtopicName := model.NoTopic, model.NoSubtopic
		if q.Question != nil {
			if q.Question.Topic != nil {
				topicName = q.Question.Topic.TopicName
			}
			if q.Question.Subtopic != nil {
				subtopicName = q.Question.Subtopic.SubtopicName
			}
		}
		scope = scope.Add(topicName, subtopicName)
	}

	return scope
}
