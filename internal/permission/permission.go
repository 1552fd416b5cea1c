// Package permission 角色能力集：由 (角色, 动作) 决定是否放行
package permission

import (
	"exam_reviewer_backend/internal/model"
	"strings"
)

type Action string

const (
	GenerateAttempt          Action = "attempt:generate"
	GenerateAttemptForOthers Action = "attempt:generate-for-others"
	AnswerAttempt            Action = "attempt:answer"
	SubmitAttempt            Action = "attempt:submit"
	ViewOwnAttempt           Action = "attempt:view-own"
	ViewAnyAttempt           Action = "attempt:view-any"
	ViewAnyResult            Action = "result:view-any"
)

var studentActions = []Action{GenerateAttempt, AnswerAttempt, SubmitAttempt, ViewOwnAttempt}

var staffActions = append(append([]Action{}, studentActions...),
	GenerateAttemptForOthers, ViewAnyAttempt, ViewAnyResult)

// DefaultPolicy "*" 表示全部动作，"attempt:*" 表示前缀匹配
var DefaultPolicy = map[model.UserRole][]Action{
	model.Admin:       {"*"},
	model.Dean:        staffActions,
	model.ProgramHead: staffActions,
	model.Faculty:     staffActions,
	model.Student:     studentActions,
}

type Checker struct {
	policy map[model.UserRole][]Action
}

func NewChecker(policy map[model.UserRole][]Action) *Checker {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &Checker{policy: policy}
}

func (c *Checker) Allowed(role model.UserRole, action Action) bool {
	for _, granted := range c.policy[role] {
		if match(granted, action) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role model.UserRole, actions ...Action) bool {
	for _, a := range actions {
		if c.Allowed(role, a) {
			return true
		}
	}
	return false
}

func match(granted, action Action) bool {
	if granted == "*" || granted == action {
		return true
	}
	if p := string(granted); strings.HasSuffix(p, "*") {
		return strings.HasPrefix(string(action), strings.TrimSuffix(p, "*"))
	}
	return false
}
