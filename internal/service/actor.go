package service

import (
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/internal/util"
)

// Actor 当前请求的调用者，来自令牌
type Actor struct {
	UserID uint
	Role   model.UserRole
}

// FromClaims 把令牌内容转换为 Actor
func FromClaims(claims *util.Claims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role}
}

// authorizeOwner 本人或持有 anyAction 能力的角色可以访问
func authorizeOwner(checker *permission.Checker, actor Actor, ownerID uint, anyAction permission.Action) error {
	if actor.UserID != 0 && actor.UserID == ownerID {
		return nil
	}
	if checker.Allowed(actor.Role, anyAction) {
		return nil
	}
	return util.Forbiddenf("user %d may not access attempts of user %d", actor.UserID, ownerID)
}

func dedupeIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
