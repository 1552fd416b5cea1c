package service

import (
	"exam_reviewer_backend/internal/model"
	"time"
)

// TimeRemaining 距截止的整分钟数（向下取整），不小于 0
func TimeRemaining(expireTime, now time.Time) int {
	if !now.Before(expireTime) {
		return 0
	}
	return int(expireTime.Sub(now) / time.Minute)
}

// needsExpiry 未结束且已过截止时间的测验需要被标记为 expired
func needsExpiry(a *model.ReviewerAttempt, now time.Time) bool {
	return !a.Status.IsTerminal() && a.IsPastDeadline(now)
}

// FormatExpireTime 按配置时区与格式渲染截止时间
func FormatExpireTime(t time.Time, loc *time.Location, layout string) string {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = "02/01/2006 3:04"
	}
	return t.In(loc).Format(layout)
}
