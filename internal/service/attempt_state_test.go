package service

import (
	"exam_reviewer_backend/internal/model"
	"testing"
	"time"
)

func TestTimeRemaining(t *testing.T) {
	expire := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		now  time.Time
		want int
	}{
		{expire.Add(-30 * time.Minute), 30},
		{expire.Add(-90 * time.Second), 1},
		{expire.Add(-59 * time.Second), 0},
		{expire, 0},
		{expire.Add(time.Hour), 0},
	}
	for _, tc := range cases {
		if got := TimeRemaining(expire, tc.now); got != tc.want {
			t.Errorf("TimeRemaining at %v = %d, want %d", tc.now, got, tc.want)
		}
	}
}

func TestNeedsExpiry(t *testing.T) {
	expire := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	a := &model.ReviewerAttempt{Status: model.AttemptInProgress, ExpireTime: expire}
	if needsExpiry(a, expire) {
		t.Error("attempt is still open exactly at the deadline")
	}
	if !needsExpiry(a, expire.Add(time.Nanosecond)) {
		t.Error("attempt past deadline should expire")
	}
	a.Status = model.AttemptCompleted
	if needsExpiry(a, expire.Add(time.Hour)) {
		t.Error("completed attempts never expire")
	}
}

func TestFormatExpireTime(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	got := FormatExpireTime(time.Date(2026, 7, 4, 1, 5, 0, 0, time.UTC), loc, "")
	if got != "04/07/2026 9:05" {
		t.Fatalf("formatted = %q", got)
	}
}
