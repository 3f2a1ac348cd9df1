package models

import (
	"testing"
	"time"
)

func TestWorkLogHours(t *testing.T) {
	var workLog WorkLog
	if got := workLog.Hours(); got != 0 {
		t.Errorf("Hours() with no times = %d, want 0", got)
	}

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	finish := start.Add(7*time.Hour + 45*time.Minute)
	workLog.StartTime = &start
	workLog.FinishTime = &finish
	if got := workLog.Hours(); got != 7 {
		t.Errorf("Hours() = %d, want 7", got)
	}

	workLog.FinishTime = nil
	if got := workLog.Hours(); got != 0 {
		t.Errorf("Hours() with open log = %d, want 0", got)
	}
}

func TestUserIsStaff(t *testing.T) {
	user := User{Role: "user"}
	if user.IsStaff() {
		t.Error("regular user reported as staff")
	}
	user.Role = RoleStaff
	if !user.IsStaff() {
		t.Error("staff user not recognised")
	}
}
