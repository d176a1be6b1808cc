package sys

import (
	"strings"
	"testing"
	"time"
)

func TestComputeTimeLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		instant  time.Time
		wantDesc string
		wantDays int
		wantPast bool
	}{
		{
			name:     "days hours minutes",
			instant:  now.Add(49*time.Hour + 30*time.Minute),
			wantDesc: "2 days • 1 hour • 30 minutes",
			wantDays: 2,
		},
		{
			name:     "exactly one day",
			instant:  now.Add(24 * time.Hour),
			wantDesc: "1 day",
			wantDays: 1,
		},
		{
			name:     "under a minute falls back to seconds",
			instant:  now.Add(45 * time.Second),
			wantDesc: "45 seconds",
			wantDays: 0,
		},
		{
			name:     "same instant counts as started",
			instant:  now,
			wantDesc: MsgEventAlreadyStarted,
			wantPast: true,
		},
		{
			name:     "past event",
			instant:  now.Add(-time.Hour),
			wantDesc: MsgEventAlreadyStarted,
			wantPast: true,
		},
		{
			name:     "just under seven days floors to six",
			instant:  now.Add(7*24*time.Hour - time.Second),
			wantDesc: "6 days • 23 hours • 59 minutes",
			wantDays: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, days, passed := ComputeTimeLeft(tt.instant, now)
			if desc != tt.wantDesc {
				t.Errorf("desc = %q, want %q", desc, tt.wantDesc)
			}
			if days != tt.wantDays {
				t.Errorf("days = %d, want %d", days, tt.wantDays)
			}
			if passed != tt.wantPast {
				t.Errorf("passed = %v, want %v", passed, tt.wantPast)
			}
		})
	}
}

func TestBuildMilestoneText(t *testing.T) {
	if got := BuildMilestoneText("Launch", 0); !strings.Contains(got, "today") {
		t.Errorf("day-of text missing 'today': %q", got)
	}
	if got := BuildMilestoneText("Launch", 1); !strings.Contains(got, "tomorrow") {
		t.Errorf("one-day text missing 'tomorrow': %q", got)
	}
	if got := BuildMilestoneText("Launch", 30); !strings.Contains(got, "30 days") {
		t.Errorf("generic text missing day count: %q", got)
	}
}

func TestParseMilestones(t *testing.T) {
	got, err := ParseMilestones(" 90, 30,7 ,0, 30 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{90, 30, 7, 0}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	for _, bad := range []string{"", "a,b", "-1", "7,,x"} {
		if _, err := ParseMilestones(bad); err == nil {
			t.Errorf("ParseMilestones(%q) accepted invalid input", bad)
		}
	}
}

func TestParseEventDateTime(t *testing.T) {
	loc, _ := time.LoadLocation("America/Chicago")

	got, err := ParseEventDateTime("07/04/2026", "18:30", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 7, 4, 18, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ParseEventDateTime("2026-07-04", "18:30", loc); err == nil {
		t.Error("ISO date should be rejected")
	}
	if _, err := ParseEventDateTime("07/04/2026", "6:30 PM", loc); err == nil {
		t.Error("12-hour clock should be rejected")
	}
}

func TestDaysBetweenDates(t *testing.T) {
	if got := DaysBetweenDates("2026-01-01", "2026-01-08"); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	if got := DaysBetweenDates("2026-01-08", "2026-01-01"); got != -7 {
		t.Errorf("got %d, want -7", got)
	}
	if got := DaysBetweenDates("garbage", "2026-01-01"); got != 0 {
		t.Errorf("malformed input should count as 0, got %d", got)
	}
}

func TestLocalDateRespectsZone(t *testing.T) {
	chicago, _ := time.LoadLocation("America/Chicago")
	// 02:00 UTC is still the previous day in Chicago.
	instant := time.Date(2026, 6, 15, 2, 0, 0, 0, time.UTC)
	if got := LocalDate(instant, chicago); got != "2026-06-14" {
		t.Errorf("got %q, want 2026-06-14", got)
	}
	if got := LocalDate(instant, time.UTC); got != "2026-06-15" {
		t.Errorf("got %q, want 2026-06-15", got)
	}
}
