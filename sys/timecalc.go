package sys

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ComputeTimeLeft reports the remaining time to an event instant as seen from
// now: a human-readable description, the number of whole days remaining, and
// whether the event has already started. Pure so sweeps and tests can feed in
// any reference time.
func ComputeTimeLeft(instant, now time.Time) (string, int, bool) {
	total := int64(instant.Sub(now) / time.Second)
	if total <= 0 {
		return MsgEventAlreadyStarted, 0, true
	}

	days := total / 86400
	rem := total % 86400
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	return strings.Join(parts, " • "), int(days), false
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// BuildMilestoneText renders the one-time milestone alert line.
func BuildMilestoneText(eventName string, daysLeft int) string {
	if daysLeft <= 0 {
		return fmt.Sprintf("🎉 **%s** is **today**! 🎉", eventName)
	}
	if daysLeft == 1 {
		return fmt.Sprintf("✨ **%s** is **tomorrow**! ✨", eventName)
	}
	return fmt.Sprintf("💌 **%s** is **%d days** away!", eventName, daysLeft)
}

// BuildRepeatText renders the recurring reminder line.
func BuildRepeatText(eventName, remaining string) string {
	return fmt.Sprintf("🔔 **%s** check-in: **%s** to go!", eventName, remaining)
}

// ParseEventDateTime parses the strict MM/DD/YYYY + 24-hour HH:MM command
// input in the guild's zone.
func ParseEventDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("01/02/2006 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, Validationf(ErrStoreBadDate)
	}
	return t, nil
}

// ParseMilestones parses a comma-separated list of non-negative day-offsets,
// dropping duplicates while preserving order.
func ParseMilestones(raw string) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := strconv.Atoi(part)
		if err != nil || m < 0 {
			return nil, Validationf(ErrStoreBadMilestones)
		}
		if !seen[m] {
			out = append(out, m)
			seen[m] = true
		}
	}
	if len(out) == 0 {
		return nil, Validationf(ErrStoreBadMilestones)
	}
	return out, nil
}

// FormatEventTime renders an event instant in the guild's zone for display.
func FormatEventTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("January 2, 2006 at 3:04 PM MST")
}

// FormatEventShort is the compact listing form.
func FormatEventShort(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("01/02/2006 15:04")
}

const dateLayout = "2006-01-02"

// LocalDate reduces an instant to the calendar date in the given zone.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// ParseDate parses a calendar date produced by LocalDate or typed by a user
// as MM/DD/YYYY.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("01/02/2006", raw); err == nil {
		return t, nil
	}
	return time.Time{}, Validationf(ErrStoreBadDate)
}

// DaysBetweenDates returns the signed count of calendar days from one
// YYYY-MM-DD date to another. Malformed input counts as zero days.
func DaysBetweenDates(from, to string) int {
	a, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a) / (24 * time.Hour))
}
