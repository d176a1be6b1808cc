package sys

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const testGuild = snowflake.ID(123456789012345678)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"), time.UTC)
}

func TestAddEventSortsAndDefaults(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := s.AddEvent(testGuild, "Later", base.Add(48*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := s.AddEvent(testGuild, "Sooner", base); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	list := s.ListEvents(testGuild)
	if len(list) != 2 {
		t.Fatalf("got %d events, want 2", len(list))
	}
	if list[0].Name != "Sooner" || list[1].Name != "Later" {
		t.Errorf("events not sorted soonest-first: %q, %q", list[0].Name, list[1].Name)
	}

	if len(list[0].Milestones) != len(DefaultMilestones) {
		t.Errorf("new event milestones = %v, want defaults", list[0].Milestones)
	}
	if list[0].ID == 0 || list[1].ID == 0 || list[0].ID == list[1].ID {
		t.Errorf("events should carry distinct non-zero IDs: %d, %d", list[0].ID, list[1].ID)
	}

	if _, err := s.AddEvent(testGuild, "   ", base); err == nil {
		t.Error("blank name should be rejected")
	}
}

func TestIndexAddressing(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"A", "B", "C"} {
		base = base.Add(time.Hour)
		if _, err := s.AddEvent(testGuild, name, base); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	if _, err := s.RemoveEvent(testGuild, 0); err == nil {
		t.Error("index 0 should be out of range")
	}
	if _, err := s.RemoveEvent(testGuild, 4); err == nil {
		t.Error("index past end should be out of range")
	}

	removed, err := s.RemoveEvent(testGuild, 2)
	if err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	if removed.Name != "B" {
		t.Errorf("removed %q, want B", removed.Name)
	}

	list := s.ListEvents(testGuild)
	if len(list) != 2 || list[0].Name != "A" || list[1].Name != "C" {
		t.Errorf("after removal got %v", list)
	}
}

func TestEditClearsMilestoneHistoryOnReschedule(t *testing.T) {
	s := newTestStore(t)
	instant := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	e, err := s.AddEvent(testGuild, "Party", instant)
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := s.MarkMilestoneAnnounced(testGuild, e.ID, 7); err != nil {
		t.Fatalf("MarkMilestoneAnnounced: %v", err)
	}

	// Rename only: history stays.
	got, err := s.EditEvent(testGuild, 1, "Bigger Party", nil)
	if err != nil {
		t.Fatalf("EditEvent: %v", err)
	}
	if len(got.AnnouncedMilestones) != 1 {
		t.Errorf("rename should keep announced history, got %v", got.AnnouncedMilestones)
	}

	// Reschedule: history resets so alerts can re-fire.
	newInstant := instant.Add(30 * 24 * time.Hour)
	got, err = s.EditEvent(testGuild, 1, "", &newInstant)
	if err != nil {
		t.Fatalf("EditEvent: %v", err)
	}
	if got.Name != "Bigger Party" {
		t.Errorf("empty name should not overwrite, got %q", got.Name)
	}
	if len(got.AnnouncedMilestones) != 0 {
		t.Errorf("reschedule should clear announced history, got %v", got.AnnouncedMilestones)
	}
}

func TestDuplicateCopiesConfigNotHistory(t *testing.T) {
	s := newTestStore(t)
	instant := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	src, err := s.AddEvent(testGuild, "Origin", instant)
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := s.SetMilestones(testGuild, 1, []int{10, 5}); err != nil {
		t.Fatalf("SetMilestones: %v", err)
	}
	if _, err := s.SetRepeat(testGuild, 1, 7, "2026-04-01"); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}
	if err := s.MarkMilestoneAnnounced(testGuild, src.ID, 10); err != nil {
		t.Fatalf("MarkMilestoneAnnounced: %v", err)
	}

	dup, err := s.DuplicateEvent(testGuild, 1, "Copy", instant.Add(time.Hour))
	if err != nil {
		t.Fatalf("DuplicateEvent: %v", err)
	}

	if len(dup.Milestones) != 2 {
		t.Errorf("copy should inherit milestones, got %v", dup.Milestones)
	}
	if len(dup.AnnouncedMilestones) != 0 {
		t.Errorf("copy should start with clean history, got %v", dup.AnnouncedMilestones)
	}
	if dup.RepeatEveryDays != 0 {
		t.Errorf("copy should not inherit repeats, got every %d days", dup.RepeatEveryDays)
	}
}

func TestSetMilestonesPrunesAnnounced(t *testing.T) {
	s := newTestStore(t)
	e, err := s.AddEvent(testGuild, "E", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	_ = s.MarkMilestoneAnnounced(testGuild, e.ID, 7)
	_ = s.MarkMilestoneAnnounced(testGuild, e.ID, 2)

	got, err := s.SetMilestones(testGuild, 1, []int{7, 3})
	if err != nil {
		t.Fatalf("SetMilestones: %v", err)
	}
	if len(got.AnnouncedMilestones) != 1 || got.AnnouncedMilestones[0] != 7 {
		t.Errorf("announced should shrink to members of the new set, got %v", got.AnnouncedMilestones)
	}
}

func TestRepeatValidation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddEvent(testGuild, "E", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	for _, bad := range []int{0, -3, MaxRepeatEveryDays + 1} {
		if _, err := s.SetRepeat(testGuild, 1, bad, "2026-04-01"); err == nil {
			t.Errorf("SetRepeat(%d) should be rejected", bad)
		}
	}

	if _, err := s.SetRepeat(testGuild, 1, MaxRepeatEveryDays, "2026-04-01"); err != nil {
		t.Errorf("SetRepeat(%d) should be accepted: %v", MaxRepeatEveryDays, err)
	}
}

func TestSetRepeatClearsPriorHistory(t *testing.T) {
	s := newTestStore(t)
	e, err := s.AddEvent(testGuild, "E", time.Date(2026, 12, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := s.SetRepeat(testGuild, 1, 7, "2026-01-01"); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}
	if err := s.MarkRepeatAnnounced(testGuild, e.ID, "2026-01-08"); err != nil {
		t.Fatalf("MarkRepeatAnnounced: %v", err)
	}
	if err := s.MarkRepeatAnnounced(testGuild, e.ID, "2026-01-15"); err != nil {
		t.Fatalf("MarkRepeatAnnounced: %v", err)
	}

	got, err := s.SetRepeat(testGuild, 1, 3, "2026-01-10")
	if err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}
	if got.RepeatEveryDays != 3 || got.RepeatAnchorDate != "2026-01-10" {
		t.Errorf("cadence = every %d from %s", got.RepeatEveryDays, got.RepeatAnchorDate)
	}
	if len(got.AnnouncedRepeatDates) != 0 {
		t.Errorf("reconfiguring the cadence should clear dedup history, got %v", got.AnnouncedRepeatDates)
	}
}

func TestRepeatHistoryClamp(t *testing.T) {
	s := newTestStore(t)
	e, err := s.AddEvent(testGuild, "E", time.Date(2027, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := s.SetRepeat(testGuild, 1, 1, "2026-01-01"); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}

	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxRepeatHistory+20; i++ {
		if err := s.MarkRepeatAnnounced(testGuild, e.ID, LocalDate(day, time.UTC)); err != nil {
			t.Fatalf("MarkRepeatAnnounced: %v", err)
		}
		day = day.Add(24 * time.Hour)
	}

	got := s.ListEvents(testGuild)[0]
	if len(got.AnnouncedRepeatDates) != MaxRepeatHistory {
		t.Errorf("history length = %d, want %d", len(got.AnnouncedRepeatDates), MaxRepeatHistory)
	}
	// The newest entry survives the clamp.
	last := got.AnnouncedRepeatDates[len(got.AnnouncedRepeatDates)-1]
	want := LocalDate(day.Add(-24*time.Hour), time.UTC)
	if last != want {
		t.Errorf("newest entry = %q, want %q", last, want)
	}
}

func TestArchivePast(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, _ = s.AddEvent(testGuild, "Gone", now.Add(-time.Hour))
	_, _ = s.AddEvent(testGuild, "Exactly now", now)
	_, _ = s.AddEvent(testGuild, "Future", now.Add(time.Hour))

	removed, remaining, err := s.ArchivePast(testGuild, now)
	if err != nil {
		t.Fatalf("ArchivePast: %v", err)
	}
	if removed != 2 || remaining != 1 {
		t.Errorf("removed=%d remaining=%d, want 2 and 1", removed, remaining)
	}
	if list := s.ListEvents(testGuild); len(list) != 1 || list[0].Name != "Future" {
		t.Errorf("surviving events = %v", list)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s := NewStore(path, time.UTC)
	if _, err := s.AddEvent(testGuild, "Persisted", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := s.SetTimezone(testGuild, "America/New_York"); err != nil {
		t.Fatalf("SetTimezone: %v", err)
	}
	if err := s.LinkUser(snowflake.ID(42), testGuild); err != nil {
		t.Fatalf("LinkUser: %v", err)
	}

	reloaded := NewStore(path, time.UTC)
	reloaded.Load()

	list := reloaded.ListEvents(testGuild)
	if len(list) != 1 || list[0].Name != "Persisted" {
		t.Fatalf("reloaded events = %v", list)
	}
	view, ok := reloaded.View(testGuild)
	if !ok || view.Timezone != "America/New_York" {
		t.Errorf("reloaded timezone = %q", view.Timezone)
	}
	if linked, ok := reloaded.LinkedGuild(snowflake.ID(42)); !ok || linked != testGuild {
		t.Errorf("reloaded user link = %v, %v", linked, ok)
	}
}

func TestLoadBackfillsLegacySnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	// A snapshot from before milestones were configurable: no milestone
	// fields, no IDs.
	legacy := map[string]any{
		"guilds": map[string]any{
			testGuild.String(): map[string]any{
				"events": []map[string]any{
					{"name": "Old", "timestamp": time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix()},
				},
			},
		},
	}
	raw, _ := json.Marshal(legacy)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewStore(path, time.UTC)
	s.Load()

	list := s.ListEvents(testGuild)
	if len(list) != 1 {
		t.Fatalf("got %d events, want 1", len(list))
	}
	e := list[0]
	if len(e.Milestones) != len(DefaultMilestones) {
		t.Errorf("missing milestones should backfill to defaults, got %v", e.Milestones)
	}
	if e.ID == 0 {
		t.Error("legacy event should be assigned an ID")
	}
}

func TestLoadPreservesExplicitEmptyMilestones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s := NewStore(path, time.UTC)
	if _, err := s.AddEvent(testGuild, "Quiet", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := s.ClearMilestones(testGuild, 1); err != nil {
		t.Fatalf("ClearMilestones: %v", err)
	}

	// The snapshot must carry [] rather than null, or the load-time backfill
	// would resurrect the defaults.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), `"milestones": null`) {
		t.Fatal("cleared milestones persisted as null")
	}

	reloaded := NewStore(path, time.UTC)
	reloaded.Load()

	e := reloaded.ListEvents(testGuild)[0]
	if len(e.Milestones) != 0 {
		t.Errorf("explicit empty milestone set should survive reload, got %v", e.Milestones)
	}
}

func TestLoadDegradesToEmptyOnCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewStore(path, time.UTC)
	s.Load()

	if ids := s.GuildIDs(); len(ids) != 0 {
		t.Errorf("corrupt snapshot should yield empty store, got guilds %v", ids)
	}
}

func TestSetEventChannelResetsPin(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetEventChannel(testGuild, snowflake.ID(111)); err != nil {
		t.Fatalf("SetEventChannel: %v", err)
	}
	if err := s.SetPinnedMessage(testGuild, snowflake.ID(222)); err != nil {
		t.Fatalf("SetPinnedMessage: %v", err)
	}

	if err := s.SetEventChannel(testGuild, snowflake.ID(333)); err != nil {
		t.Fatalf("SetEventChannel: %v", err)
	}
	view, _ := s.View(testGuild)
	if view.PinnedMessageID != 0 {
		t.Errorf("changing channel should drop the pinned reference, got %s", view.PinnedMessageID)
	}
}
