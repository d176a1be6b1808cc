package proc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/sys"
)

const (
	testGuild   = snowflake.ID(123456789012345678)
	testChannel = snowflake.ID(987654321098765432)
)

type sentMessage struct {
	channelID snowflake.ID
	content   string
}

// fakeNotifier records deliveries and can be told to fail them.
type fakeNotifier struct {
	sent    []sentMessage
	edits   []sentMessage
	pins    []snowflake.ID
	unpins  []snowflake.ID
	nextID  snowflake.ID
	sendErr error
	editErr error
	pinErr  error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID, content})
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) EditMessage(ctx context.Context, channelID, messageID snowflake.ID, content string) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, sentMessage{channelID, content})
	return nil
}

func (f *fakeNotifier) PinMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pins = append(f.pins, messageID)
	return nil
}

func (f *fakeNotifier) UnpinMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	f.unpins = append(f.unpins, messageID)
	return nil
}

// alerts returns the non-summary messages, i.e. everything that is not the
// pinned board content.
func (f *fakeNotifier) alerts() []sentMessage {
	var out []sentMessage
	for _, m := range f.sent {
		if !strings.Contains(m.content, sys.MsgSummaryTitle) {
			out = append(out, m)
		}
	}
	return out
}

func newSweepStore(t *testing.T) *sys.Store {
	t.Helper()
	s := sys.NewStore(filepath.Join(t.TempDir(), "state.json"), time.UTC)
	if err := s.SetEventChannel(testGuild, testChannel); err != nil {
		t.Fatalf("SetEventChannel: %v", err)
	}
	return s
}

func TestSweepFiresMilestoneAtMostOnce(t *testing.T) {
	store := newSweepStore(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	// Both ticks see the event 7 whole days out; 7 is in the default
	// milestone set.
	if _, err := store.AddEvent(testGuild, "Launch", now.Add(7*24*time.Hour+2*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	n := &fakeNotifier{}
	ctx := context.Background()

	SweepGuild(ctx, store, n, testGuild, now)
	SweepGuild(ctx, store, n, testGuild, now.Add(time.Hour))

	alerts := n.alerts()
	if len(alerts) != 1 {
		t.Fatalf("got %d milestone alerts, want 1: %v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[0].content, "7 days") {
		t.Errorf("alert content = %q", alerts[0].content)
	}
}

func TestSweepMilestoneSequenceOverDays(t *testing.T) {
	store := newSweepStore(t)
	start := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	eventAt := start.Add(7 * 24 * time.Hour)

	if _, err := store.AddEvent(testGuild, "Launch", eventAt); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	n := &fakeNotifier{}
	ctx := context.Background()

	// Ticks at 7, 7, 6, 1, 0, 0 whole days out. 6 is not a default
	// milestone; 7, 1, 0 each fire exactly once.
	ticks := []time.Time{
		eventAt.Add(-7*24*time.Hour - time.Hour),
		eventAt.Add(-7 * 24 * time.Hour),
		eventAt.Add(-6 * 24 * time.Hour),
		eventAt.Add(-30 * time.Hour),
		eventAt.Add(-time.Hour),
		eventAt.Add(-time.Minute),
	}
	for _, tick := range ticks {
		SweepGuild(ctx, store, n, testGuild, tick)
	}

	alerts := n.alerts()
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3: %v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[0].content, "7 days") {
		t.Errorf("first alert = %q", alerts[0].content)
	}
	if !strings.Contains(alerts[1].content, "tomorrow") {
		t.Errorf("second alert = %q", alerts[1].content)
	}
	if !strings.Contains(alerts[2].content, "today") {
		t.Errorf("third alert = %q", alerts[2].content)
	}
}

func TestSweepRecordsDedupEvenWhenDeliveryFails(t *testing.T) {
	store := newSweepStore(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.AddEvent(testGuild, "Launch", now.Add(7*24*time.Hour+2*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	n := &fakeNotifier{sendErr: errors.New("channel unavailable")}
	ctx := context.Background()

	SweepGuild(ctx, store, n, testGuild, now)

	// Delivery recovers and the next tick still sees 7 whole days left, but
	// the milestone was already recorded.
	n.sendErr = nil
	SweepGuild(ctx, store, n, testGuild, now.Add(time.Hour))

	if alerts := n.alerts(); len(alerts) != 0 {
		t.Errorf("failed delivery must not retry, got %v", alerts)
	}
}

func TestSweepRepeatCadence(t *testing.T) {
	store := newSweepStore(t)
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eventAt := time.Date(2026, 12, 25, 18, 0, 0, 0, time.UTC)

	if _, err := store.AddEvent(testGuild, "Holiday", eventAt); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	// No milestone collisions: repeats are the only alert source here.
	if _, err := store.ClearMilestones(testGuild, 1); err != nil {
		t.Fatalf("ClearMilestones: %v", err)
	}
	if _, err := store.SetRepeat(testGuild, 1, 7, sys.LocalDate(anchor, time.UTC)); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}

	n := &fakeNotifier{}
	ctx := context.Background()

	// Two ticks on day 7 (dedup), one on day 8 (off-cadence), one on day 14.
	SweepGuild(ctx, store, n, testGuild, anchor.Add(7*24*time.Hour))
	SweepGuild(ctx, store, n, testGuild, anchor.Add(7*24*time.Hour+6*time.Hour))
	SweepGuild(ctx, store, n, testGuild, anchor.Add(8*24*time.Hour))
	SweepGuild(ctx, store, n, testGuild, anchor.Add(14*24*time.Hour))

	alerts := n.alerts()
	if len(alerts) != 2 {
		t.Fatalf("got %d repeat reminders, want 2: %v", len(alerts), alerts)
	}
	for _, a := range alerts {
		if !strings.Contains(a.content, "Holiday") {
			t.Errorf("reminder content = %q", a.content)
		}
	}
}

func TestSweepMilestoneWinsOverRepeatSameTick(t *testing.T) {
	store := newSweepStore(t)
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// 7 days after the anchor and 7 days before the event: both due at once.
	now := anchor.Add(7 * 24 * time.Hour)
	eventAt := now.Add(7 * 24 * time.Hour)

	if _, err := store.AddEvent(testGuild, "Clash", eventAt); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := store.SetRepeat(testGuild, 1, 7, sys.LocalDate(anchor, time.UTC)); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}

	n := &fakeNotifier{}
	SweepGuild(context.Background(), store, n, testGuild, now)

	alerts := n.alerts()
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts in one tick, want 1: %v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[0].content, "7 days") {
		t.Errorf("the milestone should win the collision, got %q", alerts[0].content)
	}

	// A later tick the same day sees the milestone already announced; the
	// suppressed repeat must not fire either, so the day stays at one
	// notification total.
	SweepGuild(context.Background(), store, n, testGuild, now.Add(time.Minute))
	SweepGuild(context.Background(), store, n, testGuild, now.Add(6*time.Hour))

	if alerts := n.alerts(); len(alerts) != 1 {
		t.Fatalf("got %d alerts for the day, want 1: %v", len(alerts), alerts)
	}
}

func TestSweepRepeatRefiresAfterAnchorReset(t *testing.T) {
	store := newSweepStore(t)
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eventAt := time.Date(2026, 12, 25, 18, 0, 0, 0, time.UTC)

	if _, err := store.AddEvent(testGuild, "Standup", eventAt); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := store.ClearMilestones(testGuild, 1); err != nil {
		t.Fatalf("ClearMilestones: %v", err)
	}
	if _, err := store.SetRepeat(testGuild, 1, 7, sys.LocalDate(anchor, time.UTC)); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}

	n := &fakeNotifier{}
	ctx := context.Background()
	day7 := anchor.Add(7 * 24 * time.Hour)

	SweepGuild(ctx, store, n, testGuild, day7)
	if alerts := n.alerts(); len(alerts) != 1 {
		t.Fatalf("got %d reminders before reset, want 1: %v", len(alerts), alerts)
	}

	// Reconfiguring the cadence clears the dedup history, so the same day
	// is due again under the new interval.
	if _, err := store.SetRepeat(testGuild, 1, 1, sys.LocalDate(anchor, time.UTC)); err != nil {
		t.Fatalf("SetRepeat: %v", err)
	}

	SweepGuild(ctx, store, n, testGuild, day7.Add(time.Hour))
	if alerts := n.alerts(); len(alerts) != 2 {
		t.Fatalf("got %d reminders after reset, want 2: %v", len(alerts), alerts)
	}
}

func TestSweepSkipsSilencedAndPassed(t *testing.T) {
	store := newSweepStore(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.AddEvent(testGuild, "Done", now.Add(-time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := store.AddEvent(testGuild, "Muted", now.Add(7*24*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := store.SetSilenced(testGuild, 2, true); err != nil {
		t.Fatalf("SetSilenced: %v", err)
	}

	n := &fakeNotifier{}
	SweepGuild(context.Background(), store, n, testGuild, now)

	if alerts := n.alerts(); len(alerts) != 0 {
		t.Errorf("passed and silenced events must not alert, got %v", alerts)
	}
}

func TestSweepMentionsRoleOnMilestones(t *testing.T) {
	store := newSweepStore(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	roleID := snowflake.ID(555)

	if err := store.SetMentionRole(testGuild, roleID); err != nil {
		t.Fatalf("SetMentionRole: %v", err)
	}
	if _, err := store.AddEvent(testGuild, "Launch", now.Add(7*24*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	n := &fakeNotifier{}
	SweepGuild(context.Background(), store, n, testGuild, now)

	alerts := n.alerts()
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if !strings.HasPrefix(alerts[0].content, "<@&555>") {
		t.Errorf("milestone alert should lead with the role mention, got %q", alerts[0].content)
	}
}

func TestSweepIgnoresGuildsWithoutChannel(t *testing.T) {
	store := sys.NewStore(filepath.Join(t.TempDir(), "state.json"), time.UTC)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.AddEvent(testGuild, "Launch", now.Add(7*24*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	n := &fakeNotifier{}
	RunSweep(context.Background(), store, n, now)

	if len(n.sent) != 0 || len(n.edits) != 0 {
		t.Errorf("guild without a channel must stay quiet, sent %v", n.sent)
	}
}
