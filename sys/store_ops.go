package sys

import (
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// All operations in this file follow the same shape: lock, re-sort, resolve,
// mutate, persist. A failed persist fails the operation (there is no journal
// to replay), and validation failures leave the state untouched.

// eventAtLocked resolves a 1-based index against the freshly sorted list.
func (s *Store) eventAtLocked(g *GuildState, index int) (*Event, error) {
	sortEvents(g)
	if len(g.Events) == 0 {
		return nil, Validationf(ErrStoreNoEvents)
	}
	if index < 1 || index > len(g.Events) {
		return nil, Validationf(ErrStoreIndexRange, len(g.Events))
	}
	return g.Events[index-1], nil
}

func (s *Store) newEventLocked(g *GuildState, name string, instant time.Time) *Event {
	g.NextEventID++
	return &Event{
		ID:                  g.NextEventID,
		Name:                name,
		Timestamp:           instant.Unix(),
		Milestones:          append([]int(nil), DefaultMilestones...),
		AnnouncedMilestones: []int{},
	}
}

// AddEvent creates an event with the default milestone set.
func (s *Store) AddEvent(guildID snowflake.ID, name string, instant time.Time) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, Validationf(ErrStoreEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e := s.newEventLocked(g, name, instant)
	g.Events = append(g.Events, e)
	sortEvents(g)

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// RemoveEvent deletes the event at the given sorted index.
func (s *Store) RemoveEvent(guildID snowflake.ID, index int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}
	removed := e.clone()
	g.Events = append(g.Events[:index-1], g.Events[index:]...)

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return removed, nil
}

// EditEvent updates name and/or instant. Moving the instant clears the
// announced-milestone history so alerts can re-fire for the new date.
func (s *Store) EditEvent(guildID snowflake.ID, index int, name string, instant *time.Time) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		e.Name = name
	}
	if instant != nil && instant.Unix() != e.Timestamp {
		e.Timestamp = instant.Unix()
		e.AnnouncedMilestones = []int{}
	}
	sortEvents(g)

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// MoveEvent reschedules an event to a new instant, resetting milestone dedup.
func (s *Store) MoveEvent(guildID snowflake.ID, index int, instant time.Time) (Event, error) {
	return s.EditEvent(guildID, index, "", &instant)
}

// DuplicateEvent copies an event's milestone configuration under a new name
// and instant. The copy starts with clean announcement history and disabled
// repeats.
func (s *Store) DuplicateEvent(guildID snowflake.ID, index int, name string, instant time.Time) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, Validationf(ErrStoreEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	src, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	dup := s.newEventLocked(g, name, instant)
	dup.Milestones = append([]int(nil), src.Milestones...)
	dup.Silenced = src.Silenced
	g.Events = append(g.Events, dup)
	sortEvents(g)

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return dup.clone(), nil
}

// SetMilestones replaces an event's milestone set, pruning announced entries
// that are no longer members.
func (s *Store) SetMilestones(guildID snowflake.ID, index int, milestones []int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	// Clone without collapsing an explicit empty set to nil: only a missing
	// (nil) milestone list is backfilled to defaults on load, so a cleared
	// set must round-trip as [].
	e.Milestones = append(make([]int, 0, len(milestones)), milestones...)
	e.AnnouncedMilestones = intersect(e.AnnouncedMilestones, e.Milestones)

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// ResetMilestones restores the default milestone list and clears history.
func (s *Store) ResetMilestones(guildID snowflake.ID, index int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	e.Milestones = append([]int(nil), DefaultMilestones...)
	e.AnnouncedMilestones = []int{}

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// ClearMilestones empties the milestone set so no milestone alert ever fires.
// The explicit empty set survives reloads; only a missing set is backfilled.
func (s *Store) ClearMilestones(guildID snowflake.ID, index int) (Event, error) {
	return s.SetMilestones(guildID, index, []int{})
}

// SetRepeat enables repeating reminders every N days counted from the anchor
// date, resetting prior dedup history.
func (s *Store) SetRepeat(guildID snowflake.ID, index int, everyDays int, anchorDate string) (Event, error) {
	if everyDays < 1 || everyDays > MaxRepeatEveryDays {
		return Event{}, Validationf(ErrStoreBadRepeat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	e.RepeatEveryDays = everyDays
	e.RepeatAnchorDate = anchorDate
	e.AnnouncedRepeatDates = nil

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// ClearRepeat disables repeating reminders and drops the schedule state.
func (s *Store) ClearRepeat(guildID snowflake.ID, index int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	e.RepeatEveryDays = 0
	e.RepeatAnchorDate = ""
	e.AnnouncedRepeatDates = nil

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// SetSilenced toggles alert suppression; the event stays listed either way.
func (s *Store) SetSilenced(guildID snowflake.ID, index int, silenced bool) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	e.Silenced = silenced

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// SetOwner records the responsible user. Storage only; the core never
// messages owners directly.
func (s *Store) SetOwner(guildID snowflake.ID, index int, userID snowflake.ID) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e, err := s.eventAtLocked(g, index)
	if err != nil {
		return Event{}, err
	}

	e.OwnerID = userID

	if err := s.saveLocked(); err != nil {
		return Event{}, err
	}
	return e.clone(), nil
}

// ArchivePast removes every event whose instant is at or before now.
func (s *Store) ArchivePast(guildID snowflake.ID, now time.Time) (removed, remaining int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	kept := g.Events[:0]
	for _, e := range g.Events {
		if _, _, passed := ComputeTimeLeft(e.Instant(), now); passed {
			removed++
		} else {
			kept = append(kept, e)
		}
	}
	g.Events = kept
	sortEvents(g)

	if err := s.saveLocked(); err != nil {
		return 0, 0, err
	}
	return removed, len(g.Events), nil
}

// PurgeEvents deletes every event for the guild.
func (s *Store) PurgeEvents(guildID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.Events = []*Event{}
	return s.saveLocked()
}

// SearchEvents returns sorted-index matches for a case-insensitive name
// substring.
func (s *Store) SearchEvents(guildID snowflake.ID, query string) []IndexedEvent {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	sortEvents(g)

	var matches []IndexedEvent
	for i, e := range g.Events {
		if strings.Contains(strings.ToLower(e.Name), query) {
			matches = append(matches, IndexedEvent{Index: i + 1, Event: e.clone()})
		}
	}
	return matches
}

// ListEvents returns sorted copies of every event.
func (s *Store) ListEvents(guildID snowflake.ID) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	sortEvents(g)

	out := make([]Event, 0, len(g.Events))
	for _, e := range g.Events {
		out = append(out, e.clone())
	}
	return out
}

// SetEventChannel designates the summary/alert channel. The pinned reference
// is dropped so the next rebuild starts clean.
func (s *Store) SetEventChannel(guildID, channelID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.EventChannelID = channelID
	g.PinnedMessageID = 0
	return s.saveLocked()
}

func (s *Store) ClearEventChannel(guildID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.EventChannelID = 0
	g.PinnedMessageID = 0
	return s.saveLocked()
}

// SetTimezone sets the guild's IANA zone after validating it loads.
func (s *Store) SetTimezone(guildID snowflake.ID, tzName string) error {
	tzName = strings.TrimSpace(tzName)
	if _, err := time.LoadLocation(tzName); err != nil || tzName == "" {
		return Validationf(ErrStoreBadTimezone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.Timezone = tzName
	return s.saveLocked()
}

func (s *Store) SetMentionRole(guildID, roleID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.MentionRoleID = roleID
	return s.saveLocked()
}

func (s *Store) ClearMentionRole(guildID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.MentionRoleID = 0
	return s.saveLocked()
}

func (s *Store) SetWelcomed(guildID snowflake.ID, welcomed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.Welcomed = welcomed
	return s.saveLocked()
}

// SetPinnedMessage records the current summary message reference.
func (s *Store) SetPinnedMessage(guildID, messageID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	g.PinnedMessageID = messageID
	return s.saveLocked()
}

// LinkUser maps a user to the guild their DM commands should target. Last
// write wins.
func (s *Store) LinkUser(userID, guildID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userLinks[userID.String()] = guildID
	return s.saveLocked()
}

// LinkedGuild resolves a user's DM target guild.
func (s *Store) LinkedGuild(userID snowflake.ID) (snowflake.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userLinks[userID.String()]
	return id, ok
}

// MarkMilestoneAnnounced records that a day-offset fired for an event. The
// record is keyed by event ID, not index, so it survives edits made while a
// sweep is in flight. Recording happens whether or not delivery succeeded:
// at-most-once is the contract.
func (s *Store) MarkMilestoneAnnounced(guildID snowflake.ID, eventID int64, daysLeft int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e := findEvent(g, eventID)
	if e == nil {
		return NotFoundf("event %d no longer exists", eventID)
	}
	if !slices.Contains(e.AnnouncedMilestones, daysLeft) {
		e.AnnouncedMilestones = append(e.AnnouncedMilestones, daysLeft)
	}
	return s.saveLocked()
}

// MarkRepeatAnnounced records today's repeat reminder, keeping only the most
// recent entries.
func (s *Store) MarkRepeatAnnounced(guildID snowflake.ID, eventID int64, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guildLocked(guildID)
	e := findEvent(g, eventID)
	if e == nil {
		return NotFoundf("event %d no longer exists", eventID)
	}
	if !slices.Contains(e.AnnouncedRepeatDates, date) {
		e.AnnouncedRepeatDates = append(e.AnnouncedRepeatDates, date)
	}
	if len(e.AnnouncedRepeatDates) > MaxRepeatHistory {
		e.AnnouncedRepeatDates = e.AnnouncedRepeatDates[len(e.AnnouncedRepeatDates)-MaxRepeatHistory:]
	}
	return s.saveLocked()
}

func findEvent(g *GuildState, eventID int64) *Event {
	for _, e := range g.Events {
		if e.ID == eventID {
			return e
		}
	}
	return nil
}
