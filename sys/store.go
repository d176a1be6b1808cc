package sys

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Event is one tracked future event inside a guild.
type Event struct {
	// ID is a per-guild generated identity. User-facing commands address
	// events by 1-based sorted index; the ID is what the sweep uses so a
	// dedup record never lands on the wrong event after a concurrent edit.
	ID                   int64        `json:"id,omitempty"`
	Name                 string       `json:"name"`
	Timestamp            int64        `json:"timestamp"`
	Milestones           []int        `json:"milestones"`
	AnnouncedMilestones  []int        `json:"announced_milestones"`
	RepeatEveryDays      int          `json:"repeat_every_days,omitempty"`
	RepeatAnchorDate     string       `json:"repeat_anchor_date,omitempty"`
	AnnouncedRepeatDates []string     `json:"announced_repeat_dates,omitempty"`
	Silenced             bool         `json:"silenced,omitempty"`
	OwnerID              snowflake.ID `json:"owner_id,omitempty"`
}

// Instant returns the event's absolute point in time.
func (e *Event) Instant() time.Time {
	return time.Unix(e.Timestamp, 0)
}

func (e *Event) clone() Event {
	c := *e
	c.Milestones = append([]int(nil), e.Milestones...)
	c.AnnouncedMilestones = append([]int(nil), e.AnnouncedMilestones...)
	c.AnnouncedRepeatDates = append([]string(nil), e.AnnouncedRepeatDates...)
	return c
}

// GuildState is everything Chromie knows about one guild.
type GuildState struct {
	EventChannelID  snowflake.ID `json:"event_channel_id,omitempty"`
	PinnedMessageID snowflake.ID `json:"pinned_message_id,omitempty"`
	Timezone        string       `json:"timezone,omitempty"`
	MentionRoleID   snowflake.ID `json:"mention_role_id,omitempty"`
	Welcomed        bool         `json:"welcomed"`
	Events          []*Event     `json:"events"`
	NextEventID     int64        `json:"next_event_id,omitempty"`
}

// GuildView is a detached copy handed out to readers. Mutating it has no
// effect on the store.
type GuildView struct {
	GuildID         snowflake.ID
	EventChannelID  snowflake.ID
	PinnedMessageID snowflake.ID
	Timezone        string
	MentionRoleID   snowflake.ID
	Welcomed        bool
	Events          []Event
}

// IndexedEvent pairs an event copy with its current 1-based sorted position.
type IndexedEvent struct {
	Index int
	Event Event
}

type snapshot struct {
	Guilds    map[string]*GuildState  `json:"guilds"`
	UserLinks map[string]snowflake.ID `json:"user_links"`
}

// Store is the single authoritative mapping from guild id to GuildState plus
// the user-link map, backed by a whole-file JSON snapshot. Command handlers
// run on goroutines, so every operation takes the mutex for its full
// read-mutate-persist span.
type Store struct {
	mu        sync.Mutex
	path      string
	defaultTZ *time.Location
	guilds    map[string]*GuildState
	userLinks map[string]snowflake.ID
}

// GlobalStore is the process-wide handle set once at startup. The sweep and
// onboarding daemons receive the store explicitly; init-registered command
// handlers reach it through here.
var GlobalStore *Store

func SetGlobalStore(s *Store) {
	GlobalStore = s
}

func NewStore(path string, defaultTZ *time.Location) *Store {
	if defaultTZ == nil {
		defaultTZ = time.UTC
	}
	return &Store{
		path:      path,
		defaultTZ: defaultTZ,
		guilds:    map[string]*GuildState{},
		userLinks: map[string]snowflake.ID{},
	}
}

// Load reads the snapshot from disk. A missing or unreadable snapshot is not
// fatal: the store starts empty. Loaded guilds are normalized (re-sorted,
// schema-backfilled) and the normalized form is written back, matching the
// original's load-sort-save startup.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			LogStore(MsgStoreFresh, s.path)
		} else {
			LogStore(MsgStoreLoadFail, s.path, err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		LogStore(MsgStoreLoadFail, s.path, err)
		return
	}

	if snap.Guilds != nil {
		s.guilds = snap.Guilds
	}
	if snap.UserLinks != nil {
		s.userLinks = snap.UserLinks
	}

	backfilled := 0
	for _, g := range s.guilds {
		backfilled += normalizeGuild(g)
	}
	if backfilled > 0 {
		LogStore(MsgStoreBackfilled, backfilled)
	}

	LogStore(MsgStoreLoaded, len(s.guilds), len(s.userLinks), s.path)
	if err := s.saveLocked(); err != nil {
		LogStore(MsgStoreSaveFail, err)
	}
}

// Save flushes the whole state. Used for the best-effort final save on
// shutdown; mutating operations persist through saveLocked themselves.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	snap := snapshot{Guilds: s.guilds, UserLinks: s.userLinks}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		LogStore(MsgStoreSaveFail, err)
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		LogStore(MsgStoreSaveFail, err)
		return err
	}
	return nil
}

// normalizeGuild re-establishes every invariant a snapshot cannot be trusted
// to carry: ascending sort, default milestone sets for events saved before
// milestones were configurable, announced ⊆ milestones, bounded repeat
// history, assigned event IDs. Returns how many events needed backfill.
func normalizeGuild(g *GuildState) int {
	if g.Events == nil {
		g.Events = []*Event{}
	}

	touched := 0
	maxID := g.NextEventID
	for _, e := range g.Events {
		if e.ID > maxID {
			maxID = e.ID
		}
	}

	for _, e := range g.Events {
		changed := false

		if e.ID == 0 {
			maxID++
			e.ID = maxID
			changed = true
		}
		if e.Milestones == nil {
			e.Milestones = append([]int(nil), DefaultMilestones...)
			changed = true
		}
		if e.AnnouncedMilestones == nil {
			e.AnnouncedMilestones = []int{}
			changed = true
		}
		e.AnnouncedMilestones = intersect(e.AnnouncedMilestones, e.Milestones)

		if e.RepeatEveryDays < 0 || e.RepeatEveryDays > MaxRepeatEveryDays {
			e.RepeatEveryDays = 0
			changed = true
		}
		if e.RepeatEveryDays == 0 && (e.RepeatAnchorDate != "" || len(e.AnnouncedRepeatDates) > 0) {
			e.RepeatAnchorDate = ""
			e.AnnouncedRepeatDates = nil
			changed = true
		}
		if e.RepeatEveryDays > 0 && e.RepeatAnchorDate == "" {
			// Repeats without an anchor cannot be scheduled.
			e.RepeatEveryDays = 0
			e.AnnouncedRepeatDates = nil
			changed = true
		}
		if len(e.AnnouncedRepeatDates) > MaxRepeatHistory {
			e.AnnouncedRepeatDates = e.AnnouncedRepeatDates[len(e.AnnouncedRepeatDates)-MaxRepeatHistory:]
			changed = true
		}

		if changed {
			touched++
		}
	}

	g.NextEventID = maxID
	sortEvents(g)
	return touched
}

// intersect keeps the members of a that are also in b, preserving a's order.
func intersect(a, b []int) []int {
	out := a[:0]
	for _, v := range a {
		for _, w := range b {
			if v == w {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// sortEvents re-establishes the soonest-first order. Stable, so events on the
// same instant keep their insertion order.
func sortEvents(g *GuildState) {
	sort.SliceStable(g.Events, func(i, j int) bool {
		return g.Events[i].Timestamp < g.Events[j].Timestamp
	})
}

func guildKey(id snowflake.ID) string {
	return id.String()
}

// guildLocked lazily creates the guild record on first reference.
func (s *Store) guildLocked(id snowflake.ID) *GuildState {
	key := guildKey(id)
	g, ok := s.guilds[key]
	if !ok {
		g = &GuildState{Events: []*Event{}}
		s.guilds[key] = g
	}
	return g
}

// GuildIDs returns every known guild id, for the sweep to iterate.
func (s *Store) GuildIDs() []snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]snowflake.ID, 0, len(s.guilds))
	for key := range s.guilds {
		if id, err := snowflake.Parse(key); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// View returns a detached, freshly sorted copy of the guild state.
func (s *Store) View(guildID snowflake.ID) (GuildView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildKey(guildID)]
	if !ok {
		return GuildView{}, false
	}
	sortEvents(g)

	view := GuildView{
		GuildID:         guildID,
		EventChannelID:  g.EventChannelID,
		PinnedMessageID: g.PinnedMessageID,
		Timezone:        g.Timezone,
		MentionRoleID:   g.MentionRoleID,
		Welcomed:        g.Welcomed,
		Events:          make([]Event, 0, len(g.Events)),
	}
	for _, e := range g.Events {
		view.Events = append(view.Events, e.clone())
	}
	return view, true
}

// Location resolves a guild's zone name, falling back to the process default
// when absent or invalid.
func (s *Store) Location(tzName string) *time.Location {
	if tzName == "" {
		return s.defaultTZ
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return s.defaultTZ
	}
	return loc
}
