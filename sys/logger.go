package sys

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	// Style definitions
	infoColor     = color.New(color.FgHiBlack)
	warnColor     = color.New(color.FgHiYellow)
	errorColor    = color.New(color.FgHiRed)
	fatalColor    = color.New(color.FgHiRed, color.Bold)
	databaseColor = color.New(color.FgHiBlack)
	storeColor    = color.New(color.FgHiBlack)
	sweepColor    = color.New(color.FgHiMagenta)
	summaryColor  = color.New(color.FgHiMagenta)
	onboardColor  = color.New(color.FgHiMagenta)

	IsSilent  = false
	LogToFile = false

	// Global default logger
	Logger *slog.Logger

	// Log file handling
	logFile *os.File
	logMu   sync.Mutex
)

func init() {
	// Initialize with a default handler immediately (Stdout only)
	InitLogger(false, false)
}

// InitLogger initializes the global structured logger
func InitLogger(silent bool, saveToFile bool) {
	logMu.Lock()
	defer logMu.Unlock()

	IsSilent = silent
	LogToFile = saveToFile
	level := slog.LevelInfo
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		level = slog.LevelDebug
	}

	// Clean up previous file if it exists (e.g. during reload)
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writer io.Writer = os.Stdout
	var err error

	if LogToFile {
		exePath, exeErr := os.Executable()
		logName := "chromie.log" // Fallback
		if exeErr == nil {
			logName = filepath.Base(exePath) + ".log"
		}

		logFile, err = os.OpenFile(logName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", logName, err)
		} else {
			writer = io.MultiWriter(os.Stdout, logFile)
		}
	}

	// Force colors to be enabled even if writing to a file/pipe avoids detection
	color.NoColor = false

	handler := NewBotLogHandler(writer, &BotLogHandlerOptions{
		Silent: IsSilent,
		Level:  level,
	})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func SetSilentMode(silent bool) {
	InitLogger(silent, LogToFile)
}

// --- Log Functions ---

func LogInfo(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func LogFatal(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	slog.Log(context.Background(), slog.LevelError+4, msg) // Custom Fatal level
	os.Exit(1)
}

func LogDatabase(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "database"))
}

func LogStore(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "store"))
}

func LogSweep(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "sweep"))
}

func LogSummary(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "summary"))
}

func LogOnboard(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "onboard"))
}

func LogDebug(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// --- Custom Slog Handler ---

type BotLogHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type BotLogHandler struct {
	w    io.Writer
	opts *BotLogHandlerOptions
	mu   *sync.Mutex
}

func NewBotLogHandler(w io.Writer, opts *BotLogHandlerOptions) *BotLogHandler {
	if opts == nil {
		opts = &BotLogHandlerOptions{Level: slog.LevelInfo}
	}
	return &BotLogHandler{
		w:    w,
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *BotLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *BotLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Silent {
		return nil
	}

	timeStr := time.Now().Format("15:04:05")
	var levelStr string
	var levelColor *color.Color

	switch {
	case r.Level >= slog.LevelError+4: // Fatal
		levelStr = "FATAL"
		levelColor = fatalColor
	case r.Level >= slog.LevelError:
		levelStr = "ERROR"
		levelColor = errorColor
	case r.Level >= slog.LevelWarn:
		levelStr = "WARN"
		levelColor = warnColor
	case r.Level >= slog.LevelInfo:
		levelStr = "INFO"
		levelColor = infoColor
	}

	// Extract component if present
	component := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return false
		}
		return true
	})

	// Output: 15:04:05 [INFO] [COMPONENT] Message
	// Timestamp is always printed in default color.
	fmt.Fprintf(h.w, "%s", timeStr)

	if component != "" {
		// Component-specific logs: Level tag (if not INFO) is isolated, Message bleeds component color
		if levelStr != "INFO" {
			fmt.Fprintf(h.w, " %s", levelColor.Sprintf("[%s]", levelStr))
		}
		compColor := getComponentColor(component)
		fmt.Fprintf(h.w, " %s\n", compColor.Sprintf("[%s] %s", component, r.Message))
	} else {
		// General logs: Level tag color bleeds into the message
		fmt.Fprintf(h.w, " %s\n", levelColor.Sprintf("[%s] %s", levelStr, r.Message))
	}

	return nil
}

func (h *BotLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *BotLogHandler) WithGroup(name string) slog.Handler       { return h }

func getComponentColor(name string) *color.Color {
	switch name {
	case "DATABASE":
		return databaseColor
	case "STORE":
		return storeColor
	case "SWEEP":
		return sweepColor
	case "SUMMARY":
		return summaryColor
	case "ONBOARD":
		return onboardColor
	default:
		return color.New(color.FgCyan)
	}
}

// @sys
const (
	// Configuration
	MsgConfigFailedToLoad = "Failed to load config: %v"
	MsgConfigMissingToken = "DISCORD_TOKEN is not set in .env file"
	MsgConfigBadTimezone  = "DEFAULT_TIMEZONE %q is not a valid IANA zone name"

	// Data layer
	MsgDatabaseInitSuccess = "Database initialized successfully"
	MsgDatabaseTableError  = "Failed to create table: %w"
	MsgDatabasePragmaError = "Failed to set pragma %s: %w"

	// Command Registry
	MsgLoaderSyncCommands    = "Syncing commands (%s mode)..."
	MsgLoaderUpToDate        = "Commands are up to date. (Hash: %s)"
	MsgLoaderProdStarting    = "Registering commands globally..."
	MsgLoaderProdFail        = "failed to register global commands: %w"
	MsgLoaderProdRegistered  = "Registered global command: %s"
	MsgLoaderDevStarting     = "Registering commands to guild: %s"
	MsgLoaderDevFail         = "Failed to register guild commands: %v"
	MsgLoaderDevRegistered   = "Registered guild command: %s"
	MsgLoaderDevGlobalClear  = "Clearing global commands..."
	MsgLoaderGlobalClearFail = "Failed to clear global commands: %v"
	MsgGenericError          = "%v"
	MsgDaemonStarting        = "Starting..."
	MsgLoaderPanicRecovered  = "Panic recovered in handler: %v"

	// Bot Lifecycle
	MsgBotStarting      = "Starting %s..."
	MsgBotReady         = "%s is ready! (ID: %s) (PID: %d) (%dms)"
	MsgBotShutdown      = "Shutting down %s..."
	MsgBotKillingOld    = "Killing running instance... (PID: %d)"
	MsgBotOldTerminated = "Old instance terminated."
	MsgBotRegisterFail  = "Command registration failed: %v"
)

// @store
const (
	MsgStoreLoaded        = "Loaded %d guild(s) and %d user link(s) from %s"
	MsgStoreFresh         = "No snapshot at %s, starting with an empty store"
	MsgStoreLoadFail      = "Snapshot at %s is unreadable (%v), starting with an empty store"
	MsgStoreSaveFail      = "Failed to persist snapshot: %v"
	MsgStoreBackfilled    = "Backfilled %d event(s) with missing schema fields"
	ErrStoreNoEvents      = "There are no events for this server yet."
	ErrStoreIndexRange    = "Index must be between 1 and %d."
	ErrStoreEmptyName     = "The event name must not be empty."
	ErrStoreBadMilestones = "I couldn't parse that. Use a comma-separated list of non-negative integers, e.g. `90,60,30,7,1,0`."
	ErrStoreBadRepeat     = "The repeat interval must be between 1 and 365 days."
	ErrStoreBadDate       = "I couldn't understand that date/time. Use `MM/DD/YYYY` and 24-hour `HH:MM`."
	ErrStoreBadTimezone   = "I couldn't recognize that timezone. Use an IANA name like `America/Chicago` or `America/New_York`."
	ErrStoreNoLink        = "I don't know which server to use for your DMs yet. In the server you want to control, run `/linkserver` first."
)

// @sweep
const (
	MsgSweepMilestoneSent  = "Guild %s: milestone %d fired for %q"
	MsgSweepRepeatSent     = "Guild %s: repeat reminder fired for %q (%s)"
	MsgSweepSendFail       = "Guild %s: failed to deliver notification for %q: %v"
	MsgSweepRecordFail     = "Guild %s: failed to record announcement for %q: %v"
	MsgSweepStopped        = "Sweep stopped."
	MsgEventAlreadyStarted = "The event is happening now or has already started! 💕"
)

// @summary
const (
	MsgSummaryUnpinFail   = "Guild %s: failed to unpin old summary %s: %v"
	MsgSummarySendFail    = "Guild %s: failed to send summary: %v"
	MsgSummaryPinFail     = "Guild %s: missing permission or failed to pin summary: %v"
	MsgSummaryEditFail    = "Guild %s: failed to edit pinned summary: %v"
	MsgSummaryRecordFail  = "Guild %s: failed to record pinned summary: %v"
	MsgSummaryTitle       = "# ⏳ Upcoming Event Countdowns"
	MsgSummarySubtitle    = "Live countdowns for this server's events."
	MsgSummaryNoEvents    = "**No events yet** — use `/event add` to add one."
	MsgSummaryAllPassed   = "All listed events have already started or passed."
	MsgSummaryEventPassed = "➡️ Event has started or passed. 🎉"
)

// @onboard
const (
	MsgOnboardDMFail       = "Guild %s: could not DM the owner: %v"
	MsgOnboardFallbackFail = "Guild %s: could not reach a fallback channel: %v"
	MsgOnboardWelcomed     = "Guild %s: onboarding message delivered"
)

// @commands (user-facing)
const (
	ErrCmdNoChannel     = "No events channel set yet. Run `/settings channel set` in your events channel."
	ErrCmdChannelGone   = "Configured events channel is missing. Run `/settings channel set` again."
	ErrCmdGuildOnly     = "This command only works inside a server."
	ErrCmdLinkGone      = "I can't find the linked server anymore. Re-add me and run `/linkserver` again."
	ErrCmdSaveFailed    = "Something went wrong while saving. Please try again."
	ErrCmdNotConfirmed  = "Not confirmed. Type `YES` to purge all events."
	MsgCmdNoMatches     = "No matching events found."
	MsgCmdNoUpcoming    = "All events have already started/passed. Use `/event archive` to clean up."
	MsgCmdNoEventsYet   = "No events yet. Add one with `/event add`."
	MsgCmdSummarySent   = "⏱ Countdown refreshed."
	MsgCmdTestSent      = "✅ Test reminder sent to the events channel."
	MsgCmdSetupResent   = "📨 Setup instructions have been resent to the server owner (or a fallback channel)."
	MsgCmdLinked        = "🔗 Linked your user to this server. You can now DM me `/event add` and I'll add events here."
	MsgCmdChannelSet    = "✅ This channel is now the event countdown channel for this server."
	MsgCmdChannelClear  = "✅ Events channel cleared. Run `/settings channel set` in the channel you want to use."
	MsgCmdTimezoneSet   = "✅ Timezone set to **%s**."
	MsgCmdRoleSet       = "✅ I will mention <@&%s> on milestone reminders."
	MsgCmdRoleCleared   = "✅ Mention role cleared. Milestones will no longer ping a role."
	MsgCmdPurged        = "🧨 All events have been deleted for this server."
	MsgCmdArchived      = "🧹 Archived %d past event(s). %d event(s) remain."
	MsgCmdRemoved       = "🗑 Removed event **%s**."
	MsgCmdAdded         = "✅ Added event **%s** on %s."
	MsgCmdEdited        = "✅ Updated event #%d: **%s** on %s."
	MsgCmdMoved         = "✅ Moved event **%s** to %s."
	MsgCmdDuplicated    = "✅ Duplicated **%s** as **%s** on %s."
	MsgCmdMilestonesSet = "✅ Milestones updated for **%s**: %s"
	MsgCmdMilestonesRst = "✅ Reset milestones for **%s** to defaults: %s"
	MsgCmdMilestonesClr = "🔕 Cleared all milestones for **%s**. No milestone alerts will fire."
	MsgCmdRepeatSet     = "🔁 **%s** will now remind every **%d** day(s), counting from %s."
	MsgCmdRepeatClear   = "✅ Repeating reminders disabled for **%s**."
	MsgCmdSilenced      = "🔕 **%s** reminders are now silenced."
	MsgCmdUnsilenced    = "🔔 **%s** reminders are now enabled."
	MsgCmdOwnerSet      = "✅ <@%s> is now responsible for **%s**."
)
