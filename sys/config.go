package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default milestone day-offsets applied to every new event.
var DefaultMilestones = []int{100, 50, 30, 14, 7, 2, 1, 0}

const (
	// Upper bound for /repeat intervals.
	MaxRepeatEveryDays = 365

	// Most recent repeat-reminder dates kept per event for same-day dedup.
	MaxRepeatHistory = 180
)

type Config struct {
	Token           string
	GuildID         string
	DataPath        string
	DatabasePath    string
	DefaultTimezone string
	UpdateInterval  time.Duration
	Silent          bool
}

var GlobalConfig *Config

// LoadConfig initializes the configuration from environment variables.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")

	dataPath := os.Getenv("CHROMIE_DATA_PATH")
	if dataPath == "" {
		folder := "."
		if info, err := os.Stat("data"); err == nil && info.IsDir() {
			folder = "./data"
		}
		dataPath = filepath.Join(folder, GetProjectName()+"_state.json")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(filepath.Dir(dataPath), GetProjectName()+".db")
	}

	defaultTZ := os.Getenv("DEFAULT_TIMEZONE")
	if defaultTZ == "" {
		defaultTZ = "America/Chicago"
	}

	interval := 60 * time.Second
	if raw := os.Getenv("UPDATE_INTERVAL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			interval = time.Duration(secs) * time.Second
		}
	}

	silent, _ := strconv.ParseBool(os.Getenv("SILENT"))

	cfg := &Config{
		Token:           token,
		GuildID:         os.Getenv("GUILD_ID"),
		DataPath:        dataPath,
		DatabasePath:    fmt.Sprintf("%s?_journal_mode=WAL&_timeout=5000", dbPath),
		DefaultTimezone: defaultTZ,
		UpdateInterval:  interval,
		Silent:          silent,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf("invalid GUILD_ID: must be a valid Snowflake")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf(MsgConfigBadTimezone, c.DefaultTimezone)
	}
	return nil
}

// DefaultLocation resolves the process-wide fallback timezone. Validate has
// already confirmed the name loads.
func (c *Config) DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "chromie"
	if err == nil {
		projectName = filepath.Base(exePath)
		projectName = strings.TrimSuffix(projectName, ".exe")

		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") {
			if modData, err := os.ReadFile("go.mod"); err == nil {
				lines := strings.Split(string(modData), "\n")
				if len(lines) > 0 && strings.HasPrefix(lines[0], "module ") {
					parts := strings.Split(lines[0], "/")
					projectName = strings.TrimSpace(parts[len(parts)-1])
				}
			}
		}
	}
	return projectName
}
