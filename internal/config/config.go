package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"StockScreener/internal/strategy"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// CronParser accepts the six-field (seconds first) specs used by the scheduler.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		SnapshotPath      string `yaml:"snapshot_path"`
		SnapshotURL       string `yaml:"snapshot_url"`
		APIKey            string `yaml:"api_key"`
		ComputeIndicators *bool  `yaml:"compute_indicators"`
	} `yaml:"data_source"`
	Screens  []ScreenConfig `yaml:"screens"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy       string `yaml:"proxy"`
	Workers     int    `yaml:"workers"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// ScreenConfig is a named list of conditions that must all pass.
type ScreenConfig struct {
	Name       string            `yaml:"name"`
	Conditions []ConditionConfig `yaml:"conditions"`
}

// ConditionConfig decodes one condition block. The type key picks the
// condition from the menu; the remaining keys override its defaults. Keys
// the condition does not take are rejected.
//
//	type: golden_cross
//	indicator_1: k9
//	indicator_2: d9
//	days: 5
type ConditionConfig struct {
	Condition strategy.Condition
}

func (c *ConditionConfig) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	if head.Type == "" {
		return fmt.Errorf("line %d: condition type is required", node.Line)
	}
	cond, err := strategy.New(head.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if err := checkKeys(node, head.Type, cond); err != nil {
		return err
	}
	if err := node.Decode(cond); err != nil {
		return fmt.Errorf("line %d: decode %s: %w", node.Line, head.Type, err)
	}
	c.Condition = cond
	return nil
}

func checkKeys(node *yaml.Node, name string, cond strategy.Condition) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	known := map[string]bool{"type": true}
	t := reflect.TypeOf(cond)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			if tag != "" && tag != "-" {
				known[tag] = true
			}
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !known[key.Value] {
			return fmt.Errorf("line %d: %s has no parameter %q", key.Line, name, key.Value)
		}
	}
	return nil
}

// Load reads .env and the YAML file, then applies environment overrides and
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.DataSource.SnapshotPath = v
	}
	if v := os.Getenv("SNAPSHOT_URL"); v != "" {
		cfg.DataSource.SnapshotURL = v
	}
	if v := os.Getenv("SNAPSHOT_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SCAN_WORKERS: %w", err)
		}
		cfg.Workers = n
	}

	// Defaults
	if cfg.DataSource.SnapshotPath == "" && cfg.DataSource.SnapshotURL == "" {
		cfg.DataSource.SnapshotPath = "data/snapshot.json"
	}
	if cfg.DataSource.ComputeIndicators == nil {
		enabled := true
		cfg.DataSource.ComputeIndicators = &enabled
	}
	if cfg.Schedule.ScanCron == "" {
		// 14:30 on weekdays, after the close and the institutional report
		cfg.Schedule.ScanCron = "0 30 14 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/screener.db"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks the screens, data source and schedule.
func (c *Config) Validate() error {
	if c.DataSource.SnapshotPath == "" && c.DataSource.SnapshotURL == "" {
		return errors.New("data_source.snapshot_path or data_source.snapshot_url is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := CronParser.Parse(c.Schedule.ScanCron); err != nil {
		return fmt.Errorf("schedule.scan_cron: %w", err)
	}
	if len(c.Screens) == 0 {
		return errors.New("at least one screen is required")
	}
	seen := make(map[string]bool, len(c.Screens))
	for _, s := range c.BuildScreens() {
		if seen[s.Name] {
			return fmt.Errorf("duplicate screen %q", s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNotifier checks the settings needed to push reports.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	return nil
}

// EnrichIndicators reports whether missing indicator series are derived.
func (c *Config) EnrichIndicators() bool {
	return c.DataSource.ComputeIndicators == nil || *c.DataSource.ComputeIndicators
}

// BuildScreens turns the screen blocks into strategy screens, in file order.
func (c *Config) BuildScreens() []*strategy.Screen {
	screens := make([]*strategy.Screen, 0, len(c.Screens))
	for _, sc := range c.Screens {
		s := &strategy.Screen{Name: sc.Name}
		for _, cc := range sc.Conditions {
			if cc.Condition != nil {
				s.Conditions = append(s.Conditions, cc.Condition)
			}
		}
		screens = append(screens, s)
	}
	return screens
}
