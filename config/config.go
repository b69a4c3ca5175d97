/*
Package config loads server and run configuration from a TOML file.

PURPOSE:
  One file carries everything deployable: HTTP settings, the database path,
  the weekly runner's office list, and the default run options. Flags on
  cmd/server override file values, and everything has a sane default, so a
  bare binary still runs.

EXAMPLE (fleet.toml):

  [server]
  port = 8080
  db_path = "./data/fleet.db"

  [runner]
  enabled = true
  offices = ["LA", "SEA"]
  check_interval_hours = 6

  [run]
  min_available_days = 5
  loan_length_days = 7
  max_per_partner_per_week = 1
  default_cooldown_days = 60
  unranked_cap = 0
  admit_unlisted = false

  [run.tier_cap_fallback]
  "A+" = 1000000
  "A" = 6
  "B" = 2
  "C" = 0

SEE ALSO:
  - cmd/server/main.go: the consumer
*/
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fleetline/loan-scheduler/schedule"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Runner RunnerConfig `toml:"runner"`
	Run    RunConfig    `toml:"run"`
}

type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
}

type RunnerConfig struct {
	Enabled            bool     `toml:"enabled"`
	Offices            []string `toml:"offices"`
	CheckIntervalHours int      `toml:"check_interval_hours"`
}

// RunConfig mirrors schedule.Options in TOML-friendly form. Pointer fields
// distinguish "absent" from "explicit zero".
type RunConfig struct {
	MinAvailableDays     *int           `toml:"min_available_days"`
	LoanLengthDays       *int           `toml:"loan_length_days"`
	MaxPerPartnerPerWeek *int           `toml:"max_per_partner_per_week"`
	DefaultCooldownDays  *int           `toml:"default_cooldown_days"`
	UnrankedCap          *int           `toml:"unranked_cap"`
	AdmitUnlisted        *bool          `toml:"admit_unlisted"`
	CountInProgress      *bool          `toml:"count_in_progress_loans"`
	EnableTierCaps       *bool          `toml:"enable_tier_caps"`
	EnableCooldown       *bool          `toml:"enable_cooldown"`
	EnableCapacity       *bool          `toml:"enable_capacity"`
	TierCapFallback      map[string]int `toml:"tier_cap_fallback"`
}

// Default returns the configuration a bare binary runs with.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080, DBPath: "fleet.db"},
		Runner: RunnerConfig{Enabled: false, CheckIntervalHours: 6},
	}
}

// Load reads a TOML file over the defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Options folds the [run] section onto schedule.DefaultOptions.
func (c Config) Options() schedule.Options {
	opts := schedule.DefaultOptions()
	r := c.Run
	if r.MinAvailableDays != nil {
		opts.MinAvailableDays = *r.MinAvailableDays
	}
	if r.LoanLengthDays != nil {
		opts.LoanLengthDays = *r.LoanLengthDays
	}
	if r.MaxPerPartnerPerWeek != nil {
		opts.MaxPerPartnerPerWeek = *r.MaxPerPartnerPerWeek
	}
	if r.DefaultCooldownDays != nil {
		opts.DefaultCooldownDays = *r.DefaultCooldownDays
	}
	if r.UnrankedCap != nil {
		opts.UnrankedCap = *r.UnrankedCap
	}
	if r.AdmitUnlisted != nil {
		opts.AdmitUnlisted = *r.AdmitUnlisted
	}
	if r.CountInProgress != nil {
		opts.CountInProgressLoans = *r.CountInProgress
	}
	if r.EnableTierCaps != nil {
		opts.EnableTierCaps = *r.EnableTierCaps
	}
	if r.EnableCooldown != nil {
		opts.EnableCooldown = *r.EnableCooldown
	}
	if r.EnableCapacity != nil {
		opts.EnableCapacity = *r.EnableCapacity
	}
	if len(r.TierCapFallback) > 0 {
		ladder := make(map[schedule.Rank]int, len(r.TierCapFallback))
		for rank, cap := range r.TierCapFallback {
			ladder[schedule.ParseRank(rank)] = cap
		}
		opts.TierCapFallback = ladder
	}
	return opts
}

// Offices returns the runner's office list as schedule types.
func (c Config) Offices() []schedule.Office {
	out := make([]schedule.Office, 0, len(c.Runner.Offices))
	for _, o := range c.Runner.Offices {
		out = append(out, schedule.Office(o))
	}
	return out
}
