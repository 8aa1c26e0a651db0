// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonus

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MaxLevel is the highest level a node can hold in the team histogram.
const MaxLevel = 24

var (
	// Amounts is the closed set of lockable amounts.
	Amounts = []int64{1000, 3000, 5000, 10000}
	// Durations is the closed set of lock durations in days.
	Durations = []int{30, 90, 180, 360}
)

//go:embed default.yaml
var defaultYAML []byte

// Term identifies a deposit by amount and duration.
type Term struct {
	Amount int64
	Days   int
}

func (t Term) String() string {
	return fmt.Sprintf("%d-%d", t.Amount, t.Days)
}

// ParseTerm parses "<amount>-<days>".
func ParseTerm(s string) (Term, error) {
	a, d, ok := strings.Cut(s, "-")
	if !ok {
		return Term{}, errors.Errorf("invalid term %q", s)
	}
	amount, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return Term{}, errors.Wrapf(err, "invalid term %q", s)
	}
	days, err := strconv.Atoi(d)
	if err != nil {
		return Term{}, errors.Wrapf(err, "invalid term %q", s)
	}
	return Term{amount, days}, nil
}

// Valid tells whether the term belongs to the closed amount/duration set.
func (t Term) Valid() bool {
	okAmount, okDays := false, false
	for _, a := range Amounts {
		okAmount = okAmount || a == t.Amount
	}
	for _, d := range Durations {
		okDays = okDays || d == t.Days
	}
	return okAmount && okDays
}

// LevelRequirement is one row of the level table.
type LevelRequirement struct {
	Level         int   `yaml:"level"`
	Performance   int64 `yaml:"performance"`
	Referrals     int   `yaml:"referrals"`
	ReferralLevel int   `yaml:"referralLevel"`
	Teams         int   `yaml:"teams"`
	TeamLevel     int   `yaml:"teamLevel"`
}

// Burn holds the kept share of each team bonus bucket.
type Burn struct {
	HighLevel  decimal.Decimal
	EqualLevel decimal.Decimal
	LowOne     decimal.Decimal
	Normal     decimal.Decimal
}

// Config is the validated set of business tables.
type Config struct {
	lockedBonus   map[Term]decimal.Decimal
	penalty       map[Term]decimal.Decimal
	teamRate      map[int]decimal.Decimal
	amountLevels  map[int64]int
	ReferralRate  decimal.Decimal
	SigninRate    decimal.Decimal
	Burn          Burn
	SmallAreaBurn decimal.Decimal
	// Levels sorted from the highest level down.
	Levels []LevelRequirement
}

type rawConfig struct {
	LockedBonus  map[string]string `yaml:"lockedBonus"`
	Penalty      map[string]string `yaml:"penalty"`
	ReferralRate string            `yaml:"referralRate"`
	SigninRate   string            `yaml:"signinRate"`
	Burn         struct {
		HighLevel  string `yaml:"highLevel"`
		EqualLevel string `yaml:"equalLevel"`
		LowOne     string `yaml:"lowOne"`
		Normal     string `yaml:"normal"`
	} `yaml:"burn"`
	SmallAreaBurn string             `yaml:"smallAreaBurn"`
	TeamRate      map[int]string     `yaml:"teamRate"`
	Levels        []LevelRequirement `yaml:"levels"`
	AmountLevels  map[int64]int      `yaml:"amountLevels"`
}

// DefaultConfig returns the embedded tables.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultYAML)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads the tables from a yaml file. An empty path yields the
// embedded defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bonus config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates yaml tables.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode bonus config")
	}

	cfg := &Config{
		lockedBonus:  make(map[Term]decimal.Decimal),
		penalty:      make(map[Term]decimal.Decimal),
		teamRate:     make(map[int]decimal.Decimal),
		amountLevels: raw.AmountLevels,
	}

	if err := parseTermTable(raw.LockedBonus, cfg.lockedBonus, "lockedBonus", ErrRateNotFound); err != nil {
		return nil, err
	}
	if err := parseTermTable(raw.Penalty, cfg.penalty, "penalty", ErrPenaltyNotFound); err != nil {
		return nil, err
	}

	var err error
	if cfg.ReferralRate, err = parseRatio("referralRate", raw.ReferralRate); err != nil {
		return nil, err
	}
	if cfg.SigninRate, err = parseRatio("signinRate", raw.SigninRate); err != nil {
		return nil, err
	}
	if cfg.SmallAreaBurn, err = parseRatio("smallAreaBurn", raw.SmallAreaBurn); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		key string
		raw string
		out *decimal.Decimal
	}{
		{"burn.highLevel", raw.Burn.HighLevel, &cfg.Burn.HighLevel},
		{"burn.equalLevel", raw.Burn.EqualLevel, &cfg.Burn.EqualLevel},
		{"burn.lowOne", raw.Burn.LowOne, &cfg.Burn.LowOne},
		{"burn.normal", raw.Burn.Normal, &cfg.Burn.Normal},
	} {
		if *f.out, err = parseRatio(f.key, f.raw); err != nil {
			return nil, err
		}
	}

	for level, s := range raw.TeamRate {
		if cfg.teamRate[level], err = parseRatio(fmt.Sprintf("teamRate.%d", level), s); err != nil {
			return nil, err
		}
	}

	cfg.Levels = append(cfg.Levels, raw.Levels...)
	sort.Slice(cfg.Levels, func(i, j int) bool { return cfg.Levels[i].Level > cfg.Levels[j].Level })
	for i, l := range cfg.Levels {
		if l.Level < 1 || l.Level > MaxLevel {
			return nil, &ConfigError{fmt.Sprintf("levels[%d]", i), errors.Errorf("level %d out of range", l.Level)}
		}
		if i > 0 && cfg.Levels[i-1].Level == l.Level {
			return nil, &ConfigError{fmt.Sprintf("levels[%d]", i), errors.Errorf("duplicated level %d", l.Level)}
		}
		if _, ok := cfg.teamRate[l.Level]; !ok {
			return nil, &ConfigError{fmt.Sprintf("teamRate.%d", l.Level), ErrLevelNotFound}
		}
	}
	for _, a := range Amounts {
		if _, ok := cfg.amountLevels[a]; !ok {
			return nil, &ConfigError{fmt.Sprintf("amountLevels.%d", a), errors.New("missing")}
		}
	}
	return cfg, nil
}

func parseTermTable(raw map[string]string, out map[Term]decimal.Decimal, key string, missing error) error {
	for k, v := range raw {
		term, err := ParseTerm(k)
		if err != nil {
			return &ConfigError{key, err}
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return &ConfigError{key + "." + k, err}
		}
		if d.IsNegative() {
			return &ConfigError{key + "." + k, errors.New("negative value")}
		}
		out[term] = d
	}
	for _, a := range Amounts {
		for _, d := range Durations {
			if _, ok := out[Term{a, d}]; !ok {
				return &ConfigError{key + "." + Term{a, d}.String(), missing}
			}
		}
	}
	return nil
}

func parseRatio(key, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ConfigError{key, err}
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, &ConfigError{key, errors.Errorf("%s not in [0, 1]", s)}
	}
	return d, nil
}

// LockedBonus returns the daily bonus for a deposit.
func (c *Config) LockedBonus(amount int64, days int) (decimal.Decimal, error) {
	t := Term{amount, days}
	if v, ok := c.lockedBonus[t]; ok {
		return v, nil
	}
	return decimal.Zero, &ConfigError{"lockedBonus." + t.String(), ErrRateNotFound}
}

// Penalty returns the early-unlock penalty for a deposit.
func (c *Config) Penalty(amount int64, days int) (decimal.Decimal, error) {
	t := Term{amount, days}
	if v, ok := c.penalty[t]; ok {
		return v, nil
	}
	return decimal.Zero, &ConfigError{"penalty." + t.String(), ErrPenaltyNotFound}
}

// TeamRate returns the team bonus rate of a level.
func (c *Config) TeamRate(level int) (decimal.Decimal, error) {
	if v, ok := c.teamRate[level]; ok {
		return v, nil
	}
	return decimal.Zero, &ConfigError{fmt.Sprintf("teamRate.%d", level), ErrLevelNotFound}
}

// AmountLevel returns the level implied by a deposit alone.
func (c *Config) AmountLevel(amount int64) int {
	return c.amountLevels[amount]
}

// MinTeamLevel is the lowest level that earns team bonus.
func (c *Config) MinTeamLevel() int {
	if len(c.Levels) == 0 {
		return MaxLevel + 1
	}
	return c.Levels[len(c.Levels)-1].Level
}
