package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/ostafen/gptfmt/pkg/util/format"
	"github.com/spf13/viper"
)

const (
	Name      = "gptfmt"
	EnvPrefix = "GPTFMT"
)

// DefaultGuardedDevices lists the device paths format refuses to touch.
var DefaultGuardedDevices = []string{"/dev/sda"}

// PlanEntry is the configuration form of a partition spec.
type PlanEntry struct {
	Name   string `mapstructure:"name"`
	Size   string `mapstructure:"size"`
	Policy string `mapstructure:"policy"`
}

// Config holds the settings shared by every command.
type Config struct {
	GuardedDevices []string    `mapstructure:"guarded_devices"`
	LogLevel       string      `mapstructure:"log_level"`
	Plan           []PlanEntry `mapstructure:"plan"`
}

// Load reads the configuration. When path is empty, gptfmt.yaml is looked up
// in the usual places and a missing file is not an error. Environment
// variables prefixed with GPTFMT_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + Name)
		v.AddConfigPath("/etc/" + Name)
	}

	v.SetDefault("guarded_devices", DefaultGuardedDevices)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("plan", planDefaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// DefaultPlanEntries returns the built-in plan in configuration form.
func DefaultPlanEntries() []PlanEntry {
	plan := gpt.DefaultPlan()

	entries := make([]PlanEntry, len(plan))
	for i, s := range plan {
		entries[i] = PlanEntry{
			Name:   s.Name,
			Size:   strconv.FormatUint(s.SizeKB, 10) + "K",
			Policy: s.Policy.String(),
		}
	}
	return entries
}

// planDefaults renders the default plan the way viper reads it from a file.
func planDefaults() []any {
	entries := DefaultPlanEntries()

	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"name":   e.Name,
			"size":   e.Size,
			"policy": e.Policy,
		}
	}
	return out
}

// PartitionPlan converts the configured entries into a validated plan.
func (c *Config) PartitionPlan() (gpt.Plan, error) {
	plan := make(gpt.Plan, 0, len(c.Plan))
	for i, e := range c.Plan {
		s, err := e.Spec()
		if err != nil {
			return nil, fmt.Errorf("plan entry %d: %w", i, err)
		}
		plan = append(plan, s)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Spec converts the entry into a partition spec. An empty policy is
// inferred from the name and size.
func (e PlanEntry) Spec() (gpt.PartitionSpec, error) {
	sizeKB, err := ParseSizeKB(e.Size)
	if err != nil {
		return gpt.PartitionSpec{}, fmt.Errorf("%w: partition '%s': %w", gpt.ErrInvalidSpec, e.Name, err)
	}

	if e.Policy == "" {
		return gpt.Spec(e.Name, sizeKB), nil
	}

	policy, err := gpt.ParsePolicy(e.Policy)
	if err != nil {
		return gpt.PartitionSpec{}, err
	}
	return gpt.PartitionSpec{
		Name:   e.Name,
		SizeKB: sizeKB,
		Policy: policy,
	}, nil
}

// ParseSizeKB parses a plan size into KiB. Bare numbers are KiB, sizes with
// a unit must be a whole number of KiB.
func ParseSizeKB(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}

	b, err := format.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if b%format.KB != 0 {
		return 0, fmt.Errorf("size %q is not a multiple of 1KiB", s)
	}
	return b / format.KB, nil
}
