package config

import (
	"time"
)

// Busy policies for a session that is asked to start a build while another one
// is still running.
const (
	OnBusyReject = "reject"
	OnBusyCancel = "cancel"
)

// Config describes how makerun invokes the build tool
type Config struct {
	Tool      ToolConfig      `yaml:"tool"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Build     BuildConfig     `yaml:"build"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ToolConfig names the external build tool and the file it reads
type ToolConfig struct {
	// Binary is the executable name or path, looked up in PATH when relative
	Binary string `yaml:"binary" validate:"required"`

	// BuildFile is the file whose presence marks a build directory
	BuildFile string `yaml:"buildFile" validate:"required,excludesall=/"`
}

// DiscoveryConfig controls how the tool is asked to dump its database
type DiscoveryConfig struct {
	// Args makes the tool print its database without building anything
	Args    []string  `yaml:"args" validate:"min=1,dive,required"`
	Timeout *Duration `yaml:"timeout,omitempty"`
}

// BuildConfig controls build runs
type BuildConfig struct {
	// Timeout bounds a single build; zero means no limit
	Timeout *Duration `yaml:"timeout,omitempty"`

	// EnvFile is a dotenv file, relative to the working directory, whose
	// variables are added to the build environment when it exists
	EnvFile string `yaml:"envFile,omitempty"`

	// OnBusy is either reject or cancel
	OnBusy string `yaml:"onBusy" validate:"required,oneof=reject cancel"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Debounce *Duration `yaml:"debounce,omitempty"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements custom unmarshaling for duration strings
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	d.Duration = dur
	return nil
}

// MarshalYAML writes the duration back in its string form
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the configuration used when no file is found.
// It runs make against a Makefile the same way shell completion does.
func Default() *Config {
	return &Config{
		Tool: ToolConfig{
			Binary:    "make",
			BuildFile: "Makefile",
		},
		Discovery: DiscoveryConfig{
			Args:    []string{"-pRrq", ":"},
			Timeout: &Duration{30 * time.Second},
		},
		Build: BuildConfig{
			OnBusy: OnBusyReject,
		},
		Watch: WatchConfig{
			Debounce: &Duration{300 * time.Millisecond},
		},
	}
}

// GetDiscoveryTimeout returns the discovery timeout or 30s
func (c *Config) GetDiscoveryTimeout() time.Duration {
	if c.Discovery.Timeout != nil && c.Discovery.Timeout.Duration > 0 {
		return c.Discovery.Timeout.Duration
	}
	return 30 * time.Second
}

// GetBuildTimeout returns the build timeout, zero when unbounded
func (c *Config) GetBuildTimeout() time.Duration {
	if c.Build.Timeout != nil {
		return c.Build.Timeout.Duration
	}
	return 0
}

// GetWatchDebounce returns the watch debounce interval or 300ms
func (c *Config) GetWatchDebounce() time.Duration {
	if c.Watch.Debounce != nil && c.Watch.Debounce.Duration > 0 {
		return c.Watch.Debounce.Duration
	}
	return 300 * time.Millisecond
}
