package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionEntry is one row of the session table as it appears in the config
// file. Two encodings are accepted:
//
//   - relative: weekday (1=Monday..7=Sunday) plus start/end "HH:MM", all in
//     the source zone
//   - absolute: from/to RFC 3339 timestamps in a fixed reference week
//
// An entry with from/to set uses the absolute encoding; validation and
// normalization into the internal session form happen at startup, not here.
type SessionEntry struct {
	Host string `yaml:"host" json:"host"`

	Weekday int    `yaml:"weekday,omitempty" json:"weekday,omitempty"`
	Start   string `yaml:"start,omitempty" json:"start,omitempty"`
	End     string `yaml:"end,omitempty" json:"end,omitempty"`

	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`
}

// Relative reports whether the entry uses the weekday+clock encoding.
func (e SessionEntry) Relative() bool {
	return e.From == "" && e.To == ""
}

// ParseInstants parses the absolute encoding's timestamps.
func (e SessionEntry) ParseInstants() (from, to time.Time, err error) {
	from, err = time.Parse(time.RFC3339, e.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err = time.Parse(time.RFC3339, e.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the initial display timezone (IANA identifier). Empty
	// means detect from the host environment.
	Timezone string `yaml:"timezone" json:"timezone"`

	// SourceTimezone is the zone the session table's clock values are
	// authored in. Observed data is authored in UTC.
	SourceTimezone string `yaml:"source_timezone" json:"source_timezone"`

	// SnapshotCron is a cron-style schedule string (e.g. "*/30 * * * *")
	// for refreshing the PNG snapshot of the schedule page. Empty disables
	// periodic capture.
	SnapshotCron string `yaml:"snapshot" json:"snapshot"`

	// PreviewPath is where the captured snapshot PNG is written and served
	// from.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`

	// Sessions is the static weekly session table.
	Sessions []SessionEntry `yaml:"sessions" json:"sessions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration carrying the
// built-in session table.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "",
		SourceTimezone: "UTC",
		SnapshotCron:   "",
		PreviewPath:    "/var/lib/paircal/preview.png",
		Sessions: []SessionEntry{
			{Host: "Stefan H.", Weekday: 6, Start: "16:00", End: "18:00"},
			{Host: "Stefan H.", Weekday: 7, Start: "16:00", End: "18:00"},
			{Host: "Steven Borrie", Weekday: 7, Start: "09:30", End: "10:30"},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.SourceTimezone == "" {
		c.SourceTimezone = "UTC"
	}
	if c.PreviewPath == "" {
		c.PreviewPath = "/var/lib/paircal/preview.png"
	}
	if c.Sessions == nil {
		c.Sessions = DefaultConfig().Sessions
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".paircal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
