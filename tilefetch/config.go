package tilefetch

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	OutputDisk    = "disk"
	OutputMbtiles = "mbtiles"
	OutputPmtiles = "pmtiles"
	OutputS3      = "s3"
)

// TileSpec is one tile in a config file. Path may be omitted, in which case
// it is taken from the URL.
type TileSpec struct {
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"`
}

type Config struct {
	OutputMode string            `mapstructure:"output_mode"`
	DSN        string            `mapstructure:"dsn"`
	Bucket     string            `mapstructure:"bucket"`
	Prefix     string            `mapstructure:"prefix"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	FailFast   bool              `mapstructure:"fail_fast"`
	Headers    map[string]string `mapstructure:"headers"`
	Tiles      []TileSpec        `mapstructure:"tiles"`
}

func DefaultConfig() *Config {
	return &Config{
		OutputMode: OutputDisk,
		Timeout:    defaultHTTPTimeout,
		Headers:    DefaultHeaders(),
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("output_mode", d.OutputMode)
	v.SetDefault("timeout", d.Timeout.String())
	v.SetDefault("fail_fast", d.FailFast)
}

// LoadConfig reads a TOML, YAML or JSON config file. Headers given in the
// file replace the defaults entirely.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if len(cfg.Headers) == 0 {
		cfg.Headers = DefaultHeaders()
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultDSN is the output location used when none is configured.
func DefaultDSN(outputMode string) string {
	switch outputMode {
	case OutputDisk:
		return "."
	case OutputMbtiles:
		return "tiles.mbtiles"
	case OutputPmtiles:
		return "tiles.pmtiles"
	default:
		return ""
	}
}

// ApplyDefaults fills in the DSN for the selected output mode.
func (c *Config) ApplyDefaults() {
	if c.DSN == "" {
		c.DSN = DefaultDSN(c.OutputMode)
	}
}

func (c *Config) Validate() error {
	switch c.OutputMode {
	case OutputDisk:
		if c.DSN == "" {
			return fmt.Errorf("output mode %s requires a dsn", c.OutputMode)
		}
	case OutputMbtiles, OutputPmtiles:
		if c.DSN == "" {
			return fmt.Errorf("output mode %s requires a dsn", c.OutputMode)
		}
		if info, err := os.Stat(c.DSN); err == nil && info.IsDir() {
			return fmt.Errorf("output mode %s needs an archive file path, %s is a directory", c.OutputMode, c.DSN)
		}
	case OutputS3:
		if c.Bucket == "" {
			return fmt.Errorf("output mode %s requires a bucket", c.OutputMode)
		}
	default:
		return fmt.Errorf("unknown output mode %q", c.OutputMode)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	for i, t := range c.Tiles {
		if strings.TrimSpace(t.URL) == "" {
			return fmt.Errorf("tile %d has no url", i)
		}
	}

	return nil
}

// Entries returns the configured tile list, or DefaultEntries when the config
// does not list any tiles.
func (c *Config) Entries() ([]*TileEntry, error) {
	if len(c.Tiles) == 0 {
		return DefaultEntries(), nil
	}

	entries := make([]*TileEntry, 0, len(c.Tiles))
	for _, t := range c.Tiles {
		var entry *TileEntry
		var err error

		if t.Path == "" {
			entry, err = EntryFromURL(t.URL)
		} else {
			entry, err = NewTileEntry(t.Path, t.URL)
		}
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// NewOutputter builds the outputter selected by OutputMode.
func (c *Config) NewOutputter() (TileOutputter, error) {
	switch c.OutputMode {
	case OutputDisk:
		return NewDiskOutputter(c.DSN)
	case OutputMbtiles:
		return NewMbtilesOutputter(c.DSN, nil)
	case OutputPmtiles:
		return NewPmtilesOutputter(c.DSN, nil)
	case OutputS3:
		return NewS3Outputter(c.Bucket, c.Prefix)
	default:
		return nil, fmt.Errorf("unknown outputter: %s", c.OutputMode)
	}
}
