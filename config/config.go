package config // gofmt

import (
	"errors"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	ErrNoSeed             = errors.New("no seed url configured")
	ErrNoMothership       = errors.New("no mothership url configured")
	ErrInvalidMaxLinks    = errors.New("invalid max_links: must be non-negative")
	ErrInvalidMaxPages    = errors.New("invalid max_pages: must be non-negative")
	ErrInvalidTimeout     = errors.New("invalid timeout: must be positive")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
	ErrInvalidRetries     = errors.New("invalid max_retries: must be non-negative")
)

type Config struct {
	Seeds         []string `toml:"seeds"`
	MothershipURL string   `toml:"mothership_url"`
	MaxLinks      int      `toml:"max_links"`
	MaxPages      int      `toml:"max_pages"`
	UserAgent     string   `toml:"user_agent"`
	MaxBodyBytes  int64    `toml:"max_body_bytes"`
	Concurrency   int      `toml:"concurrency"`
	MaxRetries    int      `toml:"max_retries"`
	RetryDelay    int      `toml:"retry_delay"`  //in seconds
	AppTimeout    int      `toml:"app_timeout"`  //in seconds
	ReqTimeout    int      `toml:"req_timeout"`  //in seconds
	SinkTimeout   int      `toml:"sink_timeout"` //in seconds
}

func NewConfig() *Config {
	return &Config{
		Seeds:         []string{"https://www.reddit.com/user/Chrikelnel"},
		MothershipURL: "http://localhost:5000/ingest",
		MaxLinks:      20,
		MaxPages:      50,
		UserAgent:     "profilecrawler/1.0",
		MaxBodyBytes:  5 << 20,
		Concurrency:   2,
		MaxRetries:    2,
		RetryDelay:    5,
		AppTimeout:    300,
		ReqTimeout:    10,
		SinkTimeout:   10,
	}
}

// Load decodes the TOML file at path over the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case len(c.Seeds) == 0:
		return ErrNoSeed
	case c.MothershipURL == "":
		return ErrNoMothership
	case c.MaxLinks < 0:
		return ErrInvalidMaxLinks
	case c.MaxPages < 0:
		return ErrInvalidMaxPages
	case c.AppTimeout <= 0, c.ReqTimeout <= 0, c.SinkTimeout <= 0:
		return ErrInvalidTimeout
	case c.Concurrency <= 0:
		return ErrInvalidConcurrency
	case c.MaxRetries < 0, c.RetryDelay < 0:
		return ErrInvalidRetries
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ReqTimeout) * time.Second
}

func (c *Config) IngestTimeout() time.Duration {
	return time.Duration(c.SinkTimeout) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.AppTimeout) * time.Second
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.RetryDelay) * time.Second
}
