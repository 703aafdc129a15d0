package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/latestcomment/influence-scoring/internal/services"
	"github.com/titanous/json5"
)

const (
	SinkCSV    = "csv"
	SinkHTTP   = "http"
	SinkSQLite = "sqlite"

	RubricBasic    = "basic"
	RubricExtended = "extended"
)

type SinkConfig struct {
	Kind       string `json:"kind"`
	CSVPath    string `json:"csv_path"`
	URL        string `json:"url"`
	SQLitePath string `json:"sqlite_path"`
	Timeout    string `json:"timeout"`
}

type Config struct {
	ListenAddr  string             `json:"listen_addr"`
	Templates   string             `json:"templates"`
	Rubric      string             `json:"rubric"`
	SessionIdle string             `json:"session_idle"`
	Debug       bool               `json:"debug"`
	Sink        SinkConfig         `json:"sink"`
	Accounts    []services.Account `json:"accounts"`
}

func Default() Config {
	return Config{
		ListenAddr:  ":3000",
		Rubric:      RubricExtended,
		SessionIdle: "2h",
		Sink: SinkConfig{
			Kind:       SinkCSV,
			CSVPath:    "responses.csv",
			SQLitePath: "responses.db",
			Timeout:    "10s",
		},
	}
}

// Load builds the configuration from defaults, an optional JSON5 file and
// SCORING_* environment variables, in increasing priority. A .env file in
// the working directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("SCORING_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		var file Config
		if err := json5.Unmarshal(raw, &file); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
			return cfg, fmt.Errorf("merge %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set("SCORING_LISTEN_ADDR", &cfg.ListenAddr)
	set("SCORING_TEMPLATES", &cfg.Templates)
	set("SCORING_RUBRIC", &cfg.Rubric)
	set("SCORING_SESSION_IDLE", &cfg.SessionIdle)
	set("SCORING_SINK", &cfg.Sink.Kind)
	set("SCORING_CSV_PATH", &cfg.Sink.CSVPath)
	set("SCORING_SINK_URL", &cfg.Sink.URL)
	set("SCORING_SQLITE_PATH", &cfg.Sink.SQLitePath)
	set("SCORING_SINK_TIMEOUT", &cfg.Sink.Timeout)

	if v, err := strconv.ParseBool(os.Getenv("SCORING_DEBUG")); err == nil {
		cfg.Debug = v
	}
}

func (c Config) Validate() error {
	switch c.Rubric {
	case RubricBasic, RubricExtended:
	default:
		return fmt.Errorf("rubric must be %q or %q, got %q", RubricBasic, RubricExtended, c.Rubric)
	}
	switch c.Sink.Kind {
	case SinkCSV:
		if c.Sink.CSVPath == "" {
			return fmt.Errorf("csv sink needs csv_path")
		}
	case SinkHTTP:
		if c.Sink.URL == "" {
			return fmt.Errorf("http sink needs url")
		}
	case SinkSQLite:
		if c.Sink.SQLitePath == "" {
			return fmt.Errorf("sqlite sink needs sqlite_path")
		}
	default:
		return fmt.Errorf("unknown sink %q", c.Sink.Kind)
	}
	if _, err := time.ParseDuration(c.Sink.Timeout); err != nil {
		return fmt.Errorf("sink timeout: %w", err)
	}
	if d, err := time.ParseDuration(c.SessionIdle); err != nil {
		return fmt.Errorf("session idle: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("session idle must be positive, got %s", c.SessionIdle)
	}
	return nil
}

func (c Config) SinkTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Sink.Timeout)
	return d
}

func (c Config) SessionIdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.SessionIdle)
	return d
}

// Steps returns the rubric the configuration selects.
func (c Config) Steps() []services.RubricStep {
	if c.Rubric == RubricBasic {
		return services.BasicRubric()
	}
	return services.ExtendedRubric()
}

// Authenticator returns an account check when accounts are configured and
// trusts typed identities otherwise.
func (c Config) Authenticator() services.Authenticator {
	if len(c.Accounts) == 0 {
		return services.OpenAuthenticator{}
	}
	return services.NewAccountAuthenticator(c.Accounts)
}
