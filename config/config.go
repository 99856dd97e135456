// Package config loads the tutor's settings and builds its logger.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and the environment. A .env file in the working
// directory is read as part of the environment, but real environment
// variables take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"chess-tutor/engine"
	"chess-tutor/player"
	"chess-tutor/rules"
)

// EnvPrefix is prepended to every environment variable the tutor reads.
const EnvPrefix = "CHESS_TUTOR_"

const (
	StyleConsole = "console"
	StyleJSON    = "json"
)

// Engine clients: the built-in pipe driver or the notnil/chess uci package.
const (
	ClientPipe   = "pipe"
	ClientNotnil = "notnil"
)

// MaxDepth bounds the fallback search depth accepted from configuration.
const MaxDepth = 8

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Depth      int               `yaml:"depth"`
	Difficulty player.Difficulty `yaml:"difficulty"`
	Backend    string            `yaml:"backend"`
	// EnginePath is a UCI engine binary. Empty means the fallback search
	// plays alone.
	EnginePath   string    `yaml:"engine_path"`
	EngineClient string    `yaml:"engine_client"`
	Logs         LogConfig `yaml:"logs"`
}

type LogConfig struct {
	Style string `yaml:"style"`
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Depth:        engine.DefaultDepth,
		Difficulty:   player.Medium,
		Backend:      "dragon",
		EngineClient: ClientPipe,
		Logs: LogConfig{
			Style: StyleConsole,
			Level: zerolog.InfoLevel.String(),
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), then .env
// and the process environment.
func Load(path string) (Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, dotenv string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	file, err := godotenv.Read(dotenv)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", dotenv, err)
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	if v, ok := env(EnvPrefix + "DEPTH"); ok {
		depth, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sDEPTH: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Depth = depth
	}
	if v, ok := env(EnvPrefix + "DIFFICULTY"); ok {
		d, err := player.ParseDifficulty(v)
		if err != nil {
			return fmt.Errorf("%w: %sDIFFICULTY: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Difficulty = d
	}
	if v, ok := env(EnvPrefix + "BACKEND"); ok {
		c.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := env(EnvPrefix + "ENGINE_PATH"); ok {
		c.EnginePath = v
	}
	if v, ok := env(EnvPrefix + "ENGINE_CLIENT"); ok {
		c.EngineClient = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := env(EnvPrefix + "LOG_STYLE"); ok {
		c.Logs.Style = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := env(EnvPrefix + "LOG_LEVEL"); ok {
		c.Logs.Level = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d outside 1..%d", ErrInvalid, c.Depth, MaxDepth)
	}
	if c.Difficulty < player.Easy || c.Difficulty > player.Full {
		return fmt.Errorf("%w: difficulty %v", ErrInvalid, c.Difficulty)
	}
	known := false
	for _, b := range rules.Backends {
		known = known || b == c.Backend
	}
	if !known {
		return fmt.Errorf("%w: backend %q, want one of %s", ErrInvalid, c.Backend, strings.Join(rules.Backends, ", "))
	}
	if c.EngineClient != ClientPipe && c.EngineClient != ClientNotnil {
		return fmt.Errorf("%w: engine client %q", ErrInvalid, c.EngineClient)
	}
	if c.Logs.Style != StyleConsole && c.Logs.Style != StyleJSON {
		return fmt.Errorf("%w: log style %q", ErrInvalid, c.Logs.Style)
	}
	if _, err := zerolog.ParseLevel(c.Logs.Level); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	return nil
}

// Logger builds a logger writing to w in the configured style.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Logs.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	if c.Logs.Style == StyleConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// SetupLogging installs the configured logger as the global zerolog logger.
func (c Config) SetupLogging(w io.Writer) error {
	logger, err := c.Logger(w)
	if err != nil {
		return err
	}
	log.Logger = logger
	return nil
}
