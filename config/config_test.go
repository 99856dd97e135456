package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"chess-tutor/player"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load("", filepath.Join(t.TempDir(), "missing.env"), noEnv)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 3, cfg.Depth)
	require.Equal(t, player.Medium, cfg.Difficulty)
	require.Equal(t, "dragon", cfg.Backend)
	require.Equal(t, "info", cfg.Logs.Level)
	require.Equal(t, StyleConsole, cfg.Logs.Style)
	require.Equal(t, ClientPipe, cfg.EngineClient)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "tutor.yaml", `
depth: 4
difficulty: hard
backend: notnil
engine_path: /usr/bin/stockfish
engine_client: notnil
logs:
  style: json
  level: debug
`)
	cfg, err := load(path, filepath.Join(t.TempDir(), "missing.env"), noEnv)
	require.NoError(t, err)
	require.Equal(t, Config{
		Depth:        4,
		Difficulty:   player.Hard,
		Backend:      "notnil",
		EnginePath:   "/usr/bin/stockfish",
		EngineClient: ClientNotnil,
		Logs:         LogConfig{Style: StyleJSON, Level: "debug"},
	}, cfg)
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := load(write(t, "empty.yaml", ""), filepath.Join(t.TempDir(), "missing.env"), noEnv)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadYAMLErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), missing, noEnv)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = load(write(t, "typo.yaml", "depht: 3\n"), missing, noEnv)
	require.Error(t, err)

	_, err = load(write(t, "bad.yaml", "difficulty: grandmaster\n"), missing, noEnv)
	require.ErrorIs(t, err, player.ErrUnknownDifficulty)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := write(t, "tutor.yaml", "depth: 4\nbackend: goose\n")
	dotenv := write(t, ".env", "CHESS_TUTOR_DEPTH=2\nCHESS_TUTOR_DIFFICULTY=easy\nCHESS_TUTOR_LOG_LEVEL=warn\n")

	cfg, err := load(path, dotenv, envOf(map[string]string{
		"CHESS_TUTOR_DEPTH":         "5",
		"CHESS_TUTOR_BACKEND":       " Notnil ",
		"CHESS_TUTOR_ENGINE_PATH":   "/opt/engine",
		"CHESS_TUTOR_ENGINE_CLIENT": "notnil",
		"CHESS_TUTOR_LOG_STYLE":     "JSON",
	}))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Depth, "process environment beats .env")
	require.Equal(t, player.Easy, cfg.Difficulty, ".env beats YAML")
	require.Equal(t, "notnil", cfg.Backend)
	require.Equal(t, "/opt/engine", cfg.EnginePath)
	require.Equal(t, StyleJSON, cfg.Logs.Style)
	require.Equal(t, "warn", cfg.Logs.Level)
	require.Equal(t, ClientNotnil, cfg.EngineClient)
}

func TestEnvironmentErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	tests := map[string]string{
		"CHESS_TUTOR_DEPTH":      "deep",
		"CHESS_TUTOR_DIFFICULTY": "impossible",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := load("", missing, envOf(map[string]string{key: value}))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"too deep", func(c *Config) { c.Depth = MaxDepth + 1 }},
		{"no difficulty", func(c *Config) { c.Difficulty = 0 }},
		{"backend", func(c *Config) { c.Backend = "stockfish" }},
		{"engine client", func(c *Config) { c.EngineClient = "grpc" }},
		{"style", func(c *Config) { c.Logs.Style = "xml" }},
		{"level", func(c *Config) { c.Logs.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	require.NoError(t, Default().Validate())
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Logs = LogConfig{Style: StyleJSON, Level: "warn"}

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Str("backend", "dragon").Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)
	require.Contains(t, buf.String(), `"backend":"dragon"`)

	buf.Reset()
	cfg.Logs.Style = StyleConsole
	logger, err = cfg.Logger(&buf)
	require.NoError(t, err)
	logger.Warn().Msg("plain")
	require.Contains(t, buf.String(), "plain")
	require.NotContains(t, buf.String(), `"message"`)
}
