package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Sheet: SheetConfig{
			DocumentKey:     DefaultDocumentKey,
			IndividualTable: DefaultIndividualTable,
			TeamTable:       DefaultTeamTable,
			ReadsPerMinute:  60,
			FetchTimeout:    20 * time.Second,
		},
		Refresh: RefreshConfig{Interval: 30 * time.Second},
	}
}

// clearEnv blanks every variable Load consults so the host environment can't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "SERVER_NAME", "SERVER_PORT", "ADVERTISE_MDNS", "ALLOWED_ORIGINS",
		"REQUESTS_PER_MINUTE", "SHEET_KEY", "SHEET_INDIVIDUAL_TABLE", "SHEET_TEAM_TABLE",
		"SHEET_READS_PER_MINUTE", "SHEET_FETCH_TIMEOUT", "CREDENTIALS_ENV",
		"GOOGLE_APPLICATION_CREDENTIALS", "CHAMPIONS_PATH", "WATCH_CHAMPIONS",
		"TOURNAMENT_TITLE", "DEFENDING_CHAMPION", "REFRESH_INTERVAL",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DefaultDocumentKey, cfg.Sheet.DocumentKey)
	assert.Equal(t, "Individual Leaderboard", cfg.Sheet.IndividualTable)
	assert.Equal(t, "Team Leaderboard", cfg.Sheet.TeamTable)
	assert.Equal(t, 20*time.Second, cfg.Sheet.FetchTimeout)
	assert.Equal(t, "GCP_SERVICE_ACCOUNT", cfg.Credentials.SecretEnv)
	assert.Empty(t, cfg.Credentials.File)
	assert.True(t, filepath.IsAbs(cfg.Champions.Path))
	assert.Equal(t, "players_2024.json", filepath.Base(cfg.Champions.Path))
	assert.True(t, cfg.Champions.Watch)
	assert.Equal(t, "Gunter", cfg.Tournament.DefendingChampion)
	assert.Equal(t, "The 'Jimmy D' Carroll Valley Open", cfg.Tournament.Title)
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.Zero(t, cfg.Server.WriteTimeout)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("REFRESH_INTERVAL", "45s")
	t.Setenv("DEFENDING_CHAMPION", "Walt")

	cfg, err := Load([]string{noEnvFile(t), "-refresh-interval=10s"})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, "Walt", cfg.Tournament.DefendingChampion)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{noEnvFile(t), "-fetch-timeout=soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fetch timeout")
}

func TestLoad_ZeroIntervalRejected(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{noEnvFile(t), "-refresh-interval=0s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh interval must be positive")
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://club.example, http://localhost:3000,")

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://club.example", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_SheetAndRefresh(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty document key", func(c *Config) { c.Sheet.DocumentKey = "  " }, "document key"},
		{"missing team table", func(c *Config) { c.Sheet.TeamTable = "" }, "table names"},
		{"no read budget", func(c *Config) { c.Sheet.ReadsPerMinute = 0 }, "reads per minute"},
		{"negative fetch timeout", func(c *Config) { c.Sheet.FetchTimeout = -time.Second }, "fetch timeout"},
		{"zero interval", func(c *Config) { c.Refresh.Interval = 0 }, "refresh interval"},
		{"negative request budget", func(c *Config) { c.Server.RequestsPerMinute = -1 }, "requests per minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandPath("~/boards/players.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "boards", "players.json"), expanded)

	expanded, err = expandPath("")
	require.NoError(t, err)
	assert.Empty(t, expanded)

	expanded, err = expandPath("/etc/../etc/players.json")
	require.NoError(t, err)
	assert.Equal(t, "/etc/players.json", expanded)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetIntConfigValue_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "lots")
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT_KEY", 7))
	assert.Equal(t, 12, getIntConfigValue(" 12", "TEST_INT_KEY", 7))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
ENV=staging
SHEET_KEY=abc123
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, key := range []string{"ENV", "SHEET_KEY", "QUOTED_VALUE", "SINGLE_QUOTED"} {
		t.Setenv(key, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "abc123", os.Getenv("SHEET_KEY"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `VALID_KEY=valid_value
BAD-KEY=value
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoad_EnvFileFeedsConfig(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOURNAMENT_TITLE=\"Spring Scramble\"\nREFRESH_INTERVAL=1m\n"), 0o644))

	cfg, err := Load([]string{"-env-file=" + envFile})
	require.NoError(t, err)

	assert.Equal(t, "Spring Scramble", cfg.Tournament.Title)
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
}
