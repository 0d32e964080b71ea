// Package config loads server configuration from command-line flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the tournament this board was built for.
const (
	DefaultDocumentKey       = "1qkLn1UmfjTYy76L1rL_G7O-siGcHBolIYdELjTMSFV4"
	DefaultIndividualTable   = "Individual Leaderboard"
	DefaultTeamTable         = "Team Leaderboard"
	DefaultChampionsPath     = "players_2024.json"
	DefaultDefendingChampion = "Gunter"
	DefaultTitle             = "The 'Jimmy D' Carroll Valley Open"
	DefaultCredentialsEnv    = "GCP_SERVICE_ACCOUNT"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Server      ServerConfig
	Sheet       SheetConfig
	Credentials CredentialsConfig
	Champions   ChampionsConfig
	Tournament  TournamentConfig
	Refresh     RefreshConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name              string
	Port              string        // default: 8080
	ReadTimeout       time.Duration // default: 15s
	WriteTimeout      time.Duration // 0 disables; SSE streams are long-lived
	IdleTimeout       time.Duration // default: 60s
	AdvertiseMDNS     bool          // default: true
	AllowedOrigins    []string      // CORS origins for the JSON API
	RequestsPerMinute int           // per client IP, 0 disables
}

// SheetConfig describes the remote spreadsheet holding the leaderboard.
type SheetConfig struct {
	DocumentKey     string
	IndividualTable string
	TeamTable       string
	ReadsPerMinute  int           // outbound Sheets API budget shared by all sessions
	FetchTimeout    time.Duration // per-cycle fetch deadline, 0 means none
}

// CredentialsConfig says where the service-account key comes from.
// The secret env var wins; the file is the fallback.
type CredentialsConfig struct {
	SecretEnv string
	File      string
}

// ChampionsConfig locates the champions registry file.
type ChampionsConfig struct {
	Path  string
	Watch bool
}

// TournamentConfig holds display settings.
type TournamentConfig struct {
	Title             string
	DefendingChampion string
}

// RefreshConfig controls the per-session refresh loop.
type RefreshConfig struct {
	Interval time.Duration
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config from args with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("jdcvo", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	serverName := fs.String("server-name", "", "Name advertised over mDNS")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0, disabled for streams)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := fs.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: true)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	requestsPerMinute := fs.String("requests-per-minute", "", "Per-IP request budget (default: 120)")

	documentKey := fs.String("sheet-key", "", "Spreadsheet document key")
	individualTable := fs.String("individual-table", "", "Worksheet holding individual standings and rounds")
	teamTable := fs.String("team-table", "", "Worksheet holding team standings")
	readsPerMinute := fs.String("sheet-reads-per-minute", "", "Outbound Sheets reads per minute (default: 60)")
	fetchTimeout := fs.String("fetch-timeout", "", "Deadline for one sheet fetch (default: 20s)")

	credentialsEnv := fs.String("credentials-env", "", "Env var holding service-account JSON")
	credentialsFile := fs.String("credentials-file", "", "Service-account JSON file fallback")

	championsPath := fs.String("champions", "", "Path to champions registry JSON")
	watchChampions := fs.String("watch-champions", "", "Watch champions file for edits (default: true)")

	title := fs.String("title", "", "Tournament title")
	defendingChampion := fs.String("defending-champion", "", "Defending champion player name")

	refreshInterval := fs.String("refresh-interval", "", "Time between refresh cycles (default: 30s)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:              getConfigValue(*serverName, "SERVER_NAME", "JDCVO Leaderboard"),
			Port:              getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdvertiseMDNS:     getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", true),
			AllowedOrigins:    splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
			RequestsPerMinute: getIntConfigValue(*requestsPerMinute, "REQUESTS_PER_MINUTE", 120),
		},
		Sheet: SheetConfig{
			DocumentKey:     getConfigValue(*documentKey, "SHEET_KEY", DefaultDocumentKey),
			IndividualTable: getConfigValue(*individualTable, "SHEET_INDIVIDUAL_TABLE", DefaultIndividualTable),
			TeamTable:       getConfigValue(*teamTable, "SHEET_TEAM_TABLE", DefaultTeamTable),
			ReadsPerMinute:  getIntConfigValue(*readsPerMinute, "SHEET_READS_PER_MINUTE", 60),
		},
		Credentials: CredentialsConfig{
			SecretEnv: getConfigValue(*credentialsEnv, "CREDENTIALS_ENV", DefaultCredentialsEnv),
			File:      getConfigValue(*credentialsFile, "GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Champions: ChampionsConfig{
			Path:  getConfigValue(*championsPath, "CHAMPIONS_PATH", DefaultChampionsPath),
			Watch: getBoolConfigValue(*watchChampions, "WATCH_CHAMPIONS", true),
		},
		Tournament: TournamentConfig{
			Title:             getConfigValue(*title, "TOURNAMENT_TITLE", DefaultTitle),
			DefendingChampion: getConfigValue(*defendingChampion, "DEFENDING_CHAMPION", DefaultDefendingChampion),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Sheet.FetchTimeout, err = getDurationConfigValue(*fetchTimeout, "SHEET_FETCH_TIMEOUT", "20s"); err != nil {
		return nil, fmt.Errorf("invalid fetch timeout: %w", err)
	}
	if cfg.Refresh.Interval, err = getDurationConfigValue(*refreshInterval, "REFRESH_INTERVAL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid refresh interval: %w", err)
	}

	if cfg.Credentials.File != "" {
		if cfg.Credentials.File, err = expandPath(cfg.Credentials.File); err != nil {
			return nil, fmt.Errorf("invalid credentials file: %w", err)
		}
	}
	if cfg.Champions.Path, err = expandPath(cfg.Champions.Path); err != nil {
		return nil, fmt.Errorf("invalid champions path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if strings.TrimSpace(c.Sheet.DocumentKey) == "" {
		return errors.New("sheet document key cannot be empty")
	}
	if c.Sheet.IndividualTable == "" || c.Sheet.TeamTable == "" {
		return errors.New("both sheet table names are required")
	}
	if c.Sheet.ReadsPerMinute <= 0 {
		return fmt.Errorf("sheet reads per minute must be positive, got %d", c.Sheet.ReadsPerMinute)
	}
	if c.Sheet.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout cannot be negative, got %s", c.Sheet.FetchTimeout)
	}

	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Refresh.Interval)
	}

	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute cannot be negative, got %d", c.Server.RequestsPerMinute)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", strValue, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file. Variables already
// set to a non-empty value win over the file.
func loadEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return err
		}
		return fmt.Errorf("invalid format in %s: %w", path, err)
	}

	for key, value := range values {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}
	return nil
}
