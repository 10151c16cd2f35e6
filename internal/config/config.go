package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/repository/artifact"
)

// Config holds the lexdex configuration.
type Config struct {
	HTTP     HTTPConfig      `yaml:"http"`
	Auth     AuthConfig      `yaml:"auth"`
	Logging  LoggingConfig   `yaml:"logging"`
	Vendor   string          `yaml:"vendor"` // PCTY (default), PCTY2
	Index    lexical.Options `yaml:"index"`
	Ranking  RankingConfig   `yaml:"ranking"`
	Artifact ArtifactConfig  `yaml:"artifact"`
	Corpus   CorpusConfig    `yaml:"corpus"`
	Policy   PolicyConfig    `yaml:"policy"`
	Database DatabaseConfig  `yaml:"database"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxSearchLimit  int `yaml:"max_search_limit"`
}

// RankingConfig holds the top-row selection rule.
type RankingConfig struct {
	Selection string `yaml:"selection"` // position (default), similarity
}

// ArtifactConfig holds persisted index settings.
type ArtifactConfig struct {
	Driver           string `yaml:"driver"` // file (default), redis
	Path             string `yaml:"path"`
	Key              string `yaml:"key"`
	Compression      string `yaml:"compression"` // zstd (default), lz4, none
	ReloadSchedule   string `yaml:"reload_schedule"`
	ReloadTimeoutSec int    `yaml:"reload_timeout_sec"`
}

// CorpusConfig holds the article source settings.
type CorpusConfig struct {
	Driver string `yaml:"driver"` // sqlite (default), yaml
	Path   string `yaml:"path"`
}

// PolicyConfig holds policy channel settings.
type PolicyConfig struct {
	Channel     string       `yaml:"channel"` // table (default), openai
	TablePath   string       `yaml:"table_path"`
	Cache       bool         `yaml:"cache"`
	CacheTTLSec int          `yaml:"cache_ttl_sec"` // 0 = no expiry
	OpenAI      OpenAIConfig `yaml:"openai"`
	Budget      BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps tokens spent on the openai channel. Zero limits mean unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"`  // warn (default), reject
	Persist           bool   `yaml:"persist"` // keep counters in the database across restarts
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// OpenAIConfig holds chat completion provider settings.
type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey (default), redis; both served by rueidis
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"` // prepended to every key; separates deployments sharing a database
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	cfg := Config{Index: lexical.DefaultOptions()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxSearchLimit <= 0 {
		c.HTTP.MaxSearchLimit = 100
	}
	if c.Vendor == "" {
		c.Vendor = string(vendor.Default)
	}
	c.Index = withIndexDefaults(c.Index)
	if c.Ranking.Selection == "" {
		c.Ranking.Selection = string(ranking.Position)
	}
	if c.Artifact.Driver == "" {
		c.Artifact.Driver = "file"
	}
	if c.Artifact.Path == "" {
		c.Artifact.Path = "data/index.lxdx"
	}
	if c.Artifact.Key == "" {
		c.Artifact.Key = "current"
	}
	if c.Artifact.Compression == "" {
		c.Artifact.Compression = artifact.CompressionZstd.String()
	}
	if c.Artifact.ReloadTimeoutSec <= 0 {
		c.Artifact.ReloadTimeoutSec = 60
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = "sqlite"
	}
	if c.Policy.Channel == "" {
		c.Policy.Channel = "table"
	}
	if c.Policy.OpenAI.Model == "" {
		c.Policy.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Policy.Budget.Action == "" {
		c.Policy.Budget.Action = "warn"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// withIndexDefaults fills unset index options. TitleWeight is left alone:
// zero is a meaningful weight, and Parse pre-seeds the default before decoding.
func withIndexDefaults(o lexical.Options) lexical.Options {
	d := lexical.DefaultOptions()
	if o.NGramMin == 0 {
		o.NGramMin = d.NGramMin
	}
	if o.NGramMax == 0 {
		o.NGramMax = d.NGramMax
	}
	if o.MaxDF == 0 {
		o.MaxDF = d.MaxDF
	}
	if o.MinDF == 0 {
		o.MinDF = d.MinDF
	}
	if o.StopWords == "" {
		o.StopWords = d.StopWords
	}
	return o
}

// UsesDatabase reports whether any component needs the redis/valkey store.
func (c *Config) UsesDatabase() bool {
	return c.Artifact.Driver == "redis" || c.Policy.Cache ||
		(c.Policy.Budget.Persist && c.Policy.Budget.Enabled())
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if _, err := vendor.Parse(c.Vendor); err != nil {
		return fmt.Errorf("vendor: %w", err)
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if _, err := ranking.ParseSelection(c.Ranking.Selection); err != nil {
		return fmt.Errorf("ranking.selection: %w", err)
	}
	switch c.Artifact.Driver {
	case "file", "redis":
	default:
		return fmt.Errorf("artifact.driver must be \"file\" or \"redis\", got %q", c.Artifact.Driver)
	}
	if _, err := artifact.ParseCompression(c.Artifact.Compression); err != nil {
		return fmt.Errorf("artifact.compression: %w", err)
	}
	switch c.Corpus.Driver {
	case "sqlite", "yaml":
	default:
		return fmt.Errorf("corpus.driver must be \"sqlite\" or \"yaml\", got %q", c.Corpus.Driver)
	}
	switch c.Policy.Channel {
	case "table":
		if c.Policy.TablePath == "" {
			return fmt.Errorf("policy.table_path is required for the table channel")
		}
	case "openai":
		if c.Policy.OpenAI.APIKey == "" {
			return fmt.Errorf("policy.openai.api_key is required for the openai channel")
		}
	default:
		return fmt.Errorf("policy.channel must be \"table\" or \"openai\", got %q", c.Policy.Channel)
	}
	if c.Policy.Budget.DailyTokenLimit < 0 || c.Policy.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("policy.budget limits must not be negative")
	}
	switch c.Policy.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("policy.budget.action must be \"warn\" or \"reject\", got %q", c.Policy.Budget.Action)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if c.UsesDatabase() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required by artifact.driver redis, policy.cache and policy.budget.persist")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
