package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverQdrant   = "qdrant"
	DriverSupabase = "supabase"
	DriverChromem  = "chromem"
)

// Config holds the popchoice configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Cache    CacheConfig    `yaml:"cache"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig selects and configures the vector store.
type DatabaseConfig struct {
	Driver           string         `yaml:"driver"`
	Collection       string         `yaml:"collection"`
	ReadinessTimeout int            `yaml:"readiness_timeout_sec"`
	Valkey           ValkeyConfig   `yaml:"valkey"`
	Qdrant           QdrantConfig   `yaml:"qdrant"`
	Supabase         SupabaseConfig `yaml:"supabase"`
	Chromem          ChromemConfig  `yaml:"chromem"`
}

// ValkeyConfig configures the valkey and redis drivers.
type ValkeyConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// QdrantConfig configures the qdrant gRPC driver.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// SupabaseConfig configures the PostgREST driver.
type SupabaseConfig struct {
	URL           string `yaml:"url"`
	APIKey        string `yaml:"api_key"`
	MatchFunction string `yaml:"match_function"` // default match_<collection>
}

// ChromemConfig configures the embedded driver. An empty path keeps data in memory.
type ChromemConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// OpenAIConfig holds the model provider settings.
type OpenAIConfig struct {
	APIKey         string       `yaml:"api_key"`
	BaseURL        string       `yaml:"base_url"`
	Provider       string       `yaml:"provider"`
	EmbeddingModel string       `yaml:"embedding_model"`
	ChatModel      string       `yaml:"chat_model"`
	Dimensions     int          `yaml:"dimensions"`
	RateLimit      float64      `yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int          `yaml:"rate_burst"`
	Budget         BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// PipelineConfig holds the recommendation knobs.
// Threshold, temperatures and frequency penalty accept 0; their defaults come from Default.
type PipelineConfig struct {
	Threshold            float64 `yaml:"threshold"`
	TopK                 int     `yaml:"top_k"`
	CallTimeoutSec       int     `yaml:"call_timeout_sec"`
	SummaryTemperature   float32 `yaml:"summary_temperature"`
	SynthesisTemperature float32 `yaml:"synthesis_temperature"`
	MaxTokens            int     `yaml:"max_tokens"`
	FrequencyPenalty     float32 `yaml:"frequency_penalty"`
	AllowExplain         bool    `yaml:"allow_explain"`
}

// CacheConfig controls the embedding cache (valkey and redis drivers only).
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLHour int  `yaml:"ttl_hours"`
}

// BreakerConfig controls the vector store circuit breaker.
type BreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutSec   int    `yaml:"open_timeout_sec"`
	HalfOpenRequests uint32 `yaml:"half_open_requests"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Default returns a Config holding the defaults of fields whose zero value is meaningful.
// YAML decoding keeps them unless a key overrides them; ApplyDefaults fills the rest.
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{
			Threshold:            0.50,
			SummaryTemperature:   0.3,
			SynthesisTemperature: 0.65,
			FrequencyPenalty:     0.5,
		},
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	c.applyDatabaseDefaults()

	if c.OpenAI.Provider == "" {
		c.OpenAI.Provider = "openai"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.Dimensions <= 0 {
		c.OpenAI.Dimensions = 1536
	}
	if c.OpenAI.Budget.Action == "" {
		c.OpenAI.Budget.Action = "warn"
	}

	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 4
	}
	if c.Pipeline.CallTimeoutSec <= 0 {
		c.Pipeline.CallTimeoutSec = 20
	}
	if c.Pipeline.MaxTokens <= 0 {
		c.Pipeline.MaxTokens = 300
	}

	if c.Cache.TTLHour <= 0 {
		c.Cache.TTLHour = 24 * 7
	}

	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 5
	}
	if c.Breaker.OpenTimeoutSec <= 0 {
		c.Breaker.OpenTimeoutSec = 30
	}
	if c.Breaker.HalfOpenRequests == 0 {
		c.Breaker.HalfOpenRequests = 1
	}
}

func (c *Config) applyDatabaseDefaults() {
	db := &c.Database
	if db.Driver == "" {
		db.Driver = DriverValkey
	}
	if db.Collection == "" {
		db.Collection = "movies"
	}
	if db.ReadinessTimeout <= 0 {
		db.ReadinessTimeout = 10
	}
	if db.Qdrant.Port == 0 {
		db.Qdrant.Port = 6334
	}
	if db.Supabase.MatchFunction == "" {
		db.Supabase.MatchFunction = "match_" + db.Collection
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	switch c.OpenAI.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("openai.budget.action must be \"warn\" or \"reject\", got %q", c.OpenAI.Budget.Action)
	}
	if c.OpenAI.RateLimit < 0 {
		return fmt.Errorf("openai.rate_limit must be >= 0, got %v", c.OpenAI.RateLimit)
	}
	if c.Pipeline.Threshold < 0 || c.Pipeline.Threshold > 1 {
		return fmt.Errorf("pipeline.threshold must be within [0, 1], got %v", c.Pipeline.Threshold)
	}
	if c.Cache.Enabled && !c.Database.kvCapable() {
		return fmt.Errorf("cache.enabled requires the valkey or redis driver, got %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	db := c.Database
	switch db.Driver {
	case DriverValkey, DriverRedis:
		if len(db.Valkey.Addrs) == 0 {
			return fmt.Errorf("database.valkey.addrs is required for driver %q", db.Driver)
		}
	case DriverQdrant:
		if db.Qdrant.Host == "" {
			return fmt.Errorf("database.qdrant.host is required")
		}
	case DriverSupabase:
		if db.Supabase.URL == "" || db.Supabase.APIKey == "" {
			return fmt.Errorf("database.supabase.url and database.supabase.api_key are required")
		}
	case DriverChromem:
	default:
		return fmt.Errorf("database.driver must be one of valkey, redis, qdrant, supabase, chromem, got %q", db.Driver)
	}
	return nil
}

// kvCapable reports whether the driver also serves as a key-value store.
func (db DatabaseConfig) kvCapable() bool {
	return db.Driver == DriverValkey || db.Driver == DriverRedis
}

// KVCapable reports whether the selected driver can back the embedding cache and budget counters.
func (c *Config) KVCapable() bool { return c.Database.kvCapable() }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
