package popchoice

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/popchoice/internal/config"
	"github.com/kailas-cloud/popchoice/internal/domain"
)

const (
	defaultCollection = "movies"
	defaultChatModel  = "gpt-4o-mini"
	defaultProvider   = "openai"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	db config.DatabaseConfig

	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	embedder       Embedder

	pipeline    domain.PipelineConfig
	callTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	vec := domain.DefaultVectorConfig()
	return &clientConfig{
		db:             config.DatabaseConfig{Collection: defaultCollection},
		embeddingModel: vec.Model,
		chatModel:      defaultChatModel,
		pipeline:       domain.DefaultPipelineConfig(),
		callTimeout:    20 * time.Second,
	}
}

// WithValkey reads the catalog from a Valkey instance with the search module.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverValkey
		c.db.Valkey = config.ValkeyConfig{Addrs: []string{addr}, Password: password}
	})
}

// WithRedis reads the catalog from a Redis Stack instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverRedis
		c.db.Valkey = config.ValkeyConfig{Addrs: []string{addr}, Password: password}
	})
}

// WithQdrant reads the catalog from a Qdrant collection over gRPC.
// A zero port selects 6334.
func WithQdrant(host string, port int, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		if port == 0 {
			port = 6334
		}
		c.db.Driver = config.DriverQdrant
		c.db.Qdrant = config.QdrantConfig{Host: host, Port: port, APIKey: apiKey, UseTLS: apiKey != ""}
	})
}

// WithSupabase reads the catalog through the project's match_<collection> RPC.
func WithSupabase(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverSupabase
		c.db.Supabase = config.SupabaseConfig{URL: url, APIKey: apiKey}
	})
}

// WithChromem reads the catalog from an embedded chromem-go database.
// An empty path keeps everything in memory.
func WithChromem(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverChromem
		c.db.Chromem = config.ChromemConfig{Path: path}
	})
}

// WithCollection overrides the catalog collection name. Default: "movies".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Collection = name
	})
}

// WithOpenAI sets the API key used for summarization, synthesis and embeddings.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithModels overrides the embedding and chat models. Empty values keep the defaults.
func WithModels(embedding, chat string) Option {
	return optionFunc(func(c *clientConfig) {
		if embedding != "" {
			c.embeddingModel = embedding
		}
		if chat != "" {
			c.chatModel = chat
		}
	})
}

// WithEmbedder replaces the OpenAI embedder. Its vectors must live in the
// same space as the stored catalog.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the expected embedding length. Default: 1536.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pipeline.Dimensions = dim
	})
}

// WithThreshold sets the minimum similarity for a passage to count as a match. Default: 0.50.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.pipeline.Threshold = t
	})
}

// WithTopK caps the number of matches passed to generation. Default: 4.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pipeline.TopK = k
	})
}

// WithCallTimeout bounds every remote call of a recommendation. Default: 20s.
func WithCallTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.callTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
