package docsift

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs        []string
	username     string
	password     string
	keyPrefix    string
	vectorDim    int
	threshold    float64
	historyLimit int
	embedder     Embedder
	expander     Expander
	logger       *zap.Logger
}

// WithRedis sets the Redis connection addresses.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithAuth sets Redis credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithKeyPrefix overrides the default "docsift:" key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithVectorDimensions sets the embedding dimensionality. It must match the
// embedder's output.
func WithVectorDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.vectorDim = dim
	}
}

// WithSimilarityThreshold sets the default cosine similarity cutoff for
// semantic search.
func WithSimilarityThreshold(threshold float64) Option {
	return func(c *clientConfig) {
		c.threshold = threshold
	}
}

// WithHistoryLimit caps the number of retained history entries.
func WithHistoryLimit(limit int) Option {
	return func(c *clientConfig) {
		c.historyLimit = limit
	}
}

// WithEmbedder sets the embedding provider used for semantic search.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithSynonymExpander sets the term expander used by keyword search when a
// query asks for synonym expansion.
func WithSynonymExpander(e Expander) Option {
	return func(c *clientConfig) {
		c.expander = e
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
