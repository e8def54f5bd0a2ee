package fuserank

import "go.uber.org/zap"

// Option configures the embedded Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	hnswM           int
	hnswEFConstruct int

	embedder      Embedder
	imageEmbedder ImageEmbedder

	fusionMethod string
	textWeight   float64
	imageWeight  float64
	imageDim     int

	collections []string
	topK        int
	minScore    float64

	perSourceLimit int
	finalLimit     int

	logger *zap.Logger
}

// WithRedis sets the Redis connection addresses.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) { c.password = password }
}

// WithHNSW overrides HNSW index build parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithImageEmbedder sets the image embedding provider.
func WithImageEmbedder(e ImageEmbedder) Option {
	return func(c *clientConfig) { c.imageEmbedder = e }
}

// WithFusion overrides the default fusion parameters
// (method: concatenation, weighted_average or dynamic_attention).
func WithFusion(method string, textWeight, imageWeight float64, imageDim int) Option {
	return func(c *clientConfig) {
		c.fusionMethod = method
		c.textWeight = textWeight
		c.imageWeight = imageWeight
		c.imageDim = imageDim
	}
}

// WithCollections sets the collections searched per query.
func WithCollections(collections ...string) Option {
	return func(c *clientConfig) { c.collections = collections }
}

// WithRanking overrides the default top-k and score threshold.
func WithRanking(topK int, minScore float64) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.minScore = minScore
	}
}

// WithRecommendation overrides recommendation composition limits.
func WithRecommendation(perSourceLimit, finalLimit int) Option {
	return func(c *clientConfig) {
		c.perSourceLimit = perSourceLimit
		c.finalLimit = finalLimit
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}
