// Package fuserank is the embedded-mode SDK: the same fusion, retrieval and
// recommendation engine the HTTP server exposes, wired directly into the
// host process.
package fuserank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/db"
	dbRedis "github.com/studylens/fuserank/internal/db/redis"
	"github.com/studylens/fuserank/internal/domain"
	"github.com/studylens/fuserank/internal/domain/candidate"
	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	domitem "github.com/studylens/fuserank/internal/domain/item"
	candidatesrepo "github.com/studylens/fuserank/internal/repository/candidates"
	itemsrepo "github.com/studylens/fuserank/internal/repository/items"
	recentrepo "github.com/studylens/fuserank/internal/repository/recent"
	fusionuc "github.com/studylens/fuserank/internal/usecase/fusion"
	itemuc "github.com/studylens/fuserank/internal/usecase/item"
	rankuc "github.com/studylens/fuserank/internal/usecase/rank"
	recommenduc "github.com/studylens/fuserank/internal/usecase/recommend"
	retrievaluc "github.com/studylens/fuserank/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRecentTTL        = 24 * time.Hour
	defaultCacheTTL         = 5 * time.Minute
)

// Client is the fuserank SDK entry point.
type Client struct {
	store        db.Store
	fuser        *fusionuc.Service
	itemSvc      *itemuc.Service
	retrievalSvc *retrievaluc.Service
	recommendSvc *recommenduc.Service
}

// New creates a fuserank Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("fuserank: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("fuserank: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("fuserank: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fusionCfg := domfusion.DefaultConfig()
	if cfg.fusionMethod != "" {
		fusionCfg.Method = domfusion.Method(cfg.fusionMethod)
	}
	if cfg.textWeight != 0 || cfg.imageWeight != 0 {
		fusionCfg.TextWeight = cfg.textWeight
		fusionCfg.ImageWeight = cfg.imageWeight
	}
	if cfg.imageDim > 0 {
		fusionCfg.ImageDim = cfg.imageDim
	}

	// Embedder: noop when not configured — vector-level fusion still works,
	// content ingest and search return an error.
	var textEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		textEmb = &embedderAdapter{inner: cfg.embedder}
	}
	var imageEmb domain.ImageEmbedder
	if cfg.imageEmbedder != nil {
		imageEmb = &imageEmbedderAdapter{inner: cfg.imageEmbedder}
	}

	fuser := fusionuc.New(fusionCfg, logger).WithEmbedders(textEmb, imageEmb)

	itemsRepo := itemsrepo.New(store)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		itemsRepo = itemsRepo.WithHNSW(itemsrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	candidatesRepo := candidatesrepo.New(store)
	recentStore := recentrepo.New(store, defaultRecentTTL)

	aggregator := rankuc.NewAggregator(logger)
	retrievalSvc := retrievaluc.New(candidatesRepo, fuser, aggregator, cfg.collections, logger).
		WithDefaults(cfg.topK, cfg.minScore).
		WithRecentRecorder(recentStore)

	perSource, final := cfg.perSourceLimit, cfg.finalLimit
	if perSource <= 0 {
		perSource = 20
	}
	if final <= 0 {
		final = 10
	}
	recommendSvc := recommenduc.New(perSource, final, logger).
		WithCache(store, defaultCacheTTL)
	for _, collection := range cfg.collections {
		recommendSvc.WithGenerators(recommenduc.NewSimilarToRecentGenerator(
			"similar_recent_"+collection, collection, recentStore, candidatesRepo,
		))
	}

	return &Client{
		store:        store,
		fuser:        fuser,
		itemSvc:      itemuc.New(itemsRepo, fuser, logger),
		retrievalSvc: retrievalSvc,
		recommendSvc: recommendSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Fuse combines a text vector and zero-or-more image vectors under the
// configured fusion defaults. Pure vector math, no embedding calls.
func (c *Client) Fuse(text []float32, images [][]float32) FusionResult {
	res := c.fuser.Fuse(text, images, c.fuser.Defaults())
	return FusionResult{
		Hybrid:  res.Hybrid,
		Text:    res.Text,
		Image:   res.Image,
		Method:  string(res.Method),
		Success: res.Success,
		Error:   res.Error,
	}
}

// Put fuses and stores an item in a collection. Returns true when the item
// was created rather than overwritten.
func (c *Client) Put(ctx context.Context, collection, id string, item Item) (bool, error) {
	it := domitem.New(id, item.Content, item.Tags, item.Numerics)
	created, err := c.itemSvc.Ingest(ctx, collection, &it, item.Images)
	if err != nil {
		return false, fmt.Errorf("put: %w", err)
	}
	return created, nil
}

// Get fetches a stored item.
func (c *Client) Get(ctx context.Context, collection, id string) (Item, error) {
	it, err := c.itemSvc.Get(ctx, collection, id)
	if err != nil {
		return Item{}, fmt.Errorf("get: %w", err)
	}
	return Item{
		Content:  it.Content(),
		Tags:     it.Tags(),
		Numerics: it.Numerics(),
	}, nil
}

// Delete removes a stored item.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := c.itemSvc.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of items in a collection.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	count, err := c.itemSvc.Count(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// Search retrieves ranked context for a query across the configured
// collections, returning the results and a confidence score.
func (c *Client) Search(
	ctx context.Context, query string, opts *SearchOptions,
) ([]RankedResult, float64, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	results, confidence, err := c.retrievalSvc.Search(
		ctx, opts.UserID, query, opts.Images, opts.TopK, opts.MinScore,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	return fromRanked(results), confidence, nil
}

// Recommendations returns the composed recommendation list for a user.
func (c *Client) Recommendations(ctx context.Context, userID string) ([]RankedResult, error) {
	results, err := c.recommendSvc.Recommend(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	return fromRanked(results), nil
}

func fromRanked(results []candidate.Ranked) []RankedResult {
	out := make([]RankedResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = RankedResult{
			ID:         r.ID(),
			Content:    r.Content(),
			Source:     r.Source(),
			Similarity: r.Similarity(),
			Tags:       r.Tags(),
			Numerics:   r.Numerics(),
		}
	}
	return out
}

// embedderAdapter wraps a public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// imageEmbedderAdapter wraps a public ImageEmbedder for the internal contract.
type imageEmbedderAdapter struct {
	inner ImageEmbedder
}

func (a *imageEmbedderAdapter) EmbedImage(ctx context.Context, image string) (domain.EmbeddingResult, error) {
	r, err := a.inner.EmbedImage(ctx, image)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"fuserank: embedder not configured (use WithEmbedder for content ingest and search)",
	)
}
