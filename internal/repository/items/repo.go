// Package items persists context items and their FT indexes.
package items

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/studylens/fuserank/internal/db"
	"github.com/studylens/fuserank/internal/domain"
	domitem "github.com/studylens/fuserank/internal/domain/item"
)

// store is the consumer interface for item persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores items as hashes under per-collection key prefixes.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates an items repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WithHNSW configures HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the collection's FT index if it does not exist yet.
// The index covers the fused hybrid vector, so dim must match the fusion
// method's output dimension.
func (r *Repo) EnsureIndex(ctx context.Context, collection string, dim int) error {
	name := domain.IndexName(collection)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{domain.KeyPrefix + collection + ":"},
		Fields: []db.IndexField{
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dim,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", collection, err)
	}
	return nil
}

// Upsert stores an item. Returns true when the item was created, false when
// an existing item was overwritten.
func (r *Repo) Upsert(ctx context.Context, collection string, it *domitem.Item) (bool, error) {
	key := domain.ItemKey(collection, it.ID())

	existed, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}

	fields := map[string]string{
		"__content": it.Content(),
		"__vector":  db.VectorToBytes(it.Vector()),
	}
	for k, v := range it.Tags() {
		fields[k] = v
	}
	for k, v := range it.Numerics() {
		fields[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("upsert item %s: %w", key, err)
	}
	return !existed, nil
}

// Get retrieves an item by collection and id.
func (r *Repo) Get(ctx context.Context, collection, id string) (domitem.Item, error) {
	key := domain.ItemKey(collection, id)

	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item %s: %w", key, err)
	}
	if len(fields) == 0 {
		return domitem.Item{}, fmt.Errorf("%s: %w", key, domain.ErrItemNotFound)
	}

	var content string
	var vec []float32
	tags := make(map[string]string)
	numerics := make(map[string]float64)

	for k, v := range fields {
		switch k {
		case "__content":
			content = v
		case "__vector":
			vec = db.VectorFromBytes(v)
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			} else {
				tags[k] = v
			}
		}
	}

	return domitem.Reconstruct(id, content, tags, numerics, vec), nil
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	key := domain.ItemKey(collection, id)

	existed, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("exists %s: %w", key, err)
	}
	if !existed {
		return fmt.Errorf("%s: %w", key, domain.ErrItemNotFound)
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete item %s: %w", key, err)
	}
	return nil
}

// Count returns the number of items in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	count, err := r.store.SearchCount(ctx, domain.IndexName(collection), "*")
	if err != nil {
		return 0, fmt.Errorf("count items %s: %w", collection, err)
	}
	return count, nil
}
