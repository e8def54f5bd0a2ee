package item

import (
	"context"

	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	domitem "github.com/studylens/fuserank/internal/domain/item"
)

// Repository defines the persistence contract for context items.
type Repository interface {
	EnsureIndex(ctx context.Context, collection string, dim int) error
	Upsert(ctx context.Context, collection string, it *domitem.Item) (bool, error)
	Get(ctx context.Context, collection, id string) (domitem.Item, error)
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int, error)
}

// Fuser embeds item content and fuses it into one hybrid vector.
type Fuser interface {
	FuseContent(ctx context.Context, text string, images []string) (domfusion.HybridResult, error)
}
