// Package item holds the context item stored in a collection.
package item

// Item is a single piece of retrievable content (a question, an explanation)
// together with its fused embedding vector.
type Item struct {
	id       string
	content  string
	tags     map[string]string
	numerics map[string]float64
	vector   []float32
}

// New creates an item without a vector; the ingest service fuses one in.
func New(id, content string, tags map[string]string, numerics map[string]float64) Item {
	return Item{id: id, content: content, tags: tags, numerics: numerics}
}

// Reconstruct rebuilds an item from storage, vector included.
func Reconstruct(
	id, content string, tags map[string]string, numerics map[string]float64,
	vector []float32,
) Item {
	return Item{id: id, content: content, tags: tags, numerics: numerics, vector: vector}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Content returns the item content.
func (i *Item) Content() string { return i.content }

// Tags returns the item tag fields.
func (i *Item) Tags() map[string]string { return i.tags }

// Numerics returns the item numeric fields.
func (i *Item) Numerics() map[string]float64 { return i.numerics }

// Vector returns the fused embedding vector.
func (i *Item) Vector() []float32 { return i.vector }

// SetVector attaches the fused embedding vector.
func (i *Item) SetVector(v []float32) { i.vector = v }
