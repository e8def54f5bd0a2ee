// Package candidate holds retrieval candidates and ranked results.
package candidate

// Candidate is one hit from a single retrieval source. RawScore is
// source-local (for vector sources, 1 - cosine distance) and is only
// comparable across sources after aggregation.
type Candidate struct {
	id       string
	content  string
	source   string
	rawScore float64
	tags     map[string]string
	numerics map[string]float64
	vector   []float32
}

// New creates a retrieval candidate.
func New(
	id string, rawScore float64, content, source string,
	tags map[string]string, numerics map[string]float64,
	vector []float32,
) Candidate {
	return Candidate{
		id: id, rawScore: rawScore, content: content, source: source,
		tags: tags, numerics: numerics, vector: vector,
	}
}

// ID returns the item identifier.
func (c *Candidate) ID() string { return c.id }

// Content returns the item content.
func (c *Candidate) Content() string { return c.content }

// Source returns the name of the source that produced this candidate.
func (c *Candidate) Source() string { return c.source }

// RawScore returns the source-local relevance score.
func (c *Candidate) RawScore() float64 { return c.rawScore }

// Tags returns the item tag fields.
func (c *Candidate) Tags() map[string]string { return c.tags }

// Numerics returns the item numeric fields.
func (c *Candidate) Numerics() map[string]float64 { return c.numerics }

// Vector returns the item embedding vector, when the source included it.
func (c *Candidate) Vector() []float32 { return c.vector }

// Ranked is a candidate after aggregation: deduplicated, thresholded and
// ordered descending by similarity.
type Ranked struct {
	id         string
	content    string
	source     string
	similarity float64
	tags       map[string]string
	numerics   map[string]float64
}

// NewRanked creates a ranked result.
func NewRanked(
	id string, similarity float64, content, source string,
	tags map[string]string, numerics map[string]float64,
) Ranked {
	return Ranked{
		id: id, similarity: similarity, content: content, source: source,
		tags: tags, numerics: numerics,
	}
}

// FromCandidate converts a surviving candidate into a ranked result,
// carrying its raw score forward as the similarity.
func FromCandidate(c Candidate) Ranked {
	return NewRanked(c.id, c.rawScore, c.content, c.source, c.tags, c.numerics)
}

// ID returns the item identifier.
func (r *Ranked) ID() string { return r.id }

// Content returns the item content.
func (r *Ranked) Content() string { return r.content }

// Source returns the winning source for this item.
func (r *Ranked) Source() string { return r.source }

// Similarity returns the blended relevance score.
func (r *Ranked) Similarity() float64 { return r.similarity }

// Tags returns the item tag fields.
func (r *Ranked) Tags() map[string]string { return r.tags }

// Numerics returns the item numeric fields.
func (r *Ranked) Numerics() map[string]float64 { return r.numerics }

// WithSimilarity returns a copy with a replaced similarity score.
// Used by rerankers, which rescore without touching identity or payload.
func (r *Ranked) WithSimilarity(similarity float64) Ranked {
	out := *r
	out.similarity = similarity
	return out
}
