package recommend

import "github.com/studylens/fuserank/internal/domain/candidate"

// rankedDTO is the JSON cache representation of a ranked result.
type rankedDTO struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	Source     string             `json:"source"`
	Similarity float64            `json:"similarity"`
	Tags       map[string]string  `json:"tags,omitempty"`
	Numerics   map[string]float64 `json:"numerics,omitempty"`
}

func toDTOs(results []candidate.Ranked) []rankedDTO {
	dtos := make([]rankedDTO, len(results))
	for i := range results {
		r := &results[i]
		dtos[i] = rankedDTO{
			ID:         r.ID(),
			Content:    r.Content(),
			Source:     r.Source(),
			Similarity: r.Similarity(),
			Tags:       r.Tags(),
			Numerics:   r.Numerics(),
		}
	}
	return dtos
}

func fromDTOs(dtos []rankedDTO) []candidate.Ranked {
	results := make([]candidate.Ranked, len(dtos))
	for i, d := range dtos {
		results[i] = candidate.NewRanked(d.ID, d.Similarity, d.Content, d.Source, d.Tags, d.Numerics)
	}
	return results
}
