package engine

import (
	"context"
	"math"
	"strings"

	"chainsight/internal/dataset"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Embedder produces vector embeddings for text. It is an optional external
// collaborator; the engine never loads or manages an embedding model itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([][]float64, error)
}

// TextResult carries per-dimension statistics over the embedding vectors.
type TextResult struct {
	RunID      string    `json:"run_id"`
	Vectors    int       `json:"vectors"`
	Dimensions int       `json:"dimensions"`
	Mean       []float64 `json:"mean,omitempty"`
	StdDev     []float64 `json:"std,omitempty"`
	Degraded   []string  `json:"degraded,omitempty"`
}

// AnalyzeText delegates to the injected embedder and reduces its vectors to
// per-dimension mean and standard deviation. A missing or failing embedder
// yields an explicit degraded result with empty statistics; results are
// never fabricated.
func (o *Orchestrator) AnalyzeText(ctx context.Context, text string) (*TextResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &dataset.DataError{Reason: "no text provided"}
	}

	result := &TextResult{RunID: uuid.NewString()}

	if o.embedder == nil {
		result.Degraded = append(result.Degraded, "embedding")
		return result, nil
	}

	vectors, err := o.embedder.Embed(ctx, text)
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		log.Warn().Err(err).Msg("Embedder unavailable; returning degraded text analysis")
		result.Degraded = append(result.Degraded, "embedding")
		return result, nil
	}

	dims := len(vectors[0])
	mean := make([]float64, dims)
	std := make([]float64, dims)

	for _, vec := range vectors {
		for d := 0; d < dims && d < len(vec); d++ {
			mean[d] += vec[d]
		}
	}
	for d := range mean {
		mean[d] /= float64(len(vectors))
	}

	for _, vec := range vectors {
		for d := 0; d < dims && d < len(vec); d++ {
			diff := vec[d] - mean[d]
			std[d] += diff * diff
		}
	}
	for d := range std {
		std[d] = math.Sqrt(std[d] / float64(len(vectors)))
	}

	result.Vectors = len(vectors)
	result.Dimensions = dims
	result.Mean = mean
	result.StdDev = std
	return result, nil
}
