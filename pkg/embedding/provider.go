package embedding

import "context"

// EmbeddingProvider converts text to a fixed-length vector. Callers treat any
// error as "no embedding for this item" and carry on; they must never mix
// vectors from different models in one index.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// Dimensions reports the vector length of the configured model.
	Dimensions() int
}
