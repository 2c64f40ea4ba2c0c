package embedding

import "context"

// Embedder converts text into fixed-length vectors. Passage and query
// inputs go through distinct encoding modes: the underlying model
// aligns them geometrically only when each side uses its own mode, so
// the mode switch is part of the contract rather than an option.
type Embedder interface {
	// EmbedPassages embeds indexed content. Empty input yields empty
	// output without a model call.
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds search input. Failure is hard: the caller
	// cannot retrieve without a query vector.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
