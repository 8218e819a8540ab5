package llm

import "fmt"

// EmbeddingProviderError is returned when the embedding provider fails or returns an empty vector.
type EmbeddingProviderError struct {
	Model string
	Err   error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider error (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error {
	return e.Err
}

// GenerationProviderError is returned when the generation provider fails.
type GenerationProviderError struct {
	Model string
	Err   error
}

func (e *GenerationProviderError) Error() string {
	return fmt.Sprintf("generation provider error (model %s): %v", e.Model, e.Err)
}

func (e *GenerationProviderError) Unwrap() error {
	return e.Err
}
