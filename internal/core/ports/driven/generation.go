package driven

import "context"

// GenerationService produces chat completions. It is the one required
// collaborator on the query path: its failure is fatal to the turn.
//
// Implementations may include:
//   - OpenAI (GPT models)
//   - Ollama (local models)
type GenerationService interface {
	// Generate produces a completion for the prompt and reports the
	// real token usage of the call.
	Generate(ctx context.Context, prompt string) (*GenerationResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerationResult is the output of one generation call.
type GenerationResult struct {
	// Text is the generated response.
	Text string

	// TokensUsed is the total token usage reported by the service.
	TokensUsed int
}
