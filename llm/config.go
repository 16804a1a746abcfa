// Package llm turns session transcripts into summaries through a text
// generation model.
package llm

// Config holds the model settings of the summarizer.
type Config struct {
	Model           string  `toml:"model" validate:"required"`
	Temperature     float32 `toml:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32   `toml:"max_output_tokens" validate:"gt=0"`
}

// DefaultConfig returns the settings the summary prompt was tuned with.
func DefaultConfig() Config {
	return Config{
		Model:           "gemini-2.5-flash",
		Temperature:     0.7,
		MaxOutputTokens: 1500,
	}
}
