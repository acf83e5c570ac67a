package stats

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultTokenModel is the tokenizer used when no model is requested.
const DefaultTokenModel = "gpt-4o"

// CountTokens returns the tiktoken token count of text for the given model.
func CountTokens(text string, model string) (int, error) {
	if model == "" {
		model = DefaultTokenModel
	}
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return 0, fmt.Errorf("failed to get tokenizer for model %q: %w", model, err)
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
