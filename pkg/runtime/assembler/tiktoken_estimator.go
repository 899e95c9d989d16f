package assembler

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// NewTikTokenEstimator returns a TokenEstimator backed by tiktoken-go for the
// given model (e.g. "gpt-4o"). If the model is unknown, EncodingForModel
// returns an error; callers typically fall back to the rune-length default.
func NewTikTokenEstimator(model string) (TokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
