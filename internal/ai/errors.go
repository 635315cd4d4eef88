package ai

import "errors"

var (
	// ErrEmptyCompletion indicates the model returned no usable output,
	// usually due to upstream content filtering.
	ErrEmptyCompletion = errors.New("model returned empty completion")
)
