package vectorstore

import "errors"

var (
	// ErrDimensionMismatch indicates a vector length differs from the
	// store's configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrVectorCountMismatch indicates chunks and vectors slices differ in length.
	ErrVectorCountMismatch = errors.New("chunk and vector counts differ")

	// ErrMissingOwner indicates a search or upsert without an owner scope.
	ErrMissingOwner = errors.New("owner ID is required")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("vector store is closed")
)
