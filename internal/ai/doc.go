// Package ai defines the interfaces for language-model services used by the
// RAG pipeline: text embedding and grounded answer generation.
//
// Concrete implementations live in subpackages (openai for OpenAI-compatible
// APIs, mock for tests) so calling code never depends on a specific provider.
package ai
