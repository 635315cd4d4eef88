// Package vectorstore defines the interface for persisting and searching
// document chunk embeddings, with two backends:
//
//   - pgvector: chunks live in the shared PostgreSQL instance with a vector
//     column and cosine-distance search. The default for deployments.
//   - badger: an embedded key-value store with brute-force cosine scan.
//     Single-node fallback that needs no external vector database.
//
// Both backends are safe for concurrent use and score results by cosine
// similarity, ordered descending.
package vectorstore
