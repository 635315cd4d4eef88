// Package badger implements vectorstore.Store on an embedded BadgerDB.
// It is the single-node fallback backend: no external vector database is
// needed, at the cost of a brute-force scan per search. Vectors are
// normalized on write so similarity is a plain dot product.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/vectorstore"
)

// Store implements vectorstore.Store on BadgerDB.
type Store struct {
	db         *badger.DB
	dimensions int
	logger     *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// chunkRecord is the stored form of a chunk with its owner and embedding.
type chunkRecord struct {
	OwnerID string      `json:"owner_id"`
	Chunk   model.Chunk `json:"chunk"`
	Vector  []float32   `json:"vector"` // unit length
}

// docRecord tracks per-document chunk membership for deletes and stats.
type docRecord struct {
	OwnerID    string   `json:"owner_id"`
	Filename   string   `json:"filename"`
	ChunkKeys  []string `json:"chunk_keys"`
	ChunkCount int      `json:"chunk_count"`
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens (or creates) a Badger-backed store at path.
// With inMemory set, nothing touches disk; used in tests and dev mode.
func Open(path string, dimensions int, inMemory bool) (*Store, error) {
	logger := slog.Default().With("component", "badger-vectorstore")

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(&badgerLoggerAdapter{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: db, dimensions: dimensions, logger: logger}, nil
}

// Upsert stores chunks with normalized embeddings and refreshes the
// document registry entry.
func (s *Store) Upsert(ctx context.Context, ownerID string, chunks []model.Chunk, vectors [][]float32) error {
	if ownerID == "" {
		return vectorstore.ErrMissingOwner
	}
	if len(chunks) != len(vectors) {
		return vectorstore.ErrVectorCountMismatch
	}
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Update(func(tx *badger.Txn) error {
		doc, err := s.readDoc(tx, chunks[0].DocumentID)
		if err != nil {
			return err
		}
		if doc == nil {
			doc = &docRecord{OwnerID: ownerID, Filename: chunks[0].Filename}
		}

		for i, chunk := range chunks {
			if len(vectors[i]) != s.dimensions {
				return fmt.Errorf("chunk %d: %w (got %d, want %d)",
					chunk.Index, vectorstore.ErrDimensionMismatch, len(vectors[i]), s.dimensions)
			}

			record := chunkRecord{
				OwnerID: ownerID,
				Chunk:   chunk,
				Vector:  vectorstore.Normalize(vectors[i]),
			}
			value, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal chunk record: %w", err)
			}

			key := makeChunkKey(chunk.DocumentID, chunk.Index)
			if err := tx.Set(key, value); err != nil {
				return err
			}
			doc.ChunkKeys = appendUnique(doc.ChunkKeys, string(key))
		}
		doc.ChunkCount = len(doc.ChunkKeys)

		return s.writeDoc(tx, chunks[0].DocumentID, doc)
	})
}

// Search scans all chunks and returns the k best cosine matches.
func (s *Store) Search(ctx context.Context, vector []float32, k int, minScore float32, filter vectorstore.Filter) ([]model.ScoredChunk, error) {
	if filter.OwnerID == "" {
		return nil, vectorstore.ErrMissingOwner
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w (got %d, want %d)",
			vectorstore.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	query := vectorstore.Normalize(vector)
	var results []model.ScoredChunk

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Honor cancellation during long scans.
			if err := ctx.Err(); err != nil {
				return err
			}

			var record chunkRecord
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("unmarshal chunk record: %w", err)
			}

			if record.OwnerID != filter.OwnerID {
				continue
			}
			if filter.DocumentID != "" && record.Chunk.DocumentID != filter.DocumentID {
				continue
			}
			if len(record.Vector) == 0 {
				continue
			}

			// Dot product of unit vectors is cosine similarity.
			score := vectorstore.Dot(query, record.Vector)
			if score >= minScore {
				results = append(results, model.ScoredChunk{Chunk: record.Chunk, Score: score})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteDocument removes a document's chunks and its registry entry.
func (s *Store) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	if ownerID == "" {
		return vectorstore.ErrMissingOwner
	}

	return s.db.Update(func(tx *badger.Txn) error {
		doc, err := s.readDoc(tx, documentID)
		if err != nil {
			return err
		}
		if doc == nil || doc.OwnerID != ownerID {
			// Nothing stored for this owner/document pair.
			return nil
		}

		for _, key := range doc.ChunkKeys {
			if err := tx.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return tx.Delete(makeDocKey(documentID))
	})
}

// DocumentChunks returns a document's chunks ordered by index, without
// embeddings.
func (s *Store) DocumentChunks(ctx context.Context, ownerID, documentID string) ([]model.Chunk, error) {
	if ownerID == "" {
		return nil, vectorstore.ErrMissingOwner
	}

	var chunks []model.Chunk
	err := s.db.View(func(tx *badger.Txn) error {
		doc, err := s.readDoc(tx, documentID)
		if err != nil {
			return err
		}
		if doc == nil || doc.OwnerID != ownerID {
			return nil
		}

		for _, key := range doc.ChunkKeys {
			item, err := tx.Get([]byte(key))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}

			var record chunkRecord
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("unmarshal chunk record: %w", err)
			}
			chunks = append(chunks, record.Chunk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

// Stats counts documents and chunks via key-only iteration.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	stats := &vectorstore.Stats{
		Backend:    "badger",
		Dimensions: s.dimensions,
	}

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			switch {
			case hasPrefix(key, chunkPrefix):
				stats.Chunks++
			case hasPrefix(key, docPrefix):
				stats.Documents++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Ping verifies the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return vectorstore.ErrStoreClosed
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readDoc(tx *badger.Txn, documentID string) (*docRecord, error) {
	item, err := tx.Get(makeDocKey(documentID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc docRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal doc record: %w", err)
	}
	return &doc, nil
}

func (s *Store) writeDoc(tx *badger.Txn, documentID string, doc *docRecord) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc record: %w", err)
	}
	return tx.Set(makeDocKey(documentID), value)
}

func appendUnique(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}
