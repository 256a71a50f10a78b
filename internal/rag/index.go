package rag

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
)

// Index is a similarity index that lives for a single request. It owns its
// own chromem database, so two indexes never see each other's chunks.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	chunks     map[string]Chunk

	closeOnce sync.Once
	closeErr  error
}

// BuildIndex embeds every chunk and loads the pairs into a fresh collection.
// The caller must Close the returned index.
func BuildIndex(ctx context.Context, embedder embeddings.Embedder, chunks []Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(vectors), len(chunks))
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("request-"+uuid.NewString(), nil, chromem.EmbeddingFunc(embedder.EmbedQuery))
	if err != nil {
		return nil, fmt.Errorf("create collection failed: %w", err)
	}
	idx := &Index{
		db:         db,
		collection: collection,
		embedder:   embedder,
		chunks:     make(map[string]Chunk, len(chunks)),
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		id := strconv.Itoa(c.Index)
		idx.chunks[id] = c
		docs[i] = chromem.Document{
			ID:      id,
			Content: c.Text,
			Metadata: map[string]string{
				metaIndex:  id,
				metaPage:   strconv.Itoa(c.Page),
				metaSource: c.Source,
			},
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("add documents failed: %w", err)
	}
	return idx, nil
}

func (i *Index) Len() int {
	if i.collection == nil {
		return 0
	}
	return i.collection.Count()
}

// Search returns the k chunks most similar to query. The search is exact:
// every document is scored, results are ordered by descending similarity and
// ties keep document order.
func (i *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if i.collection == nil {
		return nil, errors.New("index is closed")
	}
	n := i.collection.Count()
	if n == 0 || k <= 0 {
		return nil, nil
	}

	queryVec, err := i.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	results, err := i.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("query collection failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		chunk, ok := i.chunks[r.ID]
		if !ok {
			return nil, fmt.Errorf("unknown document id %q in results", r.ID)
		}
		hits = append(hits, Hit{Chunk: chunk, Similarity: r.Similarity})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].Chunk.Index < hits[b].Chunk.Index
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Close drops the collection. Safe to call more than once.
func (i *Index) Close() error {
	i.closeOnce.Do(func() {
		if i.collection != nil {
			i.closeErr = i.db.DeleteCollection(i.collection.Name)
		}
		i.collection = nil
		i.chunks = nil
	})
	return i.closeErr
}
