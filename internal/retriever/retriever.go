// Package retriever selects the few-shot examples most similar to a question.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/liliang-cn/sqvect/v2/pkg/index"

	"github.com/bookquery/bookquery/internal/embedding"
	"github.com/bookquery/bookquery/internal/fewshot"
)

const DefaultK = 2

type Scored struct {
	Example  fewshot.Example `json:"example"`
	Distance float32         `json:"distance"`
}

// Retriever holds an exact cosine index over the corpus. It is built once and
// never written to afterwards, so concurrent Select calls are safe.
type Retriever struct {
	embedder embedding.Embedder
	examples []fewshot.Example
	index    *index.FlatIndex
	k        int
}

func New(ctx context.Context, embedder embedding.Embedder, corpus []fewshot.Example, k int) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("example corpus is empty")
	}
	if k <= 0 {
		k = DefaultK
	}

	texts := make([]string, len(corpus))
	ids := make([]string, len(corpus))
	for i, example := range corpus {
		texts[i] = example.Text()
		ids[i] = strconv.Itoa(i)
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed example corpus: %w", err)
	}
	if len(vectors) != len(corpus) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d examples", len(vectors), len(corpus))
	}

	idx := index.NewFlatIndexCosine(embedder.Dimensions())
	if err := idx.BatchInsert(ids, vectors); err != nil {
		return nil, fmt.Errorf("build example index: %w", err)
	}

	examples := make([]fewshot.Example, len(corpus))
	copy(examples, corpus)
	return &Retriever{
		embedder: embedder,
		examples: examples,
		index:    idx,
		k:        k,
	}, nil
}

func (r *Retriever) K() int {
	return r.k
}

// Select returns up to k examples, closest first.
func (r *Retriever) Select(ctx context.Context, question string) ([]fewshot.Example, error) {
	scored, err := r.SelectScored(ctx, question)
	if err != nil {
		return nil, err
	}
	out := make([]fewshot.Example, len(scored))
	for i, item := range scored {
		out[i] = item.Example
	}
	return out, nil
}

func (r *Retriever) SelectScored(ctx context.Context, question string) ([]Scored, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is required")
	}
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vec) != r.embedder.Dimensions() {
		return nil, fmt.Errorf("question embedding dimension mismatch: expected %d, got %d", r.embedder.Dimensions(), len(vec))
	}

	// The flat index walks a map, so rank every entry and order ties by corpus position.
	ids, distances := r.index.Search(vec, len(r.examples))
	type hit struct {
		pos      int
		distance float32
	}
	hits := make([]hit, 0, len(ids))
	for i, id := range ids {
		pos, err := strconv.Atoi(id)
		if err != nil || pos < 0 || pos >= len(r.examples) {
			continue
		}
		hits = append(hits, hit{pos: pos, distance: distances[i]})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].pos < hits[j].pos
	})

	limit := r.k
	if limit > len(hits) {
		limit = len(hits)
	}
	out := make([]Scored, limit)
	for i := 0; i < limit; i++ {
		out[i] = Scored{Example: r.examples[hits[i].pos], Distance: hits[i].distance}
	}
	return out, nil
}
