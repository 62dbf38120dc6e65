package ingestion

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Chunk is a bounded span of cleaned document text prepared for embedding.
// Immutable once created; SourceID and Index tie it back to its document.
type Chunk struct {
	SourceID string
	Index    int
	Text     string
}

type Chunker interface {
	Chunk(ctx context.Context, sourceID, text string) ([]Chunk, error)
}

// Embedder is the slice of the LLM client the semantic chunker needs.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// FixedChunker splits text into rune-based windows of Size with Overlap
// runes shared between consecutive chunks. Predictable size and cost, at
// the expense of semantic coherence.
type FixedChunker struct {
	Size    int
	Overlap int
}

func NewFixedChunker(size, overlap int) *FixedChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &FixedChunker{Size: size, Overlap: overlap}
}

func (f *FixedChunker) Chunk(_ context.Context, sourceID, text string) ([]Chunk, error) {
	runes := []rune(text)
	step := f.Size - f.Overlap
	if step <= 0 {
		step = f.Size
	}

	chunks := make([]Chunk, 0)
	for i := 0; i < len(runes); i += step {
		end := i + f.Size
		if end > len(runes) {
			end = len(runes)
		}
		part := strings.TrimSpace(string(runes[i:end]))
		if part != "" {
			chunks = append(chunks, Chunk{
				SourceID: sourceID,
				Index:    len(chunks),
				Text:     part,
			})
		}
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// SemanticChunker groups consecutive sentences and breaks where the cosine
// distance between neighbouring sentence embeddings exceeds a percentile
// threshold. Used for high-value rulebooks where topical coherence matters
// more than deterministic chunk sizes.
type SemanticChunker struct {
	embedder   Embedder
	percentile float64
}

func NewSemanticChunker(embedder Embedder) *SemanticChunker {
	return &SemanticChunker{
		embedder:   embedder,
		percentile: 95,
	}
}

func (s *SemanticChunker) Chunk(ctx context.Context, sourceID, text string) ([]Chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	sentences, err := splitSentences(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split sentences: %w", err)
	}

	if len(sentences) < 2 {
		return []Chunk{{SourceID: sourceID, Index: 0, Text: text}}, nil
	}

	embeddings, err := s.embedder.GenerateBatchEmbeddings(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to embed sentences: %w", err)
	}
	if len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("sentence embedding count mismatch: got %d, expected %d", len(embeddings), len(sentences))
	}

	distances := make([]float64, len(sentences)-1)
	for i := 0; i < len(sentences)-1; i++ {
		distances[i] = 1 - cosineSimilarity(embeddings[i], embeddings[i+1])
	}

	threshold := percentile(distances, s.percentile)

	chunks := make([]Chunk, 0)
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		breakHere := i < len(distances) && distances[i] > threshold
		if breakHere || i == len(sentences)-1 {
			chunkText := strings.TrimSpace(strings.Join(current, " "))
			if chunkText != "" {
				chunks = append(chunks, Chunk{
					SourceID: sourceID,
					Index:    len(chunks),
					Text:     chunkText,
				})
			}
			current = current[:0]
		}
	}

	return chunks, nil
}

func splitSentences(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	sentences := make([]string, 0)
	for _, s := range doc.Sentences() {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			sentences = append(sentences, t)
		}
	}
	return sentences, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
