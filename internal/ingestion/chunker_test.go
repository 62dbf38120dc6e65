package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedChunkerWindows(t *testing.T) {
	chunker := NewFixedChunker(10, 2)

	chunks, err := chunker.Chunk(context.Background(), "doc.pdf", "abcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)

	assert.Equal(t, "abcdefghij", chunks[0].Text)
	for i, chunk := range chunks {
		assert.Equal(t, "doc.pdf", chunk.SourceID)
		assert.Equal(t, i, chunk.Index)
		assert.NotEmpty(t, chunk.Text)
	}
}

func TestFixedChunkerCoversDocument(t *testing.T) {
	text := strings.Repeat("setback rules apply to every plot boundary ", 40)
	text = strings.TrimSpace(text)

	// With no overlap, concatenating all chunks reproduces the cleaned
	// document up to the whitespace trimmed at window edges.
	chunker := NewFixedChunker(100, 0)
	chunks, err := chunker.Chunk(context.Background(), "doc.txt", text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Text)
		rebuilt.WriteString(" ")
	}
	assert.Equal(t, strings.Join(strings.Fields(text), ""), strings.Join(strings.Fields(rebuilt.String()), ""))
}

func TestFixedChunkerEmptyInput(t *testing.T) {
	chunker := NewFixedChunker(100, 10)
	chunks, err := chunker.Chunk(context.Background(), "doc.txt", "")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

type stubEmbedder struct {
	calls   int
	vectors func(texts []string) [][]float32
	err     error
}

func (s *stubEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors(texts), nil
}

func TestSemanticChunkerBreaksOnTopicShift(t *testing.T) {
	// First two sentences embed identically, the third is orthogonal, so
	// the only breakpoint lands between sentences two and three.
	embedder := &stubEmbedder{
		vectors: func(texts []string) [][]float32 {
			out := make([][]float32, len(texts))
			for i := range texts {
				if i == len(texts)-1 {
					out[i] = []float32{0, 1}
				} else {
					out[i] = []float32{1, 0}
				}
			}
			return out
		},
	}

	chunker := NewSemanticChunker(embedder)
	text := "Setbacks must be three metres. Setbacks apply on every side. Parking needs a separate permit."

	chunks, err := chunker.Chunk(context.Background(), "rules.pdf", text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].Text, "Setbacks must be three metres.")
	assert.Contains(t, chunks[0].Text, "Setbacks apply on every side.")
	assert.Equal(t, "Parking needs a separate permit.", chunks[1].Text)
	assert.Equal(t, 1, embedder.calls)

	for i, chunk := range chunks {
		assert.Equal(t, "rules.pdf", chunk.SourceID)
		assert.Equal(t, i, chunk.Index)
	}
}

func TestSemanticChunkerSingleSentence(t *testing.T) {
	embedder := &stubEmbedder{}
	chunker := NewSemanticChunker(embedder)

	chunks, err := chunker.Chunk(context.Background(), "rules.pdf", "One lonely rule.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One lonely rule.", chunks[0].Text)
	assert.Zero(t, embedder.calls)
}

func TestSemanticChunkerEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{err: assert.AnError}
	chunker := NewSemanticChunker(embedder)

	_, err := chunker.Chunk(context.Background(), "rules.pdf", "First sentence here. Second sentence there.")
	assert.Error(t, err)
}
