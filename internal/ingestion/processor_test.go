package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nirmaan-ai/backend/internal/vector/milvus"
)

type recordingEmbedder struct {
	calls int
	fail  func(texts []string) bool
}

func (r *recordingEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	r.calls++
	if r.fail != nil && r.fail(texts) {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type recordingWriter struct {
	inserts int
	records map[string][]milvus.ChunkRecord
}

func (r *recordingWriter) Insert(_ context.Context, collection string, records []milvus.ChunkRecord) error {
	if r.records == nil {
		r.records = make(map[string][]milvus.ChunkRecord)
	}
	r.inserts++
	r.records[collection] = append(r.records[collection], records...)
	return nil
}

func (r *recordingWriter) sourceFiles(collection string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, rec := range r.records[collection] {
		if _, ok := seen[rec.SourceFile]; !ok {
			seen[rec.SourceFile] = struct{}{}
			files = append(files, rec.SourceFile)
		}
	}
	return files
}

func testCorpus(t *testing.T, dir string) Corpus {
	t.Helper()
	return Corpus{
		Name:       "general",
		DataDir:    dir,
		LogFile:    filepath.Join(t.TempDir(), "processed.log"),
		Collection: "code_general",
		Chunker:    NewFixedChunker(1000, 150),
	}
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestProcessorRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "Minimum front setback is 3 metres for residential plots.")
	writeDoc(t, dir, "b.txt", "Parking provision is mandatory above 200 square metres.")

	embedder := &recordingEmbedder{}
	writer := &recordingWriter{}
	processor := NewProcessor(embedder, writer, 100)
	corpus := testCorpus(t, dir)

	stats, err := processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 0, stats.Failed)

	logAfterFirst, err := os.ReadFile(corpus.LogFile)
	require.NoError(t, err)
	callsAfterFirst := embedder.calls
	insertsAfterFirst := writer.inserts

	// Unchanged directory: zero embedding calls, zero writes, same log.
	stats, err = processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, callsAfterFirst, embedder.calls)
	assert.Equal(t, insertsAfterFirst, writer.inserts)

	logAfterSecond, err := os.ReadFile(corpus.LogFile)
	require.NoError(t, err)
	assert.Equal(t, string(logAfterFirst), string(logAfterSecond))
}

func TestProcessorPartialFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "Setback rules for corner plots.")
	writeDoc(t, dir, "b.txt", "POISON this document fails embedding.")
	writeDoc(t, dir, "c.txt", "Height restrictions near airports.")

	embedder := &recordingEmbedder{
		fail: func(texts []string) bool {
			for _, text := range texts {
				if strings.Contains(text, "POISON") {
					return true
				}
			}
			return false
		},
	}
	writer := &recordingWriter{}
	processor := NewProcessor(embedder, writer, 100)
	corpus := testCorpus(t, dir)

	stats, err := processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Failed)

	log, err := os.ReadFile(corpus.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(log), "a.txt")
	assert.Contains(t, string(log), "c.txt")
	assert.NotContains(t, string(log), "b.txt")

	files := writer.sourceFiles("code_general")
	assert.ElementsMatch(t, []string{"a.txt", "c.txt"}, files)

	// The failed file stays unknown and is retried next run.
	embedder.fail = nil
	stats, err = processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, writer.sourceFiles("code_general"))
}

func TestProcessorIgnoresUnrecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "notes.md", "not a watched document type")
	writeDoc(t, dir, "a.txt", "Setback rules.")

	embedder := &recordingEmbedder{}
	writer := &recordingWriter{}
	processor := NewProcessor(embedder, writer, 100)
	corpus := testCorpus(t, dir)

	stats, err := processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 1, stats.Processed)
}

func TestProcessorBoilerplateOnlyDocument(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "empty.txt", "Page 1 of 2\nConfidential\n")

	embedder := &recordingEmbedder{}
	writer := &recordingWriter{}
	processor := NewProcessor(embedder, writer, 100)
	corpus := testCorpus(t, dir)

	stats, err := processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Chunks)
	assert.Zero(t, embedder.calls)
	assert.Zero(t, writer.inserts)

	// Logged so it is not re-read every run.
	log, err := os.ReadFile(corpus.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(log), "empty.txt")
}

func TestProcessorSubBatchesLargeInserts(t *testing.T) {
	dir := t.TempDir()
	// Enough text for well over three fixed-size chunks.
	writeDoc(t, dir, "big.txt", strings.Repeat("Every plot shall maintain the prescribed setback on all sides. ", 200))

	embedder := &recordingEmbedder{}
	writer := &recordingWriter{}
	processor := NewProcessor(embedder, writer, 2)
	corpus := testCorpus(t, dir)

	stats, err := processor.Run(context.Background(), corpus)
	require.NoError(t, err)
	require.Greater(t, stats.Chunks, 4)
	assert.Greater(t, writer.inserts, 2)
	assert.Len(t, writer.records["code_general"], stats.Chunks)
}
