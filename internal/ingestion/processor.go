package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/internal/metrics"
	"github.com/nirmaan-ai/backend/internal/vector/milvus"
	"github.com/nirmaan-ai/backend/pkg/logger"
	"github.com/nirmaan-ai/backend/pkg/utils"
)

// VectorWriter is the slice of the vector store the processor needs.
type VectorWriter interface {
	Insert(ctx context.Context, collection string, records []milvus.ChunkRecord) error
}

// Corpus binds one watched directory to its ingestion log and vector
// collection.
type Corpus struct {
	Name       string
	DataDir    string
	LogFile    string
	Collection string
	Chunker    Chunker
}

type Stats struct {
	Scanned   int
	Skipped   int
	Processed int
	Failed    int
	Chunks    int
}

// Processor runs the incremental ingestion pipeline for one corpus:
// list the watched directory, skip files already in the log, and for each
// new file extract, clean, chunk, embed and write before logging it as
// processed. A failing file is skipped and retried on the next run; it
// never aborts the batch. A run over an unchanged directory performs zero
// embedding calls and zero writes.
type Processor struct {
	embedder  Embedder
	vector    VectorWriter
	batchSize int
}

func NewProcessor(embedder Embedder, vector VectorWriter, insertBatchSize int) *Processor {
	if insertBatchSize <= 0 {
		insertBatchSize = 100
	}
	return &Processor{
		embedder:  embedder,
		vector:    vector,
		batchSize: insertBatchSize,
	}
}

func (p *Processor) Run(ctx context.Context, corpus Corpus) (Stats, error) {
	var stats Stats

	tracker, err := LoadTracker(corpus.LogFile)
	if err != nil {
		return stats, err
	}

	logger.Info("Starting ingestion run",
		zap.String("corpus", corpus.Name),
		zap.String("data_dir", corpus.DataDir),
		zap.Int("previously_processed", tracker.Len()),
	)

	if err := os.MkdirAll(corpus.DataDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := os.ReadDir(corpus.DataDir)
	if err != nil {
		return stats, fmt.Errorf("failed to list data directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsDocument(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	stats.Scanned = len(names)

	for _, name := range names {
		if tracker.Contains(name) {
			stats.Skipped++
			continue
		}

		chunks, err := p.processFile(ctx, corpus, name)
		if err != nil {
			stats.Failed++
			metrics.DocumentsFailed.WithLabelValues(corpus.Name).Inc()
			logger.Error("Failed to process document; will retry next run",
				zap.String("corpus", corpus.Name),
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}

		if err := tracker.Append(name); err != nil {
			// Without the log entry the file would be re-embedded next
			// run, violating at-most-once, so the batch stops here.
			return stats, fmt.Errorf("failed to record processed file %q: %w", name, err)
		}

		stats.Processed++
		stats.Chunks += chunks
		metrics.DocumentsProcessed.WithLabelValues(corpus.Name).Inc()
		metrics.ChunksIndexed.WithLabelValues(corpus.Name).Add(float64(chunks))
	}

	if stats.Processed == 0 && stats.Failed == 0 {
		logger.Info("Corpus is up to date", zap.String("corpus", corpus.Name))
	} else {
		logger.Info("Ingestion run finished",
			zap.String("corpus", corpus.Name),
			zap.Int("processed", stats.Processed),
			zap.Int("failed", stats.Failed),
			zap.Int("chunks", stats.Chunks),
		)
	}

	return stats, nil
}

func (p *Processor) processFile(ctx context.Context, corpus Corpus, name string) (int, error) {
	path := filepath.Join(corpus.DataDir, name)

	raw, err := ExtractText(path)
	if err != nil {
		return 0, err
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		// Entirely boilerplate or empty. Marked processed so it is not
		// re-read every run.
		logger.Warn("Document contained no indexable text",
			zap.String("corpus", corpus.Name),
			zap.String("file", name),
		)
		return 0, nil
	}

	chunks, err := corpus.Chunker.Chunk(ctx, name, cleaned)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	docID := utils.HashString(name)
	records := make([]milvus.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = milvus.ChunkRecord{
			ID:         fmt.Sprintf("%s_chunk_%d", docID, chunk.Index),
			Embedding:  embeddings[i],
			Text:       chunk.Text,
			SourceFile: chunk.SourceID,
			ChunkIndex: chunk.Index,
		}
	}

	for i := 0; i < len(records); i += p.batchSize {
		end := i + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.vector.Insert(ctx, corpus.Collection, records[i:end]); err != nil {
			return 0, err
		}
	}

	logger.Info("Document processed",
		zap.String("corpus", corpus.Name),
		zap.String("file", name),
		zap.Int("chunks", len(chunks)),
	)

	return len(chunks), nil
}
