package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/pkg/logger"
)

// Client talks to one Milvus instance holding a collection per corpus.
// Collections are append-only from this system's perspective: records are
// inserted, never updated or deleted.
type Client struct {
	client    client.Client
	vectorDim int
}

type ChunkRecord struct {
	ID         string
	Embedding  []float32
	Text       string
	SourceFile string
	ChunkIndex int
}

type SearchResult struct {
	ChunkID    string
	Text       string
	SourceFile string
	Score      float32
}

func NewClient(endpoint string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized", zap.String("endpoint", endpoint))

	return &Client{
		client:    c,
		vectorDim: vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) EnsureCollection(ctx context.Context, name string) error {
	has, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", name))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: name,
		Description:    "Building-code document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "8192",
				},
			},
			{
				Name:     "source_file",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	err = m.client.CreateIndex(ctx, name, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, name, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", name))

	return nil
}

func (m *Client) Insert(ctx context.Context, collection string, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	texts := make([]string, len(records))
	sourceFiles := make([]string, len(records))
	chunkIndexes := make([]int64, len(records))

	for i, rec := range records {
		chunkIDs[i] = rec.ID
		embeddings[i] = rec.Embedding
		texts[i] = rec.Text
		sourceFiles[i] = rec.SourceFile
		chunkIndexes[i] = int64(rec.ChunkIndex)
	}

	_, err := m.client.Insert(
		ctx,
		collection,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source_file", sourceFiles),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, collection, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks inserted into vector store",
		zap.String("collection", collection),
		zap.Int("count", len(records)),
	)

	return nil
}

func (m *Client) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		collection,
		[]string{},
		"",
		[]string{"chunk_id", "text", "source_file"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			chunkIDCol := sr.Fields.GetColumn("chunk_id")
			textCol := sr.Fields.GetColumn("text")
			sourceFileCol := sr.Fields.GetColumn("source_file")

			chunkID, _ := chunkIDCol.Get(i)
			text, _ := textCol.Get(i)
			sourceFile, _ := sourceFileCol.Get(i)

			results = append(results, SearchResult{
				ChunkID:    chunkID.(string),
				Text:       text.(string),
				SourceFile: sourceFile.(string),
				Score:      sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.String("collection", collection),
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}
