package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/internal/llm"
	"github.com/nirmaan-ai/backend/internal/metrics"
	"github.com/nirmaan-ai/backend/internal/search/web"
	"github.com/nirmaan-ai/backend/internal/vector/milvus"
	"github.com/nirmaan-ai/backend/pkg/logger"
	"github.com/nirmaan-ai/backend/pkg/utils"
)

// TranslatorUnavailable is returned in place of a translation whenever the
// backend is absent or a call fails. The English answer is never blocked by
// translation.
const TranslatorUnavailable = "[Translator not available]"

// Passages retrieved per knowledge-base question after merging corpora.
const retrievalTopK = 7

type Answer struct {
	English string `json:"english"`
	Telugu  string `json:"telugu"`
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]milvus.SearchResult, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]web.SearchResult, error)
}

type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type AnswerCache interface {
	GetAnswer(ctx context.Context, questionHash string, answer interface{}) (bool, error)
	SetAnswer(ctx context.Context, questionHash string, answer interface{}, ttl time.Duration) error
}

type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

// Engine drives the request-scoped pipeline: classify the question, answer
// it from the indexed corpora or from live web search, then translate. Each
// request is an independent unit of work; the stages within one request run
// strictly in sequence.
type Engine struct {
	llm         Completer
	embedder    Embedder
	router      *Router
	vector      VectorSearcher
	search      WebSearcher
	translator  Translator
	cache       AnswerCache
	embCache    EmbeddingCache
	collections []string
	webResults  int
	targetLang  string
	answerTTL   time.Duration
}

type Options struct {
	Collections    []string
	WebResults     int
	TargetLang     string
	AnswerTTL      time.Duration
	EmbeddingCache EmbeddingCache
}

// NewEngine wires the pipeline. translator and cache may be nil: a nil
// translator degrades every request to the placeholder translation and a
// nil cache disables answer caching.
func NewEngine(completer Completer, embedder Embedder, vector VectorSearcher, search WebSearcher, translator Translator, cache AnswerCache, opts Options) *Engine {
	if opts.WebResults <= 0 {
		opts.WebResults = 3
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "te"
	}
	if opts.AnswerTTL <= 0 {
		opts.AnswerTTL = time.Hour
	}

	return &Engine{
		llm:         completer,
		embedder:    embedder,
		router:      NewRouter(completer),
		vector:      vector,
		search:      search,
		translator:  translator,
		cache:       cache,
		embCache:    opts.EmbeddingCache,
		collections: opts.Collections,
		webResults:  opts.WebResults,
		targetLang:  opts.TargetLang,
		answerTTL:   opts.AnswerTTL,
	}
}

func (e *Engine) Answer(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()
	requestID := uuid.New().String()

	logger.Info("Processing question",
		zap.String("request_id", requestID),
		zap.String("question", question),
	)

	questionHash := utils.HashString(question)
	if e.cache != nil {
		var cached Answer
		hit, err := e.cache.GetAnswer(ctx, questionHash, &cached)
		if err != nil {
			logger.Warn("Answer cache lookup failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	route, err := e.router.Classify(ctx, question)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RouteDecisions.WithLabelValues(route.String()).Inc()

	var english string
	switch route {
	case RouteWebSearch:
		english, err = e.answerFromWebSearch(ctx, question)
	default:
		english, err = e.answerFromKnowledgeBase(ctx, question)
	}
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	telugu := e.translateAnswer(ctx, english)

	answer := &Answer{English: english, Telugu: telugu}

	if e.cache != nil {
		if err := e.cache.SetAnswer(ctx, questionHash, answer, e.answerTTL); err != nil {
			logger.Warn("Failed to cache answer", zap.Error(err))
		}
	}

	metrics.QuestionsTotal.WithLabelValues("ok").Inc()
	metrics.QuestionDuration.WithLabelValues(route.String()).Observe(time.Since(start).Seconds())

	logger.Info("Question answered",
		zap.String("request_id", requestID),
		zap.String("route", route.String()),
		zap.Duration("latency", time.Since(start)),
	)

	return answer, nil
}

func (e *Engine) answerFromKnowledgeBase(ctx context.Context, question string) (string, error) {
	embedding, err := e.embedQuestion(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	merged := make([]milvus.SearchResult, 0, retrievalTopK*len(e.collections))
	for _, collection := range e.collections {
		results, err := e.vector.Search(ctx, collection, embedding, retrievalTopK)
		if err != nil {
			return "", fmt.Errorf("failed to search collection %q: %w", collection, err)
		}
		merged = append(merged, results...)
	}

	// L2 distance: smaller is closer.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score < merged[j].Score
	})
	if len(merged) > retrievalTopK {
		merged = merged[:retrievalTopK]
	}

	passages := make([]string, 0, len(merged))
	for _, result := range merged {
		passages = append(passages, result.Text)
	}
	passages = DedupePassages(passages)
	metrics.RetrievedPassages.Observe(float64(len(passages)))

	context := strings.Join(passages, "\n\n")
	if context == "" {
		context = "No relevant passages found."
	}

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: knowledgeBaseSystemPrompt,
		UserPrompt:   fmt.Sprintf(knowledgeBaseUserTemplate, context, question),
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return resp.Content, nil
}

func (e *Engine) answerFromWebSearch(ctx context.Context, question string) (string, error) {
	results, err := e.search.Search(ctx, question, e.webResults)
	if err != nil {
		return "", fmt.Errorf("failed to run web search: %w", err)
	}

	var builder strings.Builder
	for i, result := range results {
		snippet := result.Snippet
		if snippet == "" {
			snippet = result.Content
		}
		fmt.Fprintf(&builder, "[%d] %s\n%s\n%s\n\n", i+1, result.Title, result.URL, snippet)
	}

	context := strings.TrimSpace(builder.String())
	if context == "" {
		context = "No search results found."
	}

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: webSearchSystemPrompt,
		UserPrompt:   fmt.Sprintf(webSearchUserTemplate, context, question),
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return resp.Content, nil
}

func (e *Engine) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	if e.embCache == nil {
		return e.embedder.GenerateEmbedding(ctx, question)
	}

	hash := utils.HashString(question)
	cached, hit, err := e.embCache.GetEmbedding(ctx, hash)
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
	} else if hit {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := e.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}

	if err := e.embCache.SetEmbedding(ctx, hash, embedding, e.answerTTL); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}

	return embedding, nil
}

// translateAnswer never fails the request: an absent backend or a failed
// call both degrade to the placeholder.
func (e *Engine) translateAnswer(ctx context.Context, english string) string {
	if e.translator == nil {
		metrics.TranslationFallbacks.Inc()
		return TranslatorUnavailable
	}

	translated, err := e.translator.Translate(ctx, english, e.targetLang)
	if err != nil {
		logger.Warn("Translation failed, returning placeholder", zap.Error(err))
		metrics.TranslationFallbacks.Inc()
		return TranslatorUnavailable
	}

	return translated
}
