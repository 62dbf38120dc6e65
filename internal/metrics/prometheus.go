package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_questions_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	QuestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeqa_question_duration_seconds",
			Help:    "Question pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route"},
	)

	RouteDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_route_decisions_total",
			Help: "Router decisions by destination",
		},
		[]string{"route"},
	)

	TranslationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codeqa_translation_fallbacks_total",
			Help: "Requests that returned the translator-unavailable placeholder",
		},
	)

	RetrievedPassages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeqa_retrieved_passages",
			Help:    "Deduplicated passages per knowledge-base question",
			Buckets: []float64{0, 1, 2, 3, 5, 7, 10},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	DocumentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_documents_processed_total",
			Help: "Source documents processed by ingestion",
		},
		[]string{"corpus"},
	)

	DocumentsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_documents_failed_total",
			Help: "Source documents that failed ingestion and will be retried",
		},
		[]string{"corpus"},
	)

	ChunksIndexed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeqa_chunks_indexed_total",
			Help: "Chunks embedded and written to the vector store",
		},
		[]string{"corpus"},
	)
)

func Init() {
	prometheus.MustRegister(QuestionsTotal)
	prometheus.MustRegister(QuestionDuration)
	prometheus.MustRegister(RouteDecisions)
	prometheus.MustRegister(TranslationFallbacks)
	prometheus.MustRegister(RetrievedPassages)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DocumentsProcessed)
	prometheus.MustRegister(DocumentsFailed)
	prometheus.MustRegister(ChunksIndexed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
