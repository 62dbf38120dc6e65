package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/nirmaan-ai/backend/internal/llm"
)

// Route is the two-variant destination for a question. The classifier is
// soft: a wrong decision costs answer quality, never correctness.
type Route int

const (
	RouteKnowledgeBase Route = iota
	RouteWebSearch
)

func (r Route) String() string {
	if r == RouteWebSearch {
		return "web_search"
	}
	return "knowledge_base"
}

// Completer is the slice of the LLM client the router and synthesizer need.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

type Router struct {
	llm Completer
}

func NewRouter(completer Completer) *Router {
	return &Router{llm: completer}
}

// Classify asks the model to label the question and decides by looking for
// the literal web_search token in the reply, case-insensitively. Any reply
// without that token defaults to the knowledge base, so ambiguous model
// output degrades to the indexed corpus rather than failing.
func (r *Router) Classify(ctx context.Context, question string) (Route, error) {
	resp, err := r.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: routerSystemPrompt,
		UserPrompt:   fmt.Sprintf("USER QUESTION: %s\nClassification:", question),
		Temperature:  0.1,
		MaxTokens:    20,
	})
	if err != nil {
		return RouteKnowledgeBase, fmt.Errorf("failed to classify question: %w", err)
	}

	if strings.Contains(strings.ToLower(resp.Content), "web_search") {
		return RouteWebSearch, nil
	}
	return RouteKnowledgeBase, nil
}
