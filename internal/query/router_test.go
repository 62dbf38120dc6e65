package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nirmaan-ai/backend/internal/llm"
)

type scriptedCompleter struct {
	reply string
	err   error
}

func (s *scriptedCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.reply}, nil
}

func TestRouterWebSearchToken(t *testing.T) {
	for _, reply := range []string{
		"web_search",
		"WEB_SEARCH",
		"I would classify this as 'web_search'.",
	} {
		router := NewRouter(&scriptedCompleter{reply: reply})
		route, err := router.Classify(context.Background(), "who won the world cup?")
		require.NoError(t, err)
		assert.Equal(t, RouteWebSearch, route, "reply %q", reply)
	}
}

func TestRouterDefaultsToKnowledgeBase(t *testing.T) {
	for _, reply := range []string{
		"knowledge_base",
		"This seems like a general query.",
		"",
		"websearch",
	} {
		router := NewRouter(&scriptedCompleter{reply: reply})
		route, err := router.Classify(context.Background(), "what is the minimum setback under G.O. 168?")
		require.NoError(t, err)
		assert.Equal(t, RouteKnowledgeBase, route, "reply %q", reply)
	}
}

func TestRouterPropagatesLLMFailure(t *testing.T) {
	router := NewRouter(&scriptedCompleter{err: fmt.Errorf("quota exceeded")})

	_, err := router.Classify(context.Background(), "anything")
	assert.Error(t, err)
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "knowledge_base", RouteKnowledgeBase.String())
	assert.Equal(t, "web_search", RouteWebSearch.String())
}
