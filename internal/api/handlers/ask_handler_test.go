package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nirmaan-ai/backend/internal/query"
)

type fakeEngine struct {
	answer       *query.Answer
	err          error
	lastQuestion string
}

func (f *fakeEngine) Answer(_ context.Context, question string) (*query.Answer, error) {
	f.lastQuestion = question
	return f.answer, f.err
}

func newTestApp(engine AnswerEngine) *fiber.App {
	app := fiber.New()
	app.Post("/ask", NewAskHandler(engine).HandleAsk)
	return app
}

func postAsk(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestHandleAskSuccess(t *testing.T) {
	engine := &fakeEngine{
		answer: &query.Answer{
			English: "The minimum setback is 3 meters.",
			Telugu:  "కనీస సెట్‌బ్యాక్ 3 మీటర్లు.",
		},
	}
	app := newTestApp(engine)

	resp := postAsk(t, app, `{"question":"What is the minimum setback?"}`)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "What is the minimum setback?", engine.lastQuestion)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "The minimum setback is 3 meters.", body["english"])
	assert.Equal(t, "కనీస సెట్‌బ్యాక్ 3 మీటర్లు.", body["telugu"])
}

func TestHandleAskEmptyQuestion(t *testing.T) {
	engine := &fakeEngine{}
	app := newTestApp(engine)

	resp := postAsk(t, app, `{"question":""}`)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "question is required", body["detail"])
	assert.Empty(t, engine.lastQuestion)
}

func TestHandleAskMalformedBody(t *testing.T) {
	app := newTestApp(&fakeEngine{})

	resp := postAsk(t, app, `{"question":`)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid request body", body["detail"])
}

func TestHandleAskEngineError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("milvus unavailable")}
	app := newTestApp(engine)

	resp := postAsk(t, app, `{"question":"What is FSI?"}`)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "milvus unavailable", body["detail"])
}
