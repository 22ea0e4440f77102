package service

import (
	"context"
	"dungeon_backend/internal/config"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allDialogueKinds = []DialogueKind{
	DialogueCorrect, DialogueCombo, DialogueComboBroken,
	DialogueLight, DialogueDoubt, DialoguePressure, DialogueDestruction,
}

func TestPickLineDeterministicWithSeed(t *testing.T) {
	for _, kind := range allDialogueKinds {
		a := rand.New(rand.NewPCG(7, 7))
		b := rand.New(rand.NewPCG(7, 7))
		for i := 0; i < 20; i++ {
			line := PickLine(a, kind)
			assert.Equal(t, line, PickLine(b, kind))
			assert.Contains(t, dialoguePools[kind], line)
		}
	}
	assert.Equal(t, defaultLine, PickLine(rand.New(rand.NewPCG(1, 1)), DialogueKind("unknown")))
}

func TestFallbackLine(t *testing.T) {
	for _, kind := range allDialogueKinds {
		assert.NotEmpty(t, FallbackLine(kind))
		assert.Equal(t, FallbackLine(kind), FallbackLine(kind))
	}
	assert.Equal(t, "거기까지였구나", FallbackLine(DialogueComboBroken))
	assert.Equal(t, defaultLine, FallbackLine(DialogueKind("unknown")))
}

type stubGenerator struct {
	text string
	err  error
	wait bool
}

func (g stubGenerator) Generate(ctx context.Context, _ DialogueContext) (string, error) {
	if g.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

func TestDialogueLineUsesGenerator(t *testing.T) {
	svc := NewDialogueService(stubGenerator{text: "복습은 했니?"}, nil, time.Second, nil)
	line := svc.Line(context.Background(), DialogueContext{Kind: DialogueDoubt})
	assert.Equal(t, "복습은 했니?", line.Text)
	assert.True(t, line.Generated)
}

func TestDialogueLineFallsBackOnError(t *testing.T) {
	svc := NewDialogueService(stubGenerator{err: errors.New("boom")}, nil, time.Second, nil)
	line := svc.Line(context.Background(), DialogueContext{Kind: DialoguePressure})
	assert.Equal(t, FallbackLine(DialoguePressure), line.Text)
	assert.False(t, line.Generated)
}

func TestDialogueLineFallsBackOnTimeout(t *testing.T) {
	svc := NewDialogueService(stubGenerator{wait: true}, nil, 20*time.Millisecond, nil)
	start := time.Now()
	line := svc.Line(context.Background(), DialogueContext{Kind: DialogueDestruction})
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, FallbackLine(DialogueDestruction), line.Text)
}

func TestDialogueLineWithoutGenerator(t *testing.T) {
	svc := NewDialogueService(nil, nil, 0, rand.New(rand.NewPCG(1, 2)))
	line := svc.Line(context.Background(), DialogueContext{Kind: DialogueCombo})
	assert.Contains(t, dialoguePools[DialogueCombo], line.Text)
	assert.False(t, line.Generated)
}

func TestDialogueRecord(t *testing.T) {
	store := &memDialogueStore{}
	svc := NewDialogueService(nil, store, 0, nil)
	svc.Record(context.Background(), 1, "s1", Line{Kind: DialoguePressure, Text: "이게 틀리면 과제 3배다"})

	saved := store.all()
	require.Len(t, saved, 1)
	assert.Equal(t, "pressure", saved[0].DialogueType)
	assert.Equal(t, 3, saved[0].IntensityLevel)
	require.NotNil(t, saved[0].StudentID)
	assert.Equal(t, "s1", *saved[0].StudentID)
}

func newTestOpenAIGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIDialogueGenerator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return newOpenAIDialogueGenerator(openai.NewClientWithConfig(cfg), "", 0)
}

func TestOpenAIDialogueGenerator(t *testing.T) {
	var gotModel string
	gen := newTestOpenAIGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "  수업 들었어?  "},
					"finish_reason": "stop",
				},
			},
		})
	})

	text, err := gen.Generate(context.Background(), DialogueContext{Kind: DialogueDoubt, StudentName: "kim", Gauge: 55})
	require.NoError(t, err)
	assert.Equal(t, "수업 들었어?", text)
	assert.Equal(t, openai.GPT4oMini, gotModel)
}

func TestOpenAIDialogueGeneratorFailureFallsBack(t *testing.T) {
	gen := newTestOpenAIGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	})

	_, err := gen.Generate(context.Background(), DialogueContext{Kind: DialogueLight})
	require.Error(t, err)

	svc := NewDialogueService(gen, nil, time.Second, nil)
	line := svc.Line(context.Background(), DialogueContext{Kind: DialogueLight})
	assert.Equal(t, FallbackLine(DialogueLight), line.Text)
}

func TestOpenAIDialogueGeneratorEmptyChoices(t *testing.T) {
	gen := newTestOpenAIGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := gen.Generate(context.Background(), DialogueContext{Kind: DialogueCorrect})
	assert.ErrorIs(t, err, errEmptyCompletion)
}

func TestNewOpenAIDialogueGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIDialogueGenerator(configWithoutKey())
	assert.Error(t, err)
}

func configWithoutKey() config.AIConfig {
	return config.AIConfig{Model: "gpt-4o-mini"}
}
