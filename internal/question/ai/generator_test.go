package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	content string
	err     error
	last    CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.last = req
	return s.content, s.err
}

func TestGeneratorGenerate(t *testing.T) {
	stub := &stubCompleter{content: `{"question": "What is 2+2?", "options": ["3", "4", "5", "6"], "correct": 1, "explanation": "Basic sums."}`}
	gen := NewGenerator(stub, Config{}, zerolog.Nop())

	q, err := gen.Generate(context.Background(), "Mathematics")
	require.NoError(t, err)

	assert.Equal(t, "What is 2+2?", q.Question)
	assert.Equal(t, []string{"3", "4", "5", "6"}, q.Options)
	assert.Equal(t, 1, q.Correct)
	assert.Equal(t, "Basic sums.", q.Explanation)
	assert.Equal(t, "gpt-3.5-turbo", stub.last.Model)
	assert.Equal(t, 200, stub.last.MaxTokens)
	assert.Contains(t, stub.last.Prompt, "'Mathematics'")
}

func TestGeneratorPropagatesUpstreamError(t *testing.T) {
	gen := NewGenerator(&stubCompleter{err: errors.New("timeout")}, Config{}, zerolog.Nop())

	_, err := gen.Generate(context.Background(), "History")
	assert.ErrorContains(t, err, "timeout")
}

func TestGeneratorWithoutCompleter(t *testing.T) {
	gen := NewGenerator(nil, Config{}, zerolog.Nop())

	_, err := gen.Generate(context.Background(), "History")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", `{"question":"Q","options":["a","b","c","d"],"correct":3,"explanation":"e"}`, false},
		{"fenced", "```json\n{\"question\":\"Q\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correct\":0}\n```", false},
		{"prose around", `Sure! {"question":"Q","options":["a","b","c","d"],"correct":2} Enjoy.`, false},
		{"no json", "I cannot help with that.", true},
		{"three options", `{"question":"Q","options":["a","b","c"],"correct":0}`, true},
		{"correct out of range", `{"question":"Q","options":["a","b","c","d"],"correct":4}`, true},
		{"missing question", `{"options":["a","b","c","d"],"correct":0}`, true},
		{"broken json", `{"question":"Q","options":["a","b"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuestion(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedQuestion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Q", q.Question)
			assert.Len(t, q.Options, 4)
		})
	}
}

func TestCompletionClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer server.Close()

	client := NewCompletionClient("test-key", WithBaseURL(server.URL+"/"))
	content, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-3.5-turbo", Prompt: "hi", MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestCompletionClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`},
		{"empty choices", http.StatusOK, `{"choices":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewCompletionClient("k", WithBaseURL(server.URL))
			_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
			assert.Error(t, err)
		})
	}
}
