package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, ErrRateLimited},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, ErrAuth},
		{"forbidden", &openai.APIError{HTTPStatusCode: 403}, ErrAuth},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, ErrUnavailable},
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	orig := &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}
	got := ClassifyError(orig)
	assert.False(t, errors.Is(got, ErrTimeout))
	assert.False(t, errors.Is(got, ErrRateLimited))
	assert.False(t, errors.Is(got, ErrAuth))
	assert.False(t, errors.Is(got, ErrUnavailable))
}

func TestMockClient_RecordsCalls(t *testing.T) {
	mock := &MockClient{
		GenerateResponseFunc: func(ctx context.Context, req Request) (string, error) {
			return "SELECT 1", nil
		},
	}

	out, err := mock.GenerateResponse(context.Background(), Request{Prompt: "hello"})
	assert.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
	assert.Len(t, mock.Calls, 1)
	assert.Equal(t, "hello", mock.Calls[0].Prompt)
}
