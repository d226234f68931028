package api

import (
	"context"
	"sync"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// MockResult is a scripted answer for one model
type MockResult struct {
	Text string
	Err  error
}

// MockGenerator is a Generator scripted per model for testing
type MockGenerator struct {
	mu sync.Mutex

	// Results maps a model identifier to its answer. Models without an
	// entry fail with an APIError.
	Results map[string]MockResult

	// Hook, when set, runs before each answer (useful to block or cancel)
	Hook func(ctx context.Context, model string)

	// Call recorders
	Calls      []string
	LastPrompt string
}

// Ensure MockGenerator implements Generator
var _ Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a MockGenerator with the given results
func NewMockGenerator(results map[string]MockResult) *MockGenerator {
	return &MockGenerator{Results: results}
}

func (m *MockGenerator) GenerateContent(ctx context.Context, model, prompt string) (*models.ModelOutput, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, model)
	m.LastPrompt = prompt
	hook := m.Hook
	res, ok := m.Results[model]
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, model)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierrors.NewAPIError(503, "mock/"+model, "model unavailable")
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Text == "" {
		return nil, apierrors.NewEmptyResponseError(model, "")
	}
	return &models.ModelOutput{Model: model, Text: res.Text}, nil
}

// CallCount returns how many requests were made
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CalledModels returns a copy of the models requested, in order
func (m *MockGenerator) CalledModels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	copy(out, m.Calls)
	return out
}
