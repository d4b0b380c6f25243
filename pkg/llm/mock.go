package llm

import "context"

// MockClient is a test double for Client. Set the function fields to
// control behavior; unset fields return zero values.
type MockClient struct {
	GenerateResponseFunc func(ctx context.Context, req Request) (string, error)

	// Calls records every request passed to GenerateResponse.
	Calls []Request
}

func (m *MockClient) GenerateResponse(ctx context.Context, req Request) (string, error) {
	m.Calls = append(m.Calls, req)
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, req)
	}
	return "", nil
}

func (m *MockClient) GetModel() string    { return "mock-model" }
func (m *MockClient) GetEndpoint() string { return "mock://" }

var _ Client = (*MockClient)(nil)
