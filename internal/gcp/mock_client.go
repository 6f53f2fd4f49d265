package gcp

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. Set the function fields to
// control responses; unset fields return an empty JSON object.
type MockClient struct {
	GetFunc    func(ctx context.Context, url string) ([]byte, error)
	PostFunc   func(ctx context.Context, url string, body []byte) ([]byte, error)
	DeleteFunc func(ctx context.Context, url string) ([]byte, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockClient) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls returns every request so far as "VERB url" in invocation order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) Get(ctx context.Context, url string) ([]byte, error) {
	m.record("GET " + url)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, url)
	}
	return []byte(`{}`), nil
}

func (m *MockClient) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	m.record("POST " + url)
	if m.PostFunc != nil {
		return m.PostFunc(ctx, url, body)
	}
	return []byte(`{}`), nil
}

func (m *MockClient) Delete(ctx context.Context, url string) ([]byte, error) {
	m.record("DELETE " + url)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, url)
	}
	return []byte(`{}`), nil
}
