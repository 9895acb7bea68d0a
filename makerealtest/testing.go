// Package makerealtest provides test doubles for the generation pipeline.
package makerealtest

import (
	"context"
	"errors"
	"sync"

	"github.com/sketchwire/makereal"
)

// MockSendResult is a result for a mocked Send call. It carries either a
// raw answer or an error.
type MockSendResult struct {
	Answer string
	Error  error
}

// NewMockSendResultAnswer constructs a send result with a raw answer.
func NewMockSendResultAnswer(answer string) MockSendResult {
	return MockSendResult{Answer: answer}
}

// NewMockSendResultError constructs a send result that yields an error.
func NewMockSendResultError(err error) MockSendResult {
	return MockSendResult{Error: err}
}

// MockCompletionClient is a makereal.CompletionClient that returns
// scripted results in order and tracks the requests it received.
type MockCompletionClient struct {
	mu              sync.Mutex
	mockedResults   []MockSendResult
	trackedRequests []*makereal.GenerationRequest

	// gates, when non-empty, are consumed one per Send call; each Send
	// blocks until its gate channel is closed (or its context ends).
	// Tests use this to force a resolution order between runs.
	gates []chan struct{}
}

// NewMockCompletionClient constructs a mock completion client.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{}
}

// Enqueue appends results to return from subsequent Send calls.
func (m *MockCompletionClient) Enqueue(results ...MockSendResult) *MockCompletionClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockedResults = append(m.mockedResults, results...)
	return m
}

// EnqueueGated appends a result whose Send call blocks until the returned
// channel is closed.
func (m *MockCompletionClient) EnqueueGated(result MockSendResult) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	for len(m.gates) < len(m.mockedResults) {
		closed := make(chan struct{})
		close(closed)
		m.gates = append(m.gates, closed)
	}
	m.mockedResults = append(m.mockedResults, result)
	m.gates = append(m.gates, gate)
	return gate
}

// Send implements makereal.CompletionClient.
func (m *MockCompletionClient) Send(ctx context.Context, req *makereal.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.trackedRequests = append(m.trackedRequests, req)
	if len(m.mockedResults) == 0 {
		m.mu.Unlock()
		return "", errors.New("no mocked send results")
	}
	result := m.mockedResults[0]
	m.mockedResults = m.mockedResults[1:]
	var gate chan struct{}
	if len(m.gates) > 0 {
		gate = m.gates[0]
		m.gates = m.gates[1:]
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if result.Error != nil {
		return "", result.Error
	}
	return result.Answer, nil
}

// TrackedRequests returns the requests Send has received so far.
func (m *MockCompletionClient) TrackedRequests() []*makereal.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*makereal.GenerationRequest, len(m.trackedRequests))
	copy(out, m.trackedRequests)
	return out
}

// Reset clears scripted results and tracked requests.
func (m *MockCompletionClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockedResults = nil
	m.trackedRequests = nil
	m.gates = nil
}
