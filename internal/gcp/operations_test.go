package gcp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrackOperationPollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		switch polls.Add(1) {
		case 1, 2:
			return []byte(`{"status":"RUNNING"}`), nil
		default:
			return []byte(`{"status":"DONE"}`), nil
		}
	}}

	result, err := TrackOperation(context.Background(), client, "https://example/op/1", time.Millisecond)
	if err != nil {
		t.Fatalf("TrackOperation returned error: %v", err)
	}
	if result.Status != OperationDone {
		t.Errorf("Status = %v, want DONE", result.Status)
	}
	if got := polls.Load(); got != 3 {
		t.Errorf("polled %d times, want 3", got)
	}
}

func TestTrackOperationSurfacesOperationError(t *testing.T) {
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"status":"DONE","error":{"errors":[{"message":"quota exceeded"}]}}`), nil
	}}

	result, err := TrackOperation(context.Background(), client, "https://example/op/1", time.Millisecond)
	if err != nil {
		t.Fatalf("TrackOperation returned error: %v", err)
	}
	if result.Status != OperationFailed {
		t.Errorf("Status = %v, want FAILED", result.Status)
	}
	if result.Message != "quota exceeded" {
		t.Errorf("Message = %q, want the operation error", result.Message)
	}
}

func TestTrackOperationStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		cancel()
		return []byte(`{"status":"RUNNING"}`), nil
	}}

	_, err := TrackOperation(ctx, client, "https://example/op/1", time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTrackOperationBoundedPollFailures(t *testing.T) {
	var polls atomic.Int32
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		polls.Add(1)
		return nil, errors.New("connection reset")
	}}

	_, err := TrackOperation(context.Background(), client, "https://example/op/1", time.Millisecond)
	if !errors.Is(err, ErrPollingFailed) {
		t.Fatalf("err = %v, want ErrPollingFailed", err)
	}
	if got := polls.Load(); got != maxPollFailures {
		t.Errorf("polled %d times, want %d", got, maxPollFailures)
	}
}

func TestTrackOperationRecoversFromTransientFailure(t *testing.T) {
	var polls atomic.Int32
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		switch polls.Add(1) {
		case 1, 3:
			return nil, errors.New("flaky")
		case 2:
			return []byte(`{"status":"RUNNING"}`), nil
		default:
			return []byte(`{"status":"DONE"}`), nil
		}
	}}

	result, err := TrackOperation(context.Background(), client, "https://example/op/1", time.Millisecond)
	if err != nil {
		t.Fatalf("TrackOperation returned error: %v", err)
	}
	if result.Status != OperationDone {
		t.Errorf("Status = %v, want DONE", result.Status)
	}
}

func TestPollOperationStates(t *testing.T) {
	for _, tc := range []struct {
		body string
		want OperationStatus
	}{
		{`{"status":"PENDING"}`, OperationRunning},
		{`{"status":"RUNNING"}`, OperationRunning},
		{`{"status":"DONE"}`, OperationDone},
		{`{"status":"SIDEWAYS"}`, OperationUnknown},
	} {
		client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(tc.body), nil
		}}
		result, err := PollOperation(context.Background(), client, "https://example/op/1")
		if err != nil {
			t.Fatalf("PollOperation(%s): %v", tc.body, err)
		}
		if result.Status != tc.want {
			t.Errorf("PollOperation(%s) = %v, want %v", tc.body, result.Status, tc.want)
		}
	}
}

func TestExtractOperationURL(t *testing.T) {
	body := []byte(`{"name":"operation-123","selfLink":"https://compute.googleapis.com/compute/v1/projects/p/zones/z/operations/operation-123"}`)
	if got := ExtractOperationURL(body); got == "" || got[:8] != "https://" {
		t.Errorf("ExtractOperationURL = %q", got)
	}
	if got := ExtractOperationName(body); got != "operation-123" {
		t.Errorf("ExtractOperationName = %q", got)
	}
}
