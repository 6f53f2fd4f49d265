package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"
)

// maxPollFailures is how many consecutive transient poll errors the
// tracker tolerates before giving up on an operation.
const maxPollFailures = 5

// ErrPollingFailed means the tracker lost contact with an operation;
// the operation itself may still complete server-side.
var ErrPollingFailed = errors.New("operation polling failed")

// OperationStatus is the tracker's view of a long-running operation.
type OperationStatus int

const (
	OperationRunning OperationStatus = iota
	OperationDone
	OperationFailed
	OperationUnknown
)

func (s OperationStatus) String() string {
	switch s {
	case OperationRunning:
		return "RUNNING"
	case OperationDone:
		return "DONE"
	case OperationFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// OperationResult is the terminal outcome of a tracked operation.
type OperationResult struct {
	Status  OperationStatus
	Message string
}

// ExtractOperationURL pulls the poll URL from an operation document.
// Compute operations carry a selfLink; other services return a name
// that the caller resolves against its own base URL.
func ExtractOperationURL(body []byte) string {
	return gjson.GetBytes(body, "selfLink").String()
}

// ExtractOperationName pulls the operation name from a response body.
func ExtractOperationName(body []byte) string {
	return gjson.GetBytes(body, "name").String()
}

// PollOperation reads an operation document once and classifies it.
func PollOperation(ctx context.Context, client Client, pollURL string) (OperationResult, error) {
	body, err := client.Get(ctx, pollURL)
	if err != nil {
		return OperationResult{Status: OperationUnknown}, err
	}
	status := gjson.GetBytes(body, "status").String()
	switch status {
	case "DONE":
		if msg := gjson.GetBytes(body, "error.errors.0.message"); msg.Exists() {
			return OperationResult{Status: OperationFailed, Message: msg.String()}, nil
		}
		return OperationResult{Status: OperationDone}, nil
	case "RUNNING", "PENDING":
		return OperationResult{Status: OperationRunning}, nil
	}
	return OperationResult{Status: OperationUnknown, Message: fmt.Sprintf("unexpected operation status %q", status)}, nil
}

// TrackOperation polls an operation until it reaches a terminal state,
// the context is cancelled, or polling fails maxPollFailures times in
// a row. It blocks; callers run it off the interactive loop.
func TrackOperation(ctx context.Context, client Client, pollURL string, interval time.Duration) (OperationResult, error) {
	if interval <= 0 {
		interval = PollInterval
	}
	failures := 0
	for {
		result, err := PollOperation(ctx, client, pollURL)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return OperationResult{Status: OperationUnknown}, ctx.Err()
			}
			failures++
			slog.Warn("operation poll failed", "url", pollURL, "attempt", failures, "error", err)
			if failures >= maxPollFailures {
				return OperationResult{Status: OperationUnknown}, fmt.Errorf("%w after %d attempts: %v", ErrPollingFailed, failures, err)
			}
		case result.Status == OperationDone, result.Status == OperationFailed:
			return result, nil
		case result.Status == OperationUnknown:
			return result, fmt.Errorf("%w: %s", ErrPollingFailed, result.Message)
		default:
			failures = 0
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return OperationResult{Status: OperationUnknown}, ctx.Err()
		case <-timer.C:
		}
	}
}
