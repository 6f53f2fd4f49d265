package gcp

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx response from a Google API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

// AuthError means a bearer token could not be obtained.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HandleAPIError provides user-friendly error messages for Google API
// failures. The resource name gives the message context.
func HandleAPIError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("authentication failed, run 'gcloud auth application-default login'")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.StatusCode {
	case 401:
		return fmt.Errorf("authentication failed, run 'gcloud auth application-default login'")
	case 403:
		return fmt.Errorf("permission denied accessing %s, check your IAM permissions", resource)
	case 404:
		return fmt.Errorf("%s not found", resource)
	case 429:
		return fmt.Errorf("rate limit exceeded, please try again later")
	}

	// The error body usually carries a useful message
	if msg := gjson.Get(apiErr.Body, "error.message").String(); msg != "" {
		return fmt.Errorf("%s: %s", resource, truncate(msg, 100))
	}
	return fmt.Errorf("%s: request failed with status %d", resource, apiErr.StatusCode)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
