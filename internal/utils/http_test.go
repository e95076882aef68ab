package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type valueResponse struct {
	Value int `json:"value"`
}

// TestDoPostSync_Success verifies that a 200 response with valid JSON is
// unmarshaled into the output struct and the raw body is returned alongside.
func TestDoPostSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	result, raw, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "test-key", map[string]string{"q": "test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil || result.Value != 42 {
		t.Fatalf("expected Value=42, got %+v", result)
	}
	if string(raw) != `{"value":42}` {
		t.Errorf("unexpected raw body: %s", raw)
	}
}

// TestDoPostSync_Non2xxStatus verifies that a non-2xx HTTP status returns a
// *StatusError carrying the code and body.
func TestDoPostSync_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limited"}`)
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{})
	if err == nil {
		t.Fatal("expected error for 429 response, got nil")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected body in error, got: %v", err)
	}
}

// TestDoPostSync_UnmarshalError verifies that an undecodable 200 body
// returns a *DecodeError that keeps the raw payload.
func TestDoPostSync_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `"not json"`)
	}))
	defer server.Close()

	_, raw, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{})
	if err == nil {
		t.Fatal("expected unmarshal error, got nil")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if string(decodeErr.Raw) != `"not json"` || string(raw) != `"not json"` {
		t.Errorf("expected raw body to be preserved, got %q", decodeErr.Raw)
	}
}

// TestDoPostSync_RequestCreateError verifies that an invalid URL causes
// http.NewRequestWithContext to fail and the error is propagated.
func TestDoPostSync_RequestCreateError(t *testing.T) {
	_, _, err := DoPostSync[valueResponse](context.Background(), nil, " bad url", "", map[string]string{})
	if err == nil {
		t.Fatal("expected request creation error, got nil")
	}
}

// TestDoPostSync_APIKeyInAuthHeader verifies that the API key is set as a
// Bearer token in the Authorization header.
func TestDoPostSync_APIKeyInAuthHeader(t *testing.T) {
	var capturedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	if _, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "mykey", map[string]string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedAuth != "Bearer mykey" {
		t.Errorf("expected Authorization header %q, got %q", "Bearer mykey", capturedAuth)
	}
}

// TestDoPostSync_ContextCanceled verifies that a canceled context aborts the call.
func TestDoPostSync_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := DoPostSync[valueResponse](ctx, server.Client(), server.URL, "", map[string]string{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
