package api

import (
	"errors"
	"testing"
	"time"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// TestNewClient tests the NewClient function
func TestNewClient(t *testing.T) {
	mock := &MockHttpClient{}

	tests := []struct {
		name        string
		apiKey      string
		opts        []ClientOption
		wantErr     error
		wantBaseURL string
		wantTimeout time.Duration
	}{
		{
			name:        "defaults",
			apiKey:      "key",
			opts:        []ClientOption{WithHTTPClient(mock)},
			wantBaseURL: models.DefaultBaseURL,
			wantTimeout: DefaultTimeout,
		},
		{
			name:        "custom base url trims slash",
			apiKey:      "key",
			opts:        []ClientOption{WithHTTPClient(mock), WithBaseURL("http://localhost:9999/v1beta/")},
			wantBaseURL: "http://localhost:9999/v1beta",
			wantTimeout: DefaultTimeout,
		},
		{
			name:        "custom timeout",
			apiKey:      "key",
			opts:        []ClientOption{WithHTTPClient(mock), WithTimeout(30 * time.Second)},
			wantBaseURL: models.DefaultBaseURL,
			wantTimeout: 30 * time.Second,
		},
		{
			name:        "zero timeout keeps default",
			apiKey:      "key",
			opts:        []ClientOption{WithHTTPClient(mock), WithTimeout(0)},
			wantBaseURL: models.DefaultBaseURL,
			wantTimeout: DefaultTimeout,
		},
		{
			name:    "empty key",
			apiKey:  "",
			wantErr: apierrors.ErrNoAPIKey,
		},
		{
			name:    "blank key",
			apiKey:  "   ",
			wantErr: apierrors.ErrNoAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.opts...)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewClient() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() unexpected error: %v", err)
			}
			if client.BaseURL() != tt.wantBaseURL {
				t.Errorf("BaseURL() = %s, want %s", client.BaseURL(), tt.wantBaseURL)
			}
			if client.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", client.Timeout(), tt.wantTimeout)
			}
		})
	}
}

func TestNewClient_BuildsTLSClient(t *testing.T) {
	client, err := NewClient("key")
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	if client.httpClient == nil {
		t.Fatal("expected a default HTTP client")
	}
}

func TestClientClose(t *testing.T) {
	mock := &MockHttpClient{}
	client, err := NewClient("key", WithHTTPClient(mock))
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}

	if client.IsClosed() {
		t.Error("new client should not be closed")
	}

	client.Close()
	client.Close() // second close is a no-op

	if !client.IsClosed() {
		t.Error("client should be closed")
	}
	if !mock.Closed {
		t.Error("Close should release idle connections")
	}
}

func TestClientEndpointRedactsKey(t *testing.T) {
	client, err := NewClient("secret-key", WithHTTPClient(&MockHttpClient{}))
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}

	endpoint := client.endpoint("gemini-1.5-flash")
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	if endpoint != want {
		t.Errorf("endpoint() = %s, want %s", endpoint, want)
	}

	full := client.requestURL("gemini-1.5-flash")
	if full != want+"?key=secret-key" {
		t.Errorf("requestURL() = %s", full)
	}
}
