package fx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newRatesMockServer serves a v4 "latest" payload for the requested base.
func newRatesMockServer(rates map[string]float64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := strings.TrimPrefix(r.URL.Path, "/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"base":              base,
			"date":              "2026-10-18",
			"time_last_updated": 1760745601,
			"rates":             rates,
		})
	}))
}

func TestClient_Latest_Success(t *testing.T) {
	server := newRatesMockServer(map[string]float64{"CAD": 1, "USD": 0.73, "EUR": 0.62})
	defer server.Close()

	c := NewClient(server.Client(), server.URL, "cad", time.Second)
	snap, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Base != "CAD" {
		t.Errorf("base = %s, want CAD", snap.Base)
	}
	if snap.Date != "2026-10-18" {
		t.Errorf("date = %s, want 2026-10-18", snap.Date)
	}
	if snap.Source != SourceName {
		t.Errorf("source = %s, want %s", snap.Source, SourceName)
	}
	rate, err := snap.Rate("usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.String() != "0.73" {
		t.Errorf("USD rate = %s, want 0.73", rate)
	}
}

func TestClient_Latest_RequestPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"base":"CAD","date":"2026-10-18","rates":{"USD":0.7}}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL+"/", "CAD", 0)
	if _, err := c.Latest(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/CAD" {
		t.Errorf("path = %q, want /CAD", gotPath)
	}
}

func TestClient_Latest_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: ErrUnavailable,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr: ErrUnavailable,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"rates":`))
			},
			wantErr: ErrMalformed,
		},
		{
			name: "empty rates",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"base":"CAD","rates":{}}`))
			},
			wantErr: ErrMalformed,
		},
		{
			name: "base mismatch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"base":"USD","rates":{"CAD":1.36}}`))
			},
			wantErr: ErrMalformed,
		},
		{
			name: "missing base",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"rates":{"USD":0.73}}`))
			},
			wantErr: ErrMalformed,
		},
		{
			name: "oversized body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"base":"CAD","pad":"` + strings.Repeat("x", maxBodyBytes) + `","rates":{"USD":0.73}}`))
			},
			wantErr: ErrMalformed,
		},
		{
			name: "zero rate",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"base":"CAD","rates":{"USD":0}}`))
			},
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.Client(), server.URL, "CAD", time.Second)
			_, err := c.Latest(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Latest_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.Client(), server.URL, "CAD", 50*time.Millisecond)
	_, err := c.Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestClient_Latest_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(http.DefaultClient, url, "CAD", time.Second)
	_, err := c.Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
