package logodev

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetLogoURL_Found(t *testing.T) {
	var capturedMethod, capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	got, err := client.GetLogoURL(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetLogoURL failed: %v", err)
	}

	if capturedMethod != http.MethodHead {
		t.Errorf("expected HEAD, got %s", capturedMethod)
	}
	if capturedPath != "/ticker/AAPL" {
		t.Errorf("expected path /ticker/AAPL, got %s", capturedPath)
	}
	want := srv.URL + "/ticker/AAPL?token=tok"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestGetLogoURL_NotFoundIsEmptyNoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))
	got, err := client.GetLogoURL(context.Background(), "NOLOGO")
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty URL, got %s", got)
	}
}

func TestGetLogoURL_ServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))
	if _, err := client.GetLogoURL(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error on 500")
	}
}
