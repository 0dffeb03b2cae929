package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewWebhook_RejectsBadURLs(t *testing.T) {
	for _, endpoint := range []string{"", "not-a-url", "ftp://example.com/hook"} {
		if _, err := NewWebhook(endpoint); err == nil {
			t.Errorf("NewWebhook(%q) succeeded, want error", endpoint)
		}
	}
	if _, err := NewWebhook("https://discord.com/api/webhooks/1/token"); err != nil {
		t.Errorf("unexpected error for valid URL: %v", err)
	}
}

func TestNotify_SendsMultipartMessage(t *testing.T) {
	var gotContent string
	var gotFile []byte
	var gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Errorf("parse payload_json: %v", err)
		}
		gotContent = payload.Content

		file, header, err := r.FormFile("file1")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotFile, _ = io.ReadAll(file)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w, err := NewWebhook(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	shot := []byte("fake-png")
	if err := w.Notify(context.Background(), "https://old.example.com", shot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotContent, "https://old.example.com") {
		t.Errorf("content = %q, should name the URL", gotContent)
	}
	if !strings.Contains(gotContent, "404") {
		t.Errorf("content = %q, should name the detected condition", gotContent)
	}
	if gotFilename != "screenshot.png" {
		t.Errorf("filename = %q, want screenshot.png", gotFilename)
	}
	if string(gotFile) != "fake-png" {
		t.Errorf("file part = %q, want original screenshot bytes", gotFile)
	}
}

func TestNotify_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Invalid Webhook Token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	w, err := NewWebhook(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	err = w.Notify(context.Background(), "https://old.example.com", []byte("png"))
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, should include the status code", err)
	}
	if !strings.Contains(err.Error(), "Invalid Webhook Token") {
		t.Errorf("err = %v, should include the response body", err)
	}
}

func TestNotify_TransportErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	w, err := NewWebhook(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Notify(context.Background(), "https://old.example.com", []byte("png")); err == nil {
		t.Fatal("expected error when the endpoint is unreachable")
	}
}
