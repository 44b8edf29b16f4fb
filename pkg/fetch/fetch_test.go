package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloadWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0001-0002\tActa Foo\n"))
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "lists", "serials.csv")
	client := NewClient(Options{})
	bytesWritten, skipped, err := client.Download(context.Background(), server.URL, localPath)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if skipped {
		t.Error("expected a real download, got skipped")
	}
	if bytesWritten != 20 {
		t.Errorf("bytesWritten = %d, want 20", bytesWritten)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "0001-0002\tActa Foo\n" {
		t.Errorf("file content = %q", string(data))
	}
}

func TestDownloadSkipsFreshLocalCopy(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("remote"))
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(localPath, []byte("local copy"), 0644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(Options{MaxAge: time.Hour})
	size, skipped, err := client.Download(context.Background(), server.URL, localPath)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !skipped {
		t.Error("expected fresh local copy to be kept")
	}
	if size != int64(len("local copy")) {
		t.Errorf("size = %d, want %d", size, len("local copy"))
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want 0", requests)
	}

	// Without MaxAge the local copy is replaced.
	client = NewClient(Options{})
	_, skipped, err = client.Download(context.Background(), server.URL, localPath)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if skipped {
		t.Error("expected re-download without MaxAge")
	}
	data, _ := os.ReadFile(localPath)
	if string(data) != "remote" {
		t.Errorf("file content = %q, want %q", string(data), "remote")
	}
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	failures := 2
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "list.txt")
	client := NewClient(Options{MaxRetries: 3, RetryBaseDelay: time.Millisecond})
	_, _, err := client.Download(context.Background(), server.URL, localPath)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	data, _ := os.ReadFile(localPath)
	if string(data) != "finally" {
		t.Errorf("file content = %q, want %q", string(data), "finally")
	}
}

func TestDownloadDoesNotRetryClientErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "list.txt")
	client := NewClient(Options{MaxRetries: 3, RetryBaseDelay: time.Millisecond})
	_, _, err := client.Download(context.Background(), server.URL, localPath)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1", requests)
	}
}

func TestDownloadKeepsOldCopyOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(localPath, []byte("stale but usable"), 0644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(Options{MaxRetries: 2, RetryBaseDelay: time.Millisecond})
	_, _, err := client.Download(context.Background(), server.URL, localPath)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	data, readErr := os.ReadFile(localPath)
	if readErr != nil {
		t.Fatalf("old copy should survive a failed download: %v", readErr)
	}
	if string(data) != "stale but usable" {
		t.Errorf("file content = %q", string(data))
	}
}
