package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := DownloadFile(srv.URL, dir, "clip.mp3", DownloadOptions{})
	if path == "" {
		t.Fatal("expected a local path")
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("file landed outside target dir: %s", path)
	}
	if !strings.HasSuffix(path, "_clip.mp3") {
		t.Fatalf("original filename not preserved: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio bytes" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestDownloadFileNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if path := DownloadFile(srv.URL, t.TempDir(), "clip.mp3", DownloadOptions{}); path != "" {
		t.Fatalf("expected empty path on 404, got %s", path)
	}
}
