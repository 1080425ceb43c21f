package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalStorage_GetURL(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := NewLocalStorage(tmpDir, "/files", "http://example.com:8010")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}

	got, err := c.GetURL(context.Background(), "a.xlsx")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if want := "http://example.com:8010/files/a.xlsx"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	// without a base url the path is relative
	c2, _ := NewLocalStorage(tmpDir, "/files", "")
	got2, err := c2.GetURL(context.Background(), "b.xlsx")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if got2 != "/files/b.xlsx" {
		t.Fatalf("got %s, want /files/b.xlsx", got2)
	}
}

func TestLocalStorage_SaveAndServe(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewLocalStorage(tmpDir, "/files", "")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}

	content := []byte("statement body")
	saved, err := c.Save(context.Background(), "schedule 1.xlsx", content)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(saved, "_schedule 1.xlsx") {
		t.Fatalf("saved name %q should keep the original suffix", saved)
	}

	// serve from BaseDir the way main does
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file := strings.TrimPrefix(r.URL.Path, "/files/")
		path := filepath.Join(c.BaseDir, file)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		if idx := strings.IndexByte(file, '_'); idx >= 0 {
			file = file[idx+1:]
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+file+"\"")
		http.ServeFile(w, r, path)
	})

	ts := httptest.NewServer(h)
	defer ts.Close()

	url, err := c.GetURL(context.Background(), saved)
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	resp, err := http.Get(ts.URL + url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bad status: %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "schedule 1.xlsx") {
		t.Fatalf("Content-Disposition %q should carry the original filename", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(content) {
		t.Fatalf("content mismatch: %s", body)
	}
}

func TestLocalStorage_CleanupOlderThan(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewLocalStorage(tmpDir, "/files", "")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}

	old, err := c.Save(context.Background(), "old.xlsx", []byte("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	oldPath := filepath.Join(tmpDir, old)
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	fresh, err := c.Save(context.Background(), "fresh.xlsx", []byte("y"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := c.CleanupOlderThan(time.Hour); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("old statement should have been removed")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, fresh)); err != nil {
		t.Errorf("fresh statement should remain: %v", err)
	}
}
