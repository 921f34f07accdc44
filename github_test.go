package gitpress

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *GitHubStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGitHubStore("owner", "repo", "content", "tok", WithBaseURL(srv.URL))
}

func TestGitHubStoreReadFile(t *testing.T) {
	// The Contents API wraps base64 at 60 columns; the decoder must cope
	// with the embedded newlines.
	encoded := "aGVsbG8g\nd29ybGQ=\n"

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/contents/content/posts/a.mdx" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("ref"); got != "content" {
			t.Errorf("ref = %q, want content", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":     "a.mdx",
			"path":     "content/posts/a.mdx",
			"type":     "file",
			"sha":      "abc123",
			"content":  encoded,
			"encoding": "base64",
		})
	})

	f, err := store.ReadFile(context.Background(), "content/posts/a.mdx")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(f.Content) != "hello world" {
		t.Errorf("Content = %q, want %q", f.Content, "hello world")
	}
	if f.SHA != "abc123" {
		t.Errorf("SHA = %q, want abc123", f.SHA)
	}
}

func TestGitHubStoreReadFileNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	})

	_, err := store.ReadFile(context.Background(), "content/posts/missing.mdx")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGitHubStoreReadFileLargeFallback(t *testing.T) {
	const downloadPath = "/raw/big.mdx"
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == downloadPath {
			w.Write([]byte("big file body"))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":         "big.mdx",
			"type":         "file",
			"sha":          "big-sha",
			"content":      "",
			"download_url": "http://" + r.Host + downloadPath,
		})
	})

	f, err := store.ReadFile(context.Background(), "content/posts/big.mdx")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(f.Content) != "big file body" {
		t.Errorf("Content = %q, want download body", f.Content)
	}
	if f.SHA != "big-sha" {
		t.Errorf("SHA = %q", f.SHA)
	}
}

func TestGitHubStoreReadDir(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "a.mdx", "path": "content/posts/a.mdx", "type": "file"},
			{"name": "drafts", "path": "content/posts/drafts", "type": "dir"},
		})
	})

	entries, err := store.ReadDir(context.Background(), "content/posts")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Name != "a.mdx" || entries[0].Type != "file" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Type != "dir" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestGitHubStoreReadDirOnFile(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"name": "a.mdx", "type": "file"})
	})

	_, err := store.ReadDir(context.Background(), "content/posts/a.mdx")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("err = %v, want TransportError for non-directory response", err)
	}
}

func TestGitHubStoreWriteFile(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		var req struct {
			Message string `json:"message"`
			Content string `json:"content"`
			Branch  string `json:"branch"`
			SHA     string `json:"sha"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "Update post: a" {
			t.Errorf("message = %q", req.Message)
		}
		if req.Branch != "content" {
			t.Errorf("branch = %q", req.Branch)
		}
		if req.SHA != "old-sha" {
			t.Errorf("sha = %q, want old-sha", req.SHA)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil || string(decoded) != "new content" {
			t.Errorf("content = %q (decode err %v)", decoded, err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "new-sha"},
		})
	})

	sha, err := store.WriteFile(context.Background(), "content/posts/a.mdx", []byte("new content"), "Update post: a", "old-sha")
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if sha != "new-sha" {
		t.Errorf("sha = %q, want new-sha", sha)
	}
}

func TestGitHubStoreWriteFileOmitsEmptySHA(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := raw["sha"]; ok {
			t.Error("create request must not carry a sha field")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "created-sha"},
		})
	})

	sha, err := store.WriteFile(context.Background(), "content/posts/new.mdx", []byte("x"), "Add post: X", "")
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if sha != "created-sha" {
		t.Errorf("sha = %q", sha)
	}
}

func TestGitHubStoreConflictStatuses(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "sha mismatch"})
		})
		_, err := store.WriteFile(context.Background(), "content/posts/a.mdx", []byte("x"), "m", "stale")
		if !errors.Is(err, ErrConflict) {
			t.Errorf("status %d: err = %v, want ErrConflict", status, err)
		}
	}
}

func TestGitHubStoreServerError(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	})

	_, err := store.ReadDir(context.Background(), "content/posts")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", te.StatusCode)
	}
	if te.Op != "ReadDir" {
		t.Errorf("Op = %q, want ReadDir", te.Op)
	}
}

func TestGitHubStoreDeleteFile(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		var req struct {
			Message string `json:"message"`
			SHA     string `json:"sha"`
			Branch  string `json:"branch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SHA != "cur-sha" || req.Branch != "content" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"content": nil})
	})

	if err := store.DeleteFile(context.Background(), "content/posts/a.mdx", "cur-sha", "Delete post: a"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
}
