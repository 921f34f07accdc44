package gitpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RepoEntry is one entry of a remote directory listing.
type RepoEntry struct {
	Name string
	Path string
	Type string // "file" or "dir"
}

// RepoFile is a decoded file together with its revision token.
type RepoFile struct {
	Content []byte
	SHA     string
}

// ContentStore is the thin adapter over the remote version-controlled file
// store. WriteFile and DeleteFile take the expected revision token for
// optimistic concurrency; a stale token fails with ErrConflict. No retries
// happen here; transient transport failures propagate to the caller.
type ContentStore interface {
	ReadDir(ctx context.Context, path string) ([]RepoEntry, error)
	ReadFile(ctx context.Context, path string) (RepoFile, error)
	// WriteFile creates or updates path. sha is the expected revision
	// token; pass "" when creating a new file. Returns the new token.
	WriteFile(ctx context.Context, path string, content []byte, message, sha string) (string, error)
	DeleteFile(ctx context.Context, path, sha, message string) error
}

// GitHubStore implements ContentStore against the GitHub Contents API,
// scoped to a fixed (owner, repo, branch) triple.
type GitHubStore struct {
	baseURL    string
	owner      string
	repo       string
	branch     string
	token      string
	httpClient *http.Client
}

// StoreOption configures a GitHubStore.
type StoreOption func(*GitHubStore)

// WithBaseURL overrides the API base URL (used for GitHub Enterprise and
// for tests).
func WithBaseURL(u string) StoreOption {
	return func(s *GitHubStore) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(c *http.Client) StoreOption {
	return func(s *GitHubStore) { s.httpClient = c }
}

// NewGitHubStore creates a store client for the given repository and branch.
func NewGitHubStore(owner, repo, branch, token string, opts ...StoreOption) *GitHubStore {
	s := &GitHubStore{
		baseURL: "https://api.github.com",
		owner:   owner,
		repo:    repo,
		branch:  branch,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// contentsItem is the Contents API representation of a file or directory
// entry. Content is base64 with embedded newlines for file responses.
type contentsItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	SHA         string `json:"sha"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

type ghAPIError struct {
	Message string `json:"message"`
}

func (s *GitHubStore) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.baseURL, s.owner, s.repo, path)
}

// do performs one API request and maps error statuses onto the error
// taxonomy: 404 → ErrNotFound, 409/422 → ErrConflict (the Contents API
// reports a stale sha as 409 on some paths and 422 on others), everything
// else → TransportError.
func (s *GitHubStore) do(ctx context.Context, op, method, rawURL, repoPath string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, &TransportError{Op: op, Path: repoPath, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Path: repoPath, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Path: repoPath, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", op, repoPath, ErrNotFound)
	case resp.StatusCode == http.StatusConflict, resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%s %s: %w", op, repoPath, ErrConflict)
	default:
		var ae ghAPIError
		_ = json.Unmarshal(data, &ae)
		return nil, &TransportError{
			Op:         op,
			Path:       repoPath,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", ae.Message),
		}
	}
}

// ReadDir lists the entries directly under path on the configured branch.
func (s *GitHubStore) ReadDir(ctx context.Context, path string) ([]RepoEntry, error) {
	u := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.branch)
	data, err := s.do(ctx, "ReadDir", http.MethodGet, u, path, nil)
	if err != nil {
		return nil, err
	}

	var items []contentsItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A file response decodes as an object, not an array.
		return nil, &TransportError{Op: "ReadDir", Path: path, Err: fmt.Errorf("not a directory")}
	}
	entries := make([]RepoEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, RepoEntry{Name: it.Name, Path: it.Path, Type: it.Type})
	}
	return entries, nil
}

// ReadFile fetches and decodes a single file. Files above the API's inline
// size limit come back with empty content; those are re-fetched through
// their download URL.
func (s *GitHubStore) ReadFile(ctx context.Context, path string) (RepoFile, error) {
	u := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.branch)
	data, err := s.do(ctx, "ReadFile", http.MethodGet, u, path, nil)
	if err != nil {
		return RepoFile{}, err
	}

	var item contentsItem
	if err := json.Unmarshal(data, &item); err != nil {
		return RepoFile{}, &TransportError{Op: "ReadFile", Path: path, Err: err}
	}
	if item.Type != "" && item.Type != "file" {
		return RepoFile{}, fmt.Errorf("ReadFile %s: %w", path, ErrNotFound)
	}

	content, err := base64.StdEncoding.DecodeString(stripWhitespace(item.Content))
	if err != nil {
		return RepoFile{}, &TransportError{Op: "ReadFile", Path: path, Err: fmt.Errorf("decode content: %w", err)}
	}

	if len(content) == 0 && item.DownloadURL != "" {
		raw, err := s.do(ctx, "ReadFile", http.MethodGet, item.DownloadURL, path, nil)
		if err != nil {
			return RepoFile{}, err
		}
		content = raw
	}
	return RepoFile{Content: content, SHA: item.SHA}, nil
}

// WriteFile creates or updates path with an optimistic-concurrency check
// when sha is non-empty.
func (s *GitHubStore) WriteFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	body := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  s.branch,
		SHA:     sha,
	}
	data, err := s.do(ctx, "WriteFile", http.MethodPut, s.contentsURL(path), path, body)
	if err != nil {
		return "", err
	}
	var resp writeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &TransportError{Op: "WriteFile", Path: path, Err: err}
	}
	return resp.Content.SHA, nil
}

// DeleteFile removes path. sha must be the file's current revision token.
func (s *GitHubStore) DeleteFile(ctx context.Context, path, sha, message string) error {
	body := deleteRequest{Message: message, SHA: sha, Branch: s.branch}
	_, err := s.do(ctx, "DeleteFile", http.MethodDelete, s.contentsURL(path), path, body)
	return err
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
}
