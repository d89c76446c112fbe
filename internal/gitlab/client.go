// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitlab implements a minimal GitLab REST API client for
// merge-request review workflows. Authentication uses a private token
// loaded from the project's .taskdeck/gitlab/config.json.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/taskdeck/internal/board"
	"github.com/pdiddy/taskdeck/internal/httputil"
	"github.com/pdiddy/taskdeck/pkg/types"
)

// ErrNotConfigured indicates the project has no usable GitLab
// configuration file.
var ErrNotConfigured = errors.New("gitlab not configured")

// Config holds per-project GitLab credentials and endpoint.
type Config struct {
	// Token is the private access token sent as PRIVATE-TOKEN.
	Token string `json:"token"`

	// Project is the full project path (group/name).
	Project string `json:"project"`

	// InstanceURL is the GitLab instance base URL.
	InstanceURL string `json:"instance_url"`
}

// LoadConfig reads .taskdeck/gitlab/config.json under projectDir. A
// missing file, or one without both token and project, returns
// ErrNotConfigured. instance_url defaults to https://gitlab.com.
func LoadConfig(projectDir string) (*Config, error) {
	path := filepath.Join(projectDir, board.DataDir, "gitlab", "config.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("reading gitlab config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing gitlab config %s: %w", path, err)
	}

	if cfg.Token == "" || cfg.Project == "" {
		return nil, ErrNotConfigured
	}
	if cfg.InstanceURL == "" {
		cfg.InstanceURL = "https://gitlab.com"
	}

	return &cfg, nil
}

// MergeRequest is the subset of the merge-request payload the review
// commands display.
type MergeRequest struct {
	IID          int    `json:"iid"`
	Title        string `json:"title"`
	State        string `json:"state"`
	Description  string `json:"description"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	WebURL       string `json:"web_url"`
	Author       User   `json:"author"`
}

// Change is one file-level diff entry from the changes endpoint.
type Change struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	Diff        string `json:"diff"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
}

type changesResponse struct {
	Changes []Change `json:"changes"`
}

// Commit is one commit from the merge-request commits endpoint.
type Commit struct {
	ID         string `json:"id"`
	ShortID    string `json:"short_id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// User identifies a GitLab account.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Note is a merge-request comment.
type Note struct {
	ID   int    `json:"id"`
	Body string `json:"body"`
}

// Client calls the GitLab v4 REST API for a single project.
type Client struct {
	HTTP       *http.Client
	Config     *Config
	UserAgent  string
	MaxRetries int
}

// NewClient builds a client from project credentials and HTTP settings.
func NewClient(cfg *Config, httpCfg types.GitLabConfig) *Client {
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := httpCfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		Config:     cfg,
		UserAgent:  httpCfg.UserAgent,
		MaxRetries: retries,
	}
}

// apiURL joins the instance base with the v4 API prefix and endpoint.
func (c *Client) apiURL(endpoint string) string {
	base := strings.TrimRight(c.Config.InstanceURL, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + "/api/v4" + endpoint
}

// projectPath returns the URL-encoded project path for API routes.
func (c *Client) projectPath() string {
	return url.PathEscape(c.Config.Project)
}

// do performs one API call. A non-nil payload is sent as a JSON body.
// When out is non-nil the response body is decoded into it; a 204
// response leaves out untouched.
func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(endpoint), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.Config.Token)
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("GitLab API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GitLab API error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing GitLab response: %w", err)
	}
	return nil
}

// GetMR fetches merge-request details by internal id.
func (c *Client) GetMR(ctx context.Context, iid int) (*MergeRequest, error) {
	var mr MergeRequest
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d", c.projectPath(), iid)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}

// GetChanges fetches the file-level changes of a merge request.
func (c *Client) GetChanges(ctx context.Context, iid int) ([]Change, error) {
	var cr changesResponse
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d/changes", c.projectPath(), iid)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &cr); err != nil {
		return nil, err
	}
	return cr.Changes, nil
}

// Diff fetches the changes and joins the non-empty per-file diffs into
// one unified diff text.
func (c *Client) Diff(ctx context.Context, iid int) (string, error) {
	changes, err := c.GetChanges(ctx, iid)
	if err != nil {
		return "", err
	}
	var diffs []string
	for _, change := range changes {
		if change.Diff != "" {
			diffs = append(diffs, change.Diff)
		}
	}
	return strings.Join(diffs, "\n"), nil
}

// Commits fetches the commits of a merge request.
func (c *Client) Commits(ctx context.Context, iid int) ([]Commit, error) {
	var commits []Commit
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d/commits", c.projectPath(), iid)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// CurrentUser fetches the account the token authenticates as.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PostNote adds a comment to a merge request.
func (c *Client) PostNote(ctx context.Context, iid int, body string) (*Note, error) {
	var note Note
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d/notes", c.projectPath(), iid)
	payload := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Approve approves a merge request.
func (c *Client) Approve(ctx context.Context, iid int) error {
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d/approve", c.projectPath(), iid)
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

// Merge merges a merge request, optionally squashing its commits.
func (c *Client) Merge(ctx context.Context, iid int, squash bool) (*MergeRequest, error) {
	var mr MergeRequest
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d/merge", c.projectPath(), iid)
	var payload any
	if squash {
		payload = map[string]bool{"squash": true}
	}
	if err := c.do(ctx, http.MethodPut, endpoint, payload, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}

// Assign sets the assignees of a merge request.
func (c *Client) Assign(ctx context.Context, iid int, userIDs []int) (*MergeRequest, error) {
	var mr MergeRequest
	endpoint := fmt.Sprintf("/projects/%s/merge_requests/%d", c.projectPath(), iid)
	payload := map[string][]int{"assignee_ids": userIDs}
	if err := c.do(ctx, http.MethodPut, endpoint, payload, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}
