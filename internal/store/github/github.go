// Package github persists the ledger as a versioned file in a GitHub
// repository, using the contents API: unauthenticated reads, bearer-token
// conditional writes keyed on the file's blob sha.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"traindash/internal/core"
	"traindash/internal/store"
)

// TokenProvider supplies the write credential on demand. Reads never use it.
type TokenProvider func() (string, error)

// StaticToken adapts a fixed secret into a TokenProvider.
func StaticToken(token string) TokenProvider {
	return func() (string, error) {
		if strings.TrimSpace(token) == "" {
			return "", errors.New("empty repository token")
		}
		return token, nil
	}
}

type Config struct {
	// BaseURL defaults to the public API host.
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	Path    string
	Token   TokenProvider
	// CommitMessage is used for every ledger update commit.
	CommitMessage string
	HTTPClient    *http.Client
}

type Client struct {
	cfg  Config
	http *http.Client
}

var _ store.LedgerStore = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" || cfg.Path == "" {
		return nil, errors.New("github store requires owner, repo and path")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = "Update training dashboard"
	}
	if cfg.Token == nil {
		cfg.Token = StaticToken("")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.Owner),
		url.PathEscape(c.cfg.Repo),
		c.cfg.Path)
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Load fetches the ledger file. Fail-open: any failure along the way
// (network, 404, bad payload, malformed csv) logs a warning and returns an
// empty ledger so the dashboard stays usable on first run.
func (c *Client) Load(ctx context.Context) (core.Ledger, store.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL()+"?ref="+url.QueryEscape(c.cfg.Branch), nil)
	if err != nil {
		return c.emptyOnError(ctx, "build request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.emptyOnError(ctx, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.emptyOnError(ctx, "fetch", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.emptyOnError(ctx, "decode response", err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return c.emptyOnError(ctx, "decode content", err)
	}

	ledger, err := store.DecodeLedger(raw)
	if err != nil {
		return c.emptyOnError(ctx, "parse ledger", err)
	}

	slog.DebugContext(ctx, "Loaded ledger from repository",
		"path", c.cfg.Path, "rows", len(ledger), "sha", body.SHA)
	return ledger, store.Version(body.SHA), nil
}

func (c *Client) emptyOnError(ctx context.Context, op string, err error) (core.Ledger, store.Version, error) {
	slog.WarnContext(ctx, "Ledger fetch failed, starting empty",
		"op", op, "path", c.cfg.Path, "error", err)
	return core.Ledger{}, "", nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Save writes the canonical ledger, conditioned on ver. With a non-zero ver
// the store rejects the write unless ver still identifies the current file
// state; a zero ver performs a create.
func (c *Client) Save(ctx context.Context, l core.Ledger, ver store.Version) (store.Version, error) {
	token, err := c.cfg.Token()
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: fmt.Errorf("credential: %w", err)}
	}

	payload := putRequest{
		Message: c.cfg.CommitMessage,
		Content: base64.StdEncoding.EncodeToString(store.EncodeLedger(l)),
		Branch:  c.cfg.Branch,
		SHA:     string(ver),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var out putResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", &store.TransportError{Op: "save", Err: fmt.Errorf("decode response: %w", err)}
		}
		slog.InfoContext(ctx, "Ledger persisted to repository",
			"path", c.cfg.Path, "rows", len(core.Normalize(l)), "sha", out.Content.SHA)
		return store.Version(out.Content.SHA), nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// The store rejected the stale token: another writer landed between
		// our load and this save.
		io.Copy(io.Discard, resp.Body)
		return "", &store.ConflictError{Version: ver}
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &store.TransportError{
			Op:     "save",
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		}
	}
}
