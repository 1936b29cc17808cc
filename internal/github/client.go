package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Response is whatever GitHub answered, 2xx or not. Body is left undecoded so
// callers can relay it verbatim.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether GitHub answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// FilePayload is the Contents API PUT body. Content is already base64; an
// empty SHA is omitted so GitHub creates the file instead of updating it.
type FilePayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// Options tweaks the client for GitHub Enterprise, the fake, or tests.
type Options struct {
	BaseURL    string       // defaults to https://api.github.com
	HTTPClient *http.Client // base transport under the token transport
}

type Client struct {
	gh *github.Client
}

func NewClient(token string) *Client {
	return NewClientWithOptions(token, Options{})
}

// NewClientWithOptions authenticates every request with "Authorization: token <token>".
func NewClientWithOptions(token string, opts Options) *Client {
	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	applyBaseURL(gh, opts.BaseURL)
	return &Client{gh: gh}
}

// GetContents fetches a file (or directory listing) from the contents endpoint.
func (c *Client) GetContents(ctx context.Context, owner, repo, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, owner, repo, path, nil)
}

// PutContents creates or updates a file through the contents endpoint.
func (c *Client) PutContents(ctx context.Context, owner, repo, path string, payload *FilePayload) (*Response, error) {
	return c.do(ctx, http.MethodPut, owner, repo, path, payload)
}

func (c *Client) do(ctx context.Context, method, owner, repo, path string, body any) (*Response, error) {
	u := contentsURL(owner, repo, path)
	req, err := c.gh.NewRequest(method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, u, err)
	}

	// Sent on the underlying http.Client: go-github's Do answers locally with
	// an empty 403 once it has seen the rate limit exhausted.
	resp, err := c.gh.Client().Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s body: %w", method, u, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// contentsURL escapes path the same way go-github's RepositoriesService does.
func contentsURL(owner, repo, path string) string {
	path = strings.TrimPrefix(strings.TrimSuffix(path, "/"), "/")
	escaped := (&url.URL{Path: path}).String()
	return fmt.Sprintf("repos/%v/%v/contents/%v", owner, repo, escaped)
}

func applyBaseURL(c *github.Client, baseURL string) {
	if baseURL == "" {
		return
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}
