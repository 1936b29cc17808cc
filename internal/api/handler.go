package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/shaun/contentsync/internal/config"
	"github.com/shaun/contentsync/internal/github"
)

// ContentsClient talks to the GitHub Contents API. Implemented by
// *github.Client; inject a fake in tests.
type ContentsClient interface {
	GetContents(ctx context.Context, owner, repo, path string) (*github.Response, error)
	PutContents(ctx context.Context, owner, repo, path string, payload *github.FilePayload) (*github.Response, error)
}

// Handler proxies one file in the configured repository: GET reads it,
// POST and PUT commit new content. Each request makes at most one call to
// GitHub.
type Handler struct {
	cfg config.Config
	gh  ContentsClient
	log *slog.Logger
}

func NewHandler(cfg config.Config, log *slog.Logger) *Handler {
	gh := github.NewClientWithOptions(cfg.Token, github.Options{BaseURL: cfg.APIURL})
	return NewHandlerWithClient(cfg, gh, log)
}

// NewHandlerWithClient builds a handler with a custom ContentsClient (e.g. for tests).
func NewHandlerWithClient(cfg config.Config, gh ContentsClient, log *slog.Logger) *Handler {
	return &Handler{cfg: cfg, gh: gh, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	noCache(w.Header())

	if h.cfg.Token == "" {
		h.fail(w, r, ConfigurationError{Missing: "GITHUB_TOKEN"})
		return
	}

	req, err := ParseSyncRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// The GitHub call outlives a client disconnect.
	ctx := context.WithoutCancel(r.Context())

	var body json.RawMessage
	switch r.Method {
	case http.MethodGet:
		body, err = h.read(ctx, req)
	case http.MethodPost, http.MethodPut:
		body, err = h.write(ctx, req)
	default:
		err = UnsupportedMethodError{Method: r.Method}
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, body)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// read relays GitHub's body with 200 for every status except 404.
func (h *Handler) read(ctx context.Context, req SyncRequest) (json.RawMessage, error) {
	if err := checkPath(req.Path); err != nil {
		return nil, err
	}
	resp, err := h.gh.GetContents(ctx, h.cfg.Owner, h.cfg.Repo, req.Path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, NotFoundError{Path: req.Path}
	}
	if !resp.OK() {
		h.log.Warn("github read returned non-2xx, relaying as 200", "path", req.Path, "status", resp.StatusCode)
	}
	return decodeJSON(resp.Body)
}

func (h *Handler) write(ctx context.Context, req SyncRequest) (json.RawMessage, error) {
	if err := checkPath(req.Path); err != nil {
		return nil, err
	}
	if req.Content == "" {
		return nil, ValidationError{Message: "Content is required"}
	}
	payload := &github.FilePayload{
		Message: req.CommitMessage(),
		Content: req.Content,
		SHA:     req.SHA,
	}
	resp, err := h.gh.PutContents(ctx, h.cfg.Owner, h.cfg.Repo, req.Path, payload)
	if err != nil {
		return nil, err
	}
	body, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, newUpstreamError(resp.StatusCode, body)
	}
	h.log.Info("file committed", "path", req.Path, "update", req.SHA != "", "source", req.Source)
	return body, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	var upErr UpstreamError
	switch {
	case errors.As(err, &upErr):
		h.log.Warn("github rejected write", "status", status, "error", err)
	case status >= http.StatusInternalServerError:
		h.log.Error("sync request failed", "method", r.Method, "status", status, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func decodeJSON(b []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	return raw, nil
}

func noCache(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
