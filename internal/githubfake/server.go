// Package githubfake serves an in-memory subset of the GitHub Contents API:
// reading a file and creating or updating one with sha-based concurrency.
// It backs the handler's round-trip tests and `contentsync fake-github`.
package githubfake

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const docsURL = "https://docs.github.com/rest/repos/contents"

type Server struct {
	store  *Store
	token  string
	log    *slog.Logger
	router chi.Router
}

// NewServer serves store. When token is non-empty, requests must carry it as
// "token <t>" or "Bearer <t>".
func NewServer(store *Store, token string, log *slog.Logger) *Server {
	s := &Server{store: store, token: token, log: log}
	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.Get("/repos/{owner}/{repo}/contents/*", s.getContents)
	r.Put("/repos/{owner}/{repo}/contents/*", s.putContents)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, "Not Found")
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := r.Header.Get("Authorization")
			if got != "token "+s.token && got != "Bearer "+s.token {
				writeMessage(w, r, http.StatusUnauthorized, "Bad credentials")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type fileJSON struct {
	Type        string `json:"type"`
	Encoding    string `json:"encoding,omitempty"`
	Size        int    `json:"size"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Content     string `json:"content,omitempty"`
	SHA         string `json:"sha"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

type commitJSON struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

type putResponse struct {
	Content fileJSON   `json:"content"`
	Commit  commitJSON `json:"commit"`
}

type putRequest struct {
	Message *string `json:"message"`
	Content *string `json:"content"`
	SHA     string  `json:"sha"`
}

type messageJSON struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Status           string `json:"status"`
}

func (s *Server) getContents(w http.ResponseWriter, r *http.Request) {
	owner, repo, p := routeParams(r)
	f, ok := s.store.Get(owner, repo, p)
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Not Found")
		return
	}
	out := describe(r, f)
	out.Encoding = "base64"
	out.Content = wrapBase64(f.Content)
	render.JSON(w, r, out)
}

func (s *Server) putContents(w http.ResponseWriter, r *http.Request) {
	owner, repo, p := routeParams(r)

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Problems parsing JSON")
		return
	}
	if req.Message == nil {
		writeMessage(w, r, http.StatusUnprocessableEntity, "Invalid request.\n\n\"message\" wasn't supplied.")
		return
	}
	if req.Content == nil {
		writeMessage(w, r, http.StatusUnprocessableEntity, "Invalid request.\n\n\"content\" wasn't supplied.")
		return
	}
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(*req.Content, "\n", ""))
	if err != nil {
		writeMessage(w, r, http.StatusUnprocessableEntity, "content is not valid Base64")
		return
	}

	f, commit, created, err := s.store.Put(owner, repo, p, content, req.SHA, *req.Message)
	var conflict *ConflictError
	switch {
	case errors.Is(err, ErrSHARequired):
		writeMessage(w, r, http.StatusUnprocessableEntity, "Invalid request.\n\n\"sha\" wasn't supplied.")
		return
	case errors.As(err, &conflict):
		writeMessage(w, r, http.StatusConflict, conflict.Error())
		return
	case err != nil:
		writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("fake github commit", "owner", owner, "repo", repo, "path", p, "sha", f.SHA, "created", created)
	if created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, putResponse{
		Content: describe(r, f),
		Commit:  commitJSON{SHA: commit.SHA, Message: commit.Message},
	})
}

func routeParams(r *http.Request) (owner, repo, p string) {
	p = chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
	}
	return chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), strings.Trim(p, "/")
}

func describe(r *http.Request, f *File) fileJSON {
	base := "http://" + r.Host
	return fileJSON{
		Type:        "file",
		Size:        len(f.Content),
		Name:        path.Base(f.Path),
		Path:        f.Path,
		SHA:         f.SHA,
		URL:         base + "/repos/" + f.Owner + "/" + f.Repo + "/contents/" + f.Path,
		DownloadURL: base + "/raw/" + f.Owner + "/" + f.Repo + "/" + f.Path,
	}
}

// wrapBase64 encodes the way GitHub does: 60 characters per line, each line
// newline-terminated.
func wrapBase64(b []byte) string {
	enc := base64.StdEncoding.EncodeToString(b)
	if enc == "" {
		return ""
	}
	var sb strings.Builder
	for len(enc) > 60 {
		sb.WriteString(enc[:60])
		sb.WriteByte('\n')
		enc = enc[60:]
	}
	sb.WriteString(enc)
	sb.WriteByte('\n')
	return sb.String()
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, messageJSON{Message: msg, DocumentationURL: docsURL, Status: strconv.Itoa(status)})
}
