package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaun/contentsync/internal/github"
	"github.com/shaun/contentsync/internal/logging"
)

func newTestRouter(allowOrigin string) (http.Handler, *fakeClient) {
	fake := &fakeClient{resp: &github.Response{StatusCode: http.StatusOK, Body: []byte(`{"sha":"abc"}`)}}
	h := NewHandlerWithClient(testConfig, fake, logging.Discard())
	return NewRouter(h, allowOrigin, logging.Discard()), fake
}

func TestRouter_healthAndSync(t *testing.T) {
	router, fake := newTestRouter("")

	rec := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	for _, path := range []string{"/api/sync", "/sync"} {
		rec = serve(router, http.MethodGet, path+"?path=a.md", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"sha":"abc"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("Cache-Control"))
	}
	assert.Equal(t, 2, fake.calls)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_unknownPath(t *testing.T) {
	router, _ := newTestRouter("")
	rec := serve(router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_optionsWithoutCORS(t *testing.T) {
	router, _ := newTestRouter("")
	rec := serve(router, http.MethodOptions, "/api/sync", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_cors(t *testing.T) {
	router, fake := newTestRouter("https://notes.example.com")

	rec := serve(router, http.MethodOptions, "/api/sync", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://notes.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Zero(t, fake.calls)

	rec = serve(router, http.MethodGet, "/api/sync", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://notes.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

type panicClient struct{ fakeClient }

func (panicClient) GetContents(_ context.Context, _, _, _ string) (*github.Response, error) {
	panic("boom")
}

func TestRouter_recoversPanics(t *testing.T) {
	h := NewHandlerWithClient(testConfig, &panicClient{}, logging.Discard())
	router := NewRouter(h, "", logging.Discard())

	rec := serve(router, http.MethodGet, "/api/sync", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}
