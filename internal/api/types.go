package api

import "encoding/json"

// DefaultPath is the file synced when the request names none.
const DefaultPath = "data.json"

// Source records where a SyncRequest's parameters came from.
type Source string

const (
	SourceBody  Source = "body"
	SourceForm  Source = "form"
	SourceQuery Source = "query"
)

type SyncRequest struct {
	Path    string
	Content string // base64
	Message string
	SHA     string
	Source  Source
}

// CommitMessage falls back to "Update <path>".
func (r SyncRequest) CommitMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return "Update " + r.Path
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}
