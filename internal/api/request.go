package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// MaxBodyBytes caps the request body: base64 of GitHub's 100 MiB file limit
// plus the JSON envelope.
var MaxBodyBytes int64 = 140 << 20

// ParseSyncRequest resolves the request parameters. A non-empty body is tried
// first: form-encoded bodies as form values, anything else as a JSON object.
// A body that yields no object falls back to the query string. The chosen
// source is used whole; fields are never merged across sources.
//
// The only errors are a failure to read the body and a body over MaxBodyBytes.
func ParseSyncRequest(r *http.Request) (SyncRequest, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return SyncRequest{}, PayloadTooLargeError{Limit: tooLarge.Limit}
			}
			return SyncRequest{}, fmt.Errorf("read request body: %w", err)
		}
		body = b
	}

	if len(bytes.TrimSpace(body)) > 0 {
		if isForm(r.Header.Get("Content-Type")) {
			if vals, err := url.ParseQuery(string(body)); err == nil {
				return fromValues(vals, SourceForm), nil
			}
		} else if fields, ok := decodeObject(body); ok {
			return fromFields(fields), nil
		}
	}
	return fromValues(r.URL.Query(), SourceQuery), nil
}

// checkPath rejects a path that would climb out of the contents endpoint.
func checkPath(path string) error {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return ValidationError{Message: "Invalid path"}
		}
	}
	return nil
}

func isForm(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// decodeObject reports ok only for a JSON object; arrays, scalars, null and
// malformed input are all treated as no body.
func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func fromFields(fields map[string]json.RawMessage) SyncRequest {
	return normalize(SyncRequest{
		Path:    stringField(fields, "path"),
		Content: stringField(fields, "content"),
		Message: stringField(fields, "message"),
		SHA:     stringField(fields, "sha"),
		Source:  SourceBody,
	})
}

// stringField returns "" for missing and non-string values.
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func fromValues(vals url.Values, src Source) SyncRequest {
	return normalize(SyncRequest{
		Path:    vals.Get("path"),
		Content: vals.Get("content"),
		Message: vals.Get("message"),
		SHA:     vals.Get("sha"),
		Source:  src,
	})
}

func normalize(req SyncRequest) SyncRequest {
	if req.Path == "" {
		req.Path = DefaultPath
	}
	return req
}
