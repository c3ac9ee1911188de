package hcl

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	// ContentTypeHCL is the custom MIME type for HCL plot jobs
	ContentTypeHCL = "application/vnd.hcl"

	// ContentTypeJSON is the standard MIME type for JSON
	ContentTypeJSON = "application/json"
)

// DetectContentType determines if a request body is JSON or HCL from the
// Content-Type header, falling back to inspecting the body. The body stays
// readable afterwards.
func DetectContentType(r *http.Request) (string, error) {
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case ContentTypeHCL, "text/x-hcl":
				return ContentTypeHCL, nil
			case ContentTypeJSON:
				return ContentTypeJSON, nil
			}
		}
	}

	if r.Body == nil {
		return ContentTypeJSON, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return DetectContent(body), nil
}

// DetectContent classifies raw content. JSON starts with { or [; anything
// else that parses as HCL is HCL. Undecidable content is treated as JSON.
func DetectContent(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return ContentTypeJSON
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ContentTypeJSON
	}
	if IsHCL(trimmed) {
		return ContentTypeHCL
	}
	return ContentTypeJSON
}

// IsHCLFile checks if the filename has an HCL extension
func IsHCLFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl", ".plot":
		return true
	}
	return false
}
