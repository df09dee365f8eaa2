// Package backend is the HTTP client for the remote analysis service. Two
// endpoint families exist: the structured endpoints return machine-readable
// findings plus a PDF artifact, the legacy endpoints return only the PDF.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

// CallError describes a failed backend call. Status 0 means the request never
// produced a response (transport failure); Message carries the backend's own
// error text when one was present.
type CallError struct {
	Status  int
	Message string
	Err     error
}

func (e *CallError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("backend call failed (status %d): %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("backend call failed with status %d", e.Status)
	default:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// NoResponse reports whether the transport failed before any response arrived.
func (e *CallError) NoResponse() bool { return e.Status == 0 }

// StructuredResponse is the decoded payload of a structured endpoint.
type StructuredResponse struct {
	Results  *models.AnalysisResult
	Artifact []byte
}

// structuredEnvelope matches the backend's JSON envelope: findings plus the
// PDF encoded in base64, the same shape the backend uses for cache entries.
type structuredEnvelope struct {
	Results   models.AnalysisResult `json:"results"`
	PDFBase64 string                `json:"pdf_base64"`
}

// errorBody covers both FastAPI-style and plain error payloads.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Client talks to the two analysis endpoint families.
type Client struct {
	structuredURL string
	legacyURL     string
	httpClient    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a backend client for the given base URLs.
func NewClient(structuredURL, legacyURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		structuredURL: structuredURL,
		legacyURL:     legacyURL,
		httpClient:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeComment sends a single comment to the structured endpoint.
func (c *Client) AnalyzeComment(ctx context.Context, comment string) (*StructuredResponse, error) {
	return c.structured(ctx, "/api/analyze/comment", jsonBody(models.CommentRequest{Comment: comment}))
}

// AnalyzePlayStore sends a Play Store URL to the structured endpoint.
func (c *Client) AnalyzePlayStore(ctx context.Context, url string) (*StructuredResponse, error) {
	return c.structured(ctx, "/api/analyze/playstore", jsonBody(models.PlayStoreRequest{URL: url}))
}

// AnalyzeCSV uploads a CSV batch to the structured endpoint.
func (c *Client) AnalyzeCSV(ctx context.Context, filename string, content []byte) (*StructuredResponse, error) {
	return c.structured(ctx, "/api/analyze/csv", fileBody(filename, content))
}

// LegacyComment sends a single comment to the legacy endpoint and returns the
// PDF artifact bytes.
func (c *Client) LegacyComment(ctx context.Context, comment string) ([]byte, error) {
	return c.legacy(ctx, "/api/analyze/comment", jsonBody(models.CommentRequest{Comment: comment}))
}

// LegacyPlayStore sends a Play Store URL to the legacy endpoint.
func (c *Client) LegacyPlayStore(ctx context.Context, url string) ([]byte, error) {
	return c.legacy(ctx, "/api/analyze/playstore", jsonBody(models.PlayStoreRequest{URL: url}))
}

// LegacyCSV uploads a CSV batch to the legacy endpoint.
func (c *Client) LegacyCSV(ctx context.Context, filename string, content []byte) ([]byte, error) {
	return c.legacy(ctx, "/api/analyze/csv", fileBody(filename, content))
}

type requestBody struct {
	contentType string
	reader      io.Reader
	err         error
}

func jsonBody(v interface{}) requestBody {
	data, err := json.Marshal(v)
	if err != nil {
		return requestBody{err: err}
	}
	return requestBody{contentType: "application/json", reader: bytes.NewReader(data)}
}

func fileBody(filename string, content []byte) requestBody {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return requestBody{err: err}
	}
	if _, err := part.Write(content); err != nil {
		return requestBody{err: err}
	}
	if err := mw.Close(); err != nil {
		return requestBody{err: err}
	}
	return requestBody{contentType: mw.FormDataContentType(), reader: &buf}
}

func (c *Client) structured(ctx context.Context, path string, body requestBody) (*StructuredResponse, error) {
	data, err := c.post(ctx, c.structuredURL+path, body)
	if err != nil {
		return nil, err
	}

	var envelope structuredEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &CallError{Status: http.StatusOK, Message: "malformed structured response", Err: err}
	}

	artifact, err := base64.StdEncoding.DecodeString(envelope.PDFBase64)
	if err != nil {
		return nil, &CallError{Status: http.StatusOK, Message: "malformed artifact encoding", Err: err}
	}

	return &StructuredResponse{Results: &envelope.Results, Artifact: artifact}, nil
}

func (c *Client) legacy(ctx context.Context, path string, body requestBody) ([]byte, error) {
	return c.post(ctx, c.legacyURL+path, body)
}

func (c *Client) post(ctx context.Context, url string, body requestBody) ([]byte, error) {
	if body.err != nil {
		return nil, &CallError{Message: "failed to encode request", Err: body.err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body.reader)
	if err != nil {
		return nil, &CallError{Err: err}
	}
	req.Header.Set("Content-Type", body.contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CallError{Status: resp.StatusCode, Message: extractMessage(data)}
	}

	return data, nil
}

// extractMessage pulls the backend-supplied error text out of a failure body.
func extractMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Error
}
