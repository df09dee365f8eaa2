package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

func TestAnalyzeComment_DecodesEnvelope(t *testing.T) {
	pdf := []byte("%PDF-1.4 report")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/analyze/comment", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.CommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "needs biometric login", req.Comment)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": models.AnalysisResult{
				TotalComments:     1,
				ValidRequirements: 1,
				SourceType:        models.SourceSingle,
				Requirements: []models.RequirementFinding{
					{Text: "needs biometric login", IsRequirement: true, BinaryScore: 0.9},
				},
			},
			"pdf_base64": base64.StdEncoding.EncodeToString(pdf),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	resp, err := client.AnalyzeComment(context.Background(), "needs biometric login")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Results.TotalComments)
	require.Equal(t, models.SourceSingle, resp.Results.SourceType)
	require.Equal(t, pdf, resp.Artifact)
}

func TestAnalyzeCSV_SendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "reviews.csv", header.Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results":    models.AnalysisResult{SourceType: models.SourceCSV},
			"pdf_base64": "",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	resp, err := client.AnalyzeCSV(context.Background(), "reviews.csv", []byte("comment\nhello\n"))
	require.NoError(t, err)
	require.Equal(t, models.SourceCSV, resp.Results.SourceType)
	require.Empty(t, resp.Artifact)
}

func TestLegacyPlayStore_ReturnsRawArtifact(t *testing.T) {
	pdf := []byte("%PDF-1.4 legacy")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analyze/playstore", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	artifact, err := client.LegacyPlayStore(context.Background(), "https://play.google.com/store/apps/details?id=x")
	require.NoError(t, err)
	require.Equal(t, pdf, artifact)
}

func TestCallError_BackendMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"fastapi detail", `{"detail": "model unavailable"}`, http.StatusServiceUnavailable, "model unavailable"},
		{"plain error field", `{"error": "bad input"}`, http.StatusBadRequest, "bad input"},
		{"non-json body", "panic at the disco", http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, tc.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, server.URL, 5*time.Second)
			_, err := client.AnalyzeComment(context.Background(), "whatever input")
			require.Error(t, err)

			var ce *CallError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tc.status, ce.Status)
			require.Equal(t, tc.message, ce.Message)
			require.False(t, ce.NoResponse())
		})
	}
}

func TestCallError_NoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, server.URL, time.Second)
	_, err := client.AnalyzeComment(context.Background(), "whatever input")
	require.Error(t, err)

	var ce *CallError
	require.True(t, errors.As(err, &ce))
	require.True(t, ce.NoResponse())
	require.Empty(t, ce.Message)
}

func TestStructured_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	_, err := client.AnalyzeComment(context.Background(), "whatever input")
	require.Error(t, err)

	var ce *CallError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, http.StatusOK, ce.Status)
}
