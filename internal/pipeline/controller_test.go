package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/backend"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/mockdata"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

var fakePDF = []byte("%PDF-1.4 fake report")

func structuredBody(t *testing.T, result models.AnalysisResult) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"results":    result,
		"pdf_base64": base64.StdEncoding.EncodeToString(fakePDF),
	})
	require.NoError(t, err)
	return body
}

func realResult(kind models.SourceKind) models.AnalysisResult {
	return models.AnalysisResult{
		TotalComments:     2,
		ValidRequirements: 1,
		ProcessingTimeMs:  987.5,
		SourceType:        kind,
		Requirements: []models.RequirementFinding{
			{
				Text:              "The app must encrypt my backups before syncing them.",
				IsRequirement:     true,
				Subcharacteristic: models.SubConfidentiality,
				Description:       "Asks for encryption of stored user data.",
				BinaryScore:       0.93,
			},
			{Text: "Love the new icons!", IsRequirement: false, BinaryScore: 0.04},
		},
	}
}

func newTestController(structuredURL, legacyURL string) *Controller {
	client := backend.NewClient(structuredURL, legacyURL, 5*time.Second)
	return NewController(NewStateStore(), client, nil)
}

func TestSubmitComment_TooShortSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitComment(context.Background(), "  short  ")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, state.Error)
	require.False(t, state.Loading)
	require.False(t, state.ShowResults)
	require.Zero(t, atomic.LoadInt32(&calls))

	// Other channels untouched
	require.Equal(t, models.ProcessingState{}, c.Store().State(models.ChannelCSV))
	require.Equal(t, models.ProcessingState{}, c.Store().State(models.ChannelPlayStore))
}

func TestSubmitPlayStore_MissingIDSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitPlayStore(context.Background(), "https://play.google.com/store/apps/details")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, state.Error)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestSubmitComment_StructuredSuccess(t *testing.T) {
	want := realResult(models.SourceSingle)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analyze/comment", r.URL.Path)
		w.Write(structuredBody(t, want))
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitComment(context.Background(), "The app must encrypt my backups before syncing them.")
	require.NoError(t, err)

	require.True(t, state.ShowResults)
	require.False(t, state.Loading)
	require.Empty(t, state.Error)
	require.Equal(t, &want, state.Results)
	require.Equal(t, "requisitos_comentario.pdf", state.ArtifactName)
	require.Equal(t, fakePDF, state.Artifact)
}

func TestSubmitCSV_FallbackSubstitutesMockResults(t *testing.T) {
	structured := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "model unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer structured.Close()

	legacy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		require.Equal(t, "reviews.csv", header.Filename)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(fakePDF)
	}))
	defer legacy.Close()

	c := newTestController(structured.URL, legacy.URL)
	state, err := c.SubmitCSV(context.Background(), "reviews.csv", []byte("comment\nneeds 2FA\n"))
	require.NoError(t, err)

	require.True(t, state.ShowResults)
	require.Equal(t, mockdata.ResultFor(models.ChannelCSV), state.Results)
	// Artifact naming still follows the real input, not the mock
	require.Equal(t, "requisitos_reviews.pdf", state.ArtifactName)
	require.Equal(t, fakePDF, state.Artifact)
	require.Contains(t, state.Message, "sample")
}

func TestSubmit_BothEndpointsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "classifier crashed"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitComment(context.Background(), "this comment is long enough to validate")
	require.Error(t, err)

	require.False(t, state.ShowResults)
	require.False(t, state.Loading)
	require.Equal(t, "Error: classifier crashed", state.Error)
}

func TestSubmit_NoConnectionMessage(t *testing.T) {
	// A server that is already closed produces a transport-level failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitComment(context.Background(), "this comment is long enough to validate")
	require.Error(t, err)
	require.Contains(t, state.Error, "Could not reach the analysis service")
}

func TestSubmit_StatusOnlyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plain text panic", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)
	state, err := c.SubmitComment(context.Background(), "this comment is long enough to validate")
	require.Error(t, err)
	require.Contains(t, state.Error, "502")
}

func TestSingleVisibleResultInvariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := models.SourceSingle
		if r.URL.Path == "/api/analyze/playstore" {
			kind = models.SourcePlayStore
		}
		w.Write(structuredBody(t, realResult(kind)))
	}))
	defer server.Close()

	c := newTestController(server.URL, server.URL)

	_, err := c.SubmitComment(context.Background(), "a sufficiently long review comment")
	require.NoError(t, err)
	require.True(t, c.Store().State(models.ChannelSingle).ShowResults)

	_, err = c.SubmitPlayStore(context.Background(), "https://play.google.com/store/apps/details?id=com.example.app")
	require.NoError(t, err)

	snap := c.Store().Snapshot()
	require.False(t, snap[models.ChannelSingle].ShowResults)
	require.Equal(t, models.ProcessingState{}, snap[models.ChannelSingle])
	require.True(t, snap[models.ChannelPlayStore].ShowResults)
	require.False(t, snap[models.ChannelCSV].ShowResults)
}

func TestStaleResponseDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write(structuredBody(t, realResult(models.SourceSingle)))
	}))
	defer server.Close()

	oldDelay := DemoDelay
	DemoDelay = 0
	defer func() { DemoDelay = oldDelay }()

	c := newTestController(server.URL, server.URL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SubmitComment(context.Background(), "a sufficiently long review comment")
	}()

	<-started
	// A newer activation supersedes the in-flight submission.
	_, err := c.ActivateDemo(models.ChannelCSV)
	require.NoError(t, err)

	close(release)
	<-done

	snap := c.Store().Snapshot()
	require.Equal(t, models.ProcessingState{}, snap[models.ChannelSingle], "stale completion must not overwrite newer state")
	require.True(t, snap[models.ChannelCSV].ShowResults)
}

func TestActivateDemo_Idempotent(t *testing.T) {
	oldDelay := DemoDelay
	DemoDelay = 0
	defer func() { DemoDelay = oldDelay }()

	c := newTestController("http://unused", "http://unused")

	first, err := c.ActivateDemo(models.ChannelSingle)
	require.NoError(t, err)
	second, err := c.ActivateDemo(models.ChannelSingle)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.True(t, second.ShowResults)
	require.False(t, second.HasArtifact)
	require.Empty(t, second.ArtifactName)
	require.Equal(t, mockdata.ResultFor(models.ChannelSingle), second.Results)
}

func TestActivateDemo_UnknownChannel(t *testing.T) {
	c := newTestController("http://unused", "http://unused")
	_, err := c.ActivateDemo(models.Channel("bogus"))
	require.Error(t, err)
}

func TestArtifactNames(t *testing.T) {
	require.Equal(t, "requisitos_reviews.pdf", csvArtifactName("reviews.csv"))
	require.Equal(t, "requisitos_export.pdf", csvArtifactName("export.CSV"))
	require.Equal(t, "requisitos_com.example.app.pdf",
		playStoreArtifactName("https://play.google.com/store/apps/details?id=com.example.app&hl=en"))
	require.Equal(t, "requisitos_com.example.app.pdf",
		playStoreArtifactName("https://play.google.com/store/apps/details?id=com.example.app"))
}
