package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/backend"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/database"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/mockdata"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

const (
	minCommentLength  = 10
	minPlayStoreURL   = 30
	playStoreHostMark = "play.google.com"

	singleArtifactName = "requisitos_comentario.pdf"

	progressSeedSingle    = 25
	progressSeedCSV       = 10
	progressSeedPlayStore = 15

	loadingSingle    = "Classifying comment..."
	loadingCSV       = "Processing CSV batch..."
	loadingPlayStore = "Collecting Play Store reviews..."

	successMessage     = "Analysis complete"
	successDemoMessage = "Analysis complete (sample findings shown, structured service unavailable)"
)

// ValidationError is a local input constraint violation. It never reaches the
// network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Controller drives one submission at a time from raw input to final channel
// state: validate, clear all channels, try the structured endpoint, fall back
// to the legacy endpoint with the canned result overlay, or fail.
type Controller struct {
	store    *StateStore
	client   *backend.Client
	history  database.Store
	validate *validator.Validate
}

// NewController creates a submission controller. history may be nil when no
// persistence is configured.
func NewController(store *StateStore, client *backend.Client, history database.Store) *Controller {
	return &Controller{
		store:    store,
		client:   client,
		history:  history,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Store exposes the channel state store.
func (c *Controller) Store() *StateStore { return c.store }

// SubmitComment runs the single-comment channel.
func (c *Controller) SubmitComment(ctx context.Context, comment string) (models.ProcessingState, error) {
	trimmed := strings.TrimSpace(comment)
	if err := c.validate.Var(trimmed, fmt.Sprintf("required,min=%d", minCommentLength)); err != nil {
		return c.rejected(models.ChannelSingle, fmt.Sprintf("The comment must contain at least %d characters.", minCommentLength))
	}

	gen := c.store.Begin(models.ChannelSingle, loadingSingle, progressSeedSingle)
	return c.run(ctx, submission{
		gen:          gen,
		channel:      models.ChannelSingle,
		sourceType:   models.SourceSingle,
		artifactName: singleArtifactName,
		digest:       digest(trimmed),
		structured:   func(ctx context.Context) (*backend.StructuredResponse, error) { return c.client.AnalyzeComment(ctx, trimmed) },
		legacy:       func(ctx context.Context) ([]byte, error) { return c.client.LegacyComment(ctx, trimmed) },
	})
}

// SubmitCSV runs the CSV batch channel.
func (c *Controller) SubmitCSV(ctx context.Context, filename string, content []byte) (models.ProcessingState, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return c.rejected(models.ChannelCSV, "The selected file must be a .csv file.")
	}

	gen := c.store.Begin(models.ChannelCSV, loadingCSV, progressSeedCSV)
	return c.run(ctx, submission{
		gen:          gen,
		channel:      models.ChannelCSV,
		sourceType:   models.SourceCSV,
		artifactName: csvArtifactName(filename),
		digest:       digest(string(content)),
		structured: func(ctx context.Context) (*backend.StructuredResponse, error) {
			return c.client.AnalyzeCSV(ctx, filename, content)
		},
		legacy: func(ctx context.Context) ([]byte, error) { return c.client.LegacyCSV(ctx, filename, content) },
	})
}

// SubmitPlayStore runs the Play Store URL channel.
func (c *Controller) SubmitPlayStore(ctx context.Context, rawURL string) (models.ProcessingState, error) {
	trimmed := strings.TrimSpace(rawURL)
	err := c.validate.Var(trimmed, fmt.Sprintf("required,min=%d,contains=%s", minPlayStoreURL, playStoreHostMark))
	if err != nil || !strings.Contains(trimmed, "id=") {
		return c.rejected(models.ChannelPlayStore,
			"Enter a complete Play Store URL including the application id, e.g. https://play.google.com/store/apps/details?id=...")
	}

	gen := c.store.Begin(models.ChannelPlayStore, loadingPlayStore, progressSeedPlayStore)
	return c.run(ctx, submission{
		gen:          gen,
		channel:      models.ChannelPlayStore,
		sourceType:   models.SourcePlayStore,
		artifactName: playStoreArtifactName(trimmed),
		digest:       digest(trimmed),
		structured:   func(ctx context.Context) (*backend.StructuredResponse, error) { return c.client.AnalyzePlayStore(ctx, trimmed) },
		legacy:       func(ctx context.Context) ([]byte, error) { return c.client.LegacyPlayStore(ctx, trimmed) },
	})
}

type submission struct {
	gen          uint64
	channel      models.Channel
	sourceType   models.SourceKind
	artifactName string
	digest       string
	structured   func(ctx context.Context) (*backend.StructuredResponse, error)
	legacy       func(ctx context.Context) ([]byte, error)
}

func (c *Controller) rejected(ch models.Channel, reason string) (models.ProcessingState, error) {
	c.store.SetValidationError(ch, reason)
	return c.store.State(ch), &ValidationError{Reason: reason}
}

// run executes the two-step pipeline: structured first, legacy with the mock
// overlay second, final error third.
func (c *Controller) run(ctx context.Context, sub submission) (models.ProcessingState, error) {
	resp, err := sub.structured(ctx)
	if err == nil {
		if c.store.Complete(sub.gen, sub.channel, resp.Results, resp.Artifact, sub.artifactName, successMessage) {
			c.record(ctx, sub, resp.Results, false)
			log.Info().
				Str("channel", string(sub.channel)).
				Int("total_comments", resp.Results.TotalComments).
				Int("valid_requirements", resp.Results.ValidRequirements).
				Msg("Structured analysis complete")
		}
		return c.store.State(sub.channel), nil
	}

	log.Warn().Err(err).Str("channel", string(sub.channel)).Msg("Structured endpoint failed, trying legacy endpoint")

	artifact, legacyErr := sub.legacy(ctx)
	if legacyErr == nil {
		mock := mockdata.ResultFor(sub.channel)
		if c.store.Complete(sub.gen, sub.channel, mock, artifact, sub.artifactName, successDemoMessage) {
			c.record(ctx, sub, mock, true)
			log.Info().Str("channel", string(sub.channel)).Msg("Legacy analysis complete, canned findings substituted")
		}
		return c.store.State(sub.channel), nil
	}

	message := deriveErrorMessage(legacyErr)
	c.store.Fail(sub.gen, sub.channel, message)
	log.Error().Err(legacyErr).Str("channel", string(sub.channel)).Msg("Both analysis endpoints failed")
	return c.store.State(sub.channel), legacyErr
}

func (c *Controller) record(ctx context.Context, sub submission, results *models.AnalysisResult, mock bool) {
	if c.history == nil {
		return
	}
	rec := &models.AnalysisRecord{
		ID:                uuid.New().String(),
		Channel:           sub.channel,
		InputDigest:       sub.digest,
		TotalComments:     results.TotalComments,
		ValidRequirements: results.ValidRequirements,
		ProcessingTimeMs:  results.ProcessingTimeMs,
		MockResults:       mock,
		ArtifactName:      sub.artifactName,
		SourceType:        sub.sourceType,
		CreatedAt:         time.Now(),
	}
	if err := c.history.SaveAnalysis(ctx, rec); err != nil {
		log.Error().Err(err).Msg("Failed to save analysis record")
	}
}

// deriveErrorMessage turns a failed fallback call into a user-facing message:
// backend-supplied text first, then the HTTP status, then a no-connection
// hint, then a generic fallback.
func deriveErrorMessage(err error) string {
	var ce *backend.CallError
	if errors.As(err, &ce) {
		switch {
		case ce.Message != "":
			return "Error: " + ce.Message
		case ce.NoResponse():
			return "Could not reach the analysis service. Check your connection and try again."
		default:
			return fmt.Sprintf("The analysis service returned an unexpected error (status %d).", ce.Status)
		}
	}
	return "The analysis could not be completed. Please try again later."
}

// csvArtifactName derives requisitos_<name-without-.csv>.pdf.
func csvArtifactName(filename string) string {
	base := filename
	if idx := strings.LastIndex(strings.ToLower(base), ".csv"); idx >= 0 {
		base = base[:idx]
	}
	return "requisitos_" + base + ".pdf"
}

// playStoreArtifactName derives requisitos_<id-param>.pdf from the URL's id=
// query parameter, reading up to the next & or the end of the string.
func playStoreArtifactName(rawURL string) string {
	return "requisitos_" + extractAppID(rawURL) + ".pdf"
}

func extractAppID(rawURL string) string {
	idx := strings.Index(rawURL, "id=")
	if idx < 0 {
		return "app"
	}
	id := rawURL[idx+len("id="):]
	if amp := strings.Index(id, "&"); amp >= 0 {
		id = id[:amp]
	}
	if id == "" {
		return "app"
	}
	return id
}

func digest(content string) string {
	normalized := strings.ToLower(strings.TrimSpace(content))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
