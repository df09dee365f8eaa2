// Package models defines the core data structures used throughout the application.
package models

import (
	"time"
)

// Channel identifies one of the three independent input modalities.
type Channel string

const (
	ChannelSingle    Channel = "single"
	ChannelCSV       Channel = "csv"
	ChannelPlayStore Channel = "playstore"
)

// Channels lists all channels in presentation priority order.
var Channels = []Channel{ChannelSingle, ChannelCSV, ChannelPlayStore}

// Valid reports whether c names a known channel.
func (c Channel) Valid() bool {
	return c == ChannelSingle || c == ChannelCSV || c == ChannelPlayStore
}

// SourceKind mirrors the backend's source_type discriminator.
type SourceKind string

const (
	SourceSingle    SourceKind = "single"
	SourceCSV       SourceKind = "csv"
	SourcePlayStore SourceKind = "playstore"
)

// Subcharacteristic is one of the six ISO/IEC 25010 security subcharacteristics.
type Subcharacteristic string

const (
	SubConfidentiality Subcharacteristic = "confidentiality"
	SubIntegrity       Subcharacteristic = "integrity"
	SubNonRepudiation  Subcharacteristic = "non_repudiation"
	SubAccountability  Subcharacteristic = "accountability"
	SubAuthenticity    Subcharacteristic = "authenticity"
	SubResistance      Subcharacteristic = "resistance"
)

// RequirementFinding is one classified input item as emitted by the backend.
type RequirementFinding struct {
	Text              string            `json:"comment"`
	IsRequirement     bool              `json:"is_requirement"`
	Subcharacteristic Subcharacteristic `json:"subcharacteristic,omitempty"`
	Description       string            `json:"description,omitempty"`
	BinaryScore       float64           `json:"binary_score"`
	MulticlassScore   *float64          `json:"multiclass_score,omitempty"`
}

// AnalysisResult is the structured outcome of one analysis run. Field names
// follow the backend's JSON contract. Requirements preserve backend emission
// order.
type AnalysisResult struct {
	TotalComments     int                  `json:"total_comments"`
	ValidRequirements int                  `json:"valid_requirements"`
	Requirements      []RequirementFinding `json:"requirements"`
	ProcessingTimeMs  float64              `json:"processing_time_ms"`
	SourceType        SourceKind           `json:"source_type"`
}

// ProcessingState is the per-channel submission lifecycle cell. Loading,
// Error and ShowResults are pairwise mutually exclusive; Artifact and
// ArtifactName accompany ShowResults. The raw artifact bytes stay out of
// JSON; HasArtifact signals their presence instead.
type ProcessingState struct {
	Loading      bool            `json:"loading"`
	Progress     int             `json:"progress,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	Results      *AnalysisResult `json:"results,omitempty"`
	ShowResults  bool            `json:"show_results"`
	Artifact     []byte          `json:"-"`
	ArtifactName string          `json:"artifact_name,omitempty"`
	HasArtifact  bool            `json:"has_artifact"`
}

// SubcharacteristicInfo is one entry of the ISO 25010 reference catalog.
type SubcharacteristicInfo struct {
	ID          Subcharacteristic `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
}

// AnalysisRecord is the persisted trace of one completed submission.
type AnalysisRecord struct {
	ID                string     `json:"id"`
	Channel           Channel    `json:"channel"`
	InputDigest       string     `json:"input_digest"`
	TotalComments     int        `json:"total_comments"`
	ValidRequirements int        `json:"valid_requirements"`
	ProcessingTimeMs  float64    `json:"processing_time_ms"`
	MockResults       bool       `json:"mock_results"`
	ArtifactName      string     `json:"artifact_name"`
	SourceType        SourceKind `json:"source_type"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CommentRequest is the request body for single-comment analysis.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// PlayStoreRequest is the request body for Play Store analysis.
type PlayStoreRequest struct {
	URL string `json:"url"`
}
