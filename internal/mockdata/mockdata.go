// Package mockdata holds the canned analysis outcomes and the ISO 25010
// security reference catalog used when no live backend is reachable.
package mockdata

import (
	"github.com/samber/lo"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

func score(v float64) *float64 { return &v }

// catalog is the ISO/IEC 25010 security subcharacteristic reference data.
var catalog = []models.SubcharacteristicInfo{
	{
		ID:          models.SubConfidentiality,
		Name:        "Confidentiality",
		Description: "Degree to which the product ensures that data is accessible only to those authorized to access it.",
	},
	{
		ID:          models.SubIntegrity,
		Name:        "Integrity",
		Description: "Degree to which the product prevents unauthorized access to, or modification of, programs or data.",
	},
	{
		ID:          models.SubNonRepudiation,
		Name:        "Non-repudiation",
		Description: "Degree to which actions or events can be proven to have taken place so they cannot be repudiated later.",
	},
	{
		ID:          models.SubAccountability,
		Name:        "Accountability",
		Description: "Degree to which the actions of an entity can be traced uniquely to that entity.",
	},
	{
		ID:          models.SubAuthenticity,
		Name:        "Authenticity",
		Description: "Degree to which the identity of a subject or resource can be proved to be the one claimed.",
	},
	{
		ID:          models.SubResistance,
		Name:        "Resistance",
		Description: "Degree to which the product sustains operation while under attack from a malicious actor.",
	},
}

// Catalog returns a copy of the ISO 25010 security subcharacteristic catalog.
func Catalog() []models.SubcharacteristicInfo {
	out := make([]models.SubcharacteristicInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Describe returns the catalog description for a subcharacteristic, or the
// empty string when it is unknown.
func Describe(id models.Subcharacteristic) string {
	info, ok := lo.Find(catalog, func(i models.SubcharacteristicInfo) bool { return i.ID == id })
	if !ok {
		return ""
	}
	return info.Description
}

var singleResult = models.AnalysisResult{
	TotalComments:     1,
	ValidRequirements: 1,
	ProcessingTimeMs:  412.7,
	SourceType:        models.SourceSingle,
	Requirements: []models.RequirementFinding{
		{
			Text:              "The app should ask for my fingerprint before showing my account balance.",
			IsRequirement:     true,
			Subcharacteristic: models.SubAuthenticity,
			Description:       "Requests biometric proof of identity before exposing sensitive data.",
			BinaryScore:       0.94,
			MulticlassScore:   score(0.88),
		},
	},
}

var csvResult = models.AnalysisResult{
	TotalComments:     4,
	ValidRequirements: 3,
	ProcessingTimeMs:  2318.4,
	SourceType:        models.SourceCSV,
	Requirements: []models.RequirementFinding{
		{
			Text:              "Please let me delete my payment history, I don't want it stored forever.",
			IsRequirement:     true,
			Subcharacteristic: models.SubConfidentiality,
			Description:       "Asks for user control over retained sensitive records.",
			BinaryScore:       0.91,
			MulticlassScore:   score(0.83),
		},
		{
			Text:              "My transactions were edited after the fact, there should be a tamper-proof log.",
			IsRequirement:     true,
			Subcharacteristic: models.SubIntegrity,
			Description:       "Demands protection of stored records against unauthorized modification.",
			BinaryScore:       0.89,
			MulticlassScore:   score(0.81),
		},
		{
			Text:              "Great app, five stars!",
			IsRequirement:     false,
			BinaryScore:       0.07,
		},
		{
			Text:              "I want a receipt for every transfer so nobody can deny it happened.",
			IsRequirement:     true,
			Subcharacteristic: models.SubNonRepudiation,
			Description:       "Requests verifiable evidence that a completed action took place.",
			BinaryScore:       0.86,
			MulticlassScore:   score(0.79),
		},
	},
}

var playStoreResult = models.AnalysisResult{
	TotalComments:     3,
	ValidRequirements: 2,
	ProcessingTimeMs:  5104.9,
	SourceType:        models.SourcePlayStore,
	Requirements: []models.RequirementFinding{
		{
			Text:              "Every login from a new device should show up in an activity history.",
			IsRequirement:     true,
			Subcharacteristic: models.SubAccountability,
			Description:       "Asks that account actions be traceable to the device that performed them.",
			BinaryScore:       0.92,
			MulticlassScore:   score(0.85),
		},
		{
			Text:              "The update broke the dark theme on my tablet.",
			IsRequirement:     false,
			BinaryScore:       0.11,
		},
		{
			Text:              "Block the account after repeated wrong PIN attempts.",
			IsRequirement:     true,
			Subcharacteristic: models.SubResistance,
			Description:       "Requests active defense against brute-force access attempts.",
			BinaryScore:       0.88,
			MulticlassScore:   score(0.8),
		},
	},
}

// ResultFor returns a deep copy of the canned result for a channel. Copies
// keep the registry constant across demo activations and fallback overlays.
func ResultFor(channel models.Channel) *models.AnalysisResult {
	var src *models.AnalysisResult
	switch channel {
	case models.ChannelSingle:
		src = &singleResult
	case models.ChannelCSV:
		src = &csvResult
	case models.ChannelPlayStore:
		src = &playStoreResult
	default:
		return nil
	}
	return cloneResult(src)
}

func cloneResult(src *models.AnalysisResult) *models.AnalysisResult {
	out := *src
	out.Requirements = lo.Map(src.Requirements, func(f models.RequirementFinding, _ int) models.RequirementFinding {
		if f.MulticlassScore != nil {
			v := *f.MulticlassScore
			f.MulticlassScore = &v
		}
		return f
	})
	return &out
}
