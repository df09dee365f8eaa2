package pipeline

import (
	"github.com/samber/lo"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

// DefaultArtifactName is the download name offered when no channel has a
// visible result. Matches the backend's default report filename.
const DefaultArtifactName = "requisitos_seguridad.pdf"

// PresentationView is the derived "what the view renders" projection over the
// three channel states.
type PresentationView struct {
	Channels           map[models.Channel]models.ProcessingState `json:"channels"`
	HasVisibleResult   bool                                      `json:"has_visible_result"`
	ActiveChannel      models.Channel                            `json:"active_channel,omitempty"`
	ActiveResult       *models.AnalysisResult                    `json:"active_result,omitempty"`
	ActiveArtifactName string                                    `json:"active_artifact_name"`
}

// Select derives the presentation view from a snapshot. Submission always
// clears every channel before starting, so at most one ShowResults is true;
// the fixed single → csv → playstore priority is only a deterministic
// tie-break should that invariant ever be violated.
func Select(snapshot map[models.Channel]models.ProcessingState) PresentationView {
	view := PresentationView{
		Channels:           snapshot,
		ActiveArtifactName: DefaultArtifactName,
	}

	winner, ok := lo.Find(models.Channels, func(ch models.Channel) bool {
		return snapshot[ch].ShowResults
	})
	if !ok {
		return view
	}

	state := snapshot[winner]
	view.HasVisibleResult = true
	view.ActiveChannel = winner
	view.ActiveResult = state.Results
	if state.ArtifactName != "" {
		view.ActiveArtifactName = state.ArtifactName
	}
	return view
}
