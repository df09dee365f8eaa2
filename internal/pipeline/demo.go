package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/mockdata"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

const demoMessage = "Demo results (sample data, no backend involved)"

// DemoDelay is the pause between clearing the channels and installing the
// canned result, mirroring the presentation-layer activation delay.
var DemoDelay = 300 * time.Millisecond

// ActivateDemo clears every channel and, after a fixed short delay, installs
// the canned result for the target channel with no artifact attached. The
// canned data is copied on every call, so repeated activations converge on
// the same state.
func (c *Controller) ActivateDemo(channel models.Channel) (models.ProcessingState, error) {
	if !channel.Valid() {
		return models.ProcessingState{}, fmt.Errorf("unknown channel: %s", channel)
	}

	gen := c.store.Clear()
	time.Sleep(DemoDelay)

	mock := mockdata.ResultFor(channel)
	if !c.store.Complete(gen, channel, mock, nil, "", demoMessage) {
		log.Debug().Str("channel", string(channel)).Msg("Demo activation superseded by a newer submission")
	}
	return c.store.State(channel), nil
}
