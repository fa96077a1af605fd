package messaging

import (
	"encoding/json"

	"github.com/stridetrack/stridetrack/internal/state"
)

// stateFrame is the outbound wire form pushed to companions whenever the
// application state changes.
type stateFrame struct {
	Type  string         `json:"type"`
	State state.AppState `json:"state"`
}

const frameTypeState = "state"

func encodeStateFrame(s state.AppState) ([]byte, error) {
	return json.Marshal(stateFrame{Type: frameTypeState, State: s})
}
