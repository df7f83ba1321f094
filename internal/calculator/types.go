package calculator

import (
	"errors"
	"fmt"

	"go-chi-calculator/internal/engine"
)

// maxKeysPerRequest bounds batch and stream key sequences.
const maxKeysPerRequest = 256

var errNoKeys = errors.New("no keys provided")

// StateResponse is the calculator screen as seen by a client.
type StateResponse struct {
	SessionID string `json:"session_id,omitempty"`
	Display   string `json:"display"`
	// Value is omitted when the input is NaN or infinite; JSON has no
	// representation for those and Display already spells them out.
	Value           *float64 `json:"value,omitempty"`
	PendingOperator string   `json:"pending_operator,omitempty"`
	DecimalMode     bool     `json:"decimal_mode"`
}

func newStateResponse(sessionID string, s engine.Snapshot) StateResponse {
	resp := StateResponse{
		SessionID:   sessionID,
		Display:     s.Display,
		DecimalMode: s.DecimalMode,
	}
	if engine.Finite(s.Input) {
		v := s.Input
		resp.Value = &v
	}
	if s.Pending != engine.OpNone {
		resp.PendingOperator = s.Pending.String()
	}
	return resp
}

// KeysRequest is the JSON body for POST /calculator/evaluate and
// POST /calculator/sessions/{sessionID}/keys. Keys wins over Sequence.
type KeysRequest struct {
	Sequence string   `json:"sequence,omitempty"` // e.g. "12.5×2="
	Keys     []string `json:"keys,omitempty"`     // e.g. ["AC", "7", "+/-"]
}

func (r KeysRequest) resolve() ([]string, error) {
	keys := r.Keys
	if len(keys) == 0 {
		var err error
		keys, err = engine.ParseKeys(r.Sequence)
		if err != nil {
			return nil, err
		}
	}

	if len(keys) == 0 {
		return nil, errNoKeys
	}
	if len(keys) > maxKeysPerRequest {
		return nil, fmt.Errorf("too many keys: %d > %d", len(keys), maxKeysPerRequest)
	}
	return keys, nil
}

// KeyResult records the display after one key press.
type KeyResult struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

// KeysResponse is the JSON response for key sequences.
type KeysResponse struct {
	StateResponse
	Steps []KeyResult `json:"steps"`
}

// StreamMessage is a client frame on the websocket stream.
type StreamMessage struct {
	Key      string `json:"key,omitempty"`
	Sequence string `json:"sequence,omitempty"`
}

func (m StreamMessage) keys() ([]string, error) {
	if m.Key != "" {
		return KeysRequest{Keys: []string{m.Key}}.resolve()
	}
	return KeysRequest{Sequence: m.Sequence}.resolve()
}

// StreamUpdate is a server frame on the websocket stream.
type StreamUpdate struct {
	StateResponse
	Error string `json:"error,omitempty"`
}
