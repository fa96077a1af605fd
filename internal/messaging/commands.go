// Package messaging carries cross-device workout commands (phone <-> watch
// start/stop) as a small closed set of typed events, independent of the
// transport delivering them.
package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/stridetrack/stridetrack/internal/models"
)

// EventType discriminates command envelopes. The set is closed: unknown
// types are rejected at decode time.
type EventType string

const (
	EventWorkoutStart EventType = "workout_start"
	EventWorkoutStop  EventType = "workout_stop"
)

// WorkoutStart asks the receiving device to begin a workout session.
type WorkoutStart struct {
	Activity     models.Category `json:"activity"`
	StrengthType string          `json:"strength_type,omitempty"`
}

// WorkoutStop asks the receiving device to end the active session.
type WorkoutStop struct{}

// Event is a decoded command.
type Event struct {
	Type  EventType
	Start *WorkoutStart // set when Type == EventWorkoutStart
}

// envelope is the wire form: {"type": ..., "payload": {...}}.
type envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes an event to its wire envelope.
func Encode(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Type}
	switch ev.Type {
	case EventWorkoutStart:
		if ev.Start == nil {
			return nil, fmt.Errorf("workout_start event without payload")
		}
		payload, err := json.Marshal(ev.Start)
		if err != nil {
			return nil, fmt.Errorf("encoding workout_start: %w", err)
		}
		env.Payload = payload
	case EventWorkoutStop:
		// no payload
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return json.Marshal(env)
}

// Decode parses a wire envelope into an event. Unknown types and malformed
// payloads are errors; the command set is closed.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decoding command envelope: %w", err)
	}

	switch env.Type {
	case EventWorkoutStart:
		var start WorkoutStart
		if err := json.Unmarshal(env.Payload, &start); err != nil {
			return Event{}, fmt.Errorf("decoding workout_start payload: %w", err)
		}
		// Normalize so parse aliases ("lifts") never leak past the codec.
		cat, err := models.ParseCategory(string(start.Activity))
		if err != nil {
			return Event{}, fmt.Errorf("workout_start: %w", err)
		}
		start.Activity = cat
		return Event{Type: EventWorkoutStart, Start: &start}, nil
	case EventWorkoutStop:
		return Event{Type: EventWorkoutStop}, nil
	default:
		return Event{}, fmt.Errorf("unknown event type %q", env.Type)
	}
}
