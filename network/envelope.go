package network

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Envelope is a message on the bus.
type Envelope struct {
	ID      uuid.UUID       `json:"id"`
	From    string          `json:"from"`
	Target  string          `json:"target,omitempty"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload into an envelope with a fresh ID.
func NewEnvelope(from, kind, target string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Envelope{
		ID:      uuid.New(),
		From:    from,
		Target:  target,
		Kind:    kind,
		Payload: raw,
	}, nil
}

// Decode unmarshals the payload of e into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload from %s: %w", e.Kind, e.From, err)
	}
	return nil
}

// For reports whether e is addressed to id. Untargeted envelopes are for
// everyone.
func (e Envelope) For(id string) bool {
	return e.Target == "" || e.Target == id
}
