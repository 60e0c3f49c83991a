package client

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
)

// Envelope is the wire shape every non-upload response is normalized into.
// Backends that still answer with a bare payload are wrapped so callers see
// a single shape.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// decodeEnvelope normalizes a 2xx body. It first probes for the envelope
// shape (both "success" and "data" keys present) and decodes it as-is;
// structural mismatches fall through to wrapping the raw payload. Wrapping
// is idempotent: an already-enveloped body passes through unchanged.
func decodeEnvelope(body []byte) Envelope {
	if len(body) == 0 {
		return Envelope{Success: true}
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		_, hasSuccess := probe["success"]
		_, hasData := probe["data"]
		if hasSuccess && hasData {
			var env Envelope
			if err := json.Unmarshal(body, &env); err == nil {
				return env
			}
		}
	}
	if !json.Valid(body) {
		// Tolerated on ordinary calls: a 2xx with an undecodable body
		// yields empty data, not an error.
		return Envelope{Success: true}
	}
	return Envelope{Success: true, Data: json.RawMessage(body)}
}

// DataAs decodes the envelope's data payload into T.
func DataAs[T any](env *Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, errors.Wrap(err, "decode envelope data")
	}
	return out, nil
}
