package media

import (
	"encoding/json"
	"fmt"

	"github.com/hamlet-bot/hamlet/internal/config"
)

// Result payloads are stored as a kind-tagged envelope and decoded once,
// at the call site that enqueued the job. Consumers never branch on raw
// JSON.

type AvatarResult struct {
	Artifact Artifact `json:"artifact"`
}

type VillageResult struct {
	Artifact Artifact `json:"artifact"`
}

type ObjectResult struct {
	Artifact Artifact `json:"artifact"`
	Label    string   `json:"label,omitempty"`
}

type CompositeResult struct {
	Artifact   Artifact `json:"artifact"`
	VillageID  string   `json:"village_id"`
	Generation int      `json:"generation"`
}

type envelope struct {
	Kind    config.JobKind  `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeResult wraps a typed result for storage on the job row.
func EncodeResult(kind config.JobKind, result any) ([]byte, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal %s result: %w", kind, err)
	}
	return json.Marshal(envelope{Kind: kind, Payload: payload})
}

// DecodeResult unwraps a stored envelope into the typed result for kind.
// It rejects envelopes whose tag does not match the expected kind, which
// catches chains wired to the wrong parent.
func DecodeResult(kind config.JobKind, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode result envelope: %w", err)
	}
	if env.Kind != kind {
		return fmt.Errorf("result kind mismatch: stored %s, want %s", env.Kind, kind)
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("decode %s result: %w", kind, err)
	}
	return nil
}
